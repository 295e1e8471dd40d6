package decode

import (
	"errors"
	"fmt"
	"time"
)

// The three failure kinds a Generate call can surface. All propagate
// unchanged to the caller; the engine attempts no retries.
var (
	// ErrInvalidConfig reports a generation parameter outside its domain.
	ErrInvalidConfig = errors.New("invalid_configuration")
	// ErrModelInference reports a model call that failed or returned a
	// malformed distribution.
	ErrModelInference = errors.New("model_inference")
	// ErrTimeout reports the generation deadline expiring mid-decode.
	ErrTimeout = errors.New("decoding_timeout")
)

type configError struct {
	param string
	msg   string
}

func (e configError) Error() string { return fmt.Sprintf("%s: %s", e.param, e.msg) }
func (e configError) Unwrap() error { return ErrInvalidConfig }

func invalidConfigf(param, format string, args ...any) error {
	return configError{param: param, msg: fmt.Sprintf(format, args...)}
}

type inferenceError struct {
	step int
	msg  string
}

func (e inferenceError) Error() string { return fmt.Sprintf("step %d: %s", e.step, e.msg) }
func (e inferenceError) Unwrap() error { return ErrModelInference }

func inferencef(step int, format string, args ...any) error {
	return inferenceError{step: step, msg: fmt.Sprintf(format, args...)}
}

type timeoutError struct {
	step    int
	elapsed time.Duration
}

func (e timeoutError) Error() string {
	return fmt.Sprintf("deadline exceeded at step %d after %s", e.step, e.elapsed)
}

func (e timeoutError) Unwrap() error { return ErrTimeout }
