package decode

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/avinair/stanza/internal/model"
)

// Kind selects a decoding strategy.
type Kind string

const (
	KindGreedy      Kind = "greedy"
	KindTopK        Kind = "top-k"
	KindBeam        Kind = "beam"
	KindContrastive Kind = "contrastive"
)

// ParseKind resolves user-facing sampler names, accepting the common
// spelling variants. An empty string resolves to the top-k default.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "top-k", "top_k", "topk":
		return KindTopK, nil
	case "greedy":
		return KindGreedy, nil
	case "beam":
		return KindBeam, nil
	case "contrastive":
		return KindContrastive, nil
	}
	return "", invalidConfigf("sampler", "unknown strategy %q", s)
}

// Config carries every generation parameter. The zero value is not usable
// directly: MaxLength is required, everything else has a default applied
// by Generate.
type Config struct {
	// MaxLength bounds the whole sequence, prompt included. Required, and
	// must exceed the prompt length.
	MaxLength int

	// Strategy defaults to top-k when empty.
	Strategy Kind

	// TopK is the shortlist size for top-k sampling and the candidate pool
	// for contrastive search. Defaults to 5; values above the vocabulary
	// size clamp to it.
	TopK int

	// BeamWidth is the number of parallel candidates kept by beam search.
	// Defaults to 4.
	BeamWidth int

	// Alpha balances confidence against the degeneration penalty in
	// contrastive search. Must lie in [0,1]; defaults to 0.6.
	Alpha float64

	// PenaltyWindow bounds how many generated tokens the contrastive
	// penalty looks back over. 0 means the full generated history.
	PenaltyWindow int

	// Seed drives the top-k RNG. Fixed seeds give reproducible samples.
	Seed int64

	// StopTokens end generation immediately when emitted. When nil, the
	// vocabulary's end-of-text token (if any) is used.
	StopTokens []int

	// Timeout bounds the whole Generate call, checked once per step.
	// Zero means no deadline.
	Timeout time.Duration
}

// withDefaults fills unset parameters. Alpha is only defaulted when zero;
// out-of-range values are left for validate to reject.
func (c Config) withDefaults() Config {
	if c.Strategy == "" {
		c.Strategy = KindTopK
	}
	if c.TopK == 0 {
		c.TopK = 5
	}
	if c.BeamWidth == 0 {
		c.BeamWidth = 4
	}
	if c.Alpha == 0 {
		c.Alpha = 0.6
	}
	return c
}

// validate checks every parameter against its domain and clamps TopK to
// the vocabulary size.
func (c Config) validate(promptLen, vocabSize int) (Config, error) {
	if c.MaxLength <= 0 {
		return c, invalidConfigf("max_length", "must be > 0, got %d", c.MaxLength)
	}
	if promptLen == 0 {
		return c, invalidConfigf("prompt", "must not be empty")
	}
	if c.MaxLength <= promptLen {
		return c, invalidConfigf("max_length", "must exceed prompt length %d, got %d", promptLen, c.MaxLength)
	}
	switch c.Strategy {
	case KindGreedy, KindTopK, KindBeam, KindContrastive:
	default:
		return c, invalidConfigf("sampler", "unknown strategy %q", c.Strategy)
	}
	if c.TopK < 0 {
		return c, invalidConfigf("top_k", "must be >= 1, got %d", c.TopK)
	}
	if c.TopK > vocabSize {
		c.TopK = vocabSize
	}
	if c.BeamWidth < 0 {
		return c, invalidConfigf("beam_width", "must be >= 1, got %d", c.BeamWidth)
	}
	if c.BeamWidth > vocabSize {
		c.BeamWidth = vocabSize
	}
	if c.Alpha < 0 || c.Alpha > 1 {
		return c, invalidConfigf("alpha", "must be in [0,1], got %g", c.Alpha)
	}
	if c.PenaltyWindow < 0 {
		return c, invalidConfigf("penalty_window", "must be >= 0, got %d", c.PenaltyWindow)
	}
	if c.Timeout < 0 {
		return c, invalidConfigf("timeout", "must be >= 0, got %s", c.Timeout)
	}
	return c, nil
}

// step is the per-iteration view handed to a strategy: the fresh logit
// vector, the hidden state that produced it, the sequence so far and the
// hidden states of previously generated tokens (oldest first).
type step struct {
	index   int
	logits  []float32
	hidden  []float32
	seq     []int
	history [][]float32
}

// strategy picks the next token for one step. Beam search does not fit
// this shape (it replaces whole candidate sets) and runs its own loop.
type strategy interface {
	pick(ctx context.Context, st *step) (int, error)
}

func newStrategy(cfg Config, m model.Model) (strategy, error) {
	switch cfg.Strategy {
	case KindGreedy:
		return greedy{}, nil
	case KindTopK:
		return newTopK(cfg.TopK, cfg.Seed), nil
	case KindContrastive:
		return &contrastive{model: m, k: cfg.TopK, alpha: cfg.Alpha, window: cfg.PenaltyWindow}, nil
	}
	return nil, fmt.Errorf("no step strategy for %q", cfg.Strategy)
}

// softmaxInPlace turns scores into probabilities with the usual max
// subtraction for numerical stability.
func softmaxInPlace(probs []float64, scores []float32) []float64 {
	probs = probs[:0]
	if len(scores) == 0 {
		return probs
	}
	maxv := scores[0]
	for _, v := range scores[1:] {
		if v > maxv {
			maxv = v
		}
	}
	var sum float64
	for _, v := range scores {
		e := math.Exp(float64(v - maxv))
		probs = append(probs, e)
		sum += e
	}
	if sum > 0 {
		inv := 1.0 / sum
		for i := range probs {
			probs[i] *= inv
		}
	}
	return probs
}
