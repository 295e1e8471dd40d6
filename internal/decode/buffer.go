package decode

import "fmt"

// Buffer holds the prompt tokens plus the generated continuation for one
// decode. Capacity is fixed at construction: Append rejects writes once
// the sequence reaches max length, which is how the engine enforces the
// never-exceed-max-length invariant.
type Buffer struct {
	tokens []int
	prompt int
	max    int
}

// NewBuffer seeds a buffer with the prompt. maxLength counts the whole
// sequence, prompt included, and must leave room to generate at least one
// token.
func NewBuffer(prompt []int, maxLength int) (*Buffer, error) {
	if maxLength <= 0 {
		return nil, invalidConfigf("max_length", "must be > 0, got %d", maxLength)
	}
	if len(prompt) >= maxLength {
		return nil, invalidConfigf("max_length", "must exceed prompt length %d, got %d", len(prompt), maxLength)
	}
	tokens := make([]int, len(prompt), maxLength)
	copy(tokens, prompt)
	return &Buffer{tokens: tokens, prompt: len(prompt), max: maxLength}, nil
}

// Append extends the sequence by one token. It fails once the buffer is
// full; callers are expected to consult Remaining instead of relying on
// the error.
func (b *Buffer) Append(id int) error {
	if len(b.tokens) >= b.max {
		return fmt.Errorf("sequence already at max length %d", b.max)
	}
	b.tokens = append(b.tokens, id)
	return nil
}

func (b *Buffer) Len() int       { return len(b.tokens) }
func (b *Buffer) Remaining() int { return b.max - len(b.tokens) }

// Tokens returns the full sequence. The slice is a view; callers must not
// retain it across Appends.
func (b *Buffer) Tokens() []int { return b.tokens }

// Generated returns only the continuation, without the prompt.
func (b *Buffer) Generated() []int { return b.tokens[b.prompt:] }
