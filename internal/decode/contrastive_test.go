package decode

import (
	"context"
	"errors"
	"testing"

	"github.com/avinair/stanza/internal/model"
)

// repeatStub gives every token equal probability but a hidden state
// determined by the last token, so the degeneration penalty is the only
// thing separating candidates.
type repeatStub struct {
	vocab int
	axes  [][]float32
}

func (m *repeatStub) VocabSize() int { return m.vocab }

func (m *repeatStub) Infer(_ context.Context, seq []int) (model.Prediction, error) {
	last := seq[len(seq)-1]
	return model.Prediction{
		Logits: make([]float32, m.vocab),
		Hidden: m.axes[last],
	}, nil
}

func repeatAxes(vocab int) [][]float32 {
	axes := make([][]float32, vocab)
	for i := range axes {
		v := make([]float32, vocab)
		v[i] = 1
		axes[i] = v
	}
	return axes
}

func TestContrastiveAvoidsRepetition(t *testing.T) {
	m := &repeatStub{vocab: 4, axes: repeatAxes(4)}
	g := &Generator{Model: m, Vocab: fakeVocab{size: 4, end: -1}}

	prompt := "a" // token 1
	res, err := g.Generate(context.Background(), prompt, Config{
		MaxLength: 6,
		Strategy:  KindContrastive,
		TopK:      4,
		Alpha:     0.6,
	}, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// With flat confidence the penalty dominates: no generated token may
	// repeat its predecessor, since repeating scores cosine similarity 1.
	gen := res.Tokens[1:]
	for i := 1; i < len(gen); i++ {
		if gen[i] == gen[i-1] {
			t.Fatalf("immediate repetition at %d: %v", i, gen)
		}
	}
}

func TestContrastiveAlphaZeroFollowsConfidence(t *testing.T) {
	// alpha=0 disables the penalty entirely, so the strategy degenerates
	// to most-confident-candidate even when it repeats.
	m := &stubModel{vocab: 4, fn: func(seq []int) ([]float32, []float32) {
		return peakAt(4, 2), []float32{1, 0}
	}}
	g := &Generator{Model: m, Vocab: fakeVocab{size: 4, end: -1}}

	res, err := g.Generate(context.Background(), "a", Config{
		MaxLength: 6,
		Strategy:  KindContrastive,
		TopK:      4,
		Alpha:     0.001, // ~0; exact 0 means "use default"
	}, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, id := range res.Tokens[1:] {
		if id != 2 {
			t.Fatalf("expected confident token 2 everywhere, got %v", res.Tokens)
		}
	}
}

func TestContrastivePenaltyWindow(t *testing.T) {
	m := &repeatStub{vocab: 3, axes: repeatAxes(3)}
	g := &Generator{Model: m, Vocab: fakeVocab{size: 3, end: -1}}

	// Window 1 only forbids repeating the immediately preceding token, so
	// the walk alternates between the two cheapest candidates.
	res, err := g.Generate(context.Background(), "a", Config{
		MaxLength:     8,
		Strategy:      KindContrastive,
		TopK:          3,
		Alpha:         0.6,
		PenaltyWindow: 1,
	}, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	gen := res.Tokens[1:]
	for i := 1; i < len(gen); i++ {
		if gen[i] == gen[i-1] {
			t.Fatalf("windowed penalty allowed repetition: %v", gen)
		}
	}
}

func TestContrastiveRequiresHiddenState(t *testing.T) {
	m := &stubModel{vocab: 4, fn: func(seq []int) ([]float32, []float32) {
		return peakAt(4, 1), nil // no hidden state
	}}
	g := &Generator{Model: m, Vocab: fakeVocab{size: 4, end: -1}}

	_, err := g.Generate(context.Background(), "a", Config{
		MaxLength: 6,
		Strategy:  KindContrastive,
	}, nil)
	if !errors.Is(err, ErrModelInference) {
		t.Fatalf("expected ErrModelInference, got %v", err)
	}
}

func TestCosine(t *testing.T) {
	if got := cosine([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Fatalf("identical vectors: %g", got)
	}
	if got := cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Fatalf("orthogonal vectors: %g", got)
	}
	if got := cosine([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Fatalf("zero vector: %g", got)
	}
	if got := cosine([]float32{1}, []float32{1, 0}); got != 0 {
		t.Fatalf("length mismatch: %g", got)
	}
}
