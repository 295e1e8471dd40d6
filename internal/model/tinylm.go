package model

import (
	"context"
	"fmt"
	"math"

	"github.com/avinair/stanza/internal/tensor"
)

// TinyLM is a minimal deterministic language model used to exercise the
// decoding engine without real transformer weights. It mixes the embedding
// vectors of the input sequence with an exponential position decay, so the
// prediction genuinely depends on the whole prefix, then projects the mixed
// state back to vocabulary logits.
//
// It is deliberately simplistic: it models no language, only the Model
// contract (deterministic logits plus a hidden state per position).
type TinyLM struct {
	vocab  int
	hidden int
	decay  float32

	emb  tensor.Mat // [vocab x hidden]
	proj tensor.Mat // [hidden x vocab]
	bias []float32  // [vocab]
}

// NewTinyLM constructs a model with the given vocabulary and hidden size.
// Weights are filled with reproducible pseudo-random values derived from
// the seed; two models built with identical arguments are identical.
func NewTinyLM(vocab, hidden int, seed int64) *TinyLM {
	m := &TinyLM{
		vocab:  vocab,
		hidden: hidden,
		decay:  0.7,
		emb:    tensor.NewMat(vocab, hidden),
		proj:   tensor.NewMat(hidden, vocab),
		bias:   make([]float32, vocab),
	}
	tensor.FillRand(&m.emb, seed+11)
	tensor.FillRand(&m.proj, seed+23)
	return m
}

func (m *TinyLM) VocabSize() int { return m.vocab }

// Infer computes next-token logits for the sequence. Token ids outside
// [0, vocab) are rejected rather than wrapped: the engine treats the
// vocabulary as a fixed bijective mapping.
func (m *TinyLM) Infer(ctx context.Context, seq []int) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	if len(seq) == 0 {
		return Prediction{}, fmt.Errorf("empty input sequence")
	}

	h := make([]float32, m.hidden)
	for _, id := range seq {
		if id < 0 || id >= m.vocab {
			return Prediction{}, fmt.Errorf("token id %d outside vocabulary of size %d", id, m.vocab)
		}
		row := m.emb.Row(id)
		for i := range h {
			h[i] = h[i]*m.decay + row[i]
		}
	}
	normalize(h)

	logits := make([]float32, m.vocab)
	m.proj.MatVecT(logits, h)
	for i := range logits {
		logits[i] += m.bias[i]
	}
	return Prediction{Logits: logits, Hidden: h}, nil
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
