package model

import "context"

// Prediction is the output of a single forward pass: unnormalized scores
// over the vocabulary for the next token, plus the hidden representation
// of the final input position. Hidden may be nil for models that do not
// expose internal activations; contrastive decoding requires it.
type Prediction struct {
	Logits []float32
	Hidden []float32
}

// Model exposes a frozen language model as a next-token predictor over a
// token id sequence. Implementations must be deterministic: identical
// weights and identical input sequences produce identical predictions.
type Model interface {
	Infer(ctx context.Context, seq []int) (Prediction, error)
	VocabSize() int
}
