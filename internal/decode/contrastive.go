package decode

import (
	"context"
	"math"

	"github.com/avinair/stanza/internal/model"
)

// contrastive implements contrastive search: candidates come from the
// top-k shortlist by model confidence, and each is scored as
//
//	(1-alpha)*confidence - alpha*penalty
//
// where the penalty is the maximum cosine similarity between the
// candidate's hidden state and the hidden states of previously generated
// tokens. The penalty discourages degenerate repetition while alpha keeps
// the choice anchored to model confidence.
//
// Scoring a candidate requires its hidden state, so each candidate costs
// one extra model call per step.
type contrastive struct {
	model  model.Model
	k      int
	alpha  float64
	window int

	idx   []int
	vals  []float32
	probs []float64
	probe []int
}

func (c *contrastive) pick(ctx context.Context, st *step) (int, error) {
	if len(st.hidden) == 0 {
		return 0, inferencef(st.index, "model exposes no hidden state, required for contrastive search")
	}
	c.idx, c.vals = shortlist(c.idx, c.vals, st.logits, c.k)
	c.probs = softmaxInPlace(c.probs, c.vals)

	history := st.history
	if c.window > 0 && len(history) > c.window {
		history = history[len(history)-c.window:]
	}
	if len(history) == 0 {
		// Nothing generated yet, so no degeneration to penalize.
		return c.idx[0], nil
	}

	c.probe = append(c.probe[:0], st.seq...)
	c.probe = append(c.probe, 0)

	best := -1
	bestScore := 0.0
	for i, cand := range c.idx {
		c.probe[len(c.probe)-1] = cand
		pred, err := c.model.Infer(ctx, c.probe)
		if err != nil {
			return 0, inferencef(st.index, "candidate %d probe: %v", cand, err)
		}
		if len(pred.Hidden) == 0 {
			return 0, inferencef(st.index, "model exposes no hidden state, required for contrastive search")
		}
		penalty := 0.0
		for _, prev := range history {
			if sim := cosine(pred.Hidden, prev); sim > penalty {
				penalty = sim
			}
		}
		score := (1-c.alpha)*c.probs[i] - c.alpha*penalty
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	return c.idx[best], nil
}

// cosine returns the cosine similarity of a and b, or 0 when either has
// zero norm or the lengths differ.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
