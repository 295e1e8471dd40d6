package decode

import "context"

// greedy always picks the highest-scoring token. Deterministic by
// construction; it tends to loop on repetitive continuations because it
// never explores lower-probability branches. That is the documented
// behavior of the strategy, not a defect.
type greedy struct{}

func (greedy) pick(_ context.Context, st *step) (int, error) {
	return argmax(st.logits), nil
}

// argmax returns the index of the maximum value, preferring the earliest
// index on ties so repeated runs stay bit-identical.
func argmax(x []float32) int {
	best := 0
	for i := 1; i < len(x); i++ {
		if x[i] > x[best] {
			best = i
		}
	}
	return best
}
