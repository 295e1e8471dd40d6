package decode

import (
	"context"
	"math/rand"
)

// topK samples stochastically from the k highest-scoring tokens after a
// softmax renormalization over the shortlist. The RNG is seeded at
// construction, so a fixed seed reproduces the sample sequence exactly.
type topK struct {
	k   int
	rng *rand.Rand

	idx   []int
	vals  []float32
	probs []float64
}

func newTopK(k int, seed int64) *topK {
	return &topK{k: k, rng: rand.New(rand.NewSource(seed))}
}

func (t *topK) pick(_ context.Context, st *step) (int, error) {
	t.idx, t.vals = shortlist(t.idx, t.vals, st.logits, t.k)
	t.probs = softmaxInPlace(t.probs, t.vals)

	r := t.rng.Float64()
	var cum float64
	for i, p := range t.probs {
		cum += p
		if r <= cum {
			return t.idx[i], nil
		}
	}
	return t.idx[len(t.idx)-1], nil
}

// shortlist returns the indices and values of the k largest logits,
// ordered from largest to smallest. Insertion into a fixed-size list is
// O(V*k), which is fine for the small k used in sampling.
func shortlist(idx []int, vals []float32, logits []float32, k int) ([]int, []float32) {
	if k > len(logits) {
		k = len(logits)
	}
	idx = idx[:0]
	vals = vals[:0]
	for i, v := range logits {
		pos := len(vals)
		for pos > 0 && vals[pos-1] < v {
			pos--
		}
		if pos >= k {
			continue
		}
		idx = append(idx, 0)
		vals = append(vals, 0)
		copy(idx[pos+1:], idx[pos:])
		copy(vals[pos+1:], vals[pos:])
		idx[pos] = i
		vals[pos] = v
		if len(vals) > k {
			idx = idx[:k]
			vals = vals[:k]
		}
	}
	return idx, vals
}
