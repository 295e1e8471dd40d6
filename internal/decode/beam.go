package decode

import (
	"context"
	"math"
	"slices"
	"sort"
	"time"
)

// candidate is one beam hypothesis: the full token sequence and the
// cumulative log-probability of its generated suffix. A candidate that
// emits a stop token is done and carries forward unextended, still
// competing in the per-step merge.
type candidate struct {
	tokens []int
	score  float64
	done   bool
}

// runBeam maintains cfg.BeamWidth parallel hypotheses. Each step extends
// every live beam with its BeamWidth best continuations, merges the up to
// width² candidates (plus finished beams) and keeps the top width by
// cumulative log-probability, ties resolved toward the earlier beam. The
// winner is the best finished beam, or the best live one if nothing
// finished by max length.
func (g *Generator) runBeam(ctx context.Context, cfg Config, promptIDs, stops []int, deadline time.Time) (*Result, error) {
	vocabSize := g.Model.VocabSize()
	width := cfg.BeamWidth

	beams := []candidate{{tokens: slices.Clone(promptIDs)}}
	var idx []int
	var vals []float32

	for i := 0; ; i++ {
		live := 0
		for _, b := range beams {
			if !b.done && len(b.tokens) < cfg.MaxLength {
				live++
			}
		}
		if live == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return nil, timeoutError{step: i, elapsed: cfg.Timeout}
		}

		// Candidates are appended in beam order, extensions best-first, so
		// a stable sort keeps the earliest beam ahead on score ties.
		next := make([]candidate, 0, len(beams)*width)
		for _, b := range beams {
			if b.done || len(b.tokens) >= cfg.MaxLength {
				next = append(next, b)
				continue
			}
			pred, err := g.Model.Infer(ctx, b.tokens)
			if err != nil {
				return nil, inferencef(i, "%v", err)
			}
			if len(pred.Logits) != vocabSize {
				return nil, inferencef(i, "logits length %d, want vocabulary size %d", len(pred.Logits), vocabSize)
			}
			lse := logSumExp(pred.Logits)
			idx, vals = shortlist(idx, vals, pred.Logits, width)
			for j, tok := range idx {
				ext := candidate{
					score: b.score + float64(vals[j]) - lse,
				}
				if slices.Contains(stops, tok) {
					ext.tokens = b.tokens
					ext.done = true
				} else {
					ext.tokens = append(slices.Clone(b.tokens), tok)
				}
				next = append(next, ext)
			}
		}

		sort.SliceStable(next, func(a, b int) bool { return next[a].score > next[b].score })
		if len(next) > width {
			next = next[:width]
		}
		beams = next
	}

	best := bestBeam(beams)
	text, err := g.Vocab.Decode(best.tokens)
	if err != nil {
		return nil, inferencef(len(best.tokens), "detokenize: %v", err)
	}
	finish := FinishLength
	if best.done {
		finish = FinishStop
	}
	return &Result{
		Text:         text,
		Tokens:       best.tokens,
		FinishReason: finish,
		Stats:        Stats{TokensGenerated: len(best.tokens) - len(promptIDs)},
	}, nil
}

// bestBeam prefers the highest-scoring finished beam, falling back to the
// highest-scoring hypothesis overall.
func bestBeam(beams []candidate) candidate {
	best := -1
	for i, b := range beams {
		if !b.done {
			continue
		}
		if best < 0 || b.score > beams[best].score {
			best = i
		}
	}
	if best >= 0 {
		return beams[best]
	}
	for i, b := range beams {
		if best < 0 || b.score > beams[best].score {
			best = i
		}
	}
	return beams[best]
}

func logSumExp(x []float32) float64 {
	maxv := x[0]
	for _, v := range x[1:] {
		if v > maxv {
			maxv = v
		}
	}
	var sum float64
	for _, v := range x {
		sum += math.Exp(float64(v - maxv))
	}
	return float64(maxv) + math.Log(sum)
}
