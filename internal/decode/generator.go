package decode

import (
	"context"
	"slices"
	"time"

	"github.com/avinair/stanza/internal/logger"
	"github.com/avinair/stanza/internal/model"
	"github.com/avinair/stanza/internal/vocab"
)

// StreamFunc receives each generated token's text as it is accepted.
// Streaming is best-effort UI plumbing: tokens streamed before a failure
// are not part of any result, since Generate is all-or-nothing. Beam
// search never streams because no token is final until the winning beam
// is chosen.
type StreamFunc func(token string)

// Stats summarises one generation.
type Stats struct {
	PromptTokens    int
	TokensGenerated int
	Duration        time.Duration
	TPS             float64
}

type FinishReason string

const (
	// FinishStop means a stop token ended generation early.
	FinishStop FinishReason = "stop"
	// FinishLength means the sequence reached max length.
	FinishLength FinishReason = "length"
)

// Result is a completed generation. Text always begins with the prompt
// verbatim; Tokens is the full sequence, stop token excluded.
type Result struct {
	Text         string
	Tokens       []int
	FinishReason FinishReason
	Stats        Stats
}

// Generator drives the decoding loop: seed the sequence with the
// tokenized prompt, then repeatedly infer, select and append until a stop
// token, the max length, or (beam search) every beam has terminated. Any
// failure aborts the whole generation; no partial output is returned.
type Generator struct {
	Model model.Model
	Vocab vocab.Tokenizer
	Log   logger.Logger
}

func (g *Generator) log() logger.Logger {
	if g.Log != nil {
		return g.Log
	}
	return logger.Discard()
}

// Generate decodes a continuation of prompt according to cfg. The context
// is checked between steps, so cancellation aborts promptly without a
// partial result.
func (g *Generator) Generate(ctx context.Context, prompt string, cfg Config, stream StreamFunc) (*Result, error) {
	start := time.Now()
	cfg = cfg.withDefaults()

	promptIDs, err := g.Vocab.Encode(prompt)
	if err != nil {
		return nil, invalidConfigf("prompt", "encode: %v", err)
	}
	cfg, err = cfg.validate(len(promptIDs), g.Model.VocabSize())
	if err != nil {
		return nil, err
	}
	stops := cfg.StopTokens
	if stops == nil {
		if end := g.Vocab.EndID(); end >= 0 {
			stops = []int{end}
		}
	}
	var deadline time.Time
	if cfg.Timeout > 0 {
		deadline = start.Add(cfg.Timeout)
	}

	g.log().Debug("generation start",
		"strategy", string(cfg.Strategy),
		"prompt_tokens", len(promptIDs),
		"max_length", cfg.MaxLength)

	var res *Result
	if cfg.Strategy == KindBeam {
		res, err = g.runBeam(ctx, cfg, promptIDs, stops, deadline)
	} else {
		res, err = g.runSteps(ctx, cfg, promptIDs, stops, deadline, stream)
	}
	if err != nil {
		return nil, err
	}

	res.Stats.PromptTokens = len(promptIDs)
	res.Stats.Duration = time.Since(start)
	if secs := res.Stats.Duration.Seconds(); secs > 0 {
		res.Stats.TPS = float64(res.Stats.TokensGenerated) / secs
	}
	g.log().Debug("generation done",
		"tokens", res.Stats.TokensGenerated,
		"finish", string(res.FinishReason),
		"tps", res.Stats.TPS)
	return res, nil
}

// runSteps is the single-sequence loop shared by greedy, top-k and
// contrastive decoding.
func (g *Generator) runSteps(ctx context.Context, cfg Config, promptIDs, stops []int, deadline time.Time, stream StreamFunc) (*Result, error) {
	strat, err := newStrategy(cfg, g.Model)
	if err != nil {
		return nil, err
	}
	buf, err := NewBuffer(promptIDs, cfg.MaxLength)
	if err != nil {
		return nil, err
	}

	vocabSize := g.Model.VocabSize()
	finish := FinishLength
	var history [][]float32
	var stats Stats

	for i := 0; buf.Remaining() > 0; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return nil, timeoutError{step: i, elapsed: cfg.Timeout}
		}

		pred, err := g.Model.Infer(ctx, buf.Tokens())
		if err != nil {
			return nil, inferencef(i, "%v", err)
		}
		if len(pred.Logits) != vocabSize {
			return nil, inferencef(i, "logits length %d, want vocabulary size %d", len(pred.Logits), vocabSize)
		}
		// The hidden state of the previous step's accepted token arrives
		// with this step's prediction; the first prediction carries the
		// prompt's final position instead, which the penalty ignores.
		if i > 0 && pred.Hidden != nil {
			history = append(history, pred.Hidden)
		}

		next, err := strat.pick(ctx, &step{
			index:   i,
			logits:  pred.Logits,
			hidden:  pred.Hidden,
			seq:     buf.Tokens(),
			history: history,
		})
		if err != nil {
			return nil, err
		}
		if next < 0 || next >= vocabSize {
			return nil, inferencef(i, "strategy selected out-of-range token %d", next)
		}
		if slices.Contains(stops, next) {
			finish = FinishStop
			break
		}
		if err := buf.Append(next); err != nil {
			return nil, inferencef(i, "%v", err)
		}
		stats.TokensGenerated++
		if stream != nil {
			s, _ := g.Vocab.Decode([]int{next})
			stream(s)
		}
	}

	text, err := g.Vocab.Decode(buf.Tokens())
	if err != nil {
		return nil, inferencef(buf.Len(), "detokenize: %v", err)
	}
	return &Result{
		Text:         text,
		Tokens:       buf.Tokens(),
		FinishReason: finish,
		Stats:        stats,
	}, nil
}
