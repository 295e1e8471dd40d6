package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/avinair/stanza/internal/decode"
	"github.com/avinair/stanza/internal/logger"
)

func generateCmd() *cli.Command {
	var (
		prompt        string
		maxLength     int64
		sampler       string
		topK          int64
		beamWidth     int64
		alpha         float64
		penaltyWindow int64
		seed          int64
		timeout       time.Duration
		noStream      bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "prompt",
			Aliases:     []string{"p"},
			Usage:       "prompt text to continue",
			Destination: &prompt,
		},
		&cli.Int64Flag{
			Name:        "max-length",
			Aliases:     []string{"n", "max_length"},
			Usage:       "maximum sequence length, prompt included",
			Value:       200,
			Destination: &maxLength,
		},
		&cli.StringFlag{
			Name:        "sampler",
			Aliases:     []string{"s"},
			Usage:       "decoding strategy (greedy, top-k, beam, contrastive)",
			Value:       "top-k",
			Destination: &sampler,
		},
		&cli.Int64Flag{
			Name:        "top-k",
			Aliases:     []string{"top_k", "topk", "k"},
			Usage:       "shortlist size for top-k and contrastive sampling",
			Value:       5,
			Destination: &topK,
		},
		&cli.Int64Flag{
			Name:        "beam-width",
			Aliases:     []string{"beam_width"},
			Usage:       "parallel candidates kept by beam search",
			Value:       4,
			Destination: &beamWidth,
		},
		&cli.Float64Flag{
			Name:        "alpha",
			Usage:       "contrastive penalty weight in [0,1]",
			Value:       0.6,
			Destination: &alpha,
		},
		&cli.Int64Flag{
			Name:        "penalty-window",
			Aliases:     []string{"penalty_window"},
			Usage:       "contrastive history window (0 = full history)",
			Destination: &penaltyWindow,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "sampling RNG seed (default -1 = random)",
			Value:       -1,
			Destination: &seed,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "abort generation after this long (0 = no deadline)",
			Destination: &timeout,
		},
		&cli.BoolFlag{
			Name:        "no-stream",
			Usage:       "print the result once instead of token by token",
			Destination: &noStream,
		},
	}
	flags = append(flags, commonVocabFlags()...)
	flags = append(flags, commonModelFlags()...)
	flags = append(flags, loggingFlags()...)

	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a continuation of a prompt",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			log := logger.Build(logFormat, logLevel)
			applyGenerateConfig(c, loadConfig(),
				&sampler, &maxLength, &topK, &beamWidth, &alpha, &penaltyWindow, &seed)

			if prompt == "" {
				return cli.Exit("error: --prompt is required", 1)
			}
			if seed == -1 {
				seed = time.Now().UnixNano()
			}

			kind, err := decode.ParseKind(sampler)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			gen, err := buildGenerator(log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			cfg := decode.Config{
				MaxLength:     int(maxLength),
				Strategy:      kind,
				TopK:          int(topK),
				BeamWidth:     int(beamWidth),
				Alpha:         alpha,
				PenaltyWindow: int(penaltyWindow),
				Seed:          seed,
				Timeout:       timeout,
			}

			var stream decode.StreamFunc
			if !noStream && kind != decode.KindBeam {
				fmt.Print(prompt)
				stream = func(tok string) { fmt.Print(tok) }
			}

			res, err := gen.Generate(ctx, prompt, cfg, stream)
			if err != nil {
				if stream != nil {
					fmt.Println()
				}
				return cli.Exit(fmt.Sprintf("error: generation: %v", err), 1)
			}

			if stream == nil {
				fmt.Println(res.Text)
			} else {
				fmt.Println()
			}
			fmt.Fprintf(os.Stderr, "Stats: %.2f TPS (%d tokens in %s, finish=%s)\n",
				res.Stats.TPS, res.Stats.TokensGenerated, res.Stats.Duration, res.FinishReason)
			return nil
		},
	}
}
