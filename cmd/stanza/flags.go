package main

import "github.com/urfave/cli/v3"

var (
	vocabJSONPath string
	mergesPath    string
	modelSeed     int64
	hiddenSize    int64
	logLevel      string
	logFormat     string
)

func commonVocabFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "vocab-json",
			Usage:       "path to a GPT-2 style vocab.json (omit for the built-in byte vocabulary)",
			Destination: &vocabJSONPath,
		},
		&cli.StringFlag{
			Name:        "merges",
			Usage:       "path to the matching merges.txt",
			Destination: &mergesPath,
		},
	}
}

func commonModelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "model-seed",
			Usage:       "weight seed for the built-in demo model",
			Value:       42,
			Destination: &modelSeed,
		},
		&cli.Int64Flag{
			Name:        "hidden",
			Usage:       "hidden size of the built-in demo model",
			Value:       64,
			Destination: &hiddenSize,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (text, json)",
			Value:       "text",
			Destination: &logFormat,
		},
	}
}
