package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
)

func tokenizeCmd() *cli.Command {
	var decodeIDs bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "decode",
			Aliases:     []string{"d"},
			Usage:       "treat the argument as space-separated token ids and decode",
			Destination: &decodeIDs,
		},
	}
	flags = append(flags, commonVocabFlags()...)

	return &cli.Command{
		Name:      "tokenize",
		Usage:     "Encode text to token ids, or decode ids back to text",
		ArgsUsage: "<text | ids>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			applyCommonConfig(c, loadConfig())

			args := c.Args().Slice()
			if len(args) == 0 {
				return cli.Exit("error: text argument required", 1)
			}
			input := strings.Join(args, " ")

			tok, err := buildTokenizer()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			if decodeIDs {
				ids := make([]int, 0, len(args))
				for _, f := range strings.Fields(input) {
					id, err := strconv.Atoi(f)
					if err != nil {
						return cli.Exit(fmt.Sprintf("error: bad token id %q", f), 1)
					}
					ids = append(ids, id)
				}
				text, err := tok.Decode(ids)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: decode: %v", err), 1)
				}
				fmt.Println(text)
				return nil
			}

			ids, err := tok.Encode(input)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: encode: %v", err), 1)
			}
			out := make([]string, len(ids))
			for i, id := range ids {
				out[i] = strconv.Itoa(id)
			}
			fmt.Printf("%d tokens: %s\n", len(ids), strings.Join(out, " "))
			return nil
		},
	}
}
