package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/conlleval/conll"
	"github.com/revelaction/conlleval/fault"
)

func parseCommand(ui UI) *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "print the converted tuples of CoNLL files",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "text or json"},
			&cli.IntFlag{Name: "buffer", Value: 64, Usage: "sentences read ahead"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("parse: at least one file is required")
			}

			format := c.String("format")
			if format != "text" && format != "json" {
				return fmt.Errorf("parse: unknown format %q", format)
			}

			_, layout, err := loadLayout(c.String("config"))
			if err != nil {
				return err
			}

			return parseFiles(c.Context, conll.New(layout), c.Args().Slice(), format, c.Int("buffer"), ui)
		},
	}
}

func parseFiles(ctx context.Context, p *conll.Parser, paths []string, format string, buffer int, ui UI) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	enc := json.NewEncoder(ui.Out)
	for res := range p.Stream(ctx, buffer, paths...) {
		if res.Err != nil {
			if fault.IsMalformed(res.Err) {
				fprintErr(ui.Err, res.Err)
				continue
			}
			return res.Err
		}

		s := res.Sentence
		if format == "json" {
			if err := enc.Encode(s); err != nil {
				return err
			}
			continue
		}

		fmt.Fprintf(ui.Out, "# %s:%d\n", s.Source, s.Line)
		for _, t := range s.Tokens {
			fmt.Fprintln(ui.Out, strings.Join(t, "\t"))
		}
		fmt.Fprintln(ui.Out)
	}

	return ctx.Err()
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "YAML configuration `FILE`",
		EnvVars:  []string{"CONLLEVAL_CONFIG"},
		Required: true,
	}
}
