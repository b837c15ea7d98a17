package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/conlleval/conll"
	"github.com/revelaction/conlleval/render"
	"github.com/revelaction/conlleval/stat"
)

func statCommand(ui UI) *cli.Command {
	return &cli.Command{
		Name:      "stat",
		Usage:     "print corpus statistics",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "text or json"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "no progress bar"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("stat: at least one file is required")
			}

			_, layout, err := loadLayout(c.String("config"))
			if err != nil {
				return err
			}

			corpus, faults, err := loadCorpus(conll.New(layout), c.Args().Slice(), ui, c.Bool("quiet"))
			if err != nil {
				return err
			}

			hdl := stat.NewHandler()
			hdl.Aggregate(corpus)
			for range faults {
				hdl.AddFault()
			}

			stats := hdl.Get()
			if c.String("format") == "json" {
				return json.NewEncoder(ui.Out).Encode(stats)
			}

			r := render.NewRenderer()
			r.W = ui.Out
			r.Stats(stats)
			return nil
		},
	}
}
