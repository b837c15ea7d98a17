package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/revelaction/conlleval/inspect"
	"github.com/revelaction/conlleval/render"
)

func storeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "store",
		Aliases:  []string{"s"},
		Usage:    "run store: directory or SQLite file",
		EnvVars:  []string{"CONLLEVAL_STORE"},
		Required: true,
	}
}

func runsCommand(ui UI) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "list and show stored evaluation runs",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list runs, newest first",
				Flags: []cli.Flag{
					storeFlag(),
					&cli.StringFlag{Name: "task", Aliases: []string{"t"}, Usage: "only tasks containing this string"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "text or json"},
				},
				Action: func(c *cli.Context) error {
					pool := &Pool{}
					defer pool.Close()

					repo, err := NewRunRepository(pool, c.String("store"))
					if err != nil {
						return err
					}

					runs, err := repo.List(c.String("task"))
					if err != nil {
						return err
					}

					if c.String("format") == "json" {
						return json.NewEncoder(ui.Out).Encode(runs)
					}

					r := render.NewRenderer()
					r.W = ui.Out
					r.Runs(runs)
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "print a stored run",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					storeFlag(),
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "text or json"},
					&cli.StringFlag{Name: "results", Aliases: []string{"r"}, Usage: fmt.Sprintf("print per sentence results: %v", render.SupportedFormats())},
					&cli.BoolFlag{Name: "color", Usage: "color the text report"},
					&cli.BoolFlag{Name: "inspect", Aliases: []string{"i"}, Usage: "open the inspect prompt"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errors.New("runs show: one run id is required")
					}

					id, err := uuid.Parse(c.Args().First())
					if err != nil {
						return fmt.Errorf("runs show: %w", err)
					}

					pool := &Pool{}
					defer pool.Close()

					repo, err := NewRunRepository(pool, c.String("store"))
					if err != nil {
						return err
					}

					run, err := repo.Read(id)
					if err != nil {
						return err
					}

					if c.String("format") == "json" {
						return json.NewEncoder(ui.Out).Encode(run)
					}

					renderer := render.NewRenderer()
					renderer.W = ui.Out
					renderer.HasColor = c.Bool("color")
					renderer.HasPrefix = true

					fmt.Fprintf(ui.Out, "%s  %s  %s\n", run.ID, run.Created.Format("2006-01-02 15:04:05"), run.Name)
					fmt.Fprintf(ui.Out, "task %s  gold %v  pred %v  faults %d  unpaired %d\n",
						run.Task, run.Gold, run.Pred, run.Faults, run.Unpaired)
					renderer.Summary(run.Summary)

					if c.IsSet("results") {
						if !supportedFormat(c.String("results")) {
							return fmt.Errorf("runs show: unknown results format %q", c.String("results"))
						}
						renderer.Format = c.String("results")
						renderer.Results(run.Results)
					}

					if c.Bool("inspect") {
						return inspect.NewHandler(run.Summary, run.Results, renderer, ui.Out).Run()
					}

					return nil
				},
			},
		},
	}
}
