package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/revelaction/conlleval/config"
	"github.com/revelaction/conlleval/transition"
	"github.com/revelaction/conlleval/vocab"
)

func transitionsCommand(ui UI) *cli.Command {
	return &cli.Command{
		Name:  "transitions",
		Usage: "load and check the transition statistics of the configured tasks",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "task", Aliases: []string{"t"}, Usage: "only this task"},
			&cli.BoolFlag{Name: "show", Usage: "print the matrix"},
		},
		Action: func(c *cli.Context) error {
			f, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			if f.VocabDir == "" {
				return fmt.Errorf("transitions: no vocab_dir configured")
			}

			vocabs, err := vocab.ReadDir(f.Resolve(f.VocabDir))
			if err != nil {
				return err
			}

			matrices := map[string]*transition.Matrix{}
			if name := c.String("task"); name != "" {
				task, err := f.Task(name)
				if err != nil {
					return err
				}

				m, err := transition.ForTask(f, task, vocabs)
				if err != nil {
					return err
				}
				if m != nil {
					matrices[name] = m
				}
			} else if matrices, err = transition.ForTasks(f, vocabs); err != nil {
				return err
			}

			for _, name := range f.TaskNames() {
				m, ok := matrices[name]
				if !ok {
					continue
				}

				task := f.Tasks[name]
				fmt.Fprintf(ui.Out, "%s: %s, %d labels (%s), %d lines skipped\n",
					name, task.TransitionStats, m.Len(), transition.VocabName(task), m.Skipped)
				if c.Bool("show") {
					fmt.Fprintf(ui.Out, "%v\n", mat.Formatted(m.Matrix(), mat.Squeeze()))
				}
			}

			if len(matrices) == 0 {
				fmt.Fprintln(ui.Out, "no transition statistics configured")
			}

			return nil
		},
	}
}
