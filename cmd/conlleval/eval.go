package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/conlleval/column"
	"github.com/revelaction/conlleval/config"
	"github.com/revelaction/conlleval/conll"
	"github.com/revelaction/conlleval/eval"
	"github.com/revelaction/conlleval/evalfile"
	"github.com/revelaction/conlleval/inspect"
	"github.com/revelaction/conlleval/render"
	"github.com/revelaction/conlleval/storage"
	"github.com/revelaction/conlleval/transition"
	"github.com/revelaction/conlleval/vocab"
)

type EvalOptions struct {
	Task      string
	Gold      []string
	Pred      []string
	Workers   int
	BatchSize int
	PredOut   string
	GoldOut   string
	Store     string
	Name      string
	Format    string
	Results   bool
	Color     bool
	Inspect   bool
	Quiet     bool
}

func evalCommand(ui UI) *cli.Command {
	return &cli.Command{
		Name:  "eval",
		Usage: "score predicted against gold files for a task",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "task", Aliases: []string{"t"}, Usage: "configured task, optional with one task"},
			&cli.StringSliceFlag{Name: "gold", Aliases: []string{"g"}, Usage: "gold `FILE`, repeatable", Required: true},
			&cli.StringSliceFlag{Name: "pred", Aliases: []string{"p"}, Usage: "predicted `FILE`, repeatable", Required: true},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "concurrent scoring, 0 for one per CPU"},
			&cli.IntFlag{Name: "batch", Value: eval.DefaultBatchSize, Usage: "sentences added together"},
			&cli.StringFlag{Name: "pred-out", Usage: "predicted eval `FILE`, appended"},
			&cli.StringFlag{Name: "gold-out", Usage: "gold eval `FILE`, appended"},
			&cli.StringFlag{Name: "store", Aliases: []string{"s"}, Usage: "run store: directory or SQLite file", EnvVars: []string{"CONLLEVAL_STORE"}},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "name of the stored run"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "text or json"},
			&cli.StringFlag{Name: "results", Aliases: []string{"r"}, Usage: fmt.Sprintf("print per sentence results: %v", render.SupportedFormats())},
			&cli.BoolFlag{Name: "color", Usage: "color the text report"},
			&cli.BoolFlag{Name: "inspect", Aliases: []string{"i"}, Usage: "open the inspect prompt after scoring"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "no progress bars"},
		},
		Action: func(c *cli.Context) error {
			opts := EvalOptions{
				Task:      c.String("task"),
				Gold:      c.StringSlice("gold"),
				Pred:      c.StringSlice("pred"),
				Workers:   c.Int("workers"),
				BatchSize: c.Int("batch"),
				PredOut:   c.String("pred-out"),
				GoldOut:   c.String("gold-out"),
				Store:     c.String("store"),
				Name:      c.String("name"),
				Format:    c.String("format"),
				Results:   c.IsSet("results"),
				Color:     c.Bool("color"),
				Inspect:   c.Bool("inspect"),
				Quiet:     c.Bool("quiet"),
			}

			renderer := render.NewRenderer()
			renderer.W = ui.Out
			renderer.HasColor = opts.Color
			renderer.HasPrefix = true
			if opts.Results {
				renderer.Format = c.String("results")
			}

			return evalRun(c.Context, c.String("config"), opts, renderer, ui)
		},
	}
}

func evalRun(ctx context.Context, configPath string, opts EvalOptions, renderer *render.Renderer, ui UI) error {
	if opts.Format != "text" && opts.Format != "json" {
		return fmt.Errorf("eval: unknown format %q", opts.Format)
	}

	if opts.Results && !supportedFormat(renderer.Format) {
		return fmt.Errorf("eval: unknown results format %q", renderer.Format)
	}

	if (opts.PredOut == "") != (opts.GoldOut == "") {
		return errors.New("eval: --pred-out and --gold-out go together")
	}

	f, layout, err := loadLayout(configPath)
	if err != nil {
		return err
	}

	task, err := f.Task(opts.Task)
	if err != nil {
		return err
	}

	ev, err := evaluator(f, task, layout)
	if err != nil {
		return err
	}

	p := conll.New(layout)
	gold, goldFaults, err := loadCorpus(p, opts.Gold, ui, opts.Quiet)
	if err != nil {
		return err
	}

	pred, predFaults, err := loadCorpus(p, opts.Pred, ui, opts.Quiet)
	if err != nil {
		return err
	}

	pairs, unpaired := eval.Align(pred, gold)
	if len(pairs) == 0 {
		return errors.New("eval: no sentence pairs")
	}

	logger := slog.Default().With("component", "cmd")
	if unpaired > 0 {
		logger.Warn("unpaired sentences", "count", unpaired)
	}

	var w *evalfile.Writer
	if opts.PredOut != "" {
		if w, err = evalfile.Create(opts.PredOut, opts.GoldOut); err != nil {
			return err
		}
	}

	bar, stop := newBar(ui, opts.Quiet, len(pairs))
	rep, err := eval.Run(ctx, ev, pairs, eval.Options{
		Workers:   opts.Workers,
		BatchSize: opts.BatchSize,
		Writer:    w,
		Progress: func(done int) {
			if bar != nil {
				_ = bar.Set(done)
			}
		},
	})
	stop()
	if w != nil {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return err
	}

	rep.Faults = append(append(rep.Faults, goldFaults...), predFaults...)

	var reporter render.Reporter = renderer
	if opts.Format == "json" {
		reporter = render.NewJSONRenderer(ui.Out)
	}

	reporter.Summary(rep.Summary)
	if opts.Results {
		reporter.Results(rep.Results)
	}

	if opts.Store != "" {
		pool := &Pool{}
		defer pool.Close()

		repo, err := NewRunRepository(pool, opts.Store)
		if err != nil {
			return err
		}

		run := storage.NewRun(opts.Name, task.Name, opts.Gold, opts.Pred, rep, unpaired)
		if err := repo.Write(run); err != nil {
			return err
		}
		fmt.Fprintf(ui.Err, "stored run %s\n", run.ID)
	}

	if opts.Inspect {
		return inspect.NewHandler(rep.Summary, rep.Results, renderer, ui.Out).Run()
	}

	return nil
}

// evaluator loads the vocabularies and transition statistics of task and
// builds its evaluator.
func evaluator(f *config.File, task config.Task, layout *column.Layout) (eval.Evaluator, error) {
	vocabs := vocab.Set{}
	if f.VocabDir != "" {
		var err error
		if vocabs, err = vocab.ReadDir(f.Resolve(f.VocabDir)); err != nil {
			return nil, err
		}
	}

	trans, err := transition.ForTask(f, task, vocabs)
	if err != nil {
		return nil, err
	}

	var labelIDs map[string]int
	if trans != nil {
		v, err := vocabs.Get(transition.VocabName(task))
		if err != nil {
			return nil, err
		}
		labelIDs = v.Index()
	}

	return eval.Dispatch(task, layout, trans, labelIDs)
}

func supportedFormat(format string) bool {
	for _, s := range render.SupportedFormats() {
		if s == format {
			return true
		}
	}
	return false
}
