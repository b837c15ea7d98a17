package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

// Set with -ldflags at release time.
var (
	BuildTag    = "dev"
	BuildCommit = "none"
)

// UI contains the output streams for the application.
// Used for injecting buffers during testing.
type UI struct {
	Out io.Writer
	Err io.Writer
}

func main() {
	ui := UI{Out: os.Stdout, Err: os.Stderr}

	if err := run(context.Background(), os.Args, ui); err != nil {
		fprintErr(ui.Err, err)
		os.Exit(1)
	}
}

func fprintErr(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "conlleval: %v\n", err)
}

func run(ctx context.Context, args []string, ui UI) error {
	return newApp(ui).RunContext(ctx, args)
}

func newApp(ui UI) *cli.App {
	return &cli.App{
		Name:      "conlleval",
		Usage:     "score predicted against gold CoNLL annotations",
		Version:   BuildTag,
		Writer:    ui.Out,
		ErrWriter: ui.Err,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "log debug messages"},
		},
		Before: func(c *cli.Context) error {
			setupLogger(ui.Err, c.Bool("verbose"))
			return nil
		},
		Commands: []*cli.Command{
			parseCommand(ui),
			statCommand(ui),
			evalCommand(ui),
			transitionsCommand(ui),
			runsCommand(ui),
			versionCommand(ui),
		},
		// errors are printed once, by main
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func setupLogger(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
