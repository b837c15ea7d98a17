package main

import (
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gosuri/uiprogress"

	"github.com/revelaction/conlleval/column"
	"github.com/revelaction/conlleval/config"
	"github.com/revelaction/conlleval/conll"
	"github.com/revelaction/conlleval/fault"
	sent "github.com/revelaction/conlleval/sentence"
)

// loadLayout reads the configuration file and binds its columns.
func loadLayout(path string) (*config.File, *column.Layout, error) {
	f, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	layout, err := f.Layout()
	if err != nil {
		return nil, nil, err
	}

	return f, layout, nil
}

// loadCorpus reads all sentences of paths in one pass, so that sentence
// indexes run across files. Malformed sentences are logged and returned
// apart.
func loadCorpus(p *conll.Parser, paths []string, ui UI, quiet bool) (sent.Corpus, []error, error) {
	logger := slog.Default().With("component", "corpus")

	var (
		corpus sent.Corpus
		faults []error
		source string
	)

	bar, stop := newBar(ui, quiet, len(paths))
	defer stop()

	// read by the bar's render goroutine
	var current atomic.Value
	current.Store("")
	if bar != nil {
		bar.AppendFunc(func(b *uiprogress.Bar) string {
			return current.Load().(string)
		})
	}

	for s, err := range p.Parse(paths...) {
		if err != nil {
			if fault.IsMalformed(err) {
				logger.Warn("skipping sentence", "error", err)
				faults = append(faults, err)
				continue
			}
			return nil, faults, err
		}

		if s.Source != source {
			source = s.Source
			current.Store(filepath.Base(source))
			if bar != nil {
				bar.Incr()
			}
		}

		corpus = append(corpus, s)
	}

	// files without sentences never show up as a source
	if bar != nil {
		_ = bar.Set(len(paths))
	}

	logger.Debug("corpus loaded", "files", len(paths), "sentences", len(corpus), "faults", len(faults))
	return corpus, faults, nil
}

// newBar starts a progress bar on ui.Err. It returns a nil bar when quiet.
func newBar(ui UI, quiet bool, total int) (*uiprogress.Bar, func()) {
	if quiet || total == 0 {
		return nil, func() {}
	}

	progress := uiprogress.New()
	progress.SetOut(ui.Err)
	progress.Start()

	bar := progress.AddBar(total)
	bar.AppendCompleted()
	bar.PrependElapsed()

	return bar, progress.Stop
}
