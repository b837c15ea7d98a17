package eval

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/revelaction/conlleval/evalfile"
	"github.com/revelaction/conlleval/fault"
	sent "github.com/revelaction/conlleval/sentence"
)

// DefaultBatchSize is the number of sentence pairs scored before they are
// added.
const DefaultBatchSize = 256

// Pair is a predicted sentence and its gold counterpart.
type Pair struct {
	Pred sent.Sentence
	Gold sent.Sentence
}

// Align pairs predicted and gold sentences by their index in the corpus.
// Sentences without a counterpart are counted as unpaired.
func Align(pred, gold sent.Corpus) (pairs []Pair, unpaired int) {
	byIndex := make(map[int]sent.Sentence, len(gold))
	for _, g := range gold {
		byIndex[g.Index] = g
	}

	seen := make(map[int]bool, len(pred))
	for _, p := range pred {
		g, ok := byIndex[p.Index]
		if !ok || seen[p.Index] {
			unpaired++
			continue
		}
		seen[p.Index] = true
		pairs = append(pairs, Pair{Pred: p, Gold: g})
	}

	unpaired += len(gold) - len(pairs)
	return pairs, unpaired
}

// Options tunes Run.
type Options struct {
	// Workers bounds concurrent scoring; 0 means runtime.NumCPU.
	Workers int
	// BatchSize is the unit of all or nothing accumulation; 0 means
	// DefaultBatchSize.
	BatchSize int
	// Writer receives the eval file records of every added sentence. May be
	// nil.
	Writer *evalfile.Writer
	// Progress is called after every batch with the number of pairs done.
	Progress func(done int)
	Logger   *slog.Logger
}

// Report is the outcome of a Run.
type Report struct {
	Summary Summary
	Results []Result
	// Faults are the malformed sentences that were skipped.
	Faults []error
}

// Run scores pairs concurrently, batch after batch. A malformed sentence is
// logged, reported and skipped. Any other error stops the run; the failing
// batch is not added.
func Run(ctx context.Context, ev Evaluator, pairs []Pair, opts Options) (Report, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	size := opts.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "eval", "metric", ev.Metric())

	var rep Report
	for start := 0; start < len(pairs); start += size {
		end := min(start+size, len(pairs))
		batch := pairs[start:end]

		results := make([]Result, len(batch))
		faults := make([]error, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, p := range batch {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				r, err := ev.Evaluate(p.Pred, p.Gold)
				if fault.IsMalformed(err) {
					faults[i] = err
					return nil
				}
				if err != nil {
					return err
				}

				results[i] = r
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return rep, err
		}

		// records first: a failed write leaves the batch unscored
		if opts.Writer != nil {
			for i := range batch {
				if faults[i] != nil || !results[i].HasRecord() {
					continue
				}
				if err := WriteResult(opts.Writer, results[i]); err != nil {
					rep.Summary = ev.Summary()
					return rep, err
				}
			}
		}

		for i := range batch {
			if faults[i] != nil {
				logger.Warn("skipping sentence", "index", batch[i].Gold.Index, "error", faults[i])
				rep.Faults = append(rep.Faults, faults[i])
				continue
			}

			ev.Add(results[i])
			rep.Results = append(rep.Results, results[i])
		}

		if opts.Progress != nil {
			opts.Progress(end)
		}
		logger.Debug("batch added", "from", start, "to", end)
	}

	rep.Summary = ev.Summary()
	return rep, nil
}

// ErrNoRecord is returned by WriteResult for a result built without eval
// file records.
var ErrNoRecord = errors.New("result has no eval file record")

// HasRecord tells whether the result carries eval file records. Token
// metrics have none.
func (r Result) HasRecord() bool { return r.srl != nil || r.parse != nil }

// WriteResult appends the predicted and gold records of a result.
func WriteResult(w *evalfile.Writer, r Result) error {
	switch {
	case r.srl != nil:
		return w.WriteSRL(r.srl[0], r.srl[1])
	case r.parse != nil:
		return w.WriteParse(r.parse[0], r.parse[1])
	}

	return ErrNoRecord
}
