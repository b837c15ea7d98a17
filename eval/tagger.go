package eval

import (
	"sync/atomic"

	"github.com/revelaction/conlleval/column"
	"github.com/revelaction/conlleval/config"
	"github.com/revelaction/conlleval/match"
	sent "github.com/revelaction/conlleval/sentence"
)

// Tagger scores one tag per token. Accuracy counts equal tags over all
// tokens. Precision, recall and F-score treat every tag other than an
// outside marker as a positive: a correct positive is predicted and gold
// with the same tag.
type Tagger struct {
	metric string
	words  *column.Range
	tags   *column.Range

	acc       *match.Accumulator
	tokens    *match.ParseAccumulator
	sentences atomic.Int64
}

var _ Evaluator = (*Tagger)(nil)

func NewTagger(task config.Task, layout *column.Layout) (*Tagger, error) {
	e := &Tagger{
		metric: task.Eval,
		acc:    match.NewAccumulator(),
		tokens: match.NewParseAccumulator(),
	}

	var err error
	if e.words, err = columnRange(layout, task.Name, "words", task.Words, false); err != nil {
		return nil, err
	}

	if e.tags, err = columnRange(layout, task.Name, "tags", task.Tags, true); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Tagger) Metric() string { return e.metric }
func (e *Tagger) Kind() Kind     { return Tokens }

func (e *Tagger) Evaluate(pred, gold sent.Sentence) (Result, error) {
	if err := sameLength(pred, gold); err != nil {
		return Result{}, err
	}

	r := e.Compare(first(pred, e.tags), first(gold, e.tags))
	r.Source = gold.Source
	r.Index = gold.Index
	r.Words = first(gold, e.words)
	if e.words == nil {
		r.Words = nil
	}

	return r, nil
}

// Compare scores two tag sequences of equal length.
func (e *Tagger) Compare(pred, gold []string) Result {
	r := Result{Kind: Tokens}
	for i := range gold {
		p, g := pred[i], gold[i]
		r.Parse.Total++
		if p == g {
			r.Parse.Correct[match.Label]++
		}

		pp, gp := !isOutside(p), !isOutside(g)
		switch {
		case pp && p == g:
			r.Counts.Correct++
		case pp && gp:
			r.Counts.Excess++
			r.Counts.Missed++
		case pp:
			r.Counts.Excess++
		case gp:
			r.Counts.Missed++
		}
	}

	return r
}

func isOutside(tag string) bool {
	switch tag {
	case "", "O", "_", "-", "*":
		return true
	}
	return false
}

func (e *Tagger) Add(r Result) {
	e.acc.Add(r.Counts)
	e.tokens.Add(r.Parse)
	e.sentences.Add(1)
}

func (e *Tagger) Summary() Summary {
	return Summary{
		Metric:    e.metric,
		Kind:      Tokens,
		Sentences: e.sentences.Load(),
		Score:     e.acc.Snapshot(),
		Parse:     e.tokens.Snapshot(),
	}
}

func (e *Tagger) Reset() {
	e.acc.Reset()
	e.tokens.Reset()
	e.sentences.Store(0)
}
