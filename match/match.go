package match

import (
	"sort"
	"sync"

	"github.com/revelaction/conlleval/span"
)

// Counts are the outcome of matching predicted against gold spans.
type Counts struct {
	// Correct spans are both predicted and gold.
	Correct int64 `json:"correct"`
	// Excess spans are predicted but not gold.
	Excess int64 `json:"excess"`
	// Missed spans are gold but not predicted.
	Missed int64 `json:"missed"`
}

func (c Counts) Add(o Counts) Counts {
	return Counts{
		Correct: c.Correct + o.Correct,
		Excess:  c.Excess + o.Excess,
		Missed:  c.Missed + o.Missed,
	}
}

func (c Counts) Predicted() int64 { return c.Correct + c.Excess }
func (c Counts) Gold() int64      { return c.Correct + c.Missed }

// Match compares two span sets by exact equality of predicate, label, start
// and end. Duplicates inside one side count once.
func Match(pred, gold []span.Span) Counts {
	g := set(gold)
	p := set(pred)

	var c Counts
	for s := range p {
		if _, ok := g[s]; ok {
			c.Correct++
		} else {
			c.Excess++
		}
	}

	c.Missed = int64(len(g)) - c.Correct
	return c
}

// Diff splits the spans as Match counts them, each part sorted by position.
func Diff(pred, gold []span.Span) (correct, excess, missed []span.Span) {
	g := set(gold)
	p := set(pred)

	for s := range p {
		if _, ok := g[s]; ok {
			correct = append(correct, s)
		} else {
			excess = append(excess, s)
		}
	}

	for s := range g {
		if _, ok := p[s]; !ok {
			missed = append(missed, s)
		}
	}

	Sort(correct)
	Sort(excess)
	Sort(missed)
	return correct, excess, missed
}

// Sort orders spans by predicate, start, end and label.
func Sort(spans []span.Span) {
	sort.Slice(spans, func(i, j int) bool {
		a, b := spans[i], spans[j]
		if a.Predicate != b.Predicate {
			return a.Predicate < b.Predicate
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.Label < b.Label
	})
}

func set(spans []span.Span) map[span.Span]struct{} {
	m := make(map[span.Span]struct{}, len(spans))
	for _, s := range spans {
		m[s] = struct{}{}
	}

	return m
}

// Score is a snapshot of Counts with the derived measures. A measure with a
// zero denominator is 0.
type Score struct {
	Counts
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

func NewScore(c Counts) Score {
	s := Score{Counts: c}
	s.Precision = ratio(c.Correct, c.Correct+c.Excess)
	s.Recall = ratio(c.Correct, c.Correct+c.Missed)
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}

	return s
}

func ratio(n, d int64) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// Accumulator sums Counts over one evaluation run. It is safe for
// concurrent use; since adds commute, the totals do not depend on the order
// sentences are scored in.
type Accumulator struct {
	mu     sync.Mutex
	counts Counts
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

func (a *Accumulator) Add(c Counts) {
	a.mu.Lock()
	a.counts = a.counts.Add(c)
	a.mu.Unlock()
}

func (a *Accumulator) Counts() Counts {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts
}

// Snapshot returns the current score without resetting.
func (a *Accumulator) Snapshot() Score {
	return NewScore(a.Counts())
}

// Reset zeroes the counts for a new run.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	a.counts = Counts{}
	a.mu.Unlock()
}
