package match

import (
	"sync"
	"testing"

	"github.com/revelaction/conlleval/span"

	"github.com/stretchr/testify/assert"
)

func sp(pred int, label string, start, end int) span.Span {
	return span.Span{Predicate: pred, Label: label, Start: start, End: end}
}

func TestMatchScenario(t *testing.T) {
	gold := []span.Span{sp(3, "ARG0", 0, 2), sp(3, "V", 3, 3)}
	pred := []span.Span{sp(3, "ARG0", 0, 2), sp(3, "ARGM-TMP", 4, 4)}

	c := Match(pred, gold)
	assert.Equal(t, Counts{Correct: 1, Excess: 1, Missed: 1}, c)

	s := NewScore(c)
	assert.InDelta(t, 0.5, s.Precision, 1e-9)
	assert.InDelta(t, 0.5, s.Recall, 1e-9)
	assert.InDelta(t, 0.5, s.F1, 1e-9)
}

func TestMatchExact(t *testing.T) {
	gold := []span.Span{sp(1, "A0", 0, 0), sp(1, "A1", 2, 4), sp(5, "A0", 0, 4)}
	assert.Equal(t, Counts{Correct: 3}, Match(gold, gold))
}

func TestMatchDisjoint(t *testing.T) {
	gold := []span.Span{sp(1, "A0", 0, 0), sp(1, "A1", 2, 4)}
	pred := []span.Span{sp(1, "A0", 0, 1), sp(2, "A1", 2, 4), sp(1, "A2", 2, 4)}
	assert.Equal(t, Counts{Excess: 3, Missed: 2}, Match(pred, gold))
}

func TestMatchPredicateIdentity(t *testing.T) {
	c := Match([]span.Span{sp(1, "A0", 0, 0)}, []span.Span{sp(2, "A0", 0, 0)})
	assert.Equal(t, Counts{Excess: 1, Missed: 1}, c)
}

func TestMatchDuplicates(t *testing.T) {
	a := sp(1, "A0", 0, 0)
	assert.Equal(t, Counts{Correct: 1}, Match([]span.Span{a, a}, []span.Span{a}))
}

func TestDiff(t *testing.T) {
	gold := []span.Span{sp(3, "V", 3, 3), sp(3, "ARG0", 0, 2)}
	pred := []span.Span{sp(3, "ARGM-TMP", 4, 4), sp(3, "ARG0", 0, 2)}

	correct, excess, missed := Diff(pred, gold)
	assert.Equal(t, []span.Span{sp(3, "ARG0", 0, 2)}, correct)
	assert.Equal(t, []span.Span{sp(3, "ARGM-TMP", 4, 4)}, excess)
	assert.Equal(t, []span.Span{sp(3, "V", 3, 3)}, missed)
}

func TestScoreZeroDenominators(t *testing.T) {
	assert.Equal(t, Score{}, NewScore(Counts{}))

	s := NewScore(Counts{Missed: 4})
	assert.Zero(t, s.Precision)
	assert.Zero(t, s.Recall)
	assert.Zero(t, s.F1)

	s = NewScore(Counts{Excess: 2})
	assert.Zero(t, s.F1)
}

func TestAccumulatorSnapshotDoesNotReset(t *testing.T) {
	a := NewAccumulator()
	a.Add(Counts{Correct: 2, Excess: 1})
	first := a.Snapshot()
	second := a.Snapshot()
	assert.Equal(t, first, second)

	a.Add(Counts{Missed: 1})
	assert.Equal(t, Counts{Correct: 2, Excess: 1, Missed: 1}, a.Counts())

	a.Reset()
	assert.Equal(t, Counts{}, a.Counts())
}

func TestAccumulatorCommutesAndIsConcurrent(t *testing.T) {
	sentA := Counts{Correct: 3, Excess: 1}
	sentB := Counts{Correct: 1, Missed: 2}

	ab := NewAccumulator()
	ab.Add(sentA)
	ab.Add(sentB)

	ba := NewAccumulator()
	ba.Add(sentB)
	ba.Add(sentA)
	assert.Equal(t, ab.Counts(), ba.Counts())

	conc := NewAccumulator()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); conc.Add(sentA) }()
		go func() { defer wg.Done(); conc.Add(sentB) }()
	}
	wg.Wait()

	assert.Equal(t, Counts{Correct: 400, Excess: 100, Missed: 200}, conc.Counts())
}

func TestParseAccumulator(t *testing.T) {
	a := NewParseAccumulator()
	assert.Equal(t, [3]float64{}, a.Snapshot().Accuracy)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Add(ParseCounts{Total: 4, Correct: [3]int64{3, 2, 1}})
		}()
	}
	wg.Wait()

	s := a.Snapshot()
	assert.Equal(t, int64(40), s.Total)
	assert.InDelta(t, 0.75, s.LS(), 1e-9)
	assert.InDelta(t, 0.5, s.UAS(), 1e-9)
	assert.InDelta(t, 0.25, s.LAS(), 1e-9)

	a.Reset()
	assert.Equal(t, ParseCounts{}, a.Counts())
}
