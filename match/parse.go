package match

import "sync"

// Positions of the dependency counters.
const (
	Label = iota
	Head
	Both
)

// ParseCounts are per-token arc counts. Total is the number of scored
// tokens; Correct[Label], Correct[Head] and Correct[Both] count tokens whose
// label, head, or both match gold.
type ParseCounts struct {
	Total   int64    `json:"total"`
	Correct [3]int64 `json:"correct"`
}

func (c ParseCounts) Add(o ParseCounts) ParseCounts {
	c.Total += o.Total
	for i := range c.Correct {
		c.Correct[i] += o.Correct[i]
	}

	return c
}

// ParseScore holds the label accuracy (LS), the unlabeled attachment score
// (UAS) and the labeled attachment score (LAS). All are 0 when Total is 0.
type ParseScore struct {
	ParseCounts
	Accuracy [3]float64 `json:"accuracy"`
}

func (s ParseScore) LS() float64  { return s.Accuracy[Label] }
func (s ParseScore) UAS() float64 { return s.Accuracy[Head] }
func (s ParseScore) LAS() float64 { return s.Accuracy[Both] }

func NewParseScore(c ParseCounts) ParseScore {
	s := ParseScore{ParseCounts: c}
	for i, n := range c.Correct {
		s.Accuracy[i] = ratio(n, c.Total)
	}

	return s
}

// ParseAccumulator sums ParseCounts over one run. Safe for concurrent use.
type ParseAccumulator struct {
	mu     sync.Mutex
	counts ParseCounts
}

func NewParseAccumulator() *ParseAccumulator {
	return &ParseAccumulator{}
}

func (a *ParseAccumulator) Add(c ParseCounts) {
	a.mu.Lock()
	a.counts = a.counts.Add(c)
	a.mu.Unlock()
}

func (a *ParseAccumulator) Counts() ParseCounts {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts
}

func (a *ParseAccumulator) Snapshot() ParseScore {
	return NewParseScore(a.Counts())
}

func (a *ParseAccumulator) Reset() {
	a.mu.Lock()
	a.counts = ParseCounts{}
	a.mu.Unlock()
}
