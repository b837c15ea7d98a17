package stat

import (
	"sort"

	sent "github.com/revelaction/conlleval/sentence"
)

type Handler struct {
	stats Stats
}

type Stats struct {
	NumSentences          int         `json:"sentences"`
	NumTokens             int         `json:"tokens"`
	NumFaults             int         `json:"faults"`
	TokensPerSentenceMean float64     `json:"mean"`
	TokensPerSentenceMax  int         `json:"max"`
	TokensPerSentenceDis  map[int]int `json:"distribution"`
}

// Lengths returns the sentence lengths of the distribution, ascending.
func (s Stats) Lengths() []int {
	lengths := make([]int, 0, len(s.TokensPerSentenceDis))
	for l := range s.TokensPerSentenceDis {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)
	return lengths
}

func (h *Handler) Get() Stats {
	return h.stats
}

func NewHandler() *Handler {
	stats := Stats{TokensPerSentenceDis: map[int]int{}}
	return &Handler{
		stats: stats,
	}
}

// Aggregate adds a corpus; it can be called once per file.
func (h *Handler) Aggregate(corpus sent.Corpus) {
	for _, s := range corpus {
		h.Add(s)
	}
}

func (h *Handler) Add(s sent.Sentence) {
	n := s.Len()
	h.stats.NumSentences++
	h.stats.NumTokens += n
	h.stats.TokensPerSentenceDis[n]++
	h.stats.TokensPerSentenceMax = max(h.stats.TokensPerSentenceMax, n)
	h.stats.TokensPerSentenceMean = float64(h.stats.NumTokens) / float64(h.stats.NumSentences)
}

// AddFault counts a sentence skipped as malformed.
func (h *Handler) AddFault() {
	h.stats.NumFaults++
}
