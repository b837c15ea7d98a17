package stat

import (
	"testing"

	sent "github.com/revelaction/conlleval/sentence"

	"github.com/stretchr/testify/assert"
)

func sentence(n int) sent.Sentence {
	return sent.Sentence{Tokens: make([]sent.Tuple, n)}
}

func TestAggregate(t *testing.T) {
	h := NewHandler()
	h.Aggregate(sent.Corpus{sentence(3), sentence(5)})
	h.Aggregate(sent.Corpus{sentence(3)})
	h.AddFault()

	s := h.Get()
	assert.Equal(t, 3, s.NumSentences)
	assert.Equal(t, 11, s.NumTokens)
	assert.Equal(t, 1, s.NumFaults)
	assert.Equal(t, 5, s.TokensPerSentenceMax)
	assert.InDelta(t, 11.0/3, s.TokensPerSentenceMean, 1e-9)
	assert.Equal(t, map[int]int{3: 2, 5: 1}, s.TokensPerSentenceDis)
	assert.Equal(t, []int{3, 5}, s.Lengths())
}

func TestEmpty(t *testing.T) {
	s := NewHandler().Get()
	assert.Zero(t, s.NumSentences)
	assert.Zero(t, s.TokensPerSentenceMean)
	assert.Empty(t, s.Lengths())
}
