package evalfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/revelaction/conlleval/column"
	"github.com/revelaction/conlleval/conll"
	"github.com/revelaction/conlleval/span"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sp(label string, start, end int) span.Span {
	return span.Span{Predicate: span.NoPredicate, Label: label, Start: start, End: end}
}

var gold = SRLRecord{
	Words:      []string{"John", "ran", "home", "yesterday"},
	Predicates: []int{1},
	Args:       [][]span.Span{{sp("A0", 0, 0), sp("V", 1, 1), sp("AM-DIR", 2, 3)}},
}

func TestWriteSRL(t *testing.T) {
	var p, g bytes.Buffer
	w := NewWriter(&p, &g)

	pred := SRLRecord{Words: gold.Words}
	require.NoError(t, w.WriteSRL(pred, gold))
	require.NoError(t, w.Close())

	want := "-\t(A0*)\nran\t(V*)\n-\t(AM-DIR*\n-\t*)\n\n"
	assert.Equal(t, want, g.String())
	assert.Equal(t, "-\n-\n-\n-\n\n", p.String())
}

func TestWriteSRLErrors(t *testing.T) {
	w := NewWriter(&bytes.Buffer{}, &bytes.Buffer{})

	bad := SRLRecord{Words: []string{"a"}, Predicates: []int{0}}
	assert.Error(t, w.WriteSRL(bad, gold))

	bad = SRLRecord{Words: []string{"a"}, Predicates: []int{3}, Args: [][]span.Span{nil}}
	assert.Error(t, w.WriteSRL(gold, bad))
}

func TestWriteParse(t *testing.T) {
	var p, g bytes.Buffer
	w := NewWriter(&p, &g)

	rec := ParseRecord{
		Words:  []string{"John", "ran"},
		POS:    []string{"NNP", "VBD"},
		Heads:  []int{2, 0},
		Labels: []string{"nsubj", "root"},
	}
	require.NoError(t, w.WriteParse(rec, rec))

	want := "1\tJohn\t_\tNNP\tNNP\t_\t2\tnsubj\t_\t_\n2\tran\t_\tVBD\tVBD\t_\t0\troot\t_\t_\n\n"
	assert.Equal(t, want, g.String())
	assert.Equal(t, want, p.String())

	rec.Heads = rec.Heads[:1]
	assert.Error(t, w.WriteParse(rec, rec))
}

func TestCreateAppendsAndReadsBack(t *testing.T) {
	dir := t.TempDir()
	predPath := filepath.Join(dir, "pred.txt")
	goldPath := filepath.Join(dir, "gold.txt")

	for i := 0; i < 2; i++ {
		w, err := Create(predPath, goldPath)
		require.NoError(t, err)
		require.NoError(t, w.WriteSRL(gold, gold))
		require.NoError(t, w.Close())
	}

	p, err := conll.NewParser([]column.Spec{
		{Name: "predicate", Source: []int{0}, Role: column.Label, Converter: "conll12_binary_predicates"},
		{Name: "srl", Source: []int{1, -1}, Role: column.Label, Type: column.TypeRange},
	})
	require.NoError(t, err)

	corpus, faults, err := p.ReadAll(goldPath)
	require.NoError(t, err)
	assert.Empty(t, faults)
	require.Len(t, corpus, 2)

	tags := corpus[0].Field(1)
	got, repairs := span.Extract(tags, nil, span.CoNLL05, span.ImplicitOpen)
	assert.Zero(t, repairs)
	assert.Equal(t, gold.Args[0], got)
	assert.Equal(t, []string{"false", "true", "false", "false"}, corpus[0].Field(0))
}

func TestConcurrentWritesDoNotInterleave(t *testing.T) {
	var p, g bytes.Buffer
	w := NewWriter(&p, &g)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			word := fmt.Sprintf("w%d", i)
			rec := ParseRecord{Words: []string{word, word}, Heads: []int{0, 1}, Labels: []string{"root", "dep"}}
			assert.NoError(t, w.WriteParse(rec, rec))
		}(i)
	}
	wg.Wait()

	blocks := strings.Split(strings.TrimSuffix(g.String(), "\n\n"), "\n\n")
	require.Len(t, blocks, 20)
	for _, b := range blocks {
		lines := strings.Split(b, "\n")
		require.Len(t, lines, 2)
		w1 := strings.Split(lines[0], "\t")[1]
		w2 := strings.Split(lines[1], "\t")[1]
		assert.Equal(t, w1, w2)
	}
}

func TestCreateBadPath(t *testing.T) {
	dir := t.TempDir()
	_, err := Create(filepath.Join(dir, "missing", "p.txt"), filepath.Join(dir, "g.txt"))
	assert.Error(t, err)

	_, err = os.Stat(filepath.Join(dir, "g.txt"))
	assert.True(t, os.IsNotExist(err))
}
