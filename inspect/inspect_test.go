package inspect

import (
	"bytes"
	"strings"
	"testing"

	"github.com/c-bata/go-prompt"

	"github.com/revelaction/conlleval/eval"
	"github.com/revelaction/conlleval/match"
	"github.com/revelaction/conlleval/render"
	"github.com/revelaction/conlleval/span"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sp(label string, start, end int) span.Span {
	return span.Span{Predicate: 0, Label: label, Start: start, End: end}
}

func results() []eval.Result {
	return []eval.Result{
		{Index: 0, Words: []string{"a", "b"}, Counts: match.Counts{Correct: 2}, Correct: []span.Span{sp("A0", 0, 0), sp("V", 1, 1)}},
		{Index: 1, Words: []string{"c", "d"}, Counts: match.Counts{Excess: 1}, Excess: []span.Span{sp("A1", 1, 1)}},
		{Index: 2, Words: []string{"e", "f"}, Counts: match.Counts{Excess: 1, Missed: 2},
			Excess: []span.Span{sp("A2", 0, 0)}, Missed: []span.Span{sp("A1", 0, 1), sp("A0", 1, 1)}},
	}
}

func handler(t *testing.T) (*Handler, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	r := render.NewRenderer()
	r.W = &buf
	r.Format = "score"
	return NewHandler(eval.Summary{Metric: eval.SRLEval, Sentences: 3}, results(), r, &buf), &buf
}

func TestWorst(t *testing.T) {
	h, _ := handler(t)

	worst := h.Worst(10)
	require.Len(t, worst, 2)
	assert.Equal(t, 2, worst[0].Index)
	assert.Equal(t, 1, worst[1].Index)

	assert.Len(t, h.Worst(1), 1)
}

func TestWithLabel(t *testing.T) {
	h, _ := handler(t)
	got := h.WithLabel("A1")
	require.Len(t, got, 2)
	assert.Empty(t, h.WithLabel("V"))
	assert.Equal(t, []string{"A0", "A1", "A2"}, h.labels)
}

func TestExecute(t *testing.T) {
	h, buf := handler(t)

	quit, err := h.Execute("score")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Contains(t, buf.String(), eval.SRLEval)

	buf.Reset()
	_, err = h.Execute("worst 1")
	require.NoError(t, err)
	assert.Equal(t, "correct 0  excess 1  missed 2\n", buf.String())

	buf.Reset()
	_, err = h.Execute("1")
	require.NoError(t, err)
	assert.Equal(t, "correct 0  excess 1  missed 0\n", buf.String())

	for _, bad := range []string{"worst x", "worst 0", "label", "7", "frobnicate"} {
		_, err = h.Execute(bad)
		assert.Error(t, err, bad)
	}

	quit, err = h.Execute("  ")
	assert.NoError(t, err)
	assert.False(t, quit)

	quit, err = h.Execute("quit")
	assert.NoError(t, err)
	assert.True(t, quit)
}

func TestCompleter(t *testing.T) {
	h, _ := handler(t)

	doc := func(text string) prompt.Document {
		buf := prompt.NewBuffer()
		buf.InsertText(text, false, true)
		return *buf.Document()
	}

	s := h.completer(doc("wo"))
	require.Len(t, s, 1)
	assert.Equal(t, "worst", s[0].Text)

	s = h.completer(doc("label A"))
	texts := []string{}
	for _, x := range s {
		texts = append(texts, x.Text)
	}
	assert.Equal(t, []string{"A0", "A1", "A2"}, texts)

	assert.Empty(t, h.completer(doc("")))
	assert.Empty(t, h.completer(doc("score x")))
	assert.True(t, strings.HasPrefix(commands[0].Text, "score"))
}
