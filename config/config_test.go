package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/revelaction/conlleval/column"
	"github.com/revelaction/conlleval/fault"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const srlConfig = `
columns:
  word:      {conll_idx: 3, feature: true}
  lemma:     {conll_idx: 6}
  predicate: {conll_idx: 7, label: true, converter: {name: conll12_binary_predicates}}
  srl:       {conll_idx: [11, -1], label: true, type: range}
  domain:
    conll_idx: 0
    feature: true
    converter:
      name: strip_conll12_domain
tasks:
  srl:
    eval: conll_srl_eval
    scheme: bio
    words: word
    predicates: predicate
    tags: srl
    transition_stats: transitions.tsv
    viterbi: true
`

func TestDecode(t *testing.T) {
	f, err := Decode(strings.NewReader(srlConfig))
	require.NoError(t, err)

	specs := f.Specs()
	names := []string{}
	for _, s := range specs {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"domain", "word", "lemma", "predicate", "srl"}, names)

	assert.Equal(t, column.Unused, specs[2].Role)
	assert.Equal(t, []int{11, -1}, specs[4].Source)
	assert.Equal(t, "conll12_binary_predicates", specs[3].Converter)

	l, err := f.Layout()
	require.NoError(t, err)
	assert.Equal(t, []string{"domain", "word", "predicate", "srl"}, l.Names())

	task, err := f.Task("")
	require.NoError(t, err)
	assert.Equal(t, "srl", task.Name)
	assert.Equal(t, "conll_srl_eval", task.Eval)
	assert.True(t, task.Viterbi)
}

func TestDecodeJSON(t *testing.T) {
	js := `{"columns": {"word": {"conll_idx": 1, "feature": true}}, "tasks": {}}`
	f, err := Decode(strings.NewReader(js))
	require.NoError(t, err)
	assert.Len(t, f.Columns, 1)
}

func TestDecodeErrors(t *testing.T) {
	tests := map[string]string{
		"empty":       "",
		"no columns":  "tasks: {}\n",
		"unknown key": "columns: {w: {conll_idx: 1, featur: true}}\n",
		"bad index":   "columns: {w: {conll_idx: {a: 1}}}\n",
		"empty index": "columns: {w: {conll_idx: []}}\n",
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestLoadResolvesRelative(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "srl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(srlConfig), 0644))

	f, err := Load(path)
	require.NoError(t, err)

	task, err := f.Task("srl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "transitions.tsv"), f.Resolve(task.TransitionStats))
	assert.Equal(t, "/abs/t.tsv", f.Resolve("/abs/t.tsv"))
}

func TestLoadBadFileIsConfigError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("columns: [1, 2"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, fault.IsConfig(err))
}

func TestTaskSelection(t *testing.T) {
	f := &File{Tasks: map[string]Task{"a": {Name: "a"}, "b": {Name: "b"}}}

	_, err := f.Task("")
	assert.True(t, fault.IsConfig(err))

	_, err = f.Task("c")
	assert.True(t, fault.IsConfig(err))

	task, err := f.Task("b")
	require.NoError(t, err)
	assert.Equal(t, "b", task.Name)
	assert.Equal(t, []string{"a", "b"}, f.TaskNames())
}
