package vocab

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/revelaction/conlleval/fault"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	v, err := Read("srl", strings.NewReader("O\t120\nB-ARG0\t12\n\nI-ARG0\t9\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, v.Len())
	id, ok := v.ID("I-ARG0")
	assert.True(t, ok)
	assert.Equal(t, 2, id)
	assert.Equal(t, map[string]int{"O": 0, "B-ARG0": 1, "I-ARG0": 2}, v.Index())
}

func TestReadDuplicate(t *testing.T) {
	_, err := Read("srl", strings.NewReader("O\nO\n"))
	assert.True(t, fault.IsConfig(err))
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pos.txt"), []byte("NN\nVB\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0644))

	set, err := ReadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"pos"}, set.Names())

	_, err = set.Get("srl")
	assert.True(t, fault.IsConfig(err))
}

func TestLookup(t *testing.T) {
	v, err := New("srl", []string{"O", "B-ARG0", "I-ARG0"})
	require.NoError(t, err)
	maps := Set{"srl": v}.Reverse()

	ids := [][]int{{1, 2, 0, 0}, {0, 7}}
	mask := [][]bool{{true, true, true, false}, {true, true}}

	got, err := maps.Lookup(ids, mask, "srl")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"B-ARG0", "I-ARG0", "O", ""}, {"O", Unknown}}, got)

	got, err = maps.Lookup([][]int{{0}}, nil, "srl")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"O"}}, got)
}

func TestLookupErrors(t *testing.T) {
	maps := ReverseMaps{"srl": {0: "O"}}

	_, err := maps.Lookup([][]int{{0}}, nil, "pos")
	assert.True(t, fault.IsConfig(err))

	_, err = maps.Lookup([][]int{{0, 0}}, [][]bool{{true}}, "srl")
	assert.True(t, fault.IsMalformed(err))

	_, err = maps.Lookup([][]int{{0}}, [][]bool{}, "srl")
	assert.True(t, fault.IsMalformed(err))
}
