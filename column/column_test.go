package column

import (
	"testing"

	"github.com/revelaction/conlleval/convert"
	"github.com/revelaction/conlleval/fault"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayoutOrdersBySource(t *testing.T) {
	specs := []Spec{
		{Name: "srl", Source: []int{6, -1}, Role: Label, Type: TypeRange},
		{Name: "word", Source: []int{1}, Role: Feature},
		{Name: "pos", Source: []int{3}, Role: Feature | Label},
		{Name: "lemma", Source: []int{2}, Role: Unused},
		{Name: "predicate", Source: []int{5}, Role: Label, Converter: "conll12_binary_predicates"},
	}

	l, err := NewLayout(specs)
	require.NoError(t, err)

	assert.Equal(t, []string{"word", "pos", "predicate", "srl"}, l.Names())

	r, err := l.Range("srl")
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 3, End: -1}, r)

	assert.Equal(t, map[string]Range{"word": {0, 1}, "pos": {1, 2}}, l.Features())
	assert.Equal(t, map[string]Range{"pos": {1, 2}, "predicate": {2, 3}, "srl": {3, -1}}, l.Labels())

	vals, err := l.Convert([]string{"0", "The", "the", "DT", "x", "-", "(A0*", "*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"The", "DT", "false", "(A0*", "*"}, vals)
	assert.Equal(t, []string{"(A0*", "*"}, r.Slice(vals))
}

func TestNewLayoutTiesByName(t *testing.T) {
	l, err := NewLayout([]Spec{
		{Name: "b", Source: []int{1}, Role: Feature},
		{Name: "a", Source: []int{1}, Role: Feature, Converter: "lowercase"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, l.Names())
}

func TestNewLayoutErrors(t *testing.T) {
	tests := []struct {
		name  string
		specs []Spec
	}{
		{"unknown converter", []Spec{{Name: "w", Source: []int{0}, Role: Feature, Converter: "nope"}}},
		{"variable not last", []Spec{
			{Name: "srl", Source: []int{2, -1}, Role: Label, Type: TypeRange},
			{Name: "x", Source: []int{9}, Role: Label},
		}},
		{"nothing kept", []Spec{{Name: "w", Source: []int{0}}}},
		{"duplicate", []Spec{{Name: "w", Source: []int{0}, Role: Feature}, {Name: "w", Source: []int{1}, Role: Feature}}},
		{"bad joint", []Spec{{Name: "j", Source: []int{0, 1}, Role: Label, Converter: "joint_converter"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayout(tt.specs)
			require.Error(t, err)
			assert.True(t, fault.IsConfig(err), err.Error())
		})
	}
}

func TestLayoutUnknownColumn(t *testing.T) {
	l, err := NewLayout([]Spec{{Name: "w", Source: []int{0}, Role: Feature}})
	require.NoError(t, err)

	_, err = l.Range("missing")
	assert.True(t, fault.IsConfig(err))
}

func TestLayoutConvertMalformed(t *testing.T) {
	l, err := NewLayout([]Spec{{Name: "w", Source: []int{4}, Role: Feature, Params: convert.Params{}}})
	require.NoError(t, err)

	_, err = l.Convert([]string{"a"})
	assert.True(t, fault.IsMalformed(err))
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "feature,label", (Feature | Label).String())
	assert.Equal(t, "unused", Unused.String())
}
