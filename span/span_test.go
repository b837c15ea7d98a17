package span

import (
	"testing"

	"github.com/revelaction/conlleval/fault"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sp(label string, start, end int) Span {
	return Span{Predicate: NoPredicate, Label: label, Start: start, End: end}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		scheme  Scheme
		tags    []string
		want    []Span
		repairs int
	}{
		{"bio", BIO,
			[]string{"B-ARG0", "I-ARG0", "I-ARG0", "B-V", "O", "B-ARGM-TMP"},
			[]Span{sp("ARG0", 0, 2), sp("V", 3, 3), sp("ARGM-TMP", 5, 5)}, 0},
		{"bio adjacent begins", BIO,
			[]string{"B-A", "B-A", "I-A"},
			[]Span{sp("A", 0, 0), sp("A", 1, 2)}, 0},
		{"bio orphan inside opens", BIO,
			[]string{"O", "I-ARG1", "I-ARG1", "O"},
			[]Span{sp("ARG1", 1, 2)}, 1},
		{"bio label change inside", BIO,
			[]string{"B-A", "I-B"},
			[]Span{sp("A", 0, 0), sp("B", 1, 1)}, 1},
		{"bare label is unit", BIO,
			[]string{"V", "O"},
			[]Span{sp("V", 0, 0)}, 0},
		{"bio foreign prefix is unit", BIO,
			[]string{"B-A0", "E-A0", "S-V", "X-Y"},
			[]Span{sp("A0", 0, 0), sp("A0", 1, 1), sp("V", 2, 2), sp("X-Y", 3, 3)}, 0},
		{"bilou", BILOU,
			[]string{"B-A", "I-A", "L-A", "U-B", "O", "L-C"},
			[]Span{sp("A", 0, 2), sp("B", 3, 3), sp("C", 5, 5)}, 1},
		{"iobes", IOBES,
			[]string{"S-A", "B-B", "E-B"},
			[]Span{sp("A", 0, 0), sp("B", 1, 2)}, 0},
		{"conll05", CoNLL05,
			[]string{"(A0*", "*", "*)", "(V*)", "*", "(AM-TMP*A0)"},
			[]Span{sp("A0", 0, 2), sp("V", 3, 3), sp("AM-TMP", 5, 5)}, 0},
		{"conll05 stray close and open at end", CoNLL05,
			[]string{"*)", "(A1*", "*"},
			[]Span{sp("A1", 1, 2)}, 2},
		{"conll09", CoNLL09,
			[]string{"_", "A0", "_", "AM-LOC"},
			[]Span{sp("A0", 1, 1), sp("AM-LOC", 3, 3)}, 0},
		{"empty", BIO, nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, repairs := Extract(tt.tags, nil, tt.scheme, ImplicitOpen)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.repairs, repairs)
		})
	}
}

func TestExtractDiscardPolicy(t *testing.T) {
	got, repairs := Extract([]string{"O", "I-ARG1", "I-ARG1", "B-V"}, nil, BIO, Discard)
	// the first orphan is dropped, the second continues nothing either
	assert.Equal(t, []Span{sp("V", 3, 3)}, got)
	assert.Equal(t, 2, repairs)
}

func TestExtractMask(t *testing.T) {
	tags := []string{"B-A", "I-A", "I-A", "I-A"}
	mask := []bool{true, true, false, true}

	got, repairs := Extract(tags, mask, BIO, ImplicitOpen)
	assert.Equal(t, []Span{sp("A", 0, 1), sp("A", 3, 3)}, got)
	assert.Equal(t, 1, repairs)

	// a short mask masks the tail
	got, _ = Extract([]string{"B-A", "I-A"}, []bool{true}, BIO, ImplicitOpen)
	assert.Equal(t, []Span{sp("A", 0, 0)}, got)
}

func TestAnchor(t *testing.T) {
	spans := Anchor([]Span{sp("A0", 0, 1)}, 4)
	assert.Equal(t, 4, spans[0].Predicate)
	assert.Equal(t, "4:A0[0:1]", spans[0].String())
	assert.Equal(t, 2, spans[0].Len())
}

func TestEncodeRoundTrip(t *testing.T) {
	spans := []Span{sp("A0", 0, 2), sp("V", 3, 3), sp("AM-TMP", 5, 6)}

	for _, scheme := range []Scheme{BIO, BILOU, IOBES, CoNLL05} {
		t.Run(scheme.String(), func(t *testing.T) {
			tags := Encode(spans, 7, scheme)
			require.Len(t, tags, 7)
			got, repairs := Extract(tags, nil, scheme, ImplicitOpen)
			assert.Equal(t, spans, got)
			assert.Zero(t, repairs)
		})
	}

	assert.Equal(t, []string{"(A0*", "*", "*)", "(V*)", "*", "(AM-TMP*", "*)"}, Encode(spans, 7, CoNLL05))
	assert.Equal(t, []string{"A0", "_"}, Encode([]Span{sp("A0", 0, 1)}, 2, CoNLL09))
	assert.Equal(t, []string{"B-A", "I-A"}, Encode([]Span{sp("A", 0, 9)}, 2, BIO))
}

func TestByName(t *testing.T) {
	s, err := SchemeByName("IOBES")
	require.NoError(t, err)
	assert.Equal(t, IOBES, s)

	s, err = SchemeByName("")
	require.NoError(t, err)
	assert.Equal(t, BIO, s)

	_, err = SchemeByName("bioes2")
	assert.True(t, fault.IsConfig(err))

	p, err := PolicyByName("discard")
	require.NoError(t, err)
	assert.Equal(t, Discard, p)

	_, err = PolicyByName("raise")
	assert.True(t, fault.IsConfig(err))
}
