package span

import (
	"strings"

	"github.com/revelaction/conlleval/fault"
)

// Scheme is a tagging scheme.
type Scheme int

const (
	// BIO: B-X opens, I-X continues, O is outside.
	BIO Scheme = iota
	// BILOU: BIO plus L-X (last) and U-X (unit).
	BILOU
	// IOBES: BIO plus E-X (end) and S-X (single).
	IOBES
	// CoNLL05 is the bracket notation of the CoNLL-2005 props files:
	// "(A0*" opens, "*" continues, "*)" closes, "(V*)" is a unit.
	CoNLL05
	// CoNLL09 marks only argument heads: every tag other than "_" is a one
	// token span.
	CoNLL09
)

var schemeNames = map[Scheme]string{
	BIO:     "bio",
	BILOU:   "bilou",
	IOBES:   "iobes",
	CoNLL05: "conll05",
	CoNLL09: "conll09",
}

func (s Scheme) String() string {
	if n, ok := schemeNames[s]; ok {
		return n
	}
	return "unknown"
}

// SchemeByName resolves a scheme name. Empty is BIO.
func SchemeByName(name string) (Scheme, error) {
	n := strings.ToLower(name)
	if n == "" {
		return BIO, nil
	}

	for s, sn := range schemeNames {
		if sn == n {
			return s, nil
		}
	}

	return 0, fault.Config("select tag scheme", name, "want one of bio, bilou, iobes, conll05, conll09")
}

// Outside is the tag of a token in no span.
func (s Scheme) Outside() string {
	switch s {
	case CoNLL05:
		return "*"
	case CoNLL09:
		return "_"
	}
	return "O"
}

type role int

const (
	outside role = iota
	begin
	inside
	last
	unit
	bracketOpen
	bracketInside
	bracketClose
)

// schemePrefixes are the prefixes of all prefix schemes.
const schemePrefixes = "BILUES"

var prefixRoles = map[Scheme]map[byte]role{
	BIO:   {'B': begin, 'I': inside},
	BILOU: {'B': begin, 'I': inside, 'L': last, 'U': unit},
	IOBES: {'B': begin, 'I': inside, 'E': last, 'S': unit},
}

// parse splits a tag into its role and label.
func (s Scheme) parse(tag string) (role, string) {
	switch s {
	case CoNLL05:
		return parseBracket(tag)
	case CoNLL09:
		if isEmpty(tag) {
			return outside, ""
		}
		return unit, tag
	}

	if isEmpty(tag) {
		return outside, ""
	}

	if len(tag) > 2 && (tag[1] == '-' || tag[1] == '_') {
		if r, ok := prefixRoles[s][tag[0]]; ok {
			return r, tag[2:]
		}
		// a prefix of another tagging scheme, f.ex. E-A0 under bio
		if strings.IndexByte(schemePrefixes, tag[0]) >= 0 {
			return unit, tag[2:]
		}
	}

	// a bare label is a single token span
	return unit, tag
}

func isEmpty(tag string) bool {
	switch tag {
	case "", "O", "_", "-":
		return true
	}
	return false
}

// parseBracket reads "(A0*", "*", "*)", "(A0*)" and the older "(A0*A0)".
func parseBracket(tag string) (role, string) {
	if !strings.HasPrefix(tag, "(") {
		if strings.HasSuffix(tag, ")") {
			return bracketClose, ""
		}
		if tag == "*" {
			return bracketInside, ""
		}
		if isEmpty(tag) {
			return outside, ""
		}
		return bracketInside, ""
	}

	body := tag[1:]
	label, rest, _ := strings.Cut(body, "*")
	if strings.HasSuffix(rest, ")") {
		return unit, label
	}

	return bracketOpen, label
}

// tag renders the tag of position i of a span [start, end].
func (s Scheme) tag(label string, i, start, end int) string {
	single := start == end
	switch s {
	case CoNLL05:
		switch {
		case single:
			return "(" + label + "*)"
		case i == start:
			return "(" + label + "*"
		case i == end:
			return "*)"
		}
		return "*"

	case CoNLL09:
		if i == start {
			return label
		}
		return "_"

	case BILOU, IOBES:
		unitP, lastP := "U-", "L-"
		if s == IOBES {
			unitP, lastP = "S-", "E-"
		}
		switch {
		case single:
			return unitP + label
		case i == start:
			return "B-" + label
		case i == end:
			return lastP + label
		}
		return "I-" + label
	}

	if i == start {
		return "B-" + label
	}
	return "I-" + label
}
