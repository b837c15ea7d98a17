// Package span reconstructs labeled spans from tag sequences.
//
// A tag scheme says which tags open, continue, close or are a whole span.
// Tag sequences produced by a model are not always well formed: a continue
// tag may follow no open span of its label. Such a tag is repaired, never
// rejected, following a Policy, and the number of repairs is returned so the
// caller can report it.
package span

import (
	"fmt"
	"strings"

	"github.com/revelaction/conlleval/fault"
)

// NoPredicate is the Predicate of a span not anchored to a predicate.
const NoPredicate = -1

// Span is a labeled token range. End is inclusive.
type Span struct {
	Predicate int    `json:"predicate"`
	Label     string `json:"label"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
}

func (s Span) String() string {
	if s.Predicate == NoPredicate {
		return fmt.Sprintf("%s[%d:%d]", s.Label, s.Start, s.End)
	}

	return fmt.Sprintf("%d:%s[%d:%d]", s.Predicate, s.Label, s.Start, s.End)
}

// Len is the number of tokens covered.
func (s Span) Len() int { return s.End - s.Start + 1 }

// Anchor sets the predicate of every span, in place, and returns spans.
func Anchor(spans []Span, predicate int) []Span {
	for i := range spans {
		spans[i].Predicate = predicate
	}

	return spans
}

// Policy decides what a continue or last tag without a matching open span
// does.
type Policy int

const (
	// ImplicitOpen treats the orphan as the start of a new span. This is what
	// the CoNLL scorers do and the default.
	ImplicitOpen Policy = iota
	// Discard drops the orphan tag.
	Discard
)

func (p Policy) String() string {
	if p == Discard {
		return "discard"
	}
	return "implicit_open"
}

// PolicyByName resolves a policy name. Empty is ImplicitOpen.
func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(name) {
	case "", "implicit_open":
		return ImplicitOpen, nil
	case "discard":
		return Discard, nil
	}

	return 0, fault.Config("select orphan policy", name, "want implicit_open or discard")
}

// Extract returns the spans of tags, unanchored, and the number of scheme
// violations repaired. Positions with mask false are not part of any span
// and close an open one; a nil mask keeps every position.
func Extract(tags []string, mask []bool, scheme Scheme, policy Policy) ([]Span, int) {
	e := extractor{policy: policy}

	for i, tag := range tags {
		if mask != nil && (i >= len(mask) || !mask[i]) {
			e.close()
			continue
		}

		role, label := scheme.parse(tag)
		e.step(i, role, label)
	}

	if scheme == CoNLL05 && e.open != nil {
		// bracket left open at the end of the sentence
		e.repairs++
	}
	e.close()

	return e.spans, e.repairs
}

type extractor struct {
	policy  Policy
	open    *Span
	spans   []Span
	repairs int
}

func (e *extractor) close() {
	if e.open != nil {
		e.spans = append(e.spans, *e.open)
		e.open = nil
	}
}

func (e *extractor) start(i int, label string) {
	e.open = &Span{Predicate: NoPredicate, Label: label, Start: i, End: i}
}

func (e *extractor) unit(i int, label string) {
	e.spans = append(e.spans, Span{Predicate: NoPredicate, Label: label, Start: i, End: i})
}

func (e *extractor) step(i int, r role, label string) {
	switch r {
	case outside:
		e.close()

	case begin:
		e.close()
		e.start(i, label)

	case unit:
		e.close()
		e.unit(i, label)

	case inside:
		if e.open != nil && e.open.Label == label {
			e.open.End = i
			return
		}

		e.repairs++
		e.close()
		if e.policy == ImplicitOpen {
			e.start(i, label)
		}

	case last:
		if e.open != nil && e.open.Label == label {
			e.open.End = i
			e.close()
			return
		}

		e.repairs++
		e.close()
		if e.policy == ImplicitOpen {
			e.unit(i, label)
		}

	// bracket notation: the label comes from the open bracket
	case bracketInside:
		if e.open != nil {
			e.open.End = i
		}

	case bracketClose:
		if e.open == nil {
			e.repairs++
			return
		}
		e.open.End = i
		e.close()

	case bracketOpen:
		if e.open != nil {
			e.repairs++
		}
		e.close()
		e.start(i, label)
	}
}

// Encode renders spans as a tag sequence of length n. Spans outside [0, n)
// are clipped; overlapping spans overwrite earlier ones.
func Encode(spans []Span, n int, scheme Scheme) []string {
	tags := make([]string, n)
	for i := range tags {
		tags[i] = scheme.Outside()
	}

	for _, s := range spans {
		start, end := max(s.Start, 0), min(s.End, n-1)
		if start > end {
			continue
		}

		for i := start; i <= end; i++ {
			tags[i] = scheme.tag(s.Label, i, start, end)
		}
	}

	return tags
}
