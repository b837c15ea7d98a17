// Package column describes how the whitespace-split fields of an input line
// map to the values of a token tuple.
package column

import (
	"fmt"
	"sort"
	"strings"

	"github.com/revelaction/conlleval/convert"
	"github.com/revelaction/conlleval/fault"
)

// Role tells whether a column feeds the model, is scored, both or neither.
type Role uint8

const (
	Unused  Role = 0
	Feature Role = 1 << iota
	Label
)

func (r Role) String() string {
	switch r {
	case Unused:
		return "unused"
	case Feature:
		return "feature"
	case Label:
		return "label"
	case Feature | Label:
		return "feature,label"
	}

	return fmt.Sprintf("role(%d)", uint8(r))
}

// TypeRange marks a column spanning a variable or fixed range of fields.
const TypeRange = "range"

// Spec is one configured column.
type Spec struct {
	Name string

	// Source holds the field indices. A single index, a [start, end] pair
	// for range columns (end -1 reads to the end of the line), or one index
	// per component for joint columns.
	Source []int

	Role Role

	// Type is empty or TypeRange.
	Type string

	// Converter is the registered converter name; empty means the default.
	Converter string
	Params    convert.Params

	conv convert.Converter
}

// Kept reports whether the column contributes to the tuple.
func (s Spec) Kept() bool { return s.Role != Unused }

// Sort orders specs by their first source index, ties by name.
func Sort(specs []Spec) {
	sort.SliceStable(specs, func(i, j int) bool {
		a, b := first(specs[i]), first(specs[j])
		if a != b {
			return a < b
		}
		return specs[i].Name < specs[j].Name
	})
}

func first(s Spec) int {
	if len(s.Source) == 0 {
		return -1
	}
	return s.Source[0]
}

// Range is the half-open position of a column's values inside a tuple. End
// is -1 for a variable-width column, which then runs to the end of the tuple.
type Range struct {
	Start int
	End   int
}

// Slice returns the values of the range in t.
func (r Range) Slice(t []string) []string {
	if r.Start >= len(t) {
		return nil
	}

	end := r.End
	if end == -1 || end > len(t) {
		end = len(t)
	}

	return t[r.Start:end]
}

// Layout is the bound, ordered set of kept columns.
type Layout struct {
	columns []Spec
	ranges  map[string]Range
	names   []string
}

// NewLayout sorts the specs, drops unused columns, binds every converter
// and computes the value ranges. Binding errors and a variable-width column
// that is not last are ConfigErrors.
func NewLayout(specs []Spec) (*Layout, error) {
	sorted := make([]Spec, len(specs))
	copy(sorted, specs)
	Sort(sorted)

	l := &Layout{ranges: map[string]Range{}}
	seen := map[string]bool{}
	offset := 0
	variable := ""

	for _, s := range sorted {
		if seen[s.Name] {
			return nil, fault.Config("column layout", s.Name, "duplicate column")
		}
		seen[s.Name] = true

		if !s.Kept() {
			continue
		}

		if variable != "" {
			return nil, fault.Config("column layout", variable, "variable-width column must be the last kept column")
		}

		conv, err := convert.Dispatch(s.Converter)
		if err != nil {
			return nil, err
		}

		if s.Type == TypeRange && s.Converter == "" {
			conv, _ = convert.Dispatch("idx_range_converter")
		}

		if err := conv.Bind(s.Source, s.Params); err != nil {
			return nil, fmt.Errorf("column %q: %w", s.Name, err)
		}

		s.conv = conv
		w := conv.Width(s.Source, s.Params)
		if w == convert.Variable {
			l.ranges[s.Name] = Range{Start: offset, End: -1}
			variable = s.Name
		} else {
			l.ranges[s.Name] = Range{Start: offset, End: offset + w}
			offset += w
		}

		l.columns = append(l.columns, s)
		l.names = append(l.names, s.Name)
	}

	if len(l.columns) == 0 {
		return nil, fault.Config("column layout", "", "no feature or label columns")
	}

	return l, nil
}

// Convert builds the tuple values of one split line.
func (l *Layout) Convert(fields []string) ([]string, error) {
	out := make([]string, 0, len(l.columns))
	for _, c := range l.columns {
		vals, err := c.conv.Convert(fields, c.Source, c.Params)
		if err != nil {
			return nil, err
		}
		out = append(out, vals...)
	}

	return out, nil
}

// Columns returns the kept columns in tuple order.
func (l *Layout) Columns() []Spec { return l.columns }

// Names returns the kept column names in tuple order.
func (l *Layout) Names() []string { return l.names }

// Range returns the value range of a column.
func (l *Layout) Range(name string) (Range, error) {
	r, ok := l.ranges[name]
	if !ok {
		return Range{}, fault.Config("column layout", name, "unknown column (known: "+strings.Join(l.names, ", ")+")")
	}

	return r, nil
}

// Features maps feature column names to their ranges.
func (l *Layout) Features() map[string]Range { return l.byRole(Feature) }

// Labels maps label column names to their ranges.
func (l *Layout) Labels() map[string]Range { return l.byRole(Label) }

func (l *Layout) byRole(role Role) map[string]Range {
	m := map[string]Range{}
	for _, c := range l.columns {
		if c.Role&role != 0 {
			m[c.Name] = l.ranges[c.Name]
		}
	}

	return m
}
