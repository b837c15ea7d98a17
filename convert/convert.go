// Package convert is the closed registry of column converters.
//
// A converter turns the whitespace-split fields of one input line into one or
// more values of the token tuple. Converters are pure. They are resolved and
// bound once, when the column configuration is loaded, so an unknown name or
// a bad column shape fails before any data is read.
package convert

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/revelaction/conlleval/fault"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Default is the converter used by columns that do not name one.
const Default = "default_converter"

// Variable is the width of a converter whose output length depends on the
// line.
const Variable = -1

// Params are the converter parameters of a column configuration.
type Params map[string]any

// Converter is a registered conversion.
type Converter struct {
	Name string

	// Bind validates the column source indices and params. It runs once at
	// configuration time.
	Bind func(source []int, params Params) error

	// Width is the number of values Convert emits, or Variable.
	Width func(source []int, params Params) int

	Convert func(fields []string, source []int, params Params) ([]string, error)
}

var registry map[string]Converter

func init() {
	registry = map[string]Converter{}
	for _, c := range []Converter{
		indexConverter(Default),
		indexConverter("idx_list_converter"),
		rangeConverter(),
		mapConverter("lowercase", lowercase),
		mapConverter("strip_conll12_domain", stripDomain),
		mapConverter("conll12_binary_predicates", binaryPredicate("-")),
		mapConverter("conll09_binary_predicates", binaryPredicate("_")),
		rootSelfLoopConverter(),
		jointConverter(),
	} {
		registry[c.Name] = c
	}
}

// Dispatch resolves a converter by name. Unknown names are a ConfigError.
func Dispatch(name string) (Converter, error) {
	if name == "" {
		name = Default
	}

	c, ok := registry[name]
	if !ok {
		return Converter{}, fault.Config("dispatch converter", name, "not registered")
	}

	return c, nil
}

// Names returns the registered converter names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}

	sort.Strings(names)
	return names
}

func field(fields []string, idx int) (string, error) {
	if idx < 0 || idx >= len(fields) {
		return "", fault.Malformed("column %d out of range (line has %d fields)", idx, len(fields))
	}

	return fields[idx], nil
}

func requireSource(name string, source []int, n int) error {
	if len(source) < n {
		return fault.Config("bind converter", name, fmt.Sprintf("needs %d source indices, got %d", n, len(source)))
	}

	for _, i := range source {
		if i < 0 {
			return fault.Config("bind converter", name, fmt.Sprintf("negative source index %d", i))
		}
	}

	return nil
}

// indexConverter emits the field at every source index.
func indexConverter(name string) Converter {
	return Converter{
		Name: name,
		Bind: func(source []int, _ Params) error {
			return requireSource(name, source, 1)
		},
		Width: func(source []int, _ Params) int { return len(source) },
		Convert: func(fields []string, source []int, _ Params) ([]string, error) {
			out := make([]string, 0, len(source))
			for _, i := range source {
				f, err := field(fields, i)
				if err != nil {
					return nil, err
				}
				out = append(out, f)
			}
			return out, nil
		},
	}
}

// rangeConverter emits fields[start:end]. end == -1 reads to the end of the
// line.
func rangeConverter() Converter {
	const name = "idx_range_converter"
	return Converter{
		Name: name,
		Bind: func(source []int, _ Params) error {
			if len(source) != 2 {
				return fault.Config("bind converter", name, "source must be [start, end]")
			}

			start, end := source[0], source[1]
			if start < 0 {
				return fault.Config("bind converter", name, fmt.Sprintf("negative start %d", start))
			}

			if end != -1 && end <= start {
				return fault.Config("bind converter", name, fmt.Sprintf("end %d not after start %d", end, start))
			}

			return nil
		},
		Width: func(source []int, _ Params) int {
			if source[1] == -1 {
				return Variable
			}
			return source[1] - source[0]
		},
		Convert: func(fields []string, source []int, _ Params) ([]string, error) {
			start, end := source[0], source[1]
			if end == -1 {
				end = len(fields)
			}

			if start > len(fields) || end > len(fields) {
				return nil, fault.Malformed("range [%d:%d] out of range (line has %d fields)", start, end, len(fields))
			}

			out := make([]string, end-start)
			copy(out, fields[start:end])
			return out, nil
		},
	}
}

// mapConverter applies fn to the single source field.
func mapConverter(name string, fn func(string) string) Converter {
	return Converter{
		Name: name,
		Bind: func(source []int, _ Params) error {
			if err := requireSource(name, source, 1); err != nil {
				return err
			}
			if len(source) != 1 {
				return fault.Config("bind converter", name, "takes exactly one source index")
			}
			return nil
		},
		Width: func([]int, Params) int { return 1 },
		Convert: func(fields []string, source []int, _ Params) ([]string, error) {
			f, err := field(fields, source[0])
			if err != nil {
				return nil, err
			}
			return []string{fn(f)}, nil
		},
	}
}

var lower = cases.Lower(language.Und)

func lowercase(s string) string {
	return lower.String(s)
}

// stripDomain keeps the part of a CoNLL-12 document id before the first "/",
// f.ex. "bc/cctv/00/cctv_0001" becomes "bc".
func stripDomain(s string) string {
	domain, _, _ := strings.Cut(s, "/")
	return domain
}

func binaryPredicate(empty string) func(string) string {
	return func(s string) string {
		return strconv.FormatBool(s != empty)
	}
}

// rootSelfLoopConverter reads a 1-based head column and a 1-based token id
// column and emits the 0-based head position. Root tokens (head 0) point to
// themselves.
func rootSelfLoopConverter() Converter {
	const name = "parse_roots_self_loop"
	return Converter{
		Name: name,
		Bind: func(source []int, _ Params) error {
			if err := requireSource(name, source, 2); err != nil {
				return err
			}
			if len(source) != 2 {
				return fault.Config("bind converter", name, "source must be [head, id]")
			}
			return nil
		},
		Width: func([]int, Params) int { return 1 },
		Convert: func(fields []string, source []int, _ Params) ([]string, error) {
			headStr, err := field(fields, source[0])
			if err != nil {
				return nil, err
			}

			idStr, err := field(fields, source[1])
			if err != nil {
				return nil, err
			}

			head, err := strconv.Atoi(headStr)
			if err != nil {
				return nil, fault.Malformed("head %q is not an integer", headStr)
			}

			id, err := strconv.Atoi(idStr)
			if err != nil {
				return nil, fault.Malformed("token id %q is not an integer", idStr)
			}

			if head == 0 {
				head = id
			}

			return []string{strconv.Itoa(head - 1)}, nil
		},
	}
}

// jointConverter applies one component converter per source index and joins
// the results with joint_label_sep (default "/").
func jointConverter() Converter {
	const name = "joint_converter"

	components := func(params Params) ([]Converter, error) {
		raw, ok := params["component_converters"]
		if !ok {
			return nil, fault.Config("bind converter", name, "missing component_converters")
		}

		list, ok := raw.([]any)
		if !ok {
			if ss, isStrings := raw.([]string); isStrings {
				for _, s := range ss {
					list = append(list, s)
				}
			} else {
				return nil, fault.Config("bind converter", name, "component_converters must be a list")
			}
		}

		out := make([]Converter, 0, len(list))
		for _, item := range list {
			n, ok := item.(string)
			if !ok {
				return nil, fault.Config("bind converter", name, fmt.Sprintf("component %v is not a name", item))
			}
			if n == name {
				return nil, fault.Config("bind converter", name, "cannot nest itself")
			}
			c, err := Dispatch(n)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}

		return out, nil
	}

	sep := func(params Params) string {
		if s, ok := params["joint_label_sep"].(string); ok {
			return s
		}
		return "/"
	}

	return Converter{
		Name: name,
		Bind: func(source []int, params Params) error {
			comps, err := components(params)
			if err != nil {
				return err
			}

			if len(comps) != len(source) {
				return fault.Config("bind converter", name,
					fmt.Sprintf("%d component converters for %d source indices", len(comps), len(source)))
			}

			for i, c := range comps {
				if err := c.Bind(source[i:i+1], nil); err != nil {
					return err
				}
			}

			return nil
		},
		Width: func([]int, Params) int { return 1 },
		Convert: func(fields []string, source []int, params Params) ([]string, error) {
			comps, err := components(params)
			if err != nil {
				return nil, err
			}

			parts := make([]string, 0, len(comps))
			for i, c := range comps {
				vals, err := c.Convert(fields, source[i:i+1], nil)
				if err != nil {
					return nil, err
				}
				parts = append(parts, vals...)
			}

			return []string{strings.Join(parts, sep(params))}, nil
		},
	}
}
