// Package config loads the column and task configuration file.
//
// The file is YAML; JSON files load too, YAML being a superset.
//
//	columns:
//	  word:      {conll_idx: 3, feature: true}
//	  predicate: {conll_idx: 10, label: true, converter: {name: conll12_binary_predicates}}
//	  srl:       {conll_idx: [14, -1], label: true, type: range}
//	tasks:
//	  srl: {eval: conll_srl_eval, scheme: bio, words: word, predicates: predicate, tags: srl}
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/revelaction/conlleval/column"
	"github.com/revelaction/conlleval/convert"
	"github.com/revelaction/conlleval/fault"

	"gopkg.in/yaml.v3"
)

// Index is a conll_idx value: a single integer or a list of integers.
type Index []int

func (i *Index) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var v int
		if err := n.Decode(&v); err != nil {
			return err
		}
		*i = Index{v}
		return nil
	case yaml.SequenceNode:
		var v []int
		if err := n.Decode(&v); err != nil {
			return err
		}
		if len(v) == 0 {
			return errors.New("empty conll_idx list")
		}
		*i = v
		return nil
	}

	return fmt.Errorf("line %d: conll_idx must be an integer or a list", n.Line)
}

type Converter struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

type Column struct {
	Index     Index      `yaml:"conll_idx"`
	Feature   bool       `yaml:"feature"`
	Label     bool       `yaml:"label"`
	Type      string     `yaml:"type"`
	Converter *Converter `yaml:"converter"`
}

// Task configures one scored task.
type Task struct {
	Name string `yaml:"-"`

	// Eval is the metric name, f.ex. conll_srl_eval or conll_parse_eval.
	Eval string `yaml:"eval"`

	// Span extraction (SRL tasks).
	Scheme        string   `yaml:"scheme"`
	OrphanPolicy  string   `yaml:"orphan_policy"`
	ExcludeLabels []string `yaml:"exclude_labels"`

	// Column names.
	Words      string `yaml:"words"`
	Predicates string `yaml:"predicates"`
	Tags       string `yaml:"tags"`
	Senses     string `yaml:"senses"`
	Heads      string `yaml:"heads"`
	Labels     string `yaml:"labels"`
	POS        string `yaml:"pos"`

	// Dependency parse tasks.
	HasRootToken bool     `yaml:"has_root_token"`
	PunctTags    []string `yaml:"punct_tags"`

	// Decoding.
	TransitionStats string `yaml:"transition_stats"`
	Vocab           string `yaml:"vocab"`
	Viterbi         bool   `yaml:"viterbi"`
	CRF             bool   `yaml:"crf"`
}

// File is a loaded configuration file.
type File struct {
	Columns  map[string]Column `yaml:"columns"`
	Tasks    map[string]Task   `yaml:"tasks"`
	VocabDir string            `yaml:"vocab_dir"`

	// Dir is the directory of the file; relative paths resolve against it.
	Dir string `yaml:"-"`
}

// Load reads and decodes the configuration file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("IO error: %w", err)
	}

	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &fault.ConfigError{Op: "load config", Name: path, Err: err}
	}

	f.Dir = filepath.Dir(path)
	return f, nil
}

// Decode reads a configuration from r. Unknown keys are errors.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty configuration")
		}
		return nil, err
	}

	if len(f.Columns) == 0 {
		return nil, errors.New("no columns configured")
	}

	for name, t := range f.Tasks {
		t.Name = name
		f.Tasks[name] = t
	}

	return &f, nil
}

// Specs returns the column specs sorted by source index.
func (f *File) Specs() []column.Spec {
	specs := make([]column.Spec, 0, len(f.Columns))
	for name, c := range f.Columns {
		s := column.Spec{
			Name:   name,
			Source: c.Index,
			Type:   c.Type,
		}

		if c.Feature {
			s.Role |= column.Feature
		}

		if c.Label {
			s.Role |= column.Label
		}

		if c.Converter != nil {
			s.Converter = c.Converter.Name
			s.Params = convert.Params(c.Converter.Params)
		}

		specs = append(specs, s)
	}

	column.Sort(specs)
	return specs
}

// Layout binds the configured columns.
func (f *File) Layout() (*column.Layout, error) {
	return column.NewLayout(f.Specs())
}

// Task returns the named task. Without a name, the only configured task is
// returned.
func (f *File) Task(name string) (Task, error) {
	if name == "" {
		if len(f.Tasks) == 1 {
			for _, t := range f.Tasks {
				return t, nil
			}
		}
		return Task{}, fault.Config("select task", "", fmt.Sprintf("%d tasks configured, name one of %v", len(f.Tasks), f.TaskNames()))
	}

	t, ok := f.Tasks[name]
	if !ok {
		return Task{}, fault.Config("select task", name, "not configured")
	}

	return t, nil
}

// TaskNames returns the configured task names, sorted.
func (f *File) TaskNames() []string {
	names := make([]string, 0, len(f.Tasks))
	for n := range f.Tasks {
		names = append(names, n)
	}

	sort.Strings(names)
	return names
}

// Resolve makes a path from the file relative to the file directory.
func (f *File) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || f.Dir == "" {
		return p
	}

	return filepath.Join(f.Dir, p)
}
