// Package vocab maps model ids back to labels.
//
// Vocabularies are built upstream. Here they are only read: one label per
// line, optionally followed by a tab and a count, the id being the position
// of the line among the non-blank lines.
package vocab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/revelaction/conlleval/fault"
)

// Unknown is the label of an id outside the vocabulary.
const Unknown = "<UNK>"

// Ext is the extension of vocabulary files read by ReadDir.
const Ext = ".txt"

// ReverseMap maps ids to labels for one vocabulary.
type ReverseMap map[int]string

// ReverseMaps holds the reverse map of every vocabulary, by name.
type ReverseMaps map[string]ReverseMap

// Vocab is a loaded vocabulary.
type Vocab struct {
	Name   string
	Labels []string
	index  map[string]int
}

// New builds a vocabulary from labels in id order. Duplicates are a
// ConfigError.
func New(name string, labels []string) (*Vocab, error) {
	v := &Vocab{Name: name, Labels: labels, index: make(map[string]int, len(labels))}
	for id, l := range labels {
		if _, dup := v.index[l]; dup {
			return nil, fault.Config("load vocabulary", name, fmt.Sprintf("duplicate label %q", l))
		}
		v.index[l] = id
	}

	return v, nil
}

// Read reads a vocabulary file.
func Read(name string, r io.Reader) (*Vocab, error) {
	var labels []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		label, _, _ := strings.Cut(line, "\t")
		labels = append(labels, strings.TrimSpace(label))
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("IO error: %w", err)
	}

	return New(name, labels)
}

// Load reads the vocabulary file at path. Its name is the file name without
// extension.
func Load(path string) (*Vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("IO error: %w", err)
	}
	defer f.Close()

	base := filepath.Base(path)
	return Read(strings.TrimSuffix(base, filepath.Ext(base)), f)
}

func (v *Vocab) Len() int { return len(v.Labels) }

// ID returns the id of label.
func (v *Vocab) ID(label string) (int, bool) {
	id, ok := v.index[label]
	return id, ok
}

// Index returns the label to id map.
func (v *Vocab) Index() map[string]int {
	m := make(map[string]int, len(v.index))
	for k, id := range v.index {
		m[k] = id
	}

	return m
}

func (v *Vocab) Reverse() ReverseMap {
	m := make(ReverseMap, len(v.Labels))
	for id, l := range v.Labels {
		m[id] = l
	}

	return m
}

// Set is a collection of vocabularies by name.
type Set map[string]*Vocab

// ReadDir loads every *.txt file of dir.
func ReadDir(dir string) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("IO error: %w", err)
	}

	set := Set{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}

		v, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		set[v.Name] = v
	}

	return set, nil
}

// Get returns the named vocabulary or a ConfigError.
func (s Set) Get(name string) (*Vocab, error) {
	v, ok := s[name]
	if !ok {
		return nil, fault.Config("lookup vocabulary", name, fmt.Sprintf("not loaded (have %v)", s.Names()))
	}

	return v, nil
}

func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}

	sort.Strings(names)
	return names
}

func (s Set) Reverse() ReverseMaps {
	m := make(ReverseMaps, len(s))
	for n, v := range s {
		m[n] = v.Reverse()
	}

	return m
}

// Lookup converts a batch of id sequences to labels with the named
// vocabulary. Positions masked out (mask false) become "". A nil mask keeps
// every position. Ids outside the vocabulary become Unknown.
//
// An unknown vocabulary is a ConfigError. A mask row that does not match its
// id row is a MalformedInputError.
func (m ReverseMaps) Lookup(ids [][]int, mask [][]bool, name string) ([][]string, error) {
	rm, ok := m[name]
	if !ok {
		return nil, fault.Config("reverse lookup", name, "unknown vocabulary")
	}

	if mask != nil && len(mask) != len(ids) {
		return nil, fault.Malformed("mask has %d rows for %d id rows", len(mask), len(ids))
	}

	out := make([][]string, len(ids))
	for i, row := range ids {
		var mrow []bool
		if mask != nil {
			mrow = mask[i]
			if len(mrow) != len(row) {
				return nil, fault.Malformed("row %d: mask has %d positions for %d ids", i, len(mrow), len(row))
			}
		}

		labels := make([]string, len(row))
		for j, id := range row {
			if mrow != nil && !mrow[j] {
				continue
			}

			l, ok := rm[id]
			if !ok {
				l = Unknown
			}
			labels[j] = l
		}
		out[i] = labels
	}

	return out, nil
}
