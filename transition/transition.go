// Package transition loads label transition statistics into a row
// normalized matrix, used to check that a decoded tag sequence only takes
// transitions observed in training.
//
// The statistics file has one "label1\tlabel2\tprobability" triple per line.
package transition

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/revelaction/conlleval/fault"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a square num_labels x num_labels transition table. Every row
// sums to 1, or is all zero when no transition from its label was observed.
// It is immutable after loading.
type Matrix struct {
	dense *mat.Dense

	// Skipped counts malformed lines ignored while loading.
	Skipped int
}

// Load reads the statistics file at path.
func Load(path string, numLabels int, labelToID map[string]int) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("IO error: %w", err)
	}
	defer f.Close()

	return LoadReader(path, f, numLabels, labelToID)
}

// LoadReader reads statistics from r; name is used in errors and logs.
//
// A label missing from labelToID is a ConfigError wrapping the
// MalformedInputError of its line. Lines without three fields or with a
// probability that is not a finite non-negative number are skipped and
// counted.
func LoadReader(name string, r io.Reader, numLabels int, labelToID map[string]int) (*Matrix, error) {
	if numLabels <= 0 {
		return nil, fault.Config("load transitions", name, fmt.Sprintf("num_labels must be positive, got %d", numLabels))
	}

	for l, id := range labelToID {
		if id < 0 || id >= numLabels {
			return nil, fault.Config("load transitions", l, fmt.Sprintf("id %d outside [0, %d)", id, numLabels))
		}
	}

	logger := slog.Default().With("component", "transition", "source", name)
	m := &Matrix{dense: mat.NewDense(numLabels, numLabels, nil)}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			m.Skipped++
			logger.Warn("skipping transition line", "line", lineNo, "reason", fmt.Sprintf("%d fields", len(fields)))
			continue
		}

		from, to := strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1])

		prob, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil || prob < 0 || math.IsNaN(prob) || math.IsInf(prob, 0) {
			m.Skipped++
			logger.Warn("skipping transition line", "line", lineNo, "reason", "bad probability", "value", fields[2])
			continue
		}

		i, ok := labelToID[from]
		if !ok {
			return nil, unknownLabel(name, lineNo, from)
		}

		j, ok := labelToID[to]
		if !ok {
			return nil, unknownLabel(name, lineNo, to)
		}

		m.dense.Set(i, j, prob)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("IO error: %w", err)
	}

	m.normalize()
	return m, nil
}

func unknownLabel(name string, line int, label string) error {
	return &fault.ConfigError{
		Op:   "load transitions",
		Name: label,
		Err:  fault.Malformed("label %q not in label set", label).At(name, line),
	}
}

// normalize divides every row by its sum, then turns the NaNs of all-zero
// rows into zeros.
func (m *Matrix) normalize() {
	n, _ := m.dense.Dims()
	for i := 0; i < n; i++ {
		row := m.dense.RawRowView(i)
		floats.Scale(1/floats.Sum(row), row)
		for j, v := range row {
			if math.IsNaN(v) {
				row[j] = 0
			}
		}
	}
}

// Len is the number of labels.
func (m *Matrix) Len() int {
	n, _ := m.dense.Dims()
	return n
}

func (m *Matrix) At(from, to int) float64 {
	return m.dense.At(from, to)
}

// Row returns a copy of the transition probabilities out of label id.
func (m *Matrix) Row(id int) []float64 {
	return mat.Row(nil, id, m.dense)
}

// Matrix exposes the table read only.
func (m *Matrix) Matrix() mat.Matrix {
	return m.dense
}

// Allowed reports whether the transition from -> to has been observed.
// Ids outside the matrix are never allowed.
func (m *Matrix) Allowed(from, to int) bool {
	n := m.Len()
	if from < 0 || to < 0 || from >= n || to >= n {
		return false
	}

	return m.dense.At(from, to) > 0
}

// Violations returns the positions i of ids whose incoming transition
// ids[i-1] -> ids[i] has zero probability. A negative id (unknown or masked
// label) is skipped and breaks the chain.
func (m *Matrix) Violations(ids []int) []int {
	var out []int
	prev := -1
	for i, id := range ids {
		if id < 0 {
			prev = -1
			continue
		}

		if prev >= 0 && !m.Allowed(prev, id) {
			out = append(out, i)
		}
		prev = id
	}

	return out
}
