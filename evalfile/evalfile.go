// Package evalfile writes predicted and gold annotations in the column
// formats of the external CoNLL scorers, so a run can be cross-checked with
// srl-eval.pl or eval.pl.
//
// SRL blocks follow the CoNLL-2005 props layout: the first column holds the
// predicate word or "-", then one bracket column per predicate. Parse blocks
// follow the 10-column CoNLL-X layout. Sentences are separated by a blank
// line, so the files read back with the conll parser.
package evalfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/revelaction/conlleval/span"
)

// Empty is the predicate column value of a non-predicate token.
const Empty = "-"

// SRLRecord is one sentence of SRL annotation.
type SRLRecord struct {
	Words []string
	// Predicates are token positions, in order.
	Predicates []int
	// Args holds the argument spans of each predicate, in Predicates order.
	Args [][]span.Span
}

// ParseRecord is one sentence of dependency annotation.
type ParseRecord struct {
	Words []string
	POS   []string
	// Heads are 1-based, 0 being the root.
	Heads  []int
	Labels []string
}

// Writer appends records to a predictions and a references file. Writes are
// serialized and flushed per sentence.
type Writer struct {
	mu     sync.Mutex
	pred   *bufio.Writer
	gold   *bufio.Writer
	closer []io.Closer
}

// Create opens both files for appending, creating them if needed.
func Create(predPath, goldPath string) (*Writer, error) {
	pf, err := openAppend(predPath)
	if err != nil {
		return nil, err
	}

	gf, err := openAppend(goldPath)
	if err != nil {
		pf.Close()
		return nil, err
	}

	w := NewWriter(pf, gf)
	w.closer = []io.Closer{pf, gf}
	return w, nil
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("IO error: %w", err)
	}
	return f, nil
}

// NewWriter writes to already open writers. Close does not close them.
func NewWriter(pred, gold io.Writer) *Writer {
	return &Writer{pred: bufio.NewWriter(pred), gold: bufio.NewWriter(gold)}
}

// WriteSRL appends one sentence to both files.
func (w *Writer) WriteSRL(pred, gold SRLRecord) error {
	pb, err := formatSRL(pred)
	if err != nil {
		return fmt.Errorf("predicted: %w", err)
	}

	gb, err := formatSRL(gold)
	if err != nil {
		return fmt.Errorf("gold: %w", err)
	}

	return w.write(pb, gb)
}

// WriteParse appends one sentence to both files.
func (w *Writer) WriteParse(pred, gold ParseRecord) error {
	pb, err := formatParse(pred)
	if err != nil {
		return fmt.Errorf("predicted: %w", err)
	}

	gb, err := formatParse(gold)
	if err != nil {
		return fmt.Errorf("gold: %w", err)
	}

	return w.write(pb, gb)
}

func (w *Writer) write(pred, gold string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.pred.WriteString(pred); err != nil {
		return fmt.Errorf("IO error: %w", err)
	}

	if _, err := w.gold.WriteString(gold); err != nil {
		return fmt.Errorf("IO error: %w", err)
	}

	if err := w.pred.Flush(); err != nil {
		return fmt.Errorf("IO error: %w", err)
	}

	if err := w.gold.Flush(); err != nil {
		return fmt.Errorf("IO error: %w", err)
	}

	return nil
}

// Close flushes and closes the files opened by Create.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	errs := []error{w.pred.Flush(), w.gold.Flush()}
	for _, c := range w.closer {
		errs = append(errs, c.Close())
	}

	return errors.Join(errs...)
}

func formatSRL(r SRLRecord) (string, error) {
	n := len(r.Words)
	if len(r.Args) != len(r.Predicates) {
		return "", fmt.Errorf("%d predicates with %d argument sets", len(r.Predicates), len(r.Args))
	}

	cols := make([][]string, len(r.Predicates))
	for k, args := range r.Args {
		cols[k] = span.Encode(args, n, span.CoNLL05)
	}

	isPred := make(map[int]bool, len(r.Predicates))
	for _, p := range r.Predicates {
		if p < 0 || p >= n {
			return "", fmt.Errorf("predicate %d outside sentence of %d tokens", p, n)
		}
		isPred[p] = true
	}

	var b strings.Builder
	row := make([]string, 0, 1+len(cols))
	for i := 0; i < n; i++ {
		row = row[:0]
		if isPred[i] {
			row = append(row, r.Words[i])
		} else {
			row = append(row, Empty)
		}

		for _, c := range cols {
			row = append(row, c[i])
		}

		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	return b.String(), nil
}

func formatParse(r ParseRecord) (string, error) {
	n := len(r.Words)
	if len(r.Heads) != n || len(r.Labels) != n {
		return "", fmt.Errorf("%d words, %d heads, %d labels", n, len(r.Heads), len(r.Labels))
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		pos := "_"
		if i < len(r.POS) && r.POS[i] != "" {
			pos = r.POS[i]
		}

		fields := []string{
			strconv.Itoa(i + 1),
			r.Words[i],
			"_",
			pos,
			pos,
			"_",
			strconv.Itoa(r.Heads[i]),
			r.Labels[i],
			"_",
			"_",
		}
		b.WriteString(strings.Join(fields, "\t"))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	return b.String(), nil
}
