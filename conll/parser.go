// Package conll reads sentence-segmented, whitespace-separated CoNLL-style
// files into token tuples.
//
// Sentences are separated by blank lines. Every non-blank line is split on
// whitespace and passed through the converters of the configured columns, in
// column order. There is no header and no comment syntax.
package conll

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/revelaction/conlleval/column"
	"github.com/revelaction/conlleval/fault"
	sent "github.com/revelaction/conlleval/sentence"
)

// maxLineSize bounds a single input line. SRL files with many predicates
// have long lines.
const maxLineSize = 1024 * 1024

// Parser streams sentences through a bound column layout. A Parser holds no
// cursor: every Parse call is an independent pass.
type Parser struct {
	layout *column.Layout
}

// NewParser binds the column specs. Unknown converters and bad column
// shapes are ConfigErrors.
func NewParser(specs []column.Spec) (*Parser, error) {
	l, err := column.NewLayout(specs)
	if err != nil {
		return nil, err
	}

	return &Parser{layout: l}, nil
}

// New returns a parser for an already bound layout.
func New(l *column.Layout) *Parser {
	return &Parser{layout: l}
}

func (p *Parser) Layout() *column.Layout { return p.layout }

// Parse lazily yields the sentences of the files, in order.
//
// A sentence with a malformed line is yielded at its boundary without
// tokens, together with a *fault.MalformedInputError, and parsing continues
// with the next sentence. A file that cannot be opened or read yields its error and
// ends the sequence.
func (p *Parser) Parse(paths ...string) iter.Seq2[sent.Sentence, error] {
	return func(yield func(sent.Sentence, error) bool) {
		index := 0
		for _, path := range paths {
			f, err := os.Open(path)
			if err != nil {
				yield(sent.Sentence{}, fmt.Errorf("IO error: %w", err))
				return
			}

			ok := p.parse(path, f, &index, yield)
			f.Close()
			if !ok {
				return
			}
		}
	}
}

// ParseReader is Parse over a single reader. name is used in errors.
func (p *Parser) ParseReader(name string, r io.Reader) iter.Seq2[sent.Sentence, error] {
	return func(yield func(sent.Sentence, error) bool) {
		index := 0
		p.parse(name, r, &index, yield)
	}
}

// parse returns false when the consumer stopped or the reader failed. index
// is the running sentence count of the whole input.
func (p *Parser) parse(name string, r io.Reader, index *int, yield func(sent.Sentence, error) bool) bool {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		buf    []sent.Tuple
		bad    *fault.MalformedInputError
		first  int
		lineNo int
	)

	flush := func() bool {
		if len(buf) == 0 && bad == nil {
			return true
		}

		s := sent.Sentence{Source: name, Line: first, Index: *index, Tokens: buf}
		*index++
		buf = nil

		if bad != nil {
			err := bad
			bad = nil
			s.Tokens = nil
			return yield(s, err)
		}

		return yield(s, nil)
	}

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		if line == "" {
			if !flush() {
				return false
			}
			continue
		}

		if len(buf) == 0 && bad == nil {
			first = lineNo
		}

		// the rest of a poisoned sentence is skipped
		if bad != nil {
			continue
		}

		vals, err := p.layout.Convert(strings.Fields(line))
		if err != nil {
			var me *fault.MalformedInputError
			if errors.As(err, &me) {
				bad = me.At(name, lineNo)
			} else {
				bad = &fault.MalformedInputError{Source: name, Line: lineNo, Err: err}
			}
			buf = nil
			continue
		}

		buf = append(buf, sent.Tuple(vals))
	}

	if err := sc.Err(); err != nil {
		yield(sent.Sentence{}, fmt.Errorf("IO error: %s: %w", name, err))
		return false
	}

	return flush()
}

// Result is one item of a Stream.
type Result struct {
	Sentence sent.Sentence
	Err      error
}

// Stream runs Parse in its own goroutine and delivers the results through a
// channel holding at most buffer items. The channel is closed at the end of
// the input or when ctx is done.
func (p *Parser) Stream(ctx context.Context, buffer int, paths ...string) <-chan Result {
	ch := make(chan Result, buffer)

	go func() {
		defer close(ch)
		for s, err := range p.Parse(paths...) {
			select {
			case ch <- Result{Sentence: s, Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}

// ReadAll collects all sentences of the files. Malformed sentences are
// returned apart, the first other error aborts.
func (p *Parser) ReadAll(paths ...string) (sent.Corpus, []error, error) {
	var (
		corpus sent.Corpus
		faults []error
	)

	for s, err := range p.Parse(paths...) {
		if err != nil {
			if fault.IsMalformed(err) {
				faults = append(faults, err)
				continue
			}
			return nil, faults, err
		}

		corpus = append(corpus, s)
	}

	return corpus, faults, nil
}
