// Package fault holds the error kinds shared by the parser, the converters
// and the scorers.
//
// Two kinds exist. A ConfigError is fatal: the run cannot start (unknown
// converter, unknown vocabulary, transition label outside the label set). A
// MalformedInputError is local to one input line or sentence: callers skip
// the sentence and keep going.
package fault

import (
	"errors"
	"fmt"
)

// ErrConfig matches every *ConfigError with errors.Is.
var ErrConfig = errors.New("configuration error")

// ErrMalformedInput matches every *MalformedInputError with errors.Is.
var ErrMalformedInput = errors.New("malformed input")

// ConfigError reports an inconsistency between configuration, registry,
// vocabularies and transition statistics.
type ConfigError struct {
	// Op is the operation that failed, f.ex. "dispatch converter".
	Op string
	// Name is the offending name (converter, column, vocabulary, label).
	Name   string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := e.Op
	if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	}

	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return "config: " + msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// Config is a shorthand constructor.
func Config(op, name, reason string) *ConfigError {
	return &ConfigError{Op: op, Name: name, Reason: reason}
}

// MalformedInputError reports a data line that cannot be converted.
type MalformedInputError struct {
	// Source is the file (or reader name) the line comes from.
	Source string
	// Line is 1-based; 0 when unknown.
	Line   int
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	loc := e.Source
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Source, e.Line)
	}

	msg := "malformed input"
	if loc != "" {
		msg += " at " + loc
	}

	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }

// Malformed is a shorthand constructor without location. The parser fills in
// Source and Line with At.
func Malformed(format string, args ...any) *MalformedInputError {
	return &MalformedInputError{Reason: fmt.Sprintf(format, args...)}
}

// At returns a copy of the error located at source:line.
func (e *MalformedInputError) At(source string, line int) *MalformedInputError {
	c := *e
	c.Source = source
	c.Line = line
	return &c
}

// IsConfig reports whether err is (or wraps) a configuration error.
func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsMalformed reports whether err is (or wraps) a malformed input error.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}
