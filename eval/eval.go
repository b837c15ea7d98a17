// Package eval scores predicted against gold annotations.
//
// An Evaluator compares one predicted sentence with its gold counterpart
// (Evaluate, free of side effects) and accumulates the outcome (Add). Only
// Add touches shared state, and it only adds, so sentences can be scored by
// concurrent workers in any order.
package eval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/revelaction/conlleval/column"
	"github.com/revelaction/conlleval/config"
	"github.com/revelaction/conlleval/evalfile"
	"github.com/revelaction/conlleval/fault"
	"github.com/revelaction/conlleval/match"
	sent "github.com/revelaction/conlleval/sentence"
	"github.com/revelaction/conlleval/span"
	"github.com/revelaction/conlleval/transition"
)

// Kind groups metrics by what they count.
type Kind int

const (
	// Spans: correct, excess and missed spans.
	Spans Kind = iota
	// Arcs: per-token head and label accuracy.
	Arcs
	// Tokens: per-token tag accuracy.
	Tokens
)

// Result is the outcome of one sentence.
type Result struct {
	Source string   `json:"source"`
	Index  int      `json:"index"`
	Kind   Kind     `json:"kind"`
	Words  []string `json:"words,omitempty"`

	Counts match.Counts      `json:"counts"`
	Parse  match.ParseCounts `json:"parse"`

	// Span level detail, sorted.
	Correct []span.Span `json:"correct,omitempty"`
	Excess  []span.Span `json:"excess,omitempty"`
	Missed  []span.Span `json:"missed,omitempty"`

	// Repairs counts tag scheme violations repaired in predicted tags.
	Repairs int `json:"repairs"`
	// Violations counts predicted transitions with zero probability.
	Violations int `json:"violations"`

	srl   *[2]evalfile.SRLRecord
	parse *[2]evalfile.ParseRecord
}

// Errors tells whether the sentence has any wrong span, arc or tag.
func (r Result) Errors() bool {
	switch r.Kind {
	case Arcs:
		return r.Parse.Correct[match.Both] < r.Parse.Total
	case Tokens:
		return r.Parse.Correct[match.Label] < r.Parse.Total
	}

	return r.Counts.Excess+r.Counts.Missed > 0
}

// Summary is a snapshot of an evaluator.
type Summary struct {
	Metric     string           `json:"metric"`
	Kind       Kind             `json:"kind"`
	Sentences  int64            `json:"sentences"`
	Score      match.Score      `json:"score"`
	Parse      match.ParseScore `json:"parse"`
	Repairs    int64            `json:"repairs"`
	Violations int64            `json:"violations"`
}

// Headline is the single number a metric reports.
func (s Summary) Headline() float64 {
	switch s.Metric {
	case Accuracy:
		return s.Parse.LS()
	case Precision:
		return s.Score.Precision
	case Recall:
		return s.Score.Recall
	}

	if s.Kind == Arcs {
		return s.Parse.LAS()
	}

	return s.Score.F1
}

// Evaluator scores sentence pairs of one metric.
type Evaluator interface {
	Metric() string
	Kind() Kind
	Evaluate(pred, gold sent.Sentence) (Result, error)
	Add(r Result)
	Summary() Summary
	Reset()
}

// Metric names.
const (
	Accuracy            = "accuracy"
	Precision           = "precision"
	Recall              = "recall"
	FScore              = "fscore"
	SRLEval             = "conll_srl_eval"
	SRLEvalAll          = "conll_srl_all_eval"
	ParseEval           = "conll_parse_eval"
	SRL09Eval           = "conll09_srl_eval"
	SRL09EvalSRLOnly    = "conll09_srl_eval_srl_only"
	SRL09EvalAll        = "conll09_srl_eval_all"
	SRL09EvalAllSRLOnly = "conll09_srl_eval_all_srl_only"
)

// Metrics returns the known metric names, sorted.
func Metrics() []string {
	m := []string{Accuracy, Precision, Recall, FScore, SRLEval, SRLEvalAll, ParseEval,
		SRL09Eval, SRL09EvalSRLOnly, SRL09EvalAll, SRL09EvalAllSRLOnly}
	sort.Strings(m)
	return m
}

// Dispatch builds the evaluator of a task. Unknown metric names, unknown
// columns, schemes or policies are ConfigErrors. trans may be nil.
func Dispatch(task config.Task, layout *column.Layout, trans *transition.Matrix, labelIDs map[string]int) (Evaluator, error) {
	switch task.Eval {
	case SRLEval, SRLEvalAll, SRL09Eval, SRL09EvalSRLOnly, SRL09EvalAll, SRL09EvalAllSRLOnly:
		return NewSRL(task, layout, trans, labelIDs)
	case ParseEval:
		return NewParse(task, layout)
	case Accuracy, Precision, Recall, FScore:
		return NewTagger(task, layout)
	}

	return nil, fault.Config("dispatch metric", task.Eval, "want one of "+strings.Join(Metrics(), ", "))
}

// columnRange resolves a task column; optional columns may be empty.
func columnRange(layout *column.Layout, task, role, name string, required bool) (*column.Range, error) {
	if name == "" {
		if required {
			return nil, fault.Config("configure task", task, fmt.Sprintf("missing %s column", role))
		}
		return nil, nil
	}

	r, err := layout.Range(name)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// first returns the first value of r for every token, "" when r is nil.
func first(s sent.Sentence, r *column.Range) []string {
	out := make([]string, len(s.Tokens))
	if r == nil {
		return out
	}

	for i, t := range s.Tokens {
		if v := r.Slice(t); len(v) > 0 {
			out[i] = v[0]
		}
	}

	return out
}

func sameLength(pred, gold sent.Sentence) error {
	if len(pred.Tokens) != len(gold.Tokens) {
		return &fault.MalformedInputError{
			Source: pred.Source,
			Line:   pred.Line,
			Reason: fmt.Sprintf("predicted sentence %d has %d tokens, gold has %d", pred.Index, len(pred.Tokens), len(gold.Tokens)),
		}
	}

	return nil
}

// isPredicate tells whether a predicate indicator value marks a predicate.
func isPredicate(v string) bool {
	switch strings.ToLower(v) {
	case "", "-", "_", "o", "0", "false":
		return false
	}
	return true
}
