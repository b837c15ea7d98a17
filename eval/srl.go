package eval

import (
	"fmt"
	"sync/atomic"

	"github.com/revelaction/conlleval/column"
	"github.com/revelaction/conlleval/config"
	"github.com/revelaction/conlleval/evalfile"
	"github.com/revelaction/conlleval/fault"
	"github.com/revelaction/conlleval/match"
	sent "github.com/revelaction/conlleval/sentence"
	"github.com/revelaction/conlleval/span"
	"github.com/revelaction/conlleval/transition"
	"github.com/revelaction/conlleval/vocab"
)

// senseLabel prefixes the label of predicate sense spans so they never
// equal an argument span on the predicate token.
const senseLabel = "sense:"

// SRLSentence is one sentence of semantic role annotation, tags already
// mapped to strings.
type SRLSentence struct {
	Words []string
	// Mask marks real tokens; nil keeps all.
	Mask []bool
	// Predicates are token positions, in order.
	Predicates []int
	// Senses holds the sense of each predicate, when scored.
	Senses []string
	// Tags holds one tag sequence per predicate, in Predicates order.
	Tags [][]string
}

// SRL scores labeled argument spans per predicate, the CoNLL-2005 and
// CoNLL-2009 way.
type SRL struct {
	metric  string
	scheme  span.Scheme
	policy  span.Policy
	exclude map[string]bool
	senses  bool

	words, predicates, tags, senseCol *column.Range

	trans    *transition.Matrix
	labelIDs map[string]int

	acc        *match.Accumulator
	sentences  atomic.Int64
	repairs    atomic.Int64
	violations atomic.Int64
}

var _ Evaluator = (*SRL)(nil)

// NewSRL builds an SRL evaluator. The CoNLL-2009 metrics that are not
// "srl_only" also score predicate senses; they need a senses column. trans
// may be nil; labelIDs maps tags to the ids of trans.
func NewSRL(task config.Task, layout *column.Layout, trans *transition.Matrix, labelIDs map[string]int) (*SRL, error) {
	scheme, err := span.SchemeByName(task.Scheme)
	if err != nil {
		return nil, err
	}

	if task.Scheme == "" && (task.Eval == SRL09Eval || task.Eval == SRL09EvalAll ||
		task.Eval == SRL09EvalSRLOnly || task.Eval == SRL09EvalAllSRLOnly) {
		scheme = span.CoNLL09
	}

	policy, err := span.PolicyByName(task.OrphanPolicy)
	if err != nil {
		return nil, err
	}

	e := &SRL{
		metric:   task.Eval,
		scheme:   scheme,
		policy:   policy,
		exclude:  map[string]bool{},
		senses:   task.Eval == SRL09Eval || task.Eval == SRL09EvalAll,
		trans:    trans,
		labelIDs: labelIDs,
		acc:      match.NewAccumulator(),
	}

	for _, l := range task.ExcludeLabels {
		e.exclude[l] = true
	}

	if e.words, err = columnRange(layout, task.Name, "words", task.Words, false); err != nil {
		return nil, err
	}

	if e.predicates, err = columnRange(layout, task.Name, "predicates", task.Predicates, true); err != nil {
		return nil, err
	}

	if e.tags, err = columnRange(layout, task.Name, "tags", task.Tags, true); err != nil {
		return nil, err
	}

	if e.senseCol, err = columnRange(layout, task.Name, "senses", task.Senses, e.senses); err != nil {
		return nil, err
	}

	if trans != nil && labelIDs == nil {
		return nil, fault.Config("configure task", task.Name, "transition matrix without label ids")
	}

	return e, nil
}

func (e *SRL) Metric() string { return e.metric }
func (e *SRL) Kind() Kind     { return Spans }

// View extracts the SRL annotation of a parsed sentence. Tag columns are
// matched to predicates in token order; a count mismatch is a
// MalformedInputError.
func (e *SRL) View(s sent.Sentence) (SRLSentence, error) {
	v := SRLSentence{Words: first(s, e.words)}

	for i, p := range first(s, e.predicates) {
		if isPredicate(p) {
			v.Predicates = append(v.Predicates, i)
		}
	}

	if e.senseCol != nil {
		senses := first(s, e.senseCol)
		for _, p := range v.Predicates {
			v.Senses = append(v.Senses, senses[p])
		}
	}

	v.Tags = make([][]string, len(v.Predicates))
	for k := range v.Tags {
		v.Tags[k] = make([]string, len(s.Tokens))
	}

	for i, t := range s.Tokens {
		vals := e.tags.Slice(t)
		if len(vals) != len(v.Predicates) {
			return SRLSentence{}, &fault.MalformedInputError{
				Source: s.Source,
				Line:   s.Line + i,
				Reason: fmt.Sprintf("%d tag columns for %d predicates", len(vals), len(v.Predicates)),
			}
		}

		for k, tag := range vals {
			v.Tags[k][i] = tag
		}
	}

	return v, nil
}

// Evaluate scores one predicted sentence against gold. It has no side
// effects.
func (e *SRL) Evaluate(pred, gold sent.Sentence) (Result, error) {
	if err := sameLength(pred, gold); err != nil {
		return Result{}, err
	}

	pv, err := e.View(pred)
	if err != nil {
		return Result{}, err
	}

	gv, err := e.View(gold)
	if err != nil {
		return Result{}, err
	}

	r := e.Compare(pv, gv)
	r.Source = gold.Source
	r.Index = gold.Index
	return r, nil
}

// Compare scores two SRL annotations of the same sentence.
func (e *SRL) Compare(pred, gold SRLSentence) Result {
	predArgs, repairs := e.extract(pred)
	goldArgs, _ := e.extract(gold)

	ps := e.scored(pred, predArgs)
	gs := e.scored(gold, goldArgs)

	r := Result{Kind: Spans, Words: gold.Words, Repairs: repairs}
	r.Correct, r.Excess, r.Missed = match.Diff(ps, gs)
	r.Counts = match.Counts{
		Correct: int64(len(r.Correct)),
		Excess:  int64(len(r.Excess)),
		Missed:  int64(len(r.Missed)),
	}

	if e.trans != nil {
		for _, tags := range pred.Tags {
			r.Violations += len(e.trans.Violations(e.ids(tags, pred.Mask)))
		}
	}

	words := gold.Words
	if len(words) == 0 {
		words = pred.Words
	}
	if len(words) == 0 {
		words = placeholders(gold)
	}

	r.srl = &[2]evalfile.SRLRecord{
		record(words, pred, predArgs),
		record(words, gold, goldArgs),
	}

	return r
}

// record builds the eval file record of s over its unmasked tokens only.
// Positions are renumbered to the kept tokens.
func record(words []string, s SRLSentence, args [][]span.Span) evalfile.SRLRecord {
	if s.Mask == nil {
		return evalfile.SRLRecord{Words: words, Predicates: s.Predicates, Args: args}
	}

	kept := make(map[int]int, len(words))
	rec := evalfile.SRLRecord{Words: []string{}}
	for i, w := range words {
		if i < len(s.Mask) && s.Mask[i] {
			kept[i] = len(rec.Words)
			rec.Words = append(rec.Words, w)
		}
	}

	for k, p := range s.Predicates {
		np, ok := kept[p]
		if !ok {
			continue
		}

		var spans []span.Span
		if k < len(args) {
			for _, a := range args[k] {
				start, okStart := kept[a.Start]
				end, okEnd := kept[a.End]
				if !okStart || !okEnd {
					continue
				}
				a.Predicate, a.Start, a.End = np, start, end
				spans = append(spans, a)
			}
		}

		rec.Predicates = append(rec.Predicates, np)
		rec.Args = append(rec.Args, spans)
	}

	return rec
}

// extract returns the argument spans of each predicate.
func (e *SRL) extract(s SRLSentence) ([][]span.Span, int) {
	out := make([][]span.Span, len(s.Predicates))
	repairs := 0
	for k, p := range s.Predicates {
		if k >= len(s.Tags) {
			break
		}
		spans, n := span.Extract(s.Tags[k], s.Mask, e.scheme, e.policy)
		out[k] = span.Anchor(spans, p)
		repairs += n
	}

	return out, repairs
}

// scored flattens the per predicate spans, drops excluded labels and adds
// sense spans.
func (e *SRL) scored(s SRLSentence, args [][]span.Span) []span.Span {
	var out []span.Span
	for _, spans := range args {
		for _, a := range spans {
			if !e.exclude[a.Label] {
				out = append(out, a)
			}
		}
	}

	if e.senses {
		for k, p := range s.Predicates {
			if k < len(s.Senses) && s.Senses[k] != "" {
				out = append(out, span.Span{Predicate: p, Label: senseLabel + s.Senses[k], Start: p, End: p})
			}
		}
	}

	return out
}

// placeholders stands in for the words of a sentence read from ids only.
func placeholders(s SRLSentence) []string {
	n := len(s.Mask)
	for _, t := range s.Tags {
		n = max(n, len(t))
	}

	out := make([]string, n)
	for i := range out {
		out[i] = "_"
	}

	return out
}

func (e *SRL) ids(tags []string, mask []bool) []int {
	ids := make([]int, len(tags))
	for i, t := range tags {
		id, ok := e.labelIDs[t]
		if !ok || (mask != nil && (i >= len(mask) || !mask[i])) {
			id = -1
		}
		ids[i] = id
	}

	return ids
}

func (e *SRL) Add(r Result) {
	e.acc.Add(r.Counts)
	e.sentences.Add(1)
	e.repairs.Add(int64(r.Repairs))
	e.violations.Add(int64(r.Violations))
}

func (e *SRL) Summary() Summary {
	return Summary{
		Metric:     e.metric,
		Kind:       Spans,
		Sentences:  e.sentences.Load(),
		Score:      e.acc.Snapshot(),
		Repairs:    e.repairs.Load(),
		Violations: e.violations.Load(),
	}
}

func (e *SRL) Reset() {
	e.acc.Reset()
	e.sentences.Store(0)
	e.repairs.Store(0)
	e.violations.Store(0)
}

// SRLBatch is a batch of model outputs and gold ids, [sentence][token], tags
// [sentence][predicate][token]. A non-zero predicate id marks a predicate.
type SRLBatch struct {
	Words          [][]int
	Mask           [][]bool
	PredPredicates [][]int
	GoldPredicates [][]int
	PredTags       [][][]int
	GoldTags       [][][]int
}

// EvaluateBatch maps the ids of a batch back to strings with the word and
// tag vocabularies, scores every sentence and adds the batch. A batch is
// added whole or not at all.
func (e *SRL) EvaluateBatch(b SRLBatch, maps vocab.ReverseMaps, wordVocab, tagVocab string) ([]Result, error) {
	n := len(b.PredTags)
	if len(b.GoldTags) != n || len(b.PredPredicates) != n || len(b.GoldPredicates) != n {
		return nil, fault.Malformed("batch of %d predicted, %d gold tag sets, %d/%d predicate rows",
			n, len(b.GoldTags), len(b.PredPredicates), len(b.GoldPredicates))
	}

	var words [][]string
	if wordVocab != "" && b.Words != nil {
		w, err := maps.Lookup(b.Words, b.Mask, wordVocab)
		if err != nil {
			return nil, err
		}
		words = w
	}

	results := make([]Result, n)
	for i := 0; i < n; i++ {
		var mask []bool
		if b.Mask != nil {
			mask = b.Mask[i]
		}

		pv, err := batchSentence(maps, tagVocab, mask, b.PredPredicates[i], b.PredTags[i])
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}

		gv, err := batchSentence(maps, tagVocab, mask, b.GoldPredicates[i], b.GoldTags[i])
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}

		if words != nil {
			pv.Words, gv.Words = words[i], words[i]
		}

		results[i] = e.Compare(pv, gv)
		results[i].Index = i
	}

	for _, r := range results {
		e.Add(r)
	}

	return results, nil
}

func batchSentence(maps vocab.ReverseMaps, tagVocab string, mask []bool, predicates []int, tags [][]int) (SRLSentence, error) {
	v := SRLSentence{Mask: mask}
	for i, id := range predicates {
		if id == 0 || (mask != nil && (i >= len(mask) || !mask[i])) {
			continue
		}
		v.Predicates = append(v.Predicates, i)
	}

	if len(tags) != len(v.Predicates) {
		return SRLSentence{}, fault.Malformed("%d tag rows for %d predicates", len(tags), len(v.Predicates))
	}

	var masks [][]bool
	if mask != nil {
		masks = make([][]bool, len(tags))
		for k := range masks {
			masks[k] = mask
		}
	}

	strs, err := maps.Lookup(tags, masks, tagVocab)
	if err != nil {
		return SRLSentence{}, err
	}

	v.Tags = strs
	return v, nil
}
