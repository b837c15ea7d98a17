package eval

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/revelaction/conlleval/column"
	"github.com/revelaction/conlleval/config"
	"github.com/revelaction/conlleval/evalfile"
	"github.com/revelaction/conlleval/fault"
	"github.com/revelaction/conlleval/match"
	sent "github.com/revelaction/conlleval/sentence"
	"github.com/revelaction/conlleval/vocab"
)

// selfLoop is the converter writing 0-based heads with roots pointing to
// themselves.
const selfLoop = "parse_roots_self_loop"

// ParseSentence is one sentence of dependency annotation.
type ParseSentence struct {
	Words  []string
	POS    []string
	Heads  []int
	Labels []string
	// Mask marks real tokens; nil keeps all.
	Mask []bool
}

// Parse scores dependency arcs per token: label, head and both.
type Parse struct {
	words, pos, heads, labels *column.Range

	hasRoot   bool
	zeroBased bool
	punct     map[string]bool

	acc       *match.ParseAccumulator
	sentences atomic.Int64
}

var _ Evaluator = (*Parse)(nil)

// NewParse builds a dependency evaluator. With has_root_token the first
// token of every sentence is an artificial root and is not scored. Tokens
// whose gold POS is one of punct_tags are not scored.
func NewParse(task config.Task, layout *column.Layout) (*Parse, error) {
	e := &Parse{
		hasRoot: task.HasRootToken,
		punct:   map[string]bool{},
		acc:     match.NewParseAccumulator(),
	}

	for _, p := range task.PunctTags {
		e.punct[p] = true
	}

	var err error
	if e.words, err = columnRange(layout, task.Name, "words", task.Words, false); err != nil {
		return nil, err
	}

	if e.pos, err = columnRange(layout, task.Name, "pos", task.POS, len(task.PunctTags) > 0); err != nil {
		return nil, err
	}

	if e.heads, err = columnRange(layout, task.Name, "heads", task.Heads, true); err != nil {
		return nil, err
	}

	if e.labels, err = columnRange(layout, task.Name, "labels", task.Labels, true); err != nil {
		return nil, err
	}

	for _, c := range layout.Columns() {
		if c.Name == task.Heads && c.Converter == selfLoop {
			e.zeroBased = true
		}
	}

	return e, nil
}

func (e *Parse) Metric() string { return ParseEval }
func (e *Parse) Kind() Kind     { return Arcs }

// View extracts the dependency annotation of a parsed sentence. A head that
// is not an integer is a MalformedInputError.
func (e *Parse) View(s sent.Sentence) (ParseSentence, error) {
	v := ParseSentence{
		Words:  first(s, e.words),
		POS:    first(s, e.pos),
		Labels: first(s, e.labels),
		Heads:  make([]int, len(s.Tokens)),
	}

	for i, h := range first(s, e.heads) {
		head, err := strconv.Atoi(h)
		if err != nil {
			return ParseSentence{}, &fault.MalformedInputError{
				Source: s.Source,
				Line:   s.Line + i,
				Reason: fmt.Sprintf("head %q is not an integer", h),
			}
		}
		v.Heads[i] = head
	}

	return v, nil
}

func (e *Parse) Evaluate(pred, gold sent.Sentence) (Result, error) {
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

	r, err := e.Compare(pv, gv)
	if err != nil {
		return Result{}, err
	}

	r.Source = gold.Source
	r.Index = gold.Index
	return r, nil
}

// Compare counts, for every real token that is not the artificial root nor
// punctuation, whether its label, its head, or both match gold.
func (e *Parse) Compare(pred, gold ParseSentence) (Result, error) {
	n := len(gold.Heads)
	if len(pred.Heads) != n || len(pred.Labels) != n || len(gold.Labels) != n {
		return Result{}, fault.Malformed("heads %d/%d and labels %d/%d differ in length",
			len(pred.Heads), n, len(pred.Labels), len(gold.Labels))
	}

	start := 0
	if e.hasRoot {
		start = 1
	}

	var c match.ParseCounts
	for i := start; i < n; i++ {
		if gold.Mask != nil && (i >= len(gold.Mask) || !gold.Mask[i]) {
			continue
		}

		if i < len(gold.POS) && e.punct[gold.POS[i]] {
			continue
		}

		c.Total++
		labelOK := pred.Labels[i] == gold.Labels[i]
		headOK := pred.Heads[i] == gold.Heads[i]

		if labelOK {
			c.Correct[match.Label]++
		}

		if headOK {
			c.Correct[match.Head]++
		}

		if labelOK && headOK {
			c.Correct[match.Both]++
		}
	}

	r := Result{Kind: Arcs, Words: gold.Words, Parse: c}
	r.parse = &[2]evalfile.ParseRecord{e.record(pred, gold.Words), e.record(gold, gold.Words)}
	return r, nil
}

// record converts a sentence to the CoNLL-X convention: 1-based heads, 0 for
// the root, artificial root token dropped.
func (e *Parse) record(s ParseSentence, words []string) evalfile.ParseRecord {
	start := 0
	if e.hasRoot {
		start = 1
	}

	var rec evalfile.ParseRecord
	for i := start; i < len(s.Heads); i++ {
		if s.Mask != nil && (i >= len(s.Mask) || !s.Mask[i]) {
			continue
		}

		h := s.Heads[i]
		switch {
		case e.hasRoot:
			// positions already count the root token as 0
		case e.zeroBased && h == i:
			h = 0
		case e.zeroBased:
			h++
		}

		w := "_"
		if i < len(words) && words[i] != "" {
			w = words[i]
		}

		pos := ""
		if i < len(s.POS) {
			pos = s.POS[i]
		}

		rec.Words = append(rec.Words, w)
		rec.POS = append(rec.POS, pos)
		rec.Heads = append(rec.Heads, h)
		rec.Labels = append(rec.Labels, s.Labels[i])
	}

	return rec
}

func (e *Parse) Add(r Result) {
	e.acc.Add(r.Parse)
	e.sentences.Add(1)
}

func (e *Parse) Summary() Summary {
	return Summary{
		Metric:    ParseEval,
		Kind:      Arcs,
		Sentences: e.sentences.Load(),
		Parse:     e.acc.Snapshot(),
	}
}

func (e *Parse) Reset() {
	e.acc.Reset()
	e.sentences.Store(0)
}

// ParseBatch is a batch of model outputs and gold ids, [sentence][token].
// Heads are positions in the sentence.
type ParseBatch struct {
	Words      [][]int
	Mask       [][]bool
	GoldPOS    [][]int
	PredHeads  [][]int
	GoldHeads  [][]int
	PredLabels [][]int
	GoldLabels [][]int
}

// EvaluateBatch maps label ids back to strings, scores every sentence and
// adds the batch, whole or not at all. wordVocab and posVocab may be empty.
func (e *Parse) EvaluateBatch(b ParseBatch, maps vocab.ReverseMaps, wordVocab, posVocab, labelVocab string) ([]Result, error) {
	n := len(b.GoldHeads)
	if len(b.PredHeads) != n || len(b.PredLabels) != n || len(b.GoldLabels) != n {
		return nil, fault.Malformed("batch rows differ: heads %d/%d, labels %d/%d",
			len(b.PredHeads), n, len(b.PredLabels), len(b.GoldLabels))
	}

	predLabels, err := maps.Lookup(b.PredLabels, b.Mask, labelVocab)
	if err != nil {
		return nil, err
	}

	goldLabels, err := maps.Lookup(b.GoldLabels, b.Mask, labelVocab)
	if err != nil {
		return nil, err
	}

	var words, pos [][]string
	if wordVocab != "" && b.Words != nil {
		if words, err = maps.Lookup(b.Words, b.Mask, wordVocab); err != nil {
			return nil, err
		}
	}

	if posVocab != "" && b.GoldPOS != nil {
		if pos, err = maps.Lookup(b.GoldPOS, b.Mask, posVocab); err != nil {
			return nil, err
		}
	}

	results := make([]Result, n)
	for i := 0; i < n; i++ {
		pv := ParseSentence{Heads: b.PredHeads[i], Labels: predLabels[i]}
		gv := ParseSentence{Heads: b.GoldHeads[i], Labels: goldLabels[i]}
		if b.Mask != nil {
			gv.Mask = b.Mask[i]
			pv.Mask = b.Mask[i]
		}
		if words != nil {
			pv.Words, gv.Words = words[i], words[i]
		}
		if pos != nil {
			gv.POS = pos[i]
		}

		r, err := e.Compare(pv, gv)
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}
		r.Index = i
		results[i] = r
	}

	for _, r := range results {
		e.Add(r)
	}

	return results, nil
}
