package render

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/revelaction/conlleval/eval"
	"github.com/revelaction/conlleval/span"
	"github.com/revelaction/conlleval/stat"
	"github.com/revelaction/conlleval/storage"
)

const (
	partialOffset = 6
	Defaultformat = "all"
)

var (
	Black   = "\033[1;30m"
	Red     = "\033[1;31m"
	Green   = "\033[1;32m"
	Yellow  = "\033[0;33m"
	Purple  = "\033[1;34m"
	Magenta = "\033[1;35m"
	Teal    = "\033[1;36m"
	Gray    = "\033[0;37m"
	White   = "\033[1;37m"
	Off     = "\033[0m"
	//Yellow256  = "\033[1;38;5;202m"
	Yellow256 = "\033[1;38;5;130m"
	Grey256   = "\033[1;38;5;145m"
	Green256  = "\033[1;38;5;70m"
	ClearLine = "\033[K"
)

// Reporter prints evaluation outcomes.
type Reporter interface {
	Summary(s eval.Summary)
	Results(rs []eval.Result)
}

func SupportedFormats() []string {
	return []string{"all", "part", "diff", "score", "aggr"}
}

type Renderer struct {
	W io.Writer

	HasColor bool

	HasPrefix bool

	PrefixFunc func(eval.Result) string

	// Format determines how results are printed
	//
	// all: the whole sentence and every span
	// part: the words around the wrong spans, and the wrong spans
	// diff: only sentences with errors, only the wrong spans
	// score: one line of counts per sentence
	// aggr: correct, excess and missed counts per label
	Format string
}

var _ Reporter = (*Renderer)(nil)

func NewRenderer() *Renderer {
	return &Renderer{W: os.Stdout, Format: Defaultformat}
}

// Summary prints the scores of a run, the headline measure highlighted.
func (r *Renderer) Summary(s eval.Summary) {
	fmt.Fprintf(r.W, "%s%s%s  %d sentences\n", r.color(Grey256), s.Metric, r.color(Off), s.Sentences)

	switch s.Kind {
	case eval.Arcs:
		fmt.Fprintf(r.W, "tokens %d\n", s.Parse.Total)
		fmt.Fprintf(r.W, "LS %s  UAS %s  LAS %s\n",
			r.percent(s.Parse.LS(), false), r.percent(s.Parse.UAS(), false), r.percent(s.Parse.LAS(), true))
	default:
		c := s.Score.Counts
		fmt.Fprintf(r.W, "correct %d  excess %d  missed %d\n", c.Correct, c.Excess, c.Missed)
		if s.Kind == eval.Tokens {
			fmt.Fprintf(r.W, "accuracy %s  ", r.percent(s.Parse.LS(), s.Metric == eval.Accuracy))
		}
		fmt.Fprintf(r.W, "precision %s  recall %s  F1 %s\n",
			r.percent(s.Score.Precision, s.Metric == eval.Precision),
			r.percent(s.Score.Recall, s.Metric == eval.Recall),
			r.percent(s.Score.F1, s.Metric != eval.Accuracy && s.Metric != eval.Precision && s.Metric != eval.Recall))
	}

	if s.Repairs > 0 || s.Violations > 0 {
		fmt.Fprintf(r.W, "%srepairs %d  violations %d%s\n", r.color(Yellow256), s.Repairs, s.Violations, r.color(Off))
	}
}

func (r *Renderer) percent(v float64, headline bool) string {
	p := fmt.Sprintf("%6.2f", 100*v)
	if headline {
		return r.color(Green256) + p + r.color(Off)
	}
	return p
}

func (r *Renderer) color(c string) string {
	if !r.HasColor {
		return ""
	}
	return c
}

// Results prints per sentence results in the current Format.
func (r *Renderer) Results(rs []eval.Result) {
	if r.Format == "aggr" {
		r.aggr(rs)
		return
	}

	for _, res := range rs {
		r.Result(res)
	}
}

func (r *Renderer) Result(res eval.Result) {
	prefix := r.buildPrefix(res)

	switch r.Format {
	case "score":
		fmt.Fprintf(r.W, "%s%s\n", prefix, r.counts(res))
		return
	case "diff":
		if !res.Errors() {
			return
		}
	}

	from, to := 0, len(res.Words)
	if r.Format == "part" {
		from, to = syntagma(res)
	}

	fmt.Fprintf(r.W, "%s%s\n", prefix, r.sentence(res, from, to))
	if r.Format == "all" {
		r.spans("✓", Green256, res.Correct, res.Words)
	}
	r.spans("+", Red, res.Excess, res.Words)
	r.spans("-", Yellow256, res.Missed, res.Words)
}

func (r *Renderer) counts(res eval.Result) string {
	c := res.Parse.Correct
	switch res.Kind {
	case eval.Arcs:
		return fmt.Sprintf("tokens %d  label %d  head %d  both %d", res.Parse.Total, c[0], c[1], c[2])
	case eval.Tokens:
		return fmt.Sprintf("tokens %d  equal %d  correct %d  excess %d  missed %d",
			res.Parse.Total, c[0], res.Counts.Correct, res.Counts.Excess, res.Counts.Missed)
	}

	return fmt.Sprintf("correct %d  excess %d  missed %d", res.Counts.Correct, res.Counts.Excess, res.Counts.Missed)
}

// sentence colors the words [from, to) of wrong spans: excess red, missed
// yellow.
func (r *Renderer) sentence(res eval.Result, from, to int) string {
	words := res.Words[from:to]
	marks := map[int]string{}
	for _, s := range res.Missed {
		mark(marks, s, Yellow256)
	}
	for _, s := range res.Excess {
		mark(marks, s, Red)
	}

	out := make([]string, len(words))
	for i, w := range words {
		if c, ok := marks[i+from]; ok && r.HasColor {
			out[i] = c + w + Off
			continue
		}
		out[i] = w
	}

	return strings.Join(out, " ")
}

func mark(marks map[int]string, s span.Span, color string) {
	for i := s.Start; i <= s.End; i++ {
		marks[i] = color
	}
}

// syntagma returns the window [from, to) of words around the wrong spans of
// res, all words when there is none.
func syntagma(res eval.Result) (int, int) {
	wrong := append(append([]span.Span{}, res.Excess...), res.Missed...)
	if len(wrong) == 0 || len(res.Words) == 0 {
		return 0, len(res.Words)
	}

	first, last := wrong[0].Start, wrong[0].End
	for _, s := range wrong {
		first = min(first, s.Start)
		last = max(last, s.End)
	}

	lastTokenIndex := len(res.Words) - 1
	from, to := 0, lastTokenIndex
	if first > partialOffset {
		from = first - partialOffset
	}

	if lastTokenIndex-last > partialOffset {
		to = last + partialOffset
	}

	from = min(from, lastTokenIndex)
	to = min(max(to, from), lastTokenIndex)
	return from, to + 1
}

func (r *Renderer) spans(sign, color string, spans []span.Span, words []string) {
	for _, s := range spans {
		text := ""
		if s.Start >= 0 && s.End < len(words) && s.Start <= s.End {
			text = strings.Join(words[s.Start:s.End+1], " ")
		}
		fmt.Fprintf(r.W, "    %s%s %s%s %s\n", r.color(color), sign, s, r.color(Off), text)
	}
}

func (r *Renderer) buildPrefix(res eval.Result) string {
	if !r.HasPrefix {
		return PrefixFuncEmpty(res)
	}

	if r.PrefixFunc != nil {
		return r.PrefixFunc(res)
	}

	// Default
	return fmt.Sprintf("[%s %5d] ✍  ", r.title(res.Source), res.Index)
}

func PrefixFuncEmpty(res eval.Result) string {
	return ""
}

func PrefixFuncIconHand(res eval.Result) string {
	return fmt.Sprintf("%2d ✍  ", res.Index)
}

func (r *Renderer) title(source string) string {
	l := len(source)
	var part string
	if l <= 20 {
		part = fmt.Sprintf("%-20s", source)
	} else {
		part = source[l-20:]
	}

	return r.color(Grey256) + part + r.color(Off)
}

// NextFormat sets the Renderer Format option to a different one, following
// the SupportedFormats() order.
func (r *Renderer) NextFormat() {

	supported := SupportedFormats()
	for i, format := range supported {
		if format == r.Format {
			switch i {
			case len(supported) - 1:
				r.Format = supported[0]
			default:
				r.Format = supported[i+1]
			}

			break
		}
	}
}

func (r *Renderer) NextPrefix() {

	// toggle
	r.HasPrefix = !r.HasPrefix
}

type labelCounts struct {
	Label                   string
	Correct, Excess, Missed int
}

// aggr prints span counts per label, most errors first.
func (r *Renderer) aggr(rs []eval.Result) {
	byLabel := map[string]*labelCounts{}
	get := func(l string) *labelCounts {
		if _, ok := byLabel[l]; !ok {
			byLabel[l] = &labelCounts{Label: l}
		}
		return byLabel[l]
	}

	for _, res := range rs {
		for _, s := range res.Correct {
			get(s.Label).Correct++
		}
		for _, s := range res.Excess {
			get(s.Label).Excess++
		}
		for _, s := range res.Missed {
			get(s.Label).Missed++
		}
	}

	sl := make([]labelCounts, 0, len(byLabel))
	for _, c := range byLabel {
		sl = append(sl, *c)
	}

	sort.Slice(sl, func(i, j int) bool {
		ei, ej := sl[i].Excess+sl[i].Missed, sl[j].Excess+sl[j].Missed
		if ei != ej {
			return ei > ej
		}
		return sl[i].Label < sl[j].Label
	})

	for _, c := range sl {
		fmt.Fprintf(r.W, "%-20s correct %6d  excess %6d  missed %6d\n", c.Label, c.Correct, c.Excess, c.Missed)
	}
}

// Stats prints corpus statistics.
func (r *Renderer) Stats(s stat.Stats) {
	fmt.Fprintf(r.W, "sentences %d  tokens %d  mean %.2f  max %d\n",
		s.NumSentences, s.NumTokens, s.TokensPerSentenceMean, s.TokensPerSentenceMax)
	if s.NumFaults > 0 {
		fmt.Fprintf(r.W, "%smalformed %d%s\n", r.color(Red), s.NumFaults, r.color(Off))
	}

	for _, l := range s.Lengths() {
		fmt.Fprintf(r.W, "%5d %6d\n", l, s.TokensPerSentenceDis[l])
	}
}

// Runs prints one line per stored run.
func (r *Renderer) Runs(runs []storage.Run) {
	for _, run := range runs {
		fmt.Fprintf(r.W, "%s  %s  %-12s %-30s %6.2f  %s\n",
			run.ID, run.Created.Format("2006-01-02 15:04"), run.Task, run.Summary.Metric,
			100*run.Summary.Headline(), r.color(Grey256)+run.Name+r.color(Off))
	}
}
