package inspect

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/revelaction/conlleval/eval"
	"github.com/revelaction/conlleval/match"
	"github.com/revelaction/conlleval/render"
	"github.com/revelaction/conlleval/span"
)

const (
	completionThreshold = 1
	defaultWorst        = 10
)

var commands = []prompt.Suggest{
	{Text: "score", Description: "summary of the run"},
	{Text: "worst", Description: "worst [n]: sentences with most errors"},
	{Text: "label", Description: "label <L>: sentences with a wrong L span"},
	{Text: "quit", Description: "exit"},
}

type Handler struct {
	Summary  eval.Summary
	Results  []eval.Result
	Renderer *render.Renderer
	Out      io.Writer

	byIndex map[int]int
	labels  []string
}

func NewHandler(s eval.Summary, results []eval.Result, r *render.Renderer, out io.Writer) *Handler {
	h := &Handler{
		Summary:  s,
		Results:  results,
		Renderer: r,
		Out:      out,
		byIndex:  make(map[int]int, len(results)),
	}

	seen := map[string]bool{}
	for i, res := range results {
		h.byIndex[res.Index] = i
		for _, spans := range [][]span.Span{res.Excess, res.Missed} {
			for _, sp := range spans {
				if !seen[sp.Label] {
					seen[sp.Label] = true
					h.labels = append(h.labels, sp.Label)
				}
			}
		}
	}
	sort.Strings(h.labels)

	return h
}

func (h *Handler) Run() error {

	fmt.Fprintln(h.Out, "🔑 Ctrl+X: Toggle prefix, Ctrl+F: next Format, 🔧 score, worst [n], label <L>, <index>, quit")

	// initialize prompt history
	history := []string{}

	for {

		in := prompt.Input("      🔎 ", h.completer,
			prompt.OptionTitle("conlleval inspect"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionMaxSuggestion(12),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionHistory(history),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlF,
				Fn: func(buf *prompt.Buffer) {
					h.Renderer.NextFormat()
					fmt.Fprintln(h.Out, "Format set to: "+h.Renderer.Format)
				}}),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlX,
				Fn: func(buf *prompt.Buffer) {
					h.Renderer.NextPrefix()
					fmt.Fprintln(h.Out, "Prefix set to "+fmt.Sprintf("%t", h.Renderer.HasPrefix))
				}}),
		)

		history = append(history, in)

		quit, err := h.Execute(in)
		if quit {
			return nil
		}

		if err != nil {
			fmt.Fprintf(h.Out, "%v\n", err)
		}
	}
}

// Execute runs one command line. It reports whether the session is over.
func (h *Handler) Execute(in string) (bool, error) {
	tokens := strings.Fields(in)
	if len(tokens) == 0 {
		return false, nil
	}

	switch tokens[0] {
	case "quit":
		return true, nil

	case "score":
		h.Renderer.Summary(h.Summary)
		return false, nil

	case "worst":
		n := defaultWorst
		if len(tokens) > 1 {
			v, err := strconv.Atoi(tokens[1])
			if err != nil || v <= 0 {
				return false, fmt.Errorf("worst: %q is not a positive number", tokens[1])
			}
			n = v
		}
		h.Renderer.Results(h.Worst(n))
		return false, nil

	case "label":
		if len(tokens) != 2 {
			return false, errors.New("label: give one label")
		}
		h.Renderer.Results(h.WithLabel(tokens[1]))
		return false, nil
	}

	idx, err := strconv.Atoi(tokens[0])
	if err != nil {
		return false, fmt.Errorf("unknown command %q", tokens[0])
	}

	i, ok := h.byIndex[idx]
	if !ok {
		return false, fmt.Errorf("no sentence %d", idx)
	}

	h.Renderer.Result(h.Results[i])
	return false, nil
}

// Worst returns the n results with most errors, ties in corpus order.
func (h *Handler) Worst(n int) []eval.Result {
	sorted := make([]eval.Result, 0, len(h.Results))
	for _, r := range h.Results {
		if r.Errors() {
			sorted = append(sorted, r)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return errorCount(sorted[i]) > errorCount(sorted[j])
	})

	return sorted[:min(n, len(sorted))]
}

func errorCount(r eval.Result) int64 {
	switch r.Kind {
	case eval.Arcs:
		return r.Parse.Total - r.Parse.Correct[match.Both]
	case eval.Tokens:
		return r.Parse.Total - r.Parse.Correct[match.Label]
	}

	return r.Counts.Excess + r.Counts.Missed
}

// WithLabel returns the results with an excess or missed span of label.
func (h *Handler) WithLabel(label string) []eval.Result {
	var out []eval.Result
	for _, r := range h.Results {
		if hasLabel(r, label) {
			out = append(out, r)
		}
	}

	return out
}

func hasLabel(r eval.Result, label string) bool {
	for _, s := range r.Excess {
		if s.Label == label {
			return true
		}
	}

	for _, s := range r.Missed {
		if s.Label == label {
			return true
		}
	}

	return false
}

func (h *Handler) completer(in prompt.Document) []prompt.Suggest {
	befCursor := in.TextBeforeCursor()
	if len(befCursor) < completionThreshold {
		return []prompt.Suggest{}
	}

	tokens := strings.Split(befCursor, " ")
	if len(tokens) == 1 {
		return prompt.FilterHasPrefix(commands, tokens[0], true)
	}

	if tokens[0] == "label" && len(tokens) == 2 {
		s := make([]prompt.Suggest, 0, len(h.labels))
		for _, l := range h.labels {
			s = append(s, prompt.Suggest{Text: l, Description: "🏷 "})
		}
		return prompt.FilterHasPrefix(s, tokens[1], false)
	}

	return []prompt.Suggest{}
}
