package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/revelaction/conlleval/eval"
	"github.com/revelaction/conlleval/match"
	"github.com/revelaction/conlleval/span"
)

func TestJSONRendererRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONRenderer(&buf)
	r.Results(nil)

	var results []eval.Result
	if err := json.Unmarshal(buf.Bytes(), &results); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if results == nil || len(results) != 0 {
		t.Fatalf("expected an empty array, got %v", results)
	}
}

func TestJSONRendererRenderOneResult(t *testing.T) {
	res := eval.Result{
		Source: "gold.txt",
		Index:  5,
		Words:  []string{"John", "ran"},
		Counts: match.Counts{Correct: 1, Missed: 1},
		Correct: []span.Span{
			{Predicate: 1, Label: "V", Start: 1, End: 1},
		},
		Missed: []span.Span{
			{Predicate: 1, Label: "A0", Start: 0, End: 0},
		},
	}

	var buf bytes.Buffer
	r := NewJSONRenderer(&buf)
	r.Results([]eval.Result{res})

	var results []eval.Result
	if err := json.Unmarshal(buf.Bytes(), &results); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	if results[0].Index != 5 {
		t.Errorf("expected index 5, got %d", results[0].Index)
	}

	if len(results[0].Missed) != 1 || results[0].Missed[0].Label != "A0" {
		t.Fatalf("expected 1 missed A0 span, got %v", results[0].Missed)
	}
}

func TestJSONRendererSummary(t *testing.T) {
	var buf bytes.Buffer
	NewJSONRenderer(&buf).Summary(eval.Summary{
		Metric: eval.SRLEval,
		Score:  match.NewScore(match.Counts{Correct: 3, Excess: 1}),
	})

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if got["metric"] != eval.SRLEval {
		t.Errorf("expected metric %q, got %v", eval.SRLEval, got["metric"])
	}

	score := got["score"].(map[string]any)
	if score["precision"] != 0.75 {
		t.Errorf("expected precision 0.75, got %v", score["precision"])
	}
}
