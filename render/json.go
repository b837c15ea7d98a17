package render

import (
	"encoding/json"
	"io"

	"github.com/revelaction/conlleval/eval"
)

// JSONRenderer writes evaluation outcomes as JSON to a writer, one value per
// call.
type JSONRenderer struct {
	W io.Writer
}

// NewJSONRenderer creates a JSONRenderer writing to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{W: w}
}

// Summary serializes a score snapshot as a JSON object.
func (r *JSONRenderer) Summary(s eval.Summary) {
	json.NewEncoder(r.W).Encode(s)
}

// Results serializes per sentence results as a JSON array.
func (r *JSONRenderer) Results(results []eval.Result) {
	if results == nil {
		results = []eval.Result{}
	}
	json.NewEncoder(r.W).Encode(results)
}

// compile-time interface check
var _ Reporter = (*JSONRenderer)(nil)
