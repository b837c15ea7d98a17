package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/revelaction/conlleval/eval"
)

// ErrNotFound is returned when a run id is not in the store.
var ErrNotFound = errors.New("run not found")

// Run is one stored evaluation: what was compared, the summary and,
// when read back by id, the per sentence results.
type Run struct {
	ID      uuid.UUID    `json:"id"`
	Name    string       `json:"name"`
	Task    string       `json:"task"`
	Created time.Time    `json:"created"`
	Gold    []string     `json:"gold"`
	Pred    []string     `json:"pred"`
	Summary eval.Summary `json:"summary"`
	// Faults counts the sentences skipped as malformed.
	Faults int `json:"faults"`
	// Unpaired counts sentences without a counterpart.
	Unpaired int `json:"unpaired"`

	Results []eval.Result `json:"results,omitempty"`
}

// NewRun stamps a report with a fresh id and the current time.
func NewRun(name, task string, gold, pred []string, rep eval.Report, unpaired int) Run {
	return Run{
		ID:       uuid.New(),
		Name:     name,
		Task:     task,
		Created:  time.Now().UTC().Truncate(time.Second),
		Gold:     gold,
		Pred:     pred,
		Summary:  rep.Summary,
		Faults:   len(rep.Faults),
		Unpaired: unpaired,
		Results:  rep.Results,
	}
}

// RunReader defines read operations for run storage
type RunReader interface {
	// List returns the runs without their results, newest first.
	// If taskMatch is not empty, only runs of tasks containing the string are returned.
	List(taskMatch string) ([]Run, error)

	// Read returns a run and its results by ID
	Read(id uuid.UUID) (Run, error)
}

// RunWriter defines write operations for run storage
type RunWriter interface {
	// Write persists a run and its results
	Write(r Run) error
}

// RunRepository combines read and write operations
type RunRepository interface {
	RunReader
	RunWriter
}
