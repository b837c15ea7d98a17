package filesystem

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/revelaction/conlleval/eval"
	"github.com/revelaction/conlleval/match"
	"github.com/revelaction/conlleval/span"
	"github.com/revelaction/conlleval/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(task string, created time.Time) storage.Run {
	r := storage.NewRun("baseline", task, []string{"gold.txt"}, []string{"pred.txt"}, eval.Report{
		Summary: eval.Summary{
			Metric:    eval.SRLEval,
			Sentences: 1,
			Score:     match.NewScore(match.Counts{Correct: 2, Excess: 1, Missed: 1}),
		},
		Results: []eval.Result{{
			Source: "gold.txt",
			Index:  0,
			Counts: match.Counts{Correct: 2, Excess: 1, Missed: 1},
			Excess: []span.Span{{Predicate: 1, Label: "A1", Start: 2, End: 2}},
		}},
		Faults: []error{errors.New("bad line")},
	}, 3)
	r.Created = created
	return r
}

func TestRunStoreWriteRead(t *testing.T) {
	s := NewRunStore(t.TempDir())
	now := time.Now().UTC().Truncate(time.Second)

	r := run("srl", now)
	require.NoError(t, s.Write(r))

	got, err := s.Read(r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, "srl", got.Task)
	assert.True(t, now.Equal(got.Created))
	assert.Equal(t, 1, got.Faults)
	assert.Equal(t, 3, got.Unpaired)
	assert.Equal(t, r.Summary, got.Summary)
	require.Len(t, got.Results, 1)
	assert.Equal(t, r.Results[0].Excess, got.Results[0].Excess)
}

func TestRunStoreList(t *testing.T) {
	s := NewRunStore(t.TempDir())
	now := time.Now().UTC().Truncate(time.Second)

	older := run("srl", now.Add(-time.Hour))
	newer := run("srl", now)
	other := run("dep", now.Add(-time.Minute))
	for _, r := range []storage.Run{older, newer, other} {
		require.NoError(t, s.Write(r))
	}

	all, err := s.List("")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, other.ID, all[1].ID)
	assert.Nil(t, all[0].Results)

	srl, err := s.List("sr")
	require.NoError(t, err)
	assert.Len(t, srl, 2)
}

func TestRunStoreNotFound(t *testing.T) {
	s := NewRunStore(t.TempDir())
	_, err := s.Read(uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = NewRunStore("/does/not/exist").List("")
	assert.Error(t, err)
}
