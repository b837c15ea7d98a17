package zombiezen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/revelaction/conlleval/eval"
	"github.com/revelaction/conlleval/storage"
)

type RunStore struct {
	pool *sqlitex.Pool
}

var _ storage.RunRepository = (*RunStore)(nil)

func NewRunStore(pool *sqlitex.Pool) *RunStore {
	return &RunStore{pool: pool}
}

const runColumns = "id, name, task, created, gold, pred, faults, unpaired, summary"

func (h *RunStore) List(taskMatch string) ([]storage.Run, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer h.pool.Put(conn)

	query := "SELECT " + runColumns + " FROM runs"
	var args []interface{}
	if taskMatch != "" {
		query += " WHERE instr(task, ?) > 0"
		args = append(args, taskMatch)
	}
	query += " ORDER BY created DESC, rowid DESC"

	runs := []storage.Run{}
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			r, err := scanRun(stmt)
			if err != nil {
				return err
			}
			runs = append(runs, r)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return runs, nil
}

func (h *RunStore) Read(id uuid.UUID) (storage.Run, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return storage.Run{}, err
	}
	defer h.pool.Put(conn)

	var r storage.Run
	found := false
	err = sqlitex.Execute(conn, "SELECT "+runColumns+" FROM runs WHERE id = ? LIMIT 1", &sqlitex.ExecOptions{
		Args: []interface{}{id.String()},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var err error
			r, err = scanRun(stmt)
			found = true
			return err
		},
	})
	if err != nil {
		return storage.Run{}, err
	}

	if !found {
		return storage.Run{}, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}

	err = sqlitex.Execute(conn, "SELECT data FROM results WHERE run_id = ? ORDER BY idx", &sqlitex.ExecOptions{
		Args: []interface{}{id.String()},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var res eval.Result
			if err := json.Unmarshal([]byte(stmt.ColumnText(0)), &res); err != nil {
				return err
			}
			r.Results = append(r.Results, res)
			return nil
		},
	})
	if err != nil {
		return storage.Run{}, err
	}

	return r, nil
}

func (h *RunStore) Write(r storage.Run) (err error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer h.pool.Put(conn)

	// Start Transaction
	defer sqlitex.Save(conn)(&err)

	summary, err := json.Marshal(r.Summary)
	if err != nil {
		return err
	}

	err = sqlitex.Execute(conn, `
		INSERT INTO runs (id, name, task, metric, created, gold, pred, sentences, headline, faults, unpaired, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, &sqlitex.ExecOptions{
		Args: []interface{}{
			r.ID.String(), r.Name, r.Task, r.Summary.Metric,
			r.Created.UTC().Format(time.RFC3339),
			strings.Join(r.Gold, ","), strings.Join(r.Pred, ","),
			r.Summary.Sentences, r.Summary.Headline(),
			r.Faults, r.Unpaired, string(summary),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, res := range r.Results {
		data, marshalErr := json.Marshal(res)
		if marshalErr != nil {
			return marshalErr
		}

		err = sqlitex.Execute(conn, "INSERT INTO results (run_id, idx, data) VALUES (?, ?, ?)", &sqlitex.ExecOptions{
			Args: []interface{}{r.ID.String(), i, string(data)},
		})
		if err != nil {
			return fmt.Errorf("failed to insert result: %w", err)
		}
	}

	return nil
}

func scanRun(stmt *sqlite.Stmt) (storage.Run, error) {
	id, err := uuid.Parse(stmt.ColumnText(0))
	if err != nil {
		return storage.Run{}, err
	}

	created, err := time.Parse(time.RFC3339, stmt.ColumnText(3))
	if err != nil {
		return storage.Run{}, err
	}

	r := storage.Run{
		ID:       id,
		Name:     stmt.ColumnText(1),
		Task:     stmt.ColumnText(2),
		Created:  created,
		Gold:     splitList(stmt.ColumnText(4)),
		Pred:     splitList(stmt.ColumnText(5)),
		Faults:   stmt.ColumnInt(6),
		Unpaired: stmt.ColumnInt(7),
	}

	if err := json.Unmarshal([]byte(stmt.ColumnText(8)), &r.Summary); err != nil {
		return storage.Run{}, err
	}

	return r, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
