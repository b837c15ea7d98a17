package filesystem

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/revelaction/conlleval/storage"
)

// RunStore keeps every run in its own <id>.json file under root.
type RunStore struct {
	root string
}

var _ storage.RunRepository = (*RunStore)(nil)

func NewRunStore(root string) *RunStore {
	return &RunStore{root: root}
}

func (s *RunStore) List(taskMatch string) ([]storage.Run, error) {
	files, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("IO error: %w", err)
	}

	runs := []storage.Run{}
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}

		r, err := s.readFile(filepath.Join(s.root, file.Name()))
		if err != nil {
			return nil, err
		}

		if taskMatch != "" && !strings.Contains(r.Task, taskMatch) {
			continue
		}

		r.Results = nil
		runs = append(runs, r)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Created.After(runs[j].Created)
	})

	return runs, nil
}

func (s *RunStore) Read(id uuid.UUID) (storage.Run, error) {
	r, err := s.readFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return storage.Run{}, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}

	return r, err
}

func (s *RunStore) Write(r storage.Run) error {
	data, err := json.MarshalIndent(r, "", "\t")
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.path(r.ID), data, 0644); err != nil {
		return fmt.Errorf("IO error: %w", err)
	}

	return nil
}

func (s *RunStore) path(id uuid.UUID) string {
	return filepath.Join(s.root, id.String()+".json")
}

func (s *RunStore) readFile(path string) (storage.Run, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return storage.Run{}, fmt.Errorf("IO error: %w", err)
	}

	var r storage.Run
	if err := json.Unmarshal(content, &r); err != nil {
		return storage.Run{}, fmt.Errorf("run file %s: %w", filepath.Base(path), err)
	}

	return r, nil
}
