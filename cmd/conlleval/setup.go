package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/revelaction/conlleval/storage"
	"github.com/revelaction/conlleval/storage/filesystem"
	"github.com/revelaction/conlleval/storage/sqlite/zombiezen"
)

// NewRunRepository picks the store of path: a directory holds one JSON file
// per run, any other file is a SQLite database. A missing path with a .db
// or .sqlite extension is created as a database.
func NewRunRepository(p *Pool, path string) (storage.RunRepository, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && isDatabase(path):
	case err != nil:
		return nil, fmt.Errorf("repository not found: %s", path)
	case info.IsDir():
		return filesystem.NewRunStore(path), nil
	}

	pool, err := p.Open(path)
	if err != nil {
		return nil, err
	}
	return zombiezen.NewRunStore(pool), nil
}

func isDatabase(path string) bool {
	switch filepath.Ext(path) {
	case ".db", ".sqlite":
		return true
	}
	return false
}
