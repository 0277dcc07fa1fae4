// Package state manages the local-only, gitignored sync-progress file
// `.wald/state.yaml`.
package state

import (
	"context"
	"os"
	"path/filepath"

	"github.com/forduniver/wald/internal/filemanager"
)

// FileName is the state file's name under .wald/.
const FileName = "state.yaml"

// State is the local-only `.wald/state.yaml` schema.
type State struct {
	LastSync string `yaml:"last_sync,omitempty"` // 40-hex commit hash, or empty for null
}

// Store reads and writes the local state file.
type Store struct {
	fm *filemanager.Manager[State]
}

// NewStore creates a state Store.
func NewStore() *Store {
	return &Store{fm: filemanager.NewManager[State]()}
}

// Path returns the canonical state file path.
func Path(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, ".wald", FileName)
}

// Read returns the last synced commit, or "" if none (a missing or empty
// file reads as last_sync = null).
func (s *Store) Read(ctx context.Context, workspaceRoot string) (*State, error) {
	st, err := s.fm.Read(ctx, Path(workspaceRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, err
	}
	return st, nil
}

// WriteLastSync atomically records the most recently applied commit.
func (s *Store) WriteLastSync(ctx context.Context, workspaceRoot, commit string) error {
	return s.fm.Write(ctx, Path(workspaceRoot), &State{LastSync: commit})
}
