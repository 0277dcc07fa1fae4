// Package materializer implements C7: recreating the worktrees a baum
// manifest declares but which are not yet present on disk.
package materializer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forduniver/wald/internal/core/gitdriver"
	"github.com/forduniver/wald/internal/core/manifest"
	"github.com/forduniver/wald/internal/core/repoid"
	"github.com/forduniver/wald/internal/core/walderr"
)

// Materializer creates the worktrees a baum manifest declares that are
// missing on disk, leaving already-valid worktrees untouched.
type Materializer struct {
	driver *gitdriver.Driver
	store  *manifest.Store
}

// NewMaterializer returns a Materializer using the given git driver and
// manifest store.
func NewMaterializer(driver *gitdriver.Driver, store *manifest.Store) *Materializer {
	return &Materializer{driver: driver, store: store}
}

// Result reports which declared worktrees were (re)created.
type Result struct {
	Materialized []string // branches
}

// Materialize brings baumPath's on-disk worktrees in line with its
// manifest. Calling it twice with no external change is a no-op, since a
// worktree already valid (directory present with a `.git` pointer file) is
// left untouched.
func (m *Materializer) Materialize(ctx context.Context, workspaceRoot, baumPath string) (*Result, error) {
	b, err := m.store.LoadBaum(ctx, baumPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", walderr.ErrBaumNotFound, baumPath)
		}
		return nil, fmt.Errorf("%w: %s", walderr.ErrInvalidBaumManifest, err)
	}

	id, err := repoid.Parse(b.RepoID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", walderr.ErrInvalidBaumManifest, err)
	}
	barePath := repoid.BarePath(workspaceRoot, id)
	if _, err := os.Stat(barePath); err != nil {
		return nil, fmt.Errorf("%w: %s", walderr.ErrBareRepoMissing, barePath)
	}

	result := &Result{}
	pruned := false
	for _, wt := range b.Worktrees {
		worktreeDir := filepath.Join(baumPath, wt.Path)
		if isValidWorktree(worktreeDir) {
			continue
		}
		// A worktree directory deleted outside git stays registered with the
		// bare repo, and git refuses to add a worktree at a path (or for a
		// branch) still held by such a stale registration.
		if !pruned {
			if err := m.driver.PruneWorktrees(ctx, barePath); err != nil {
				return result, err
			}
			pruned = true
		}
		if err := m.driver.WorktreeAdd(ctx, barePath, worktreeDir, wt.Branch, true); err != nil {
			return result, err
		}
		result.Materialized = append(result.Materialized, wt.Branch)
	}
	return result, nil
}

// isValidWorktree reports whether dir looks like a registered git worktree:
// a directory containing a `.git` pointer file.
func isValidWorktree(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	gitInfo, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	return !gitInfo.IsDir()
}
