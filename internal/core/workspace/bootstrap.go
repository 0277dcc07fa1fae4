// Package workspace implements the workspace bootstrapper: creating the
// .wald/ metadata directory tree and keeping the root .gitignore's
// wald-managed block idempotent across repeated init calls.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forduniver/wald/internal/core/config"
	"github.com/forduniver/wald/internal/core/gitdriver"
	"github.com/forduniver/wald/internal/core/manifest"
	"github.com/forduniver/wald/internal/core/walderr"
	"github.com/forduniver/wald/internal/workspacefs"
)

// gitignoreLines are the fixed entries of the workspace root's wald-managed
// .gitignore block, independent of the worktree naming convention used by
// any individual baum (those get their own per-baum block).
var gitignoreLines = []string{
	".wald/repos/",
	".wald/state.yaml",
	"*_*.wt/",
}

// InitResult reports non-fatal advisories from Init.
type InitResult struct {
	Warnings []error
}

// Init creates a new workspace rooted at path, or refreshes an existing
// one's .gitignore block when force is set.
func Init(ctx context.Context, path string, force bool) (*InitResult, error) {
	waldDir := filepath.Join(path, workspacefs.WaldDir)

	if info, err := os.Stat(waldDir); err == nil && info.IsDir() && !force {
		return nil, fmt.Errorf("%w: %s", walderr.ErrAlreadyInitialized, path)
	}

	if ancestor, found := workspacefs.FindAncestorWorkspace(path); found {
		return nil, fmt.Errorf("%w: %s is inside workspace %s", walderr.ErrNestedWorkspace, path, ancestor)
	}

	if err := os.MkdirAll(filepath.Join(waldDir, "repos"), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %s", walderr.ErrManifestWriteFailed, err)
	}

	manifestPath := manifest.WorkspacePath(path)
	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		store := manifest.NewStore()
		if err := store.SaveWorkspace(ctx, path, manifest.NewWorkspace()); err != nil {
			return nil, err
		}
	}

	configPath := filepath.Join(waldDir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfgMgr := config.NewManager()
		if err := cfgMgr.Save(ctx, configPath, config.Default()); err != nil {
			return nil, err
		}
	}

	statePath := filepath.Join(waldDir, "state.yaml")
	if _, err := os.Stat(statePath); os.IsNotExist(err) {
		if err := os.WriteFile(statePath, []byte("last_sync: null\n"), 0o644); err != nil {
			return nil, fmt.Errorf("%w: %s", walderr.ErrManifestWriteFailed, err)
		}
	}

	if err := workspacefs.WriteGitignoreBlock(filepath.Join(path, ".gitignore"), gitignoreLines); err != nil {
		return nil, err
	}

	result := &InitResult{}
	driver := gitdriver.New()
	if !driver.IsGitRepository(path) {
		result.Warnings = append(result.Warnings, fmt.Errorf("%s is not a git repository; wald will not be able to sync until it is", path))
	}

	return result, nil
}
