package baum

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forduniver/wald/internal/core/gitdriver"
	"github.com/forduniver/wald/internal/core/manifest"
	"github.com/forduniver/wald/internal/core/repoid"
	"github.com/forduniver/wald/internal/core/walderr"
	"github.com/forduniver/wald/internal/workspacefs"
)

// Operator mutates baum containers: plant, branch, prune, uproot, and move.
type Operator struct {
	driver *gitdriver.Driver
	store  *manifest.Store
}

// NewOperator returns an Operator using the given git driver and manifest store.
func NewOperator(driver *gitdriver.Driver, store *manifest.Store) *Operator {
	return &Operator{driver: driver, store: store}
}

func worktreeDirName(branch string) string {
	return "_" + branch + ".wt"
}

// Plant creates or extends a baum container at containerPath with one
// worktree per requested branch, backed by the bare repo registered under
// repoIdentifier (a repo-id or alias).
func (o *Operator) Plant(ctx context.Context, workspaceRoot, repoIdentifier, containerPath string, branches []string) (*PlantResult, error) {
	ws, err := o.store.LoadWorkspace(ctx, workspaceRoot)
	if err != nil {
		return nil, err
	}

	id, err := repoid.Resolve(repoIdentifier, ws)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", walderr.ErrRepoNotRegistered, repoIdentifier)
	}
	entry, ok := ws.Repos[id.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", walderr.ErrRepoNotRegistered, id.String())
	}

	barePath := repoid.BarePath(workspaceRoot, id)
	if _, err := os.Stat(barePath); err != nil {
		return nil, fmt.Errorf("%w: %s", walderr.ErrBareRepoMissing, barePath)
	}

	if info, err := os.Stat(containerPath); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", walderr.ErrContainerNotDirectory, containerPath)
	}
	if err := os.MkdirAll(filepath.Join(containerPath, ".baum"), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %s", walderr.ErrManifestWriteFailed, err)
	}

	var b *manifest.Baum
	if manifest.IsBaum(containerPath) {
		b, err = o.store.LoadBaum(ctx, containerPath)
		if err != nil {
			return nil, err
		}
		if b.RepoID != id.String() {
			return nil, fmt.Errorf("%w: baum at %s is registered to %s, not %s", walderr.ErrBaumRepoMismatch, containerPath, b.RepoID, id.String())
		}
	} else {
		b = &manifest.Baum{RepoID: id.String()}
	}

	for _, branch := range branches {
		if b.BranchIndex(branch) >= 0 {
			return nil, fmt.Errorf("%w: %s already planted in %s", walderr.ErrBranchAlreadyPlanted, branch, containerPath)
		}
	}

	result := &PlantResult{}
	if entry.Filter != manifest.FilterNone {
		result.Warnings = append(result.Warnings, fmt.Errorf("%w: %s", walderr.ErrPartialCloneWarning, id.String()))
	}

	for _, branch := range branches {
		dirName := worktreeDirName(branch)
		worktreeDir := filepath.Join(containerPath, dirName)
		if err := o.driver.WorktreeAdd(ctx, barePath, worktreeDir, branch, true); err != nil {
			return result, err
		}
		b.Worktrees = append(b.Worktrees, manifest.WorktreeEntry{Branch: branch, Path: dirName})
		result.Planted = append(result.Planted, branch)
	}

	if err := o.store.SaveBaum(ctx, containerPath, b); err != nil {
		return result, err
	}

	if err := updateGitignoreBlock(containerPath, worktreeDirNames(b.Worktrees)); err != nil {
		return result, err
	}

	return result, nil
}

// Branch adds a single new worktree to an existing baum. Equivalent to Plant
// with one branch against a pre-existing container.
func (o *Operator) Branch(ctx context.Context, workspaceRoot, baumPath, branch string) (*PlantResult, error) {
	if !manifest.IsBaum(baumPath) {
		return nil, fmt.Errorf("%w: %s", walderr.ErrBaumNotFound, baumPath)
	}
	b, err := o.store.LoadBaum(ctx, baumPath)
	if err != nil {
		return nil, err
	}
	return o.Plant(ctx, workspaceRoot, b.RepoID, baumPath, []string{branch})
}

// Prune removes the given branches' worktrees from a baum. Absent branches
// are recorded as warnings, not errors. The manifest is written once: after
// every branch has been attempted, or, when a worktree removal fails, just
// before that error is returned, so branches whose worktrees were already
// removed are no longer declared. With dryRun set, Prune only validates
// and reports which branches would be removed; it never calls
// WorktreeRemove and never writes the baum manifest or .gitignore.
func (o *Operator) Prune(ctx context.Context, workspaceRoot, baumPath string, branches []string, force, dryRun bool) (*PruneResult, error) {
	if !manifest.IsBaum(baumPath) {
		return nil, fmt.Errorf("%w: %s", walderr.ErrBaumNotFound, baumPath)
	}
	ws, err := o.store.LoadWorkspace(ctx, workspaceRoot)
	if err != nil {
		return nil, err
	}
	b, err := o.store.LoadBaum(ctx, baumPath)
	if err != nil {
		return nil, err
	}
	id, err := repoid.Parse(b.RepoID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", walderr.ErrInvalidBaumManifest, err)
	}
	if _, ok := ws.Repos[id.String()]; !ok {
		return nil, fmt.Errorf("%w: %s", walderr.ErrRepoNotRegistered, id.String())
	}
	barePath := repoid.BarePath(workspaceRoot, id)

	result := &PruneResult{DryRun: dryRun}
	for _, branch := range branches {
		idx := b.BranchIndex(branch)
		if idx < 0 {
			result.Warnings = append(result.Warnings, fmt.Errorf("%w: %s not planted in %s", walderr.ErrMissingWorktreeWarning, branch, baumPath))
			continue
		}
		if dryRun {
			result.Removed = append(result.Removed, branch)
			continue
		}
		worktreeDir := filepath.Join(baumPath, b.Worktrees[idx].Path)
		if err := o.driver.WorktreeRemove(ctx, barePath, worktreeDir, force); err != nil {
			if len(result.Removed) > 0 {
				if saveErr := o.store.SaveBaum(ctx, baumPath, b); saveErr == nil {
					_ = updateGitignoreBlock(baumPath, worktreeDirNames(b.Worktrees))
				}
			}
			return result, err
		}
		b.RemoveBranch(branch)
		result.Removed = append(result.Removed, branch)
	}
	if dryRun {
		return result, nil
	}

	if err := o.store.SaveBaum(ctx, baumPath, b); err != nil {
		return result, err
	}
	if err := updateGitignoreBlock(baumPath, worktreeDirNames(b.Worktrees)); err != nil {
		return result, err
	}
	return result, nil
}

// Uproot removes every worktree declared by the baum and deletes the
// container directory. The workspace manifest's repo registry is untouched.
// With dryRun set, Uproot only validates and reports which worktrees would
// be removed; it never calls WorktreeRemove and never deletes the
// container.
func (o *Operator) Uproot(ctx context.Context, workspaceRoot, baumPath string, force, dryRun bool) (*UprootResult, error) {
	if !manifest.IsBaum(baumPath) {
		return nil, fmt.Errorf("%w: %s", walderr.ErrBaumNotFound, baumPath)
	}
	ws, err := o.store.LoadWorkspace(ctx, workspaceRoot)
	if err != nil {
		return nil, err
	}
	b, err := o.store.LoadBaum(ctx, baumPath)
	if err != nil {
		return nil, err
	}
	id, err := repoid.Parse(b.RepoID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", walderr.ErrInvalidBaumManifest, err)
	}
	if _, ok := ws.Repos[id.String()]; !ok {
		return nil, fmt.Errorf("%w: %s", walderr.ErrRepoNotRegistered, id.String())
	}
	barePath := repoid.BarePath(workspaceRoot, id)

	result := &UprootResult{DryRun: dryRun}
	for _, wt := range b.Worktrees {
		result.Removed = append(result.Removed, wt.Branch)
		if dryRun {
			continue
		}
		worktreeDir := filepath.Join(baumPath, wt.Path)
		if err := o.driver.WorktreeRemove(ctx, barePath, worktreeDir, force); err != nil {
			return result, err
		}
	}
	if dryRun {
		return result, nil
	}
	if err := os.RemoveAll(baumPath); err != nil {
		return result, fmt.Errorf("%w: %s", walderr.ErrManifestWriteFailed, err)
	}
	return result, nil
}

// Move relocates a baum container in one tracked rename so that the
// workspace history records the move of .baum/manifest.yaml, then repairs
// the registered worktrees' absolute paths in the bare repo's registry.
func (o *Operator) Move(ctx context.Context, workspaceRoot, src, dst string) error {
	if !manifest.IsBaum(src) {
		return fmt.Errorf("%w: %s", walderr.ErrBaumNotFound, src)
	}
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("%w: %s", walderr.ErrDestinationExists, dst)
	}

	ws, err := o.store.LoadWorkspace(ctx, workspaceRoot)
	if err != nil {
		return err
	}
	b, err := o.store.LoadBaum(ctx, src)
	if err != nil {
		return err
	}
	id, err := repoid.Parse(b.RepoID)
	if err != nil {
		return fmt.Errorf("%w: %s", walderr.ErrInvalidBaumManifest, err)
	}
	if _, ok := ws.Repos[id.String()]; !ok {
		return fmt.Errorf("%w: %s", walderr.ErrRepoNotRegistered, id.String())
	}
	barePath := repoid.BarePath(workspaceRoot, id)

	relSrc, err := filepath.Rel(workspaceRoot, src)
	if err != nil {
		return err
	}
	relDst, err := filepath.Rel(workspaceRoot, dst)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("%w: %s", walderr.ErrManifestWriteFailed, err)
	}
	if err := o.driver.RenameTracked(ctx, workspaceRoot, relSrc, relDst); err != nil {
		return err
	}

	var newWorktreeDirs []string
	for _, wt := range b.Worktrees {
		newWorktreeDirs = append(newWorktreeDirs, filepath.Join(dst, wt.Path))
	}
	if len(newWorktreeDirs) > 0 {
		if err := o.driver.WorktreeRepair(ctx, barePath, newWorktreeDirs...); err != nil {
			return err
		}
	}
	return nil
}

func worktreeDirNames(worktrees []manifest.WorktreeEntry) []string {
	names := make([]string, 0, len(worktrees))
	for _, wt := range worktrees {
		names = append(names, wt.Path)
	}
	return names
}

// updateGitignoreBlock rewrites the wald-managed block of containerDir's
// .gitignore to list exactly the given worktree directory names.
func updateGitignoreBlock(containerDir string, worktreeDirs []string) error {
	lines := make([]string, 0, len(worktreeDirs))
	for _, d := range worktreeDirs {
		lines = append(lines, strings.TrimSuffix(d, "/")+"/")
	}
	return workspacefs.WriteGitignoreBlock(filepath.Join(containerDir, ".gitignore"), lines)
}
