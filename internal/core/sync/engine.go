// Package sync implements C8, the reconciliation engine that brings a
// workspace's local filesystem state in line with the latest commit on
// origin/main: fetch, rebase, classify what changed since the last sync,
// then replay baum moves/removals/materializations in the order that keeps
// the bare-repo worktree registry, the baum manifests, and the on-disk
// directories coherent.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/forduniver/wald/internal/core/baum"
	"github.com/forduniver/wald/internal/core/gitdriver"
	"github.com/forduniver/wald/internal/core/manifest"
	"github.com/forduniver/wald/internal/core/materializer"
	"github.com/forduniver/wald/internal/core/movedetect"
	"github.com/forduniver/wald/internal/core/state"
	"github.com/forduniver/wald/internal/core/walderr"
)

// baumManifestGlob restricts the non-rename diff classification in S4 to
// baum manifest files, mirroring the pathspec movedetect uses for renames.
const baumManifestGlob = ":(glob)**/" + manifest.BaumDir + "/" + manifest.BaumFileName

// Engine runs the sync algorithm against one workspace.
type Engine struct {
	driver       *gitdriver.Driver
	detector     *movedetect.Detector
	baumOperator *baum.Operator
	materializer *materializer.Materializer
	manifests    *manifest.Store
	state        *state.Store
}

// NewEngine assembles an Engine from its collaborators.
func NewEngine(driver *gitdriver.Driver, manifests *manifest.Store) *Engine {
	return &Engine{
		driver:       driver,
		detector:     movedetect.NewDetector(driver),
		baumOperator: baum.NewOperator(driver, manifests),
		materializer: materializer.NewMaterializer(driver, manifests),
		manifests:    manifests,
		state:        state.NewStore(),
	}
}

// Sync runs one full reconciliation pass against workspaceRoot.
func (e *Engine) Sync(ctx context.Context, workspaceRoot string, opts Options) (*Result, error) {
	// S0: Inspect.
	st, err := e.state.Read(ctx, workspaceRoot)
	if err != nil {
		return nil, err
	}

	if err := e.driver.FetchRemote(ctx, workspaceRoot); err != nil {
		return nil, err
	}

	ahead, behind, err := e.driver.AheadBehind(ctx, workspaceRoot)
	if err != nil {
		return nil, err
	}

	statusOut, err := e.driver.StatusPorcelain(ctx, workspaceRoot)
	if err != nil {
		return nil, err
	}
	if statusOut != "" && !opts.Autostash {
		return nil, fmt.Errorf("%w: workspace has unstaged modifications", walderr.ErrWorkspaceDirty)
	}

	// S1: Diverged check.
	if ahead > 0 && behind > 0 && !opts.Force {
		return nil, fmt.Errorf("%w: workspace is both ahead and behind origin/main", walderr.ErrWorkspaceDiverged)
	}

	// S2: Advance. A dry run previews against origin/main's current tip
	// instead, leaving the working tree and HEAD untouched.
	var to string
	if opts.DryRun {
		to, err = e.driver.RevParse(ctx, workspaceRoot, "origin/main")
		if err != nil {
			return nil, err
		}
	} else {
		if behind > 0 {
			if err := e.driver.PullRebase(ctx, workspaceRoot, true); err != nil {
				return nil, err
			}
		}
		to, err = e.driver.RevParse(ctx, workspaceRoot, "HEAD")
		if err != nil {
			return nil, err
		}
	}

	// S3: Diff range.
	from := st.LastSync
	if from == "" {
		from, err = e.driver.InitialCommit(ctx, workspaceRoot)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{FromCommit: from, ToCommit: to, DryRun: opts.DryRun}
	if from == to {
		result.NoOp = true
		if opts.DryRun {
			return result, nil
		}
		if err := e.state.WriteLastSync(ctx, workspaceRoot, to); err != nil {
			return result, err
		}
		return result, nil
	}

	// S4: Classify.
	baumChanges, err := e.classifyBaumChanges(ctx, workspaceRoot, from, to)
	if err != nil {
		return result, err
	}
	registryAdded, registryRemoved, registryChanged, err := e.classifyRegistryChanges(ctx, workspaceRoot, from, to)
	if err != nil {
		return result, err
	}
	result.RegistryAdded = registryAdded
	result.RegistryRemoved = registryRemoved
	result.RegistryConfigChanged = registryChanged

	// S5: Apply registry changes. Additions are not auto-cloned (explicit
	// user action via `repo fetch`/`plant`); removals leave the bare repo
	// on disk (shared, per-machine resource); config changes are metadata
	// only and apply to future operations.

	// S6: Apply baum changes, moves first, then removals, then materializes.
	// A dry run only classifies and reports; it never touches the
	// filesystem or the bare-repo worktree registry.
	if opts.DryRun {
		e.previewBaumChanges(baumChanges, result)
		return result, nil
	}
	e.applyBaumChanges(ctx, workspaceRoot, baumChanges, result)

	// S7: Commit state. Advances even if some S6 baum operations failed:
	// the workspace history is already reconciled, and the filesystem
	// divergence left behind is doctor's concern, not sync's.
	if err := e.state.WriteLastSync(ctx, workspaceRoot, to); err != nil {
		return result, err
	}

	return result, nil
}

// previewBaumChanges records each classified change as a planned,
// unapplied outcome — S6's preview path for DryRun.
func (e *Engine) previewBaumChanges(changes []BaumChange, result *Result) {
	for _, c := range changes {
		result.BaumOutcomes = append(result.BaumOutcomes, BaumOutcome{Change: c})
	}
}

func (e *Engine) classifyBaumChanges(ctx context.Context, workspaceRoot, from, to string) ([]BaumChange, error) {
	moves, err := e.detector.Detect(ctx, workspaceRoot, from, to)
	if err != nil {
		return nil, err
	}
	changes := make([]BaumChange, 0, len(moves))
	for _, mv := range moves {
		changes = append(changes, BaumChange{
			Kind:   BaumMoved,
			OldDir: absPath(workspaceRoot, mv.OldBaumDir),
			Dir:    absPath(workspaceRoot, mv.NewBaumDir),
		})
	}

	nonRenames, err := e.driver.DiffNameStatus(ctx, workspaceRoot, from, to, baumManifestGlob)
	if err != nil {
		return nil, err
	}
	for _, p := range nonRenames.Added {
		changes = append(changes, BaumChange{Kind: BaumAppeared, Dir: absPath(workspaceRoot, baumDirFromManifestPath(p))})
	}
	for _, p := range nonRenames.Removed {
		changes = append(changes, BaumChange{Kind: BaumVanished, Dir: absPath(workspaceRoot, baumDirFromManifestPath(p))})
	}
	for _, p := range nonRenames.Modified {
		changes = append(changes, BaumChange{Kind: BaumTouched, Dir: absPath(workspaceRoot, baumDirFromManifestPath(p))})
	}
	return changes, nil
}

func (e *Engine) applyBaumChanges(ctx context.Context, workspaceRoot string, changes []BaumChange, result *Result) {
	var moves, vanished, rest []BaumChange
	for _, c := range changes {
		switch c.Kind {
		case BaumMoved:
			moves = append(moves, c)
		case BaumVanished:
			vanished = append(vanished, c)
		default:
			rest = append(rest, c)
		}
	}

	for _, c := range moves {
		// pull_rebase has already relocated the baum's tracked files
		// (.baum/manifest.yaml, .gitignore) via the rename, since those are
		// ordinary blobs in the commit being replayed. The worktree
		// directories themselves are gitignored, so rebase never touches
		// them; this machine must relocate them by hand before the bare
		// repo's worktree-registry absolute paths can be repaired.
		err := e.repairMovedBaum(ctx, workspaceRoot, c.OldDir, c.Dir)
		result.BaumOutcomes = append(result.BaumOutcomes, BaumOutcome{Change: c, Err: err})
	}
	for _, c := range vanished {
		_, err := e.baumOperator.Uproot(ctx, workspaceRoot, c.Dir, false, false)
		result.BaumOutcomes = append(result.BaumOutcomes, BaumOutcome{Change: c, Err: err})
	}
	for _, c := range rest {
		_, err := e.materializer.Materialize(ctx, workspaceRoot, c.Dir)
		if err != nil {
			result.Warnings = append(result.Warnings, err)
		}
		result.BaumOutcomes = append(result.BaumOutcomes, BaumOutcome{Change: c, Err: err})
	}
}

// repairMovedBaum relocates any worktree directories left behind at oldDir
// (pull_rebase only relocates the baum's tracked files, since worktree
// directories are gitignored) and then rewrites the bare repo's
// worktree-registry absolute paths to match their new location.
func (e *Engine) repairMovedBaum(ctx context.Context, workspaceRoot, oldDir, newDir string) error {
	b, err := e.manifests.LoadBaum(ctx, newDir)
	if err != nil {
		return fmt.Errorf("%w: %s", walderr.ErrInvalidBaumManifest, err)
	}
	id, err := parseRepoIDOrWrap(b.RepoID)
	if err != nil {
		return err
	}
	barePath := barePathFor(workspaceRoot, id)

	var worktreeDirs []string
	for _, wt := range b.Worktrees {
		oldPath := joinPath(oldDir, wt.Path)
		newPath := joinPath(newDir, wt.Path)
		if pathExists(oldPath) && !pathExists(newPath) {
			if err := movePath(oldPath, newPath); err != nil {
				return fmt.Errorf("relocating worktree %s after move: %w", wt.Path, err)
			}
		}
		if pathExists(newPath) {
			worktreeDirs = append(worktreeDirs, newPath)
		}
	}
	removeIfEmpty(oldDir)

	if len(worktreeDirs) == 0 {
		return nil
	}
	return e.driver.WorktreeRepair(ctx, barePath, worktreeDirs...)
}

func (e *Engine) classifyRegistryChanges(ctx context.Context, workspaceRoot, from, to string) ([]RepoAdded, []RepoRemoved, []RepoConfigChanged, error) {
	fromWS, err := e.loadWorkspaceAtCommit(ctx, workspaceRoot, from)
	if err != nil {
		return nil, nil, nil, err
	}
	toWS, err := e.loadWorkspaceAtCommit(ctx, workspaceRoot, to)
	if err != nil {
		return nil, nil, nil, err
	}

	var added []RepoAdded
	var removed []RepoRemoved
	var changed []RepoConfigChanged

	for id, entry := range toWS.Repos {
		prior, existed := fromWS.Repos[id]
		if !existed {
			added = append(added, RepoAdded{RepoID: id})
			continue
		}
		if !entriesEqual(prior, entry) {
			changed = append(changed, RepoConfigChanged{RepoID: id})
		}
	}
	for id := range fromWS.Repos {
		if _, stillPresent := toWS.Repos[id]; !stillPresent {
			removed = append(removed, RepoRemoved{RepoID: id})
		}
	}

	return added, removed, changed, nil
}

func (e *Engine) loadWorkspaceAtCommit(ctx context.Context, workspaceRoot, commit string) (*manifest.Workspace, error) {
	data, err := e.driver.ShowFile(ctx, workspaceRoot, commit, manifest.WorkspacePathRelative())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return manifest.NewWorkspace(), nil
		}
		return nil, err
	}
	ws := manifest.NewWorkspace()
	if err := yaml.Unmarshal(data, ws); err != nil {
		return nil, fmt.Errorf("%w: %s", walderr.ErrInvalidWorkspaceManifest, err)
	}
	if ws.Repos == nil {
		ws.Repos = map[string]manifest.RepoEntry{}
	}
	return ws, nil
}

func entriesEqual(a, b manifest.RepoEntry) bool {
	if a.LFS != b.LFS || a.Depth != b.Depth || a.Filter != b.Filter || a.Upstream != b.Upstream {
		return false
	}
	if len(a.Aliases) != len(b.Aliases) {
		return false
	}
	for i := range a.Aliases {
		if a.Aliases[i] != b.Aliases[i] {
			return false
		}
	}
	return true
}
