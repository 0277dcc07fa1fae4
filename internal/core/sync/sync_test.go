package sync_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/forduniver/wald/internal/core/baum"
	"github.com/forduniver/wald/internal/core/gitdriver"
	"github.com/forduniver/wald/internal/core/manifest"
	"github.com/forduniver/wald/internal/core/repoid"
	"github.com/forduniver/wald/internal/core/state"
	"github.com/forduniver/wald/internal/core/sync"
	"github.com/forduniver/wald/internal/tests/helpers"
)

const testRepoID = "github.com/test/repo"

// cloneWorkspace creates a non-bare clone of origin at dir, with a local
// user identity so commits made inside it succeed.
func cloneWorkspace(t *testing.T, origin, dir string) {
	t.Helper()
	helpers.RunGit(t, "", "clone", origin, dir)
	helpers.RunGit(t, dir, "config", "user.email", "test@example.com")
	helpers.RunGit(t, dir, "config", "user.name", "Test User")
}

// cloneBareRepo clones upstream into the bare path wald expects for
// testRepoID inside workspaceRoot.
func cloneBareRepo(t *testing.T, upstream, workspaceRoot string) {
	t.Helper()
	id, err := repoid.Parse(testRepoID)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	barePath := repoid.BarePath(workspaceRoot, id)
	if err := os.MkdirAll(filepath.Dir(barePath), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	helpers.CreateBareClone(t, upstream, barePath)
}

// TestEngine_Sync_EndToEnd walks the reconciliation engine through a
// shared-origin scenario across two independent workspace clones: a repo
// is registered and planted on one machine, then a second machine runs sync
// to pick up the registration and materialize the missing worktree. The
// baum is then relocated on the first machine while the second machine has
// an uncommitted file sitting in the now-stale worktree directory, and a
// further sync must carry that file along with the worktree's relocation.
func TestEngine_Sync_EndToEnd(t *testing.T) {
	ctx := context.Background()

	metaSeed := helpers.CreateTestRepo(t)
	metaOrigin := filepath.Join(t.TempDir(), "meta-origin.git")
	helpers.CreateBareClone(t, metaSeed, metaOrigin)

	alphaDir := filepath.Join(t.TempDir(), "alpha")
	cloneWorkspace(t, metaOrigin, alphaDir)
	betaDir := filepath.Join(t.TempDir(), "beta")
	cloneWorkspace(t, metaOrigin, betaDir)

	upstream := helpers.CreateUpstreamWithBranches(t, "main")
	cloneBareRepo(t, upstream, alphaDir)
	cloneBareRepo(t, upstream, betaDir)

	store := manifest.NewStore()
	driver := gitdriver.New()
	op := baum.NewOperator(driver, store)
	engine := sync.NewEngine(driver, store)

	// --- alpha: register the repo and plant it, then push. ---
	ws := manifest.NewWorkspace()
	ws.Repos[testRepoID] = manifest.RepoEntry{LFS: manifest.LFSMinimal, Depth: "100", Filter: manifest.FilterNone}
	if err := store.SaveWorkspace(ctx, alphaDir, ws); err != nil {
		t.Fatalf("SaveWorkspace: %v", err)
	}

	containerPath := filepath.Join(alphaDir, "tools", "repo")
	if _, err := op.Plant(ctx, alphaDir, testRepoID, containerPath, []string{"main"}); err != nil {
		t.Fatalf("Plant: %v", err)
	}

	// Only the manifest file itself is staged, not the whole .wald tree:
	// .wald/repos/ holds the bare clone, and git has no concept of a bare
	// repository as a nested-repo boundary the way it does a `.git` entry,
	// so `git add .wald` would walk in and stage its object files too.
	helpers.RunGit(t, alphaDir, "add", ".wald/manifest.yaml", "tools")
	helpers.RunGit(t, alphaDir, "commit", "-m", "register and plant repo")
	helpers.RunGit(t, alphaDir, "push", "origin", "main")

	// Autostash is on throughout: both workspaces carry untracked content
	// (the bare clone under .wald/repos/, and eventually .wald/state.yaml)
	// that a real workspace would gitignore via its root .gitignore; this
	// test skips that bootstrap step to isolate the reconciliation engine.
	opts := sync.Options{Autostash: true}

	// --- beta: sync should pick up the registration and materialize the
	// worktree that alpha planted, without any explicit plant call. ---
	result, err := engine.Sync(ctx, betaDir, opts)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.NoOp {
		t.Fatal("expected sync to do work, got NoOp")
	}
	if len(result.RegistryAdded) != 1 || result.RegistryAdded[0].RepoID != testRepoID {
		t.Fatalf("RegistryAdded = %+v, want one entry for %s", result.RegistryAdded, testRepoID)
	}
	if len(result.BaumOutcomes) != 1 || result.BaumOutcomes[0].Err != nil {
		t.Fatalf("BaumOutcomes = %+v, want one successful outcome", result.BaumOutcomes)
	}

	betaWorktree := filepath.Join(betaDir, "tools", "repo", "_main.wt")
	if _, err := os.Stat(filepath.Join(betaWorktree, "README.md")); err != nil {
		t.Fatalf("materialized worktree missing checkout: %v", err)
	}

	// --- sync again immediately: nothing changed upstream, so this must
	// be a no-op that touches nothing on disk. ---
	result2, err := engine.Sync(ctx, betaDir, opts)
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if !result2.NoOp {
		t.Fatalf("expected second sync to be a no-op, got %+v", result2)
	}

	// --- an uncommitted file appears in beta's worktree, simulating work
	// in progress inside the planted repo that beta's own sync never
	// touches (the worktree directory is gitignored at the workspace
	// level, so it carries no history of its own here). ---
	dirtyFile := filepath.Join(betaWorktree, "dirty.txt")
	if err := os.WriteFile(dirtyFile, []byte("work in progress\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// --- alpha: relocate the baum container and push the rename. ---
	src := containerPath
	dst := filepath.Join(alphaDir, "admin", "repo")
	if err := op.Move(ctx, alphaDir, src, dst); err != nil {
		t.Fatalf("Move: %v", err)
	}
	helpers.RunGit(t, alphaDir, "commit", "-m", "relocate tools/repo to admin/repo")
	helpers.RunGit(t, alphaDir, "push", "origin", "main")

	// --- beta: sync must rebase in the rename and carry the uncommitted
	// file along with the worktree it belongs to. ---
	result3, err := engine.Sync(ctx, betaDir, opts)
	if err != nil {
		t.Fatalf("third Sync: %v", err)
	}
	if result3.NoOp {
		t.Fatal("expected third sync to do work, got NoOp")
	}

	var sawMove bool
	for _, o := range result3.BaumOutcomes {
		if o.Change.Kind == sync.BaumMoved {
			sawMove = true
			if o.Err != nil {
				t.Errorf("move outcome had error: %v", o.Err)
			}
		}
	}
	if !sawMove {
		t.Fatalf("expected a BaumMoved outcome, got %+v", result3.BaumOutcomes)
	}

	if _, err := os.Stat(filepath.Join(betaDir, "tools", "repo")); !os.IsNotExist(err) {
		t.Error("old baum directory should no longer exist on beta")
	}

	newWorktree := filepath.Join(betaDir, "admin", "repo", "_main.wt")
	relocatedDirty, err := os.ReadFile(filepath.Join(newWorktree, "dirty.txt"))
	if err != nil {
		t.Fatalf("relocated uncommitted file missing: %v", err)
	}
	if string(relocatedDirty) != "work in progress\n" {
		t.Errorf("relocated file content = %q, want %q", relocatedDirty, "work in progress\n")
	}
	if _, err := os.Stat(filepath.Join(newWorktree, "README.md")); err != nil {
		t.Errorf("relocated worktree missing checkout: %v", err)
	}
}

// TestEngine_Sync_DryRunLeavesWorkspaceUntouched exercises the preview path:
// a dry run must classify and report the same registry/baum changes a real
// sync would apply, but must materialize nothing, must not advance
// last_sync, and must not disturb HEAD. A subsequent real sync then has to
// produce the exact outcome the dry run predicted.
func TestEngine_Sync_DryRunLeavesWorkspaceUntouched(t *testing.T) {
	ctx := context.Background()

	metaSeed := helpers.CreateTestRepo(t)
	metaOrigin := filepath.Join(t.TempDir(), "meta-origin.git")
	helpers.CreateBareClone(t, metaSeed, metaOrigin)

	alphaDir := filepath.Join(t.TempDir(), "alpha")
	cloneWorkspace(t, metaOrigin, alphaDir)
	betaDir := filepath.Join(t.TempDir(), "beta")
	cloneWorkspace(t, metaOrigin, betaDir)

	upstream := helpers.CreateUpstreamWithBranches(t, "main")
	cloneBareRepo(t, upstream, alphaDir)
	cloneBareRepo(t, upstream, betaDir)

	store := manifest.NewStore()
	driver := gitdriver.New()
	op := baum.NewOperator(driver, store)
	engine := sync.NewEngine(driver, store)

	ws := manifest.NewWorkspace()
	ws.Repos[testRepoID] = manifest.RepoEntry{LFS: manifest.LFSMinimal, Depth: "100", Filter: manifest.FilterNone}
	if err := store.SaveWorkspace(ctx, alphaDir, ws); err != nil {
		t.Fatalf("SaveWorkspace: %v", err)
	}

	containerPath := filepath.Join(alphaDir, "tools", "repo")
	if _, err := op.Plant(ctx, alphaDir, testRepoID, containerPath, []string{"main"}); err != nil {
		t.Fatalf("Plant: %v", err)
	}
	helpers.RunGit(t, alphaDir, "add", ".wald/manifest.yaml", "tools")
	helpers.RunGit(t, alphaDir, "commit", "-m", "register and plant repo")
	helpers.RunGit(t, alphaDir, "push", "origin", "main")

	beforeHead, err := driver.RevParse(ctx, betaDir, "HEAD")
	if err != nil {
		t.Fatalf("RevParse HEAD: %v", err)
	}

	// --- beta: a dry-run sync must report the pending registration and
	// materialization without touching the filesystem or state.yaml. ---
	preview, err := engine.Sync(ctx, betaDir, sync.Options{Autostash: true, DryRun: true})
	if err != nil {
		t.Fatalf("dry-run Sync: %v", err)
	}
	if !preview.DryRun {
		t.Fatal("expected preview.DryRun to be true")
	}
	if preview.NoOp {
		t.Fatal("expected dry-run sync to report pending work, got NoOp")
	}
	if len(preview.RegistryAdded) != 1 || preview.RegistryAdded[0].RepoID != testRepoID {
		t.Fatalf("RegistryAdded = %+v, want one entry for %s", preview.RegistryAdded, testRepoID)
	}
	if len(preview.BaumOutcomes) != 1 || preview.BaumOutcomes[0].Err != nil {
		t.Fatalf("BaumOutcomes = %+v, want one successful planned outcome", preview.BaumOutcomes)
	}

	betaWorktree := filepath.Join(betaDir, "tools", "repo", "_main.wt")
	if _, err := os.Stat(betaWorktree); !os.IsNotExist(err) {
		t.Error("dry-run sync must not materialize the worktree")
	}

	afterHead, err := driver.RevParse(ctx, betaDir, "HEAD")
	if err != nil {
		t.Fatalf("RevParse HEAD after preview: %v", err)
	}
	if afterHead != beforeHead {
		t.Errorf("dry-run sync moved HEAD: before %s, after %s", beforeHead, afterHead)
	}

	st, err := state.NewStore().Read(ctx, betaDir)
	if err != nil {
		t.Fatalf("state Read: %v", err)
	}
	if st.LastSync != "" {
		t.Errorf("dry-run sync advanced last_sync to %q, want empty", st.LastSync)
	}

	// --- the same workspace can still run a real sync afterward and get
	// the outcome the preview predicted. ---
	result, err := engine.Sync(ctx, betaDir, sync.Options{Autostash: true})
	if err != nil {
		t.Fatalf("real Sync after dry-run: %v", err)
	}
	if result.NoOp {
		t.Fatal("expected real sync to do work, got NoOp")
	}
	if len(result.RegistryAdded) != 1 || result.RegistryAdded[0].RepoID != testRepoID {
		t.Fatalf("RegistryAdded = %+v, want one entry for %s", result.RegistryAdded, testRepoID)
	}
	if _, err := os.Stat(filepath.Join(betaWorktree, "README.md")); err != nil {
		t.Fatalf("materialized worktree missing checkout after real sync: %v", err)
	}
}
