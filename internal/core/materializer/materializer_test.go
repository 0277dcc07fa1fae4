package materializer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/forduniver/wald/internal/core/gitdriver"
	"github.com/forduniver/wald/internal/core/manifest"
	"github.com/forduniver/wald/internal/core/materializer"
	"github.com/forduniver/wald/internal/core/repoid"
	"github.com/forduniver/wald/internal/tests/helpers"
)

const testRepoID = "github.com/test/repo"

func setup(t *testing.T, branches ...string) (workspaceRoot, baumPath string, store *manifest.Store) {
	t.Helper()

	upstream := helpers.CreateUpstreamWithBranches(t, branches...)
	workspaceRoot = t.TempDir()

	id, err := repoid.Parse(testRepoID)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	barePath := repoid.BarePath(workspaceRoot, id)
	if err := os.MkdirAll(filepath.Dir(barePath), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	helpers.CreateBareClone(t, upstream, barePath)

	store = manifest.NewStore()
	baumPath = filepath.Join(workspaceRoot, "tools", "repo")

	b := &manifest.Baum{RepoID: testRepoID}
	for _, br := range branches {
		b.Worktrees = append(b.Worktrees, manifest.WorktreeEntry{Branch: br, Path: "_" + br + ".wt"})
	}
	if err := store.SaveBaum(context.Background(), baumPath, b); err != nil {
		t.Fatalf("SaveBaum: %v", err)
	}

	return workspaceRoot, baumPath, store
}

func TestMaterializer_CreatesMissingWorktrees(t *testing.T) {
	workspaceRoot, baumPath, _ := setup(t, "main", "dev")

	m := materializer.NewMaterializer(gitdriver.New(), manifest.NewStore())
	result, err := m.Materialize(context.Background(), workspaceRoot, baumPath)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if len(result.Materialized) != 2 {
		t.Fatalf("Materialized = %v, want 2 branches", result.Materialized)
	}

	for _, name := range []string{"_main.wt", "_dev.wt"} {
		if _, err := os.Stat(filepath.Join(baumPath, name, "README.md")); err != nil {
			t.Errorf("worktree %s missing checkout: %v", name, err)
		}
	}
}

func TestMaterializer_IdempotentOnSecondRun(t *testing.T) {
	workspaceRoot, baumPath, _ := setup(t, "main")

	m := materializer.NewMaterializer(gitdriver.New(), manifest.NewStore())
	if _, err := m.Materialize(context.Background(), workspaceRoot, baumPath); err != nil {
		t.Fatalf("first Materialize: %v", err)
	}

	result, err := m.Materialize(context.Background(), workspaceRoot, baumPath)
	if err != nil {
		t.Fatalf("second Materialize: %v", err)
	}
	if len(result.Materialized) != 0 {
		t.Fatalf("second run should be a no-op, materialized %v", result.Materialized)
	}
}

func TestMaterializer_BareRepoMissing(t *testing.T) {
	workspaceRoot := t.TempDir()
	baumPath := filepath.Join(workspaceRoot, "tools", "repo")

	store := manifest.NewStore()
	b := &manifest.Baum{RepoID: testRepoID, Worktrees: []manifest.WorktreeEntry{{Branch: "main", Path: "_main.wt"}}}
	if err := store.SaveBaum(context.Background(), baumPath, b); err != nil {
		t.Fatalf("SaveBaum: %v", err)
	}

	m := materializer.NewMaterializer(gitdriver.New(), manifest.NewStore())
	if _, err := m.Materialize(context.Background(), workspaceRoot, baumPath); err == nil {
		t.Fatal("expected BareRepoMissing error")
	}
}
