package doctor_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/forduniver/wald/internal/core/baum"
	"github.com/forduniver/wald/internal/core/doctor"
	"github.com/forduniver/wald/internal/core/gitdriver"
	"github.com/forduniver/wald/internal/core/manifest"
	"github.com/forduniver/wald/internal/core/repoid"
	"github.com/forduniver/wald/internal/tests/helpers"
)

const testRepoID = "github.com/test/repo"

func setupPlantedWorkspace(t *testing.T) (workspaceRoot, containerPath string, store *manifest.Store) {
	t.Helper()

	upstream := helpers.CreateUpstreamWithBranches(t, "main")
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
	ws := manifest.NewWorkspace()
	ws.Repos[testRepoID] = manifest.RepoEntry{LFS: manifest.LFSMinimal, Depth: "100", Filter: manifest.FilterNone}
	if err := store.SaveWorkspace(context.Background(), workspaceRoot, ws); err != nil {
		t.Fatalf("SaveWorkspace: %v", err)
	}

	containerPath = filepath.Join(workspaceRoot, "tools", "repo")
	op := baum.NewOperator(gitdriver.New(), store)
	if _, err := op.Plant(context.Background(), workspaceRoot, testRepoID, containerPath, []string{"main"}); err != nil {
		t.Fatalf("Plant: %v", err)
	}
	return workspaceRoot, containerPath, store
}

func hasIssue(issues []doctor.Issue, kind doctor.Kind) bool {
	for _, i := range issues {
		if i.Kind == kind {
			return true
		}
	}
	return false
}

func TestDoctor_Check_CleanWorkspaceReportsNothing(t *testing.T) {
	workspaceRoot, _, store := setupPlantedWorkspace(t)
	d := doctor.NewDoctor(gitdriver.New(), store)

	report, err := d.Check(context.Background(), workspaceRoot)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(report.Issues) != 0 {
		t.Fatalf("expected no issues on a freshly planted workspace, got %+v", report.Issues)
	}
}

func TestDoctor_Check_WorktreeDirMissing_FixMaterializes(t *testing.T) {
	workspaceRoot, containerPath, store := setupPlantedWorkspace(t)
	d := doctor.NewDoctor(gitdriver.New(), store)

	if err := os.RemoveAll(filepath.Join(containerPath, "_main.wt")); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}

	report, err := d.Check(context.Background(), workspaceRoot)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !hasIssue(report.Issues, doctor.WorktreeDirMissing) {
		t.Fatalf("expected WorktreeDirMissing, got %+v", report.Issues)
	}

	outcomes := d.Fix(context.Background(), workspaceRoot, report.Issues)
	if len(outcomes) != 1 || outcomes[0].Err != nil {
		t.Fatalf("Fix outcomes = %+v, want one successful fix", outcomes)
	}
	if _, err := os.Stat(filepath.Join(containerPath, "_main.wt", "README.md")); err != nil {
		t.Fatalf("worktree not rematerialized: %v", err)
	}

	report2, err := d.Check(context.Background(), workspaceRoot)
	if err != nil {
		t.Fatalf("second Check: %v", err)
	}
	if hasIssue(report2.Issues, doctor.WorktreeDirMissing) {
		t.Fatalf("expected fix to clear the issue, got %+v", report2.Issues)
	}
}

func TestDoctor_Check_DirNotInBaumManifest(t *testing.T) {
	workspaceRoot, containerPath, store := setupPlantedWorkspace(t)
	d := doctor.NewDoctor(gitdriver.New(), store)

	stray := filepath.Join(containerPath, "_ghost.wt")
	if err := os.MkdirAll(stray, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	report, err := d.Check(context.Background(), workspaceRoot)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !hasIssue(report.Issues, doctor.DirNotInBaumManifest) {
		t.Fatalf("expected DirNotInBaumManifest, got %+v", report.Issues)
	}
}

func TestDoctor_Check_UnparseableBaumManifest(t *testing.T) {
	workspaceRoot, containerPath, store := setupPlantedWorkspace(t)
	d := doctor.NewDoctor(gitdriver.New(), store)

	manifestPath := manifest.BaumManifestPath(containerPath)
	if err := os.WriteFile(manifestPath, []byte("not: [valid yaml"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	report, err := d.Check(context.Background(), workspaceRoot)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !hasIssue(report.Issues, doctor.UnparseableBaumManifest) {
		t.Fatalf("expected UnparseableBaumManifest, got %+v", report.Issues)
	}
}

func TestDoctor_Check_RegistryEntryMissingBareRepo(t *testing.T) {
	workspaceRoot, containerPath, store := setupPlantedWorkspace(t)
	d := doctor.NewDoctor(gitdriver.New(), store)

	id, err := repoid.Parse(testRepoID)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := os.RemoveAll(repoid.BarePath(workspaceRoot, id)); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	// Remove the baum too: with the bare repo gone, WorktreeList can't run
	// against it, and the missing-bare-repo issue alone is this test's
	// concern.
	if err := os.RemoveAll(containerPath); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}

	report, err := d.Check(context.Background(), workspaceRoot)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !hasIssue(report.Issues, doctor.RegistryEntryMissingBareRepo) {
		t.Fatalf("expected RegistryEntryMissingBareRepo, got %+v", report.Issues)
	}
}

func TestDoctor_Check_BareRepoMissingRegistryEntry(t *testing.T) {
	workspaceRoot, _, store := setupPlantedWorkspace(t)
	d := doctor.NewDoctor(gitdriver.New(), store)

	ws, err := store.LoadWorkspace(context.Background(), workspaceRoot)
	if err != nil {
		t.Fatalf("LoadWorkspace: %v", err)
	}
	delete(ws.Repos, testRepoID)
	if err := store.SaveWorkspace(context.Background(), workspaceRoot, ws); err != nil {
		t.Fatalf("SaveWorkspace: %v", err)
	}

	report, err := d.Check(context.Background(), workspaceRoot)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !hasIssue(report.Issues, doctor.BareRepoMissingRegistryEntry) {
		t.Fatalf("expected BareRepoMissingRegistryEntry, got %+v", report.Issues)
	}
}

func TestDoctor_Check_ReposDirMissing_Fix(t *testing.T) {
	workspaceRoot, _, store := setupPlantedWorkspace(t)
	d := doctor.NewDoctor(gitdriver.New(), store)

	if err := os.RemoveAll(filepath.Join(workspaceRoot, ".wald", "repos")); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}

	report, err := d.Check(context.Background(), workspaceRoot)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !hasIssue(report.Issues, doctor.ReposDirMissing) {
		t.Fatalf("expected ReposDirMissing, got %+v", report.Issues)
	}

	outcomes := d.Fix(context.Background(), workspaceRoot, report.Issues)
	var fixedReposDir bool
	for _, o := range outcomes {
		if o.Issue.Kind == doctor.ReposDirMissing {
			fixedReposDir = o.Err == nil
		}
	}
	if !fixedReposDir {
		t.Fatalf("expected ReposDirMissing to be fixed, got outcomes %+v", outcomes)
	}
	if info, err := os.Stat(filepath.Join(workspaceRoot, ".wald", "repos")); err != nil || !info.IsDir() {
		t.Fatalf("repos dir not recreated: %v", err)
	}
}
