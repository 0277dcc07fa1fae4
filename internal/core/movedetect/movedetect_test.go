package movedetect_test

import (
	"context"
	"testing"

	"github.com/forduniver/wald/internal/core/gitdriver"
	"github.com/forduniver/wald/internal/core/movedetect"
	"github.com/forduniver/wald/internal/tests/helpers"
)

func TestDetector_Detect_RenamedBaum(t *testing.T) {
	repo := helpers.CreateTestRepo(t)
	helpers.CommitFile(t, repo, "tools/old-name/.baum/manifest.yaml", "repo_id: github.com/test/repo\nworktrees:\n- branch: main\n  path: _main.wt\n", "plant")
	from := helpers.HeadCommit(t, repo)

	helpers.RunGit(t, repo, "mv", "tools/old-name", "tools/new-name")
	helpers.RunGit(t, repo, "commit", "-m", "move tools/old-name -> tools/new-name")
	to := helpers.HeadCommit(t, repo)

	d := movedetect.NewDetector(gitdriver.New())
	moves, err := d.Detect(context.Background(), repo, from, to)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(moves) != 1 {
		t.Fatalf("Detect returned %d moves, want 1: %+v", len(moves), moves)
	}
	if moves[0].OldBaumDir != "tools/old-name" || moves[0].NewBaumDir != "tools/new-name" {
		t.Errorf("unexpected move: %+v", moves[0])
	}
}

func TestDetector_Detect_NoRenameBelowThreshold(t *testing.T) {
	repo := helpers.CreateTestRepo(t)
	helpers.CommitFile(t, repo, "tools/a/.baum/manifest.yaml", "repo_id: github.com/test/a\nworktrees: []\n", "plant a")
	from := helpers.HeadCommit(t, repo)

	// An unrelated new baum with very different content: not a rename.
	helpers.RunGit(t, repo, "rm", "tools/a/.baum/manifest.yaml")
	helpers.CommitFile(t, repo, "tools/b/.baum/manifest.yaml", "repo_id: github.com/other/completely-different\nworktrees:\n- branch: release\n  path: _release.wt\n- branch: staging\n  path: _staging.wt\n- branch: hotfix\n  path: _hotfix.wt\n", "replace with unrelated baum")
	to := helpers.HeadCommit(t, repo)

	d := movedetect.NewDetector(gitdriver.New())
	moves, err := d.Detect(context.Background(), repo, from, to)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(moves) != 0 {
		t.Fatalf("expected no renames for unrelated content, got %+v", moves)
	}
}

func TestDetector_Detect_IgnoresNonBaumRenames(t *testing.T) {
	repo := helpers.CreateTestRepo(t)
	helpers.CommitFile(t, repo, "docs/old.md", "some content for the doc that is long enough to be similar\n", "add doc")
	from := helpers.HeadCommit(t, repo)

	helpers.RunGit(t, repo, "mv", "docs/old.md", "docs/new.md")
	helpers.RunGit(t, repo, "commit", "-m", "rename doc")
	to := helpers.HeadCommit(t, repo)

	d := movedetect.NewDetector(gitdriver.New())
	moves, err := d.Detect(context.Background(), repo, from, to)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(moves) != 0 {
		t.Fatalf("expected non-baum rename to be ignored, got %+v", moves)
	}
}
