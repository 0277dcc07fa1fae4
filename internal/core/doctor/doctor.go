// Package doctor implements C9: cross-reading the workspace manifest, the
// bare repo registry, and the on-disk baum directories to find where the
// three have drifted apart, and repairing what can be repaired without
// human judgment.
package doctor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/forduniver/wald/internal/core/gitdriver"
	"github.com/forduniver/wald/internal/core/manifest"
	"github.com/forduniver/wald/internal/core/materializer"
	"github.com/forduniver/wald/internal/core/repoid"
)

// Doctor runs the invariant check and optional repair pass.
type Doctor struct {
	driver       *gitdriver.Driver
	store        *manifest.Store
	materializer *materializer.Materializer
}

// NewDoctor assembles a Doctor from its collaborators.
func NewDoctor(driver *gitdriver.Driver, store *manifest.Store) *Doctor {
	return &Doctor{
		driver:       driver,
		store:        store,
		materializer: materializer.NewMaterializer(driver, store),
	}
}

// Check enumerates every registry/bare-repo/baum-manifest/worktree
// inconsistency it can find against workspaceRoot.
func (d *Doctor) Check(ctx context.Context, workspaceRoot string) (*Report, error) {
	ws, err := d.store.LoadWorkspace(ctx, workspaceRoot)
	if err != nil {
		return nil, err
	}

	reposDir := filepath.Join(workspaceRoot, ".wald", "repos")
	report := &Report{}

	if info, err := os.Stat(reposDir); err != nil || !info.IsDir() {
		report.Issues = append(report.Issues, Issue{
			Kind:     ReposDirMissing,
			Severity: Fixable,
			Detail:   reposDir,
		})
	}

	bareRepos, err := discoverBareRepos(reposDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	bareRepoSet := map[string]bool{}
	for _, id := range bareRepos {
		bareRepoSet[id] = true
	}

	for id := range ws.Repos {
		if !bareRepoSet[id] {
			report.Issues = append(report.Issues, Issue{
				Kind:     RegistryEntryMissingBareRepo,
				Severity: Warn,
				RepoID:   id,
				Detail:   fmt.Sprintf("%s is registered but has no bare repo under %s", id, reposDir),
			})
		}
	}
	for id := range bareRepoSet {
		if _, ok := ws.Repos[id]; !ok {
			report.Issues = append(report.Issues, Issue{
				Kind:     BareRepoMissingRegistryEntry,
				Severity: Warn,
				RepoID:   id,
				Detail:   fmt.Sprintf("%s has a bare repo on disk but is not registered", id),
			})
		}
	}

	baumDirs, err := manifest.FindAllBaums(workspaceRoot)
	if err != nil {
		return nil, err
	}
	for _, baumPath := range baumDirs {
		report.Issues = append(report.Issues, d.checkBaum(ctx, workspaceRoot, baumPath)...)
	}

	return report, nil
}

func (d *Doctor) checkBaum(ctx context.Context, workspaceRoot, baumPath string) []Issue {
	b, err := d.store.LoadBaum(ctx, baumPath)
	if err != nil {
		return []Issue{{
			Kind:     UnparseableBaumManifest,
			Severity: Warn,
			BaumPath: baumPath,
			Detail:   fmt.Sprintf("%s: %s", baumPath, err),
		}}
	}

	var issues []Issue

	declared := map[string]bool{}
	for _, wt := range b.Worktrees {
		declared[wt.Path] = true
		worktreeDir := filepath.Join(baumPath, wt.Path)
		if !isValidWorktreeDir(worktreeDir) {
			issues = append(issues, Issue{
				Kind:     WorktreeDirMissing,
				Severity: Fixable,
				BaumPath: baumPath,
				Branch:   wt.Branch,
				Detail:   fmt.Sprintf("%s: worktree for %s missing at %s", baumPath, wt.Branch, worktreeDir),
			})
		}
	}

	onDisk, err := listWorktreeDirNames(baumPath)
	if err == nil {
		for _, name := range onDisk {
			if !declared[name] {
				issues = append(issues, Issue{
					Kind:     DirNotInBaumManifest,
					Severity: Warn,
					BaumPath: baumPath,
					Detail:   fmt.Sprintf("%s: %s is on disk but not declared in the baum manifest", baumPath, name),
				})
			}
		}
	}

	id, err := repoid.Parse(b.RepoID)
	if err != nil {
		return issues
	}
	barePath := repoid.BarePath(workspaceRoot, id)
	if _, err := os.Stat(barePath); err != nil {
		return issues
	}
	registered, err := d.driver.WorktreeList(ctx, barePath)
	if err != nil {
		return issues
	}
	registeredPaths := map[string]bool{}
	for _, wt := range registered {
		registeredPaths[filepath.Clean(wt.Path)] = true
	}
	for _, wt := range b.Worktrees {
		worktreeDir := filepath.Join(baumPath, wt.Path)
		if !isValidWorktreeDir(worktreeDir) {
			continue
		}
		if !registeredPaths[filepath.Clean(worktreeDir)] {
			issues = append(issues, Issue{
				Kind:     DirNotRegisteredWithBare,
				Severity: Warn,
				BaumPath: baumPath,
				Branch:   wt.Branch,
				Detail:   fmt.Sprintf("%s: %s exists but is not registered with its bare repo", baumPath, worktreeDir),
			})
		}
	}

	return issues
}

// Fix attempts to repair every FIXABLE issue in issues, returning one
// outcome per attempt. Warn-severity issues are skipped untouched.
func (d *Doctor) Fix(ctx context.Context, workspaceRoot string, issues []Issue) []FixOutcome {
	var outcomes []FixOutcome
	for _, issue := range issues {
		if issue.Severity != Fixable {
			continue
		}
		var err error
		switch issue.Kind {
		case ReposDirMissing:
			err = os.MkdirAll(issue.Detail, 0o755)
		case WorktreeDirMissing:
			_, err = d.materializer.Materialize(ctx, workspaceRoot, issue.BaumPath)
		default:
			continue
		}
		outcomes = append(outcomes, FixOutcome{Issue: issue, Err: err})
	}
	return outcomes
}

// discoverBareRepos walks reposDir and returns the repo-id string for every
// bare repo found (a directory whose name ends in ".git", taken as a leaf:
// its own internal object/ref directories are never descended into).
func discoverBareRepos(reposDir string) ([]string, error) {
	var ids []string
	err := filepath.WalkDir(reposDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == reposDir || !entry.IsDir() {
			return nil
		}
		if !strings.HasSuffix(entry.Name(), ".git") {
			return nil
		}
		rel, err := filepath.Rel(reposDir, path)
		if err != nil {
			return err
		}
		segs := strings.Split(filepath.ToSlash(rel), "/")
		segs[len(segs)-1] = strings.TrimSuffix(segs[len(segs)-1], ".git")
		id, parseErr := repoid.Parse(strings.Join(segs, "/"))
		if parseErr == nil {
			ids = append(ids, id.String())
		}
		return filepath.SkipDir
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// listWorktreeDirNames returns the names of baumPath's immediate
// subdirectories that follow the worktree naming convention.
func listWorktreeDirNames(baumPath string) ([]string, error) {
	entries, err := os.ReadDir(baumPath)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && isWorktreeDirName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func isWorktreeDirName(name string) bool {
	return strings.HasPrefix(name, "_") && strings.HasSuffix(name, ".wt")
}

// isValidWorktreeDir reports whether dir looks like a registered git
// worktree: a directory containing a `.git` pointer file.
func isValidWorktreeDir(dir string) bool {
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
