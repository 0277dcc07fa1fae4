// Package gitdriver is the typed façade over the installed git toolchain:
// every mutating operation is a synchronous subprocess invocation with an
// explicit working directory, and read-only queries that go-git already
// does well (open, HEAD, remotes, clean check) go through go-git instead
// of shelling out — go-git doesn't fully support worktrees, hence the
// split. Generalized from a single bound repoPath to explicit paths per
// call, since wald manages many bare repos and worktrees rather than one.
package gitdriver

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	git "github.com/go-git/go-git/v5"

	"github.com/forduniver/wald/internal/core/walderr"
)

// Driver executes git operations. It holds no state; every method takes the
// paths it needs explicitly.
type Driver struct{}

// New creates a Driver.
func New() *Driver {
	return &Driver{}
}

func (d *Driver) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return stdout.Bytes(), fmt.Errorf("%w: git %s (exit %d): %s",
			walderr.ErrGitCommandFailed, strings.Join(args, " "), exitCode, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// filterSpec maps a manifest.Filter value to the git --filter argument.
func filterSpec(filter string) string {
	switch filter {
	case "blob-none":
		return "blob:none"
	case "tree-zero":
		return "tree:0"
	default:
		return ""
	}
}

// CloneBare creates a bare clone of url at dest, applying opts.Filter and
// opts.Depth if set.
func (d *Driver) CloneBare(ctx context.Context, url, dest string, opts CloneOptions) error {
	args := []string{"clone", "--bare", url, dest}
	if opts.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(opts.Depth))
	}
	if spec := filterSpec(opts.Filter); spec != "" {
		args = append(args, "--filter="+spec)
	}
	_, err := d.run(ctx, "", args...)
	return err
}

// Fetch advances refs in a bare repo, optionally pruning stale remote
// branches.
func (d *Driver) Fetch(ctx context.Context, barePath string, prune bool) error {
	args := []string{"fetch", "origin"}
	if prune {
		args = append(args, "--prune")
	}
	_, err := d.run(ctx, barePath, args...)
	return err
}

// GC runs housekeeping on a bare repo: pruning unreachable loose objects and
// repacking, the same as periodic git maintenance on a normal clone.
func (d *Driver) GC(ctx context.Context, barePath string) error {
	_, err := d.run(ctx, barePath, "gc", "--prune=now")
	return err
}

// ConvertToFull promotes a partial clone to full: it issues an unfiltered
// fetch and then unconditionally clears the promisor config, even if the
// fetch failed, so a network hiccup never leaves the repo stuck half-promisor.
func (d *Driver) ConvertToFull(ctx context.Context, barePath string) error {
	_, fetchErr := d.run(ctx, barePath, "fetch", "origin", "--unshallow", "--refetch")
	_, _ = d.run(ctx, barePath, "config", "--unset-all", "remote.origin.promisor")
	_, _ = d.run(ctx, barePath, "config", "--unset-all", "remote.origin.partialclonefilter")
	return fetchErr
}

// WorktreeAdd registers worktreeDir as a worktree of the bare repo checked
// out to branch, creating the branch from HEAD if createIfMissing and it
// does not already exist.
func (d *Driver) WorktreeAdd(ctx context.Context, barePath, worktreeDir, branch string, createIfMissing bool) error {
	exists, err := d.BranchExists(ctx, barePath, branch)
	if err != nil {
		return err
	}

	args := []string{"worktree", "add"}
	if !exists && createIfMissing {
		args = append(args, "-b", branch, worktreeDir)
	} else if exists {
		args = append(args, worktreeDir, branch)
	} else {
		return fmt.Errorf("%w: branch %q does not exist and createIfMissing is false", walderr.ErrGitCommandFailed, branch)
	}

	_, err = d.run(ctx, barePath, args...)
	return err
}

// WorktreeRemove deregisters and deletes worktreeDir. It fails with
// ErrWorktreeRemoveFailed if the worktree has uncommitted changes unless
// force is set.
func (d *Driver) WorktreeRemove(ctx context.Context, barePath, worktreeDir string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, worktreeDir)

	if _, err := d.run(ctx, barePath, args...); err != nil {
		return fmt.Errorf("%w: %v", walderr.ErrWorktreeRemoveFailed, err)
	}
	return nil
}

// PruneWorktrees removes stale worktree administrative files whose
// directories have vanished outside of git's knowledge.
func (d *Driver) PruneWorktrees(ctx context.Context, barePath string) error {
	_, err := d.run(ctx, barePath, "worktree", "prune")
	return err
}

// WorktreeRepair rewrites the absolute worktree paths recorded in the bare
// repo's registry to match the worktrees' current on-disk locations. Used
// after a baum move: git's directory rename alone does not update the
// registry's absolute paths.
func (d *Driver) WorktreeRepair(ctx context.Context, barePath string, worktreeDirs ...string) error {
	args := append([]string{"worktree", "repair"}, worktreeDirs...)
	_, err := d.run(ctx, barePath, args...)
	return err
}

// WorktreeList returns the worktrees registered with a bare repo.
func (d *Driver) WorktreeList(ctx context.Context, barePath string) ([]WorktreeInfo, error) {
	out, err := d.run(ctx, barePath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseWorktreeList(out), nil
}

// BranchExists reports whether branch exists in the bare repo.
func (d *Driver) BranchExists(ctx context.Context, barePath, branch string) (bool, error) {
	_, err := d.run(ctx, barePath, "rev-parse", "--verify", "refs/heads/"+branch)
	if err != nil {
		if bytesErrorLooksLikeMissingRef(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func bytesErrorLooksLikeMissingRef(err error) bool {
	return strings.Contains(err.Error(), "fatal: Needed a single revision") ||
		strings.Contains(err.Error(), "unknown revision")
}

// CreateBranch creates branch from baseBranch. Creating a branch that
// already exists is not an error.
func (d *Driver) CreateBranch(ctx context.Context, barePath, branch, baseBranch string) error {
	_, err := d.run(ctx, barePath, "branch", branch, baseBranch)
	if err != nil && strings.Contains(err.Error(), "already exists") {
		return nil
	}
	return err
}

// DeleteBranch force-deletes branch.
func (d *Driver) DeleteBranch(ctx context.Context, barePath, branch string) error {
	_, err := d.run(ctx, barePath, "branch", "-D", branch)
	return err
}

// DefaultBranch resolves the bare repo's default branch, falling back to
// "main" if neither a remote HEAD nor a main/master branch can be found.
func (d *Driver) DefaultBranch(ctx context.Context, barePath string) (string, error) {
	out, err := d.run(ctx, barePath, "symbolic-ref", "refs/remotes/origin/HEAD")
	if err == nil {
		branch := strings.TrimSpace(string(out))
		branch = strings.TrimPrefix(branch, "refs/remotes/origin/")
		if branch != "" {
			return branch, nil
		}
	}

	for _, candidate := range []string{"main", "master"} {
		if exists, _ := d.BranchExists(ctx, barePath, candidate); exists {
			return candidate, nil
		}
	}

	return "main", nil
}

// RenameTracked stages src as a rename to dst in one operation so the
// workspace commit records a rename, not a delete+add. Fails if dst exists.
func (d *Driver) RenameTracked(ctx context.Context, workspaceRoot, src, dst string) error {
	target := dst
	if !filepath.IsAbs(target) {
		target = filepath.Join(workspaceRoot, target)
	}
	if _, err := os.Lstat(target); err == nil {
		return fmt.Errorf("%w: %s", walderr.ErrDestinationExists, dst)
	}
	_, err := d.run(ctx, workspaceRoot, "mv", src, dst)
	return err
}

// PullRebase advances the workspace repo to origin/<current branch> via
// rebase, optionally autostashing local modifications first.
func (d *Driver) PullRebase(ctx context.Context, workspaceRoot string, autostash bool) error {
	args := []string{"pull", "--rebase"}
	if autostash {
		args = append(args, "--autostash")
	}
	_, err := d.run(ctx, workspaceRoot, args...)
	return err
}

// Push pushes branch to origin.
func (d *Driver) Push(ctx context.Context, workspaceRoot, branch string) error {
	_, err := d.run(ctx, workspaceRoot, "push", "origin", branch)
	return err
}

// FetchRemote fetches origin without merging.
func (d *Driver) FetchRemote(ctx context.Context, workspaceRoot string) error {
	_, err := d.run(ctx, workspaceRoot, "fetch", "origin")
	return err
}

// RevParse resolves rev (e.g. "HEAD", "origin/main") to a commit hash.
func (d *Driver) RevParse(ctx context.Context, workspaceRoot, rev string) (string, error) {
	out, err := d.run(ctx, workspaceRoot, "rev-parse", rev)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ShowFile returns the content of path as it existed at commit, or an
// os.IsNotExist-compatible error if path did not exist at that commit.
func (d *Driver) ShowFile(ctx context.Context, workspaceRoot, commit, path string) ([]byte, error) {
	out, err := d.run(ctx, workspaceRoot, "show", commit+":"+path)
	if err != nil {
		if looksLikeMissingPathAtRevision(err) {
			return nil, fs.ErrNotExist
		}
		return nil, err
	}
	return out, nil
}

// looksLikeMissingPathAtRevision reports whether err is git's way of saying
// a path did not exist at the given revision ("exists on disk, but not in
// <rev>" / "does not exist in <rev>").
func looksLikeMissingPathAtRevision(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "does not exist in") || strings.Contains(msg, "exists on disk, but not in")
}

// InitialCommit returns the root commit of HEAD's history, used as the
// lower bound of a diff range when no prior sync has run.
func (d *Driver) InitialCommit(ctx context.Context, workspaceRoot string) (string, error) {
	out, err := d.run(ctx, workspaceRoot, "rev-list", "--max-parents=0", "HEAD")
	if err != nil {
		return "", err
	}
	lines := strings.Fields(strings.TrimSpace(string(out)))
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: no root commit found", walderr.ErrGitCommandFailed)
	}
	return lines[len(lines)-1], nil
}

// StatusPorcelain returns `git status --porcelain` output.
func (d *Driver) StatusPorcelain(ctx context.Context, workspaceRoot string) (string, error) {
	out, err := d.run(ctx, workspaceRoot, "status", "--porcelain")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// AheadBehind returns how many commits the current branch is ahead of and
// behind origin/main.
func (d *Driver) AheadBehind(ctx context.Context, workspaceRoot string) (ahead, behind int, err error) {
	out, err := d.run(ctx, workspaceRoot, "rev-list", "--left-right", "--count", "HEAD...origin/main")
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(string(out))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: unexpected rev-list output %q", walderr.ErrGitCommandFailed, out)
	}
	ahead, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	behind, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

// IsGitRepository checks via go-git whether path is a git repository.
func (d *Driver) IsGitRepository(path string) bool {
	_, err := git.PlainOpen(path)
	return err == nil
}

// RepositoryInfo inspects a repo's HEAD, remote, and working-tree
// cleanliness via go-git.
func (d *Driver) RepositoryInfo(path string) (*RepositoryInfo, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	info := &RepositoryInfo{Path: path}

	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("get HEAD: %w", err)
	}
	info.CurrentBranch = ref.Name().Short()

	if remotes, err := repo.Remotes(); err == nil && len(remotes) > 0 {
		cfg := remotes[0].Config()
		if len(cfg.URLs) > 0 {
			info.RemoteURL = cfg.URLs[0]
		}
	}

	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			info.IsClean = status.IsClean()
		}
	}

	return info, nil
}

// parseWorktreeList parses `git worktree list --porcelain` output.
func parseWorktreeList(output []byte) []WorktreeInfo {
	var worktrees []WorktreeInfo
	var current *WorktreeInfo

	flush := func() {
		if current != nil {
			worktrees = append(worktrees, *current)
			current = nil
		}
	}

	for _, line := range bytes.Split(output, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			flush()
			continue
		}

		parts := bytes.SplitN(line, []byte(" "), 2)
		key := string(parts[0])
		var value string
		if len(parts) == 2 {
			value = string(parts[1])
		}

		switch key {
		case "worktree":
			flush()
			current = &WorktreeInfo{Path: value}
		case "bare":
			if current != nil {
				current.Bare = true
			}
		case "branch":
			if current != nil {
				current.Branch = strings.TrimPrefix(value, "refs/heads/")
			}
		case "HEAD":
			if current != nil {
				current.Commit = value
			}
		}
	}
	flush()

	return worktrees
}
