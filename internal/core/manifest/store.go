package manifest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/forduniver/wald/internal/filemanager"
)

// WorkspaceFileName is the tracked workspace manifest's filename under .wald/.
const WorkspaceFileName = "manifest.yaml"

// BaumDir is the metadata directory name inside a baum container.
const BaumDir = ".baum"

// BaumFileName is the tracked baum manifest's filename inside BaumDir.
const BaumFileName = "manifest.yaml"

// Store reads and writes workspace and baum manifests via the
// load-modify-write discipline in internal/filemanager. gopkg.in/yaml.v3
// marshals map keys in sorted order, so Workspace.Repos is written
// deterministically without the store doing anything extra.
type Store struct {
	fm     *filemanager.Manager[Workspace]
	baumFm *filemanager.Manager[Baum]
}

// NewStore creates a manifest Store.
func NewStore() *Store {
	return &Store{
		fm:     filemanager.NewManager[Workspace](),
		baumFm: filemanager.NewManager[Baum](),
	}
}

// WorkspacePath returns the canonical workspace manifest path.
func WorkspacePath(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, ".wald", WorkspaceFileName)
}

// WorkspacePathRelative returns the workspace manifest's path relative to
// the workspace root, in git's forward-slash form — for use with commands
// like `git show <rev>:<path>` that take repo-relative paths.
func WorkspacePathRelative() string {
	return ".wald/" + WorkspaceFileName
}

// BaumManifestPath returns the canonical baum manifest path for a baum
// container directory.
func BaumManifestPath(baumPath string) string {
	return filepath.Join(baumPath, BaumDir, BaumFileName)
}

// LoadWorkspace reads the workspace manifest, returning an empty registry if
// the file does not yet exist.
func (s *Store) LoadWorkspace(ctx context.Context, workspaceRoot string) (*Workspace, error) {
	ws, err := s.fm.Read(ctx, WorkspacePath(workspaceRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return NewWorkspace(), nil
		}
		return nil, err
	}
	if ws.Repos == nil {
		ws.Repos = map[string]RepoEntry{}
	}
	return ws, nil
}

// SaveWorkspace writes the workspace manifest.
func (s *Store) SaveWorkspace(ctx context.Context, workspaceRoot string, ws *Workspace) error {
	return s.fm.Write(ctx, WorkspacePath(workspaceRoot), ws)
}

// UpdateWorkspace loads, mutates, and saves the workspace manifest in one
// step.
func (s *Store) UpdateWorkspace(ctx context.Context, workspaceRoot string, fn func(*Workspace) error) error {
	return s.fm.Update(ctx, WorkspacePath(workspaceRoot), func(ws *Workspace) error {
		if ws.Repos == nil {
			ws.Repos = map[string]RepoEntry{}
		}
		return fn(ws)
	})
}

// LoadBaum reads a baum manifest by the baum container's path.
func (s *Store) LoadBaum(ctx context.Context, baumPath string) (*Baum, error) {
	return s.baumFm.Read(ctx, BaumManifestPath(baumPath))
}

// SaveBaum writes a baum manifest.
func (s *Store) SaveBaum(ctx context.Context, baumPath string, b *Baum) error {
	return s.baumFm.Write(ctx, BaumManifestPath(baumPath), b)
}

// UpdateBaum loads (or starts empty), mutates, and saves a baum manifest.
func (s *Store) UpdateBaum(ctx context.Context, baumPath string, fn func(*Baum) error) error {
	return s.baumFm.Update(ctx, BaumManifestPath(baumPath), fn)
}

// IsBaum reports whether baumPath has a baum manifest on disk.
func IsBaum(baumPath string) bool {
	_, err := os.Stat(BaumManifestPath(baumPath))
	return err == nil
}

// isWorktreeDirName reports whether name follows the "_<branch>.wt"
// worktree directory naming convention.
func isWorktreeDirName(name string) bool {
	return strings.HasPrefix(name, "_") && strings.HasSuffix(name, ".wt")
}

// FindAllBaums walks workspaceRoot and returns every directory holding a
// baum manifest, skipping wald's own metadata tree and the inside of any
// worktree directory (those hold an unrelated planted repo's checked-out
// tree, not further baums of this workspace).
func FindAllBaums(workspaceRoot string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(workspaceRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		name := entry.Name()
		if path != workspaceRoot && (name == ".wald" || name == ".git") {
			return filepath.SkipDir
		}
		if path != workspaceRoot && IsBaum(path) {
			found = append(found, path)
		}
		if isWorktreeDirName(name) {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// BranchIndex returns the position of branch in the baum's worktree list,
// or -1 if absent.
func (b *Baum) BranchIndex(branch string) int {
	for i, wt := range b.Worktrees {
		if wt.Branch == branch {
			return i
		}
	}
	return -1
}

// RemoveBranch removes the entry for branch, if present.
func (b *Baum) RemoveBranch(branch string) {
	idx := b.BranchIndex(branch)
	if idx < 0 {
		return
	}
	b.Worktrees = append(b.Worktrees[:idx], b.Worktrees[idx+1:]...)
}

// AllAliasesAndIDs walks the registry and returns every repo-id string and
// every alias currently in use, for global uniqueness checks.
func (ws *Workspace) AllAliasesAndIDs() (ids []string, aliases []string) {
	for id, entry := range ws.Repos {
		ids = append(ids, id)
		aliases = append(aliases, entry.Aliases...)
	}
	return ids, aliases
}

// ResolveAlias implements repoid.AliasSet: it looks alias up among the
// registered aliases only. repoid.Resolve tries the identifier as a repo-id
// first and calls this only when that parse fails.
func (ws *Workspace) ResolveAlias(alias string) (string, bool) {
	for id, entry := range ws.Repos {
		for _, a := range entry.Aliases {
			if a == alias {
				return id, true
			}
		}
	}
	return "", false
}

// ValidateAliasUnique checks that alias does not already identify another
// repo (as a repo-id or as someone else's alias).
func (ws *Workspace) ValidateAliasUnique(alias, forRepoID string) error {
	if alias == forRepoID {
		return nil
	}
	if _, exists := ws.Repos[alias]; exists {
		return fmt.Errorf("alias %q collides with a registered repo id", alias)
	}
	if owner, ok := ws.ResolveAlias(alias); ok && owner != forRepoID {
		return fmt.Errorf("alias %q already used by %s", alias, owner)
	}
	return nil
}
