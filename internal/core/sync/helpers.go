package sync

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/forduniver/wald/internal/core/repoid"
	"github.com/forduniver/wald/internal/core/walderr"
)

func parseRepoIDOrWrap(s string) (repoid.ID, error) {
	id, err := repoid.Parse(s)
	if err != nil {
		return repoid.ID{}, fmt.Errorf("%w: %s", walderr.ErrInvalidBaumManifest, err)
	}
	return id, nil
}

func barePathFor(workspaceRoot string, id repoid.ID) string {
	return repoid.BarePath(workspaceRoot, id)
}

func joinPath(dir, rel string) string {
	return filepath.Join(dir, rel)
}

// absPath resolves a repo-relative, forward-slash git path (as returned by
// diff/rename detection) against workspaceRoot into a filesystem path.
func absPath(workspaceRoot, gitRelPath string) string {
	return filepath.Join(workspaceRoot, filepath.FromSlash(gitRelPath))
}

// baumDirFromManifestPath returns the baum container directory that owns
// the manifest at manifestPath (its grandparent). git --name-status output
// always uses forward slashes regardless of OS.
func baumDirFromManifestPath(manifestPath string) string {
	return path.Dir(path.Dir(manifestPath))
}

func pathExists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}

func movePath(oldPath, newPath string) error {
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return err
	}
	return os.Rename(oldPath, newPath)
}

// removeIfEmpty removes dir if it exists and has no remaining entries; a
// baum move can leave an old container directory empty once its worktrees
// have been relocated.
func removeIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}
	_ = os.Remove(dir)
}
