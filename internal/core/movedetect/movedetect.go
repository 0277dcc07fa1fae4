// Package movedetect implements C6: turning a git similarity-diff between
// two workspace commits into the list of baum containers that were
// relocated between them.
package movedetect

import (
	"context"
	"path"

	"github.com/forduniver/wald/internal/core/gitdriver"
	"github.com/forduniver/wald/internal/core/manifest"
)

// baumManifestGlob restricts rename detection to baum manifest files,
// wherever they live in the workspace tree.
const baumManifestGlob = ":(glob)**/" + manifest.BaumDir + "/" + manifest.BaumFileName

// Move is one detected baum relocation between two commits.
type Move struct {
	OldBaumDir string
	NewBaumDir string
}

// Detector finds baum moves via the git driver's similarity-based diff.
type Detector struct {
	driver *gitdriver.Driver
}

// NewDetector returns a Detector using the given git driver.
func NewDetector(driver *gitdriver.Driver) *Detector {
	return &Detector{driver: driver}
}

// Detect returns every baum rename between fromCommit and toCommit on the
// first-parent chain. A rename whose similarity falls below the driver's
// threshold is not returned here; the caller will see it as a separate
// addition and deletion instead, which is the intended behavior for baums
// that diverged too much to be considered "the same" container.
func (d *Detector) Detect(ctx context.Context, workspaceRoot, fromCommit, toCommit string) ([]Move, error) {
	renames, err := d.driver.DiffRenames(ctx, workspaceRoot, fromCommit, toCommit, baumManifestGlob)
	if err != nil {
		return nil, err
	}

	moves := make([]Move, 0, len(renames))
	for _, r := range renames {
		moves = append(moves, Move{
			OldBaumDir: baumDirFromManifestPath(r.OldPath),
			NewBaumDir: baumDirFromManifestPath(r.NewPath),
		})
	}
	return moves, nil
}

// baumDirFromManifestPath returns the baum container directory that owns
// the manifest at manifestPath (its grandparent: <dir>/.baum/manifest.yaml).
// git always reports paths with forward slashes regardless of OS, so this
// uses "path", not "path/filepath".
func baumDirFromManifestPath(manifestPath string) string {
	return path.Dir(path.Dir(manifestPath))
}
