// Package baum implements the filesystem mutations that create, extend,
// shrink, relocate, and destroy a baum container: a directory holding a
// `.baum/manifest.yaml` and the worktrees it declares. Mirrors the shape of
// amux's per-task git-worktree sandbox manager, generalized from "one
// worktree per sandbox" to "N worktrees (one per branch) per baum, backed by
// a shared bare repo".
package baum

// PlantResult reports the outcome of a plant/branch call, including any
// non-fatal advisories (e.g. partial-clone warnings).
type PlantResult struct {
	Planted  []string // branches successfully added
	Warnings []error
}

// PruneResult reports per-branch outcomes of a prune call.
type PruneResult struct {
	Removed  []string
	Warnings []error
	DryRun   bool // true if this was a preview; nothing was removed
}

// UprootResult reports the worktrees an uproot call removed, or — when
// DryRun is set — would remove.
type UprootResult struct {
	Removed []string
	DryRun  bool
}
