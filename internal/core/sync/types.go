package sync

// RepoAdded, RepoRemoved, RepoConfigChanged describe a registry-level
// change detected between two workspace manifest commits.
type RepoAdded struct{ RepoID string }
type RepoRemoved struct{ RepoID string }
type RepoConfigChanged struct{ RepoID string }

// BaumChange is one classified change to a baum's `.baum/manifest.yaml`
// between two commits.
type BaumChange struct {
	Kind   BaumChangeKind
	Dir    string // for Move, this is the new directory
	OldDir string // populated only for Move
}

// BaumChangeKind enumerates the ways a baum manifest can change between
// two workspace commits.
type BaumChangeKind int

const (
	BaumMoved BaumChangeKind = iota
	BaumAppeared
	BaumVanished
	BaumTouched
)

// Options configures one sync run.
type Options struct {
	// Autostash allows S0 to proceed past local modifications by stashing
	// them before pull_rebase, instead of failing WorkspaceDirty. Off by
	// default: a surprise filesystem move is worse than a failed sync.
	Autostash bool
	// Force allows S1 to proceed past a diverged workspace (both ahead and
	// behind origin/main) via autostash + rebase instead of failing
	// WorkspaceDiverged.
	Force bool
	// DryRun previews S4's classification against origin/main's current
	// tip without running S2's pull_rebase or S6's filesystem mutations,
	// and without advancing last_sync.
	DryRun bool
}

// BaumOutcome records what happened when applying one baum's change.
type BaumOutcome struct {
	Change BaumChange
	Err    error
}

// Result reports what a sync run did, or — when DryRun is set — would do.
type Result struct {
	FromCommit            string
	ToCommit              string
	RegistryAdded         []RepoAdded
	RegistryRemoved       []RepoRemoved
	RegistryConfigChanged []RepoConfigChanged
	BaumOutcomes          []BaumOutcome
	Warnings              []error
	NoOp                  bool // from == to, nothing to do
	DryRun                bool // true if this was a preview; nothing was mutated
}
