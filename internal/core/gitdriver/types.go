package gitdriver

// WorktreeInfo describes one entry from `git worktree list --porcelain`.
type WorktreeInfo struct {
	Path   string
	Branch string
	Commit string
	Bare   bool
}

// RepositoryInfo is a snapshot of a workspace git repo's state.
type RepositoryInfo struct {
	Path          string
	CurrentBranch string
	RemoteURL     string
	IsClean       bool
}

// RenamePair is one rename detected between two commits.
type RenamePair struct {
	OldPath string
	NewPath string
}

// CloneOptions configures a bare clone.
type CloneOptions struct {
	// Filter is a manifest filter name ("none", "blob-none" or
	// "tree-zero"), which CloneBare maps to git's "blob:none" / "tree:0"
	// filter spec. Empty or "none" means a full clone.
	Filter string
	// Depth limits clone history; zero means full history.
	Depth int
}
