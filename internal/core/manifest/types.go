// Package manifest defines and persists the two tracked YAML schemas that
// make up a wald workspace's committed state: the workspace manifest (the
// repo registry) and each baum's manifest (its worktree list).
package manifest

// Filter names the partial-clone filter recorded on a repo entry.
type Filter string

// Filter values.
const (
	FilterNone     Filter = "none"
	FilterBlobNone Filter = "blob-none"
	FilterTreeZero Filter = "tree-zero"
)

// LFS is an informational label describing how large-file storage is
// handled for a repo; wald does not enforce LFS policy itself.
type LFS string

// LFS values.
const (
	LFSNone    LFS = "none"
	LFSMinimal LFS = "minimal"
	LFSFull    LFS = "full"
)

// RepoEntry is one registered upstream repo.
type RepoEntry struct {
	LFS      LFS      `yaml:"lfs"`
	Depth    string   `yaml:"depth"` // positive integer as a string, or "full"
	Filter   Filter   `yaml:"filter"`
	Aliases  []string `yaml:"aliases,omitempty"`
	Upstream string   `yaml:"upstream,omitempty"`
}

// Workspace is the tracked `.wald/manifest.yaml` repo registry.
type Workspace struct {
	Repos map[string]RepoEntry `yaml:"repos"`
}

// NewWorkspace returns an empty registry (`repos: {}`).
func NewWorkspace() *Workspace {
	return &Workspace{Repos: map[string]RepoEntry{}}
}

// WorktreeEntry is one declared branch/path pair inside a baum manifest.
type WorktreeEntry struct {
	Branch string `yaml:"branch"`
	Path   string `yaml:"path"`
}

// Baum is the tracked `<baum>/.baum/manifest.yaml` schema.
type Baum struct {
	RepoID    string          `yaml:"repo_id"`
	Worktrees []WorktreeEntry `yaml:"worktrees"`
}
