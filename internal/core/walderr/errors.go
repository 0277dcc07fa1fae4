// Package walderr defines the closed taxonomy of error kinds shared across
// wald's core packages. Operations wrap these sentinels with fmt.Errorf's
// %w verb so callers can classify failures with errors.Is while still
// getting the dynamic detail (path, exit code, stderr) in the message.
package walderr

import "errors"

// Validation errors: a value fails to parse or conform to its schema.
var (
	ErrInvalidRepoID           = errors.New("invalid repo id")
	ErrInvalidFilter           = errors.New("invalid filter")
	ErrInvalidBaumManifest     = errors.New("invalid baum manifest")
	ErrInvalidWorkspaceManifest = errors.New("invalid workspace manifest")
)

// Precondition errors: the operation's required state does not hold.
var (
	ErrAlreadyInitialized   = errors.New("already initialized")
	ErrNestedWorkspace      = errors.New("workspace is nested inside another workspace")
	ErrWorkspaceDirty       = errors.New("workspace has unstaged modifications")
	ErrWorkspaceDiverged    = errors.New("workspace has diverged from origin")
	ErrContainerNotDirectory = errors.New("container path exists and is not a directory")
	ErrContainerAlreadyExists = errors.New("container already exists")
	ErrDestinationExists    = errors.New("destination already exists")
	ErrBranchAlreadyPlanted = errors.New("branch already planted in baum")
	ErrBaumRepoMismatch     = errors.New("baum is registered to a different repo")
	ErrRepoAlreadyRegistered = errors.New("repo already registered")
	ErrRepoNotRegistered    = errors.New("repo not registered")
	ErrBareRepoMissing      = errors.New("bare repo missing")
	ErrBaumNotFound         = errors.New("not a baum")
	ErrAliasAlreadyUsed     = errors.New("alias already used")
)

// Operational errors: a subprocess or filesystem write failed.
var (
	ErrGitCommandFailed    = errors.New("git command failed")
	ErrManifestReadFailed  = errors.New("manifest read failed")
	ErrManifestWriteFailed = errors.New("manifest write failed")
	ErrWorktreeRemoveFailed = errors.New("worktree remove failed")
)

// Recoverable advisories: not failures, but worth surfacing to the caller
// alongside a successful result.
var (
	ErrPartialCloneWarning    = errors.New("bare repo is a partial clone; first access of unfetched blobs needs network")
	ErrMissingWorktreeWarning = errors.New("baum manifest entry has no materialized worktree")
	ErrNoRepositoriesToActOn  = errors.New("no repositories to act on")
)
