package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/forduniver/wald/internal/core/baum"
	"github.com/forduniver/wald/internal/core/gitdriver"
	"github.com/forduniver/wald/internal/core/manifest"
	"github.com/forduniver/wald/internal/core/walderr"
	"github.com/forduniver/wald/internal/workspacefs"
)

// ExitError carries the exit code a failed command should terminate with:
// 1 for a wald-level validation/precondition/operational error, 2 for an
// underlying git subprocess failure.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// wrapExit classifies err for the process exit code: a git subprocess
// failure is exit 2, every other wald error is exit 1. A nil err passes
// through unchanged.
func wrapExit(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, walderr.ErrGitCommandFailed) {
		return &ExitError{Code: 2, Err: err}
	}
	return &ExitError{Code: 1, Err: err}
}

// findWorkspaceRoot locates the workspace root by walking up from the
// current directory.
func findWorkspaceRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return workspacefs.FindWorkspaceRoot(cwd)
}

// collaborators bundles the core components most commands need, so each
// command file doesn't re-wire the same constructors.
type collaborators struct {
	driver *gitdriver.Driver
	store  *manifest.Store
	op     *baum.Operator
}

func newCollaborators() *collaborators {
	driver := gitdriver.New()
	store := manifest.NewStore()
	return &collaborators{
		driver: driver,
		store:  store,
		op:     baum.NewOperator(driver, store),
	}
}

// parseDepth validates the --depth flag value: a positive integer, or the
// literal "full".
func parseDepth(s string) (string, error) {
	if s == "full" {
		return s, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("%w: depth must be a positive integer or \"full\", got %q", walderr.ErrInvalidFilter, s)
	}
	return s, nil
}

// parseFilter validates the --filter flag value against the closed set of
// partial-clone filters the manifest schema records.
func parseFilter(s string) (manifest.Filter, error) {
	switch manifest.Filter(s) {
	case manifest.FilterNone, manifest.FilterBlobNone, manifest.FilterTreeZero:
		return manifest.Filter(s), nil
	default:
		return "", fmt.Errorf("%w: filter must be one of none, blob-none, tree-zero, got %q", walderr.ErrInvalidFilter, s)
	}
}

// parseLFS validates the --lfs flag value against the closed set of LFS
// labels the manifest schema records.
func parseLFS(s string) (manifest.LFS, error) {
	switch manifest.LFS(s) {
	case manifest.LFSNone, manifest.LFSMinimal, manifest.LFSFull:
		return manifest.LFS(s), nil
	default:
		return "", fmt.Errorf("%w: lfs must be one of none, minimal, full, got %q", walderr.ErrInvalidFilter, s)
	}
}

// notABaumError reports that path has no baum manifest on disk.
func notABaumError(path string) error {
	return fmt.Errorf("%w: %s", walderr.ErrBaumNotFound, path)
}
