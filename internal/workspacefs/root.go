package workspacefs

import (
	"fmt"
	"os"
	"path/filepath"
)

// WaldDir is the name of the workspace's metadata directory.
const WaldDir = ".wald"

// FindWorkspaceRoot walks upward from start looking for a directory holding
// its own .wald/, the way amux's FindProjectRoot walks up looking for
// .amux/config.yaml.
func FindWorkspaceRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, WaldDir)); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("not inside a wald workspace (no %s directory found)", WaldDir)
}

// FindAncestorWorkspace walks upward from the parent of start looking for an
// ancestor directory holding its own .wald/, used to reject nested
// workspaces during init. start itself is not considered.
func FindAncestorWorkspace(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	dir = filepath.Dir(dir)

	for {
		if info, err := os.Stat(filepath.Join(dir, WaldDir)); err == nil && info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}
