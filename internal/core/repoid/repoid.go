// Package repoid parses and normalizes repo identifiers of the form
// host/seg1/.../segN and resolves aliases registered against them.
package repoid

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/forduniver/wald/internal/core/walderr"
)

// ID is a canonical, validated repo identifier.
type ID struct {
	Host string
	Path []string
	Name string
}

// String returns the canonical string form, host/seg1/.../name.
func (id ID) String() string {
	segs := append([]string{id.Host}, id.Path...)
	segs = append(segs, id.Name)
	return strings.Join(segs, "/")
}

// Equal reports whether two IDs are canonically equal.
func (id ID) Equal(other ID) bool {
	return id.String() == other.String()
}

// Parse validates and decomposes a repo-id string.
func Parse(s string) (ID, error) {
	if s == "" {
		return ID{}, fmt.Errorf("%w: empty repo id", walderr.ErrInvalidRepoID)
	}
	if strings.HasPrefix(s, "/") || strings.HasSuffix(s, "/") {
		return ID{}, fmt.Errorf("%w: %q has leading or trailing slash", walderr.ErrInvalidRepoID, s)
	}

	segs := strings.Split(s, "/")
	if len(segs) < 2 {
		return ID{}, fmt.Errorf("%w: %q has fewer than two segments", walderr.ErrInvalidRepoID, s)
	}
	for _, seg := range segs {
		if seg == "" {
			return ID{}, fmt.Errorf("%w: %q has an empty segment", walderr.ErrInvalidRepoID, s)
		}
	}

	return ID{
		Host: segs[0],
		Path: segs[1 : len(segs)-1],
		Name: segs[len(segs)-1],
	}, nil
}

// BarePath returns the canonical bare-repo filesystem path under
// <workspaceRoot>/.wald/repos/.
func BarePath(workspaceRoot string, id ID) string {
	segs := append([]string{workspaceRoot, ".wald", "repos", id.Host}, id.Path...)
	segs = append(segs, id.Name+".git")
	return filepath.Join(segs...)
}

// AliasSet resolves identifiers that may be either a canonical repo-id or a
// registered alias.
type AliasSet interface {
	// ResolveAlias returns the repo-id string an alias points to, if any.
	ResolveAlias(alias string) (string, bool)
}

// Resolve resolves identifier against the given alias set: it first tries
// identifier as a repo-id, falling back to alias lookup.
func Resolve(identifier string, aliases AliasSet) (ID, error) {
	if id, err := Parse(identifier); err == nil {
		return id, nil
	}

	if target, ok := aliases.ResolveAlias(identifier); ok {
		return Parse(target)
	}

	return ID{}, fmt.Errorf("repo identifier not found: %s", identifier)
}
