package gitdriver

import (
	"context"
	"strconv"
	"strings"
)

// similarityThreshold is git's default rename-detection threshold (50%).
const similarityThreshold = 50

// DiffRenames returns the rename pairs between two commits whose path
// matches pathFilter (a git pathspec, e.g. ":(glob)**/.baum/manifest.yaml"),
// using similarity-based rename detection on the first-parent chain. An
// add/delete pair that falls below the similarity threshold is not
// reported here — the caller will see it as a separate addition and
// deletion, which is the documented, intentional behavior.
func (d *Driver) DiffRenames(ctx context.Context, workspaceRoot, fromCommit, toCommit, pathFilter string) ([]RenamePair, error) {
	args := []string{
		"diff", "--first-parent",
		"-M" + strconv.Itoa(similarityThreshold) + "%",
		"--name-status", "--no-color",
		fromCommit, toCommit,
	}
	if pathFilter != "" {
		args = append(args, "--", pathFilter)
	}

	out, err := d.run(ctx, workspaceRoot, args...)
	if err != nil {
		return nil, err
	}

	return parseNameStatusRenames(string(out)), nil
}

// DiffChanges classifies every path in the diff from..to matching
// pathFilter into additions, deletions, and modifications, skipping renames
// (those are reported separately by DiffRenames using the same inputs).
type DiffChanges struct {
	Added    []string
	Removed  []string
	Modified []string
}

// DiffNameStatus returns DiffChanges for the non-rename entries in the diff.
func (d *Driver) DiffNameStatus(ctx context.Context, workspaceRoot, fromCommit, toCommit, pathFilter string) (DiffChanges, error) {
	args := []string{
		"diff", "--first-parent",
		"-M" + strconv.Itoa(similarityThreshold) + "%",
		"--name-status", "--no-color",
		fromCommit, toCommit,
	}
	if pathFilter != "" {
		args = append(args, "--", pathFilter)
	}

	out, err := d.run(ctx, workspaceRoot, args...)
	if err != nil {
		return DiffChanges{}, err
	}

	var changes DiffChanges
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		status := fields[0]
		switch {
		case strings.HasPrefix(status, "R"):
			// Renames are reported via DiffRenames, not here.
		case status == "A":
			changes.Added = append(changes.Added, fields[1])
		case status == "D":
			changes.Removed = append(changes.Removed, fields[1])
		case status == "M":
			changes.Modified = append(changes.Modified, fields[1])
		}
	}
	return changes, nil
}

// parseNameStatusRenames extracts R### old\tnew lines from --name-status output.
func parseNameStatusRenames(out string) []RenamePair {
	var renames []RenamePair
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 || !strings.HasPrefix(fields[0], "R") {
			continue
		}
		renames = append(renames, RenamePair{OldPath: fields[1], NewPath: fields[2]})
	}
	return renames
}
