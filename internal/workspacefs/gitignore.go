// Package workspacefs holds small filesystem utilities shared by the
// workspace bootstrapper and the baum operator: managing the wald-owned
// block inside a .gitignore and walking upward to find a workspace root.
package workspacefs

import (
	"fmt"
	"os"
	"strings"
)

const (
	blockStart = "# wald:start"
	blockEnd   = "# wald:end"
)

// WriteGitignoreBlock rewrites the wald-managed block inside the .gitignore
// at path to contain exactly the given lines, preserving any surrounding
// user content and leaving exactly one block regardless of how many times
// this is called.
func WriteGitignoreBlock(path string, lines []string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	before, after := splitAroundBlock(string(existing))

	var b strings.Builder
	b.WriteString(before)
	if before != "" && !strings.HasSuffix(before, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(blockStart + "\n")
	for _, l := range lines {
		b.WriteString(l + "\n")
	}
	b.WriteString(blockEnd + "\n")
	b.WriteString(after)

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// splitAroundBlock returns the content before the first wald block marker
// and after the last one, dropping everything in between (any prior block
// contents, however many markers accumulated). If no markers are present,
// the whole content is returned as "before".
func splitAroundBlock(content string) (before, after string) {
	startIdx := strings.Index(content, blockStart)
	if startIdx < 0 {
		return content, ""
	}
	before = content[:startIdx]

	endIdx := strings.LastIndex(content, blockEnd)
	if endIdx < 0 || endIdx < startIdx {
		return before, ""
	}
	after = content[endIdx+len(blockEnd):]
	after = strings.TrimPrefix(after, "\n")
	return before, after
}
