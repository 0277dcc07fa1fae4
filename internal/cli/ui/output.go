package ui

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/forduniver/wald/internal/core/doctor"
	"github.com/forduniver/wald/internal/core/manifest"
	"github.com/forduniver/wald/internal/core/sync"
)

// Error prints an error message with formatting
func Error(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorIcon, ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

// Success prints a success message with formatting
func Success(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", SuccessIcon, SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

// Info prints an informational message with formatting
func Info(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", InfoIcon, InfoStyle.Render(fmt.Sprintf(format, args...)))
}

// Warning prints a warning message with formatting
func Warning(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", WarningIcon, WarningStyle.Render(fmt.Sprintf(format, args...)))
}

// Output prints plain text without any formatting or icons
func Output(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// OutputLine prints plain text with a newline
func OutputLine(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// PrintKeyValue prints a key-value pair with styling
func PrintKeyValue(key, value string) {
	OutputLine("%s %s", DimStyle.Render(key+":"), value)
}

// PrintIndented prints text with indentation
func PrintIndented(indent int, format string, args ...interface{}) {
	padding := strings.Repeat(" ", indent)
	OutputLine("%s%s", padding, fmt.Sprintf(format, args...))
}

// Separator prints a separator line
func Separator(char string, width int) {
	OutputLine("%s", strings.Repeat(char, width))
}

// Prompt displays a prompt and reads user input
func Prompt(message string) string {
	Output("%s", message)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// PrintTSV prints tab-separated values
func PrintTSV(rows [][]string) {
	for _, row := range rows {
		OutputLine("%s", strings.Join(row, "\t"))
	}
}

// Raw prints raw content without any processing
func Raw(content string) {
	Output("%s", content)
}

// Confirm asks the user for confirmation
func Confirm(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s [y/N]: ", prompt)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// FormatSize formats a file size in bytes to a human-readable string
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes < KB:
		return fmt.Sprintf("%dB", bytes)
	case bytes < MB:
		return fmt.Sprintf("%.1fKB", float64(bytes)/KB)
	case bytes < GB:
		return fmt.Sprintf("%.1fMB", float64(bytes)/MB)
	default:
		return fmt.Sprintf("%.1fGB", float64(bytes)/GB)
	}
}

// PrintRepoList displays the registered repos as a table, sorted by repo-id
// for a stable, deterministic listing.
func PrintRepoList(repos map[string]manifest.RepoEntry) {
	if len(repos) == 0 {
		Info("No repos registered")
		return
	}

	ids := make([]string, 0, len(repos))
	for id := range repos {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tbl := NewTable("REPO", "LFS", "DEPTH", "FILTER", "ALIASES")
	for _, id := range ids {
		entry := repos[id]
		aliases := "-"
		if len(entry.Aliases) > 0 {
			aliases = strings.Join(entry.Aliases, ",")
		}
		tbl.AddRow(id, string(entry.LFS), entry.Depth, string(entry.Filter), aliases)
	}

	PrintSectionHeader(RepoIcon, "Repos", len(repos))
	tbl.Print()
}

// PrintBaum displays one baum's declared worktrees as a table.
func PrintBaum(baumPath string, b *manifest.Baum) {
	OutputLine("%s %s", BaumIcon, BoldStyle.Render(baumPath))
	PrintKeyValue("Repo", b.RepoID)

	if len(b.Worktrees) == 0 {
		Info("No worktrees planted")
		return
	}

	tbl := NewTable("BRANCH", "PATH")
	for _, wt := range b.Worktrees {
		tbl.AddRow(wt.Branch, wt.Path)
	}
	tbl.Print()
}

// PrintDoctorReport displays every issue doctor found with its severity, in
// the order Check reported them.
func PrintDoctorReport(report *doctor.Report) {
	if len(report.Issues) == 0 {
		Success("No inconsistencies found")
		return
	}

	tbl := NewTable("SEVERITY", "ISSUE")
	for _, issue := range report.Issues {
		severity := "warn"
		if issue.Severity == doctor.Fixable {
			severity = WarningStyle.Render("fixable")
		} else {
			severity = DimStyle.Render(severity)
		}
		tbl.AddRow(severity, issue.Detail)
	}

	PrintSectionHeader(DoctorIcon, "Issues", len(report.Issues))
	tbl.Print()
}

// PrintFixOutcomes displays what a doctor --fix pass did with each fixable
// issue it attempted.
func PrintFixOutcomes(outcomes []doctor.FixOutcome) {
	if len(outcomes) == 0 {
		Info("Nothing to fix")
		return
	}
	for _, o := range outcomes {
		if o.Err != nil {
			Error("%s: %v", o.Issue.Detail, o.Err)
			continue
		}
		Success("%s", o.Issue.Detail)
	}
}

// PrintSyncResult displays a summary of what one sync run did, or — when
// result.DryRun is set — would do.
func PrintSyncResult(result *sync.Result) {
	verb := "registered"
	unverb := "unregistered"
	if result.DryRun {
		verb = "would register"
		unverb = "would unregister"
	}

	if result.NoOp {
		Info("Already up to date (%s)", shortHash(result.ToCommit))
		return
	}

	if result.DryRun {
		OutputLine("%s Would sync %s -> %s", SyncIcon, shortHash(result.FromCommit), shortHash(result.ToCommit))
	} else {
		OutputLine("%s Synced %s -> %s", SyncIcon, shortHash(result.FromCommit), shortHash(result.ToCommit))
	}

	for _, r := range result.RegistryAdded {
		Success("%s %s", verb, r.RepoID)
	}
	for _, r := range result.RegistryRemoved {
		Success("%s %s", unverb, r.RepoID)
	}
	for _, r := range result.RegistryConfigChanged {
		Info("config changed for %s", r.RepoID)
	}
	for _, o := range result.BaumOutcomes {
		if o.Err != nil {
			Error("%s: %v", baumChangeLabel(o.Change), o.Err)
			continue
		}
		if result.DryRun {
			Info("would: %s", baumChangeLabel(o.Change))
			continue
		}
		Success("%s", baumChangeLabel(o.Change))
	}
	for _, w := range result.Warnings {
		Warning("%v", w)
	}
}

func baumChangeLabel(c sync.BaumChange) string {
	switch c.Kind {
	case sync.BaumMoved:
		return fmt.Sprintf("moved %s -> %s", c.OldDir, c.Dir)
	case sync.BaumAppeared:
		return fmt.Sprintf("materialized %s", c.Dir)
	case sync.BaumVanished:
		return fmt.Sprintf("removed %s", c.Dir)
	case sync.BaumTouched:
		return fmt.Sprintf("updated %s", c.Dir)
	default:
		return c.Dir
	}
}

func shortHash(hash string) string {
	if len(hash) > 10 {
		return hash[:10]
	}
	return hash
}
