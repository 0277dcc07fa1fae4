package commands

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forduniver/wald/internal/cli/ui"
)

var (
	pruneForce  bool
	pruneDryRun bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune <baum-path> <branch> [branch...]",
	Short: "Remove one or more branches' worktrees from a baum",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPrune,
}

func init() {
	pruneCmd.Flags().BoolVarP(&pruneForce, "force", "f", false, "Remove worktrees even with uncommitted changes")
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "Report which branches would be removed without removing them")
}

func runPrune(cmd *cobra.Command, args []string) error {
	baumPath, branches := args[0], args[1:]

	root, err := findWorkspaceRoot()
	if err != nil {
		return wrapExit(err)
	}
	if !filepath.IsAbs(baumPath) {
		baumPath = filepath.Join(root, baumPath)
	}

	co := newCollaborators()
	result, err := co.op.Prune(context.Background(), root, baumPath, branches, pruneForce, pruneDryRun)
	if err != nil {
		return wrapExit(err)
	}

	verb := "Removed"
	if result.DryRun {
		verb = "Would remove"
	}
	for _, b := range result.Removed {
		ui.Success("%s %s from %s", verb, b, baumPath)
	}
	for _, w := range result.Warnings {
		ui.Warning("%v", w)
	}
	return nil
}
