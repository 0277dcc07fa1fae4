package commands

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forduniver/wald/internal/cli/ui"
)

var branchCmd = &cobra.Command{
	Use:   "branch <baum-path> <branch>",
	Short: "Add a single worktree to an existing baum",
	Args:  cobra.ExactArgs(2),
	RunE:  runBranch,
}

func runBranch(cmd *cobra.Command, args []string) error {
	baumPath, branch := args[0], args[1]

	root, err := findWorkspaceRoot()
	if err != nil {
		return wrapExit(err)
	}
	if !filepath.IsAbs(baumPath) {
		baumPath = filepath.Join(root, baumPath)
	}

	co := newCollaborators()
	result, err := co.op.Branch(context.Background(), root, baumPath, branch)
	if err != nil {
		return wrapExit(err)
	}

	for _, b := range result.Planted {
		ui.Success("Planted %s at %s", b, baumPath)
	}
	for _, w := range result.Warnings {
		ui.Warning("%v", w)
	}
	return nil
}
