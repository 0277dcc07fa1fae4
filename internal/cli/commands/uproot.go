package commands

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forduniver/wald/internal/cli/ui"
)

var (
	uprootForce  bool
	uprootDryRun bool
)

var uprootCmd = &cobra.Command{
	Use:   "uproot <baum-path>",
	Short: "Remove every worktree in a baum and delete its container directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runUproot,
}

func init() {
	uprootCmd.Flags().BoolVarP(&uprootForce, "force", "f", false, "Remove worktrees even with uncommitted changes")
	uprootCmd.Flags().BoolVar(&uprootDryRun, "dry-run", false, "Report what would be removed without removing it")
}

func runUproot(cmd *cobra.Command, args []string) error {
	baumPath := args[0]

	root, err := findWorkspaceRoot()
	if err != nil {
		return wrapExit(err)
	}
	if !filepath.IsAbs(baumPath) {
		baumPath = filepath.Join(root, baumPath)
	}

	co := newCollaborators()
	result, err := co.op.Uproot(context.Background(), root, baumPath, uprootForce, uprootDryRun)
	if err != nil {
		return wrapExit(err)
	}

	if result.DryRun {
		for _, b := range result.Removed {
			ui.Info("Would remove %s worktree from %s", b, baumPath)
		}
		ui.Info("Would uproot %s", baumPath)
		return nil
	}

	ui.Success("Uprooted %s", baumPath)
	return nil
}
