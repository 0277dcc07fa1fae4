package commands

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forduniver/wald/internal/cli/ui"
)

var moveCmd = &cobra.Command{
	Use:   "move <src-baum-path> <dst-path>",
	Short: "Relocate a baum in one tracked rename",
	Args:  cobra.ExactArgs(2),
	RunE:  runMove,
}

func runMove(cmd *cobra.Command, args []string) error {
	src, dst := args[0], args[1]

	root, err := findWorkspaceRoot()
	if err != nil {
		return wrapExit(err)
	}
	if !filepath.IsAbs(src) {
		src = filepath.Join(root, src)
	}
	if !filepath.IsAbs(dst) {
		dst = filepath.Join(root, dst)
	}

	co := newCollaborators()
	if err := co.op.Move(context.Background(), root, src, dst); err != nil {
		return wrapExit(err)
	}

	ui.Success("Moved %s -> %s", src, dst)
	ui.Info("Commit this rename so other machines can replay it on sync")
	return nil
}
