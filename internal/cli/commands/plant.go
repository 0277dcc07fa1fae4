package commands

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forduniver/wald/internal/cli/ui"
)

var plantCmd = &cobra.Command{
	Use:   "plant <repo-id-or-alias> <container-path> <branch> [branch...]",
	Short: "Create a baum at container-path with one worktree per branch",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runPlant,
}

func runPlant(cmd *cobra.Command, args []string) error {
	identifier, containerPath, branches := args[0], args[1], args[2:]

	root, err := findWorkspaceRoot()
	if err != nil {
		return wrapExit(err)
	}
	if !filepath.IsAbs(containerPath) {
		containerPath = filepath.Join(root, containerPath)
	}

	co := newCollaborators()
	result, err := co.op.Plant(context.Background(), root, identifier, containerPath, branches)
	if err != nil {
		return wrapExit(err)
	}

	for _, b := range result.Planted {
		ui.Success("Planted %s at %s", b, containerPath)
	}
	for _, w := range result.Warnings {
		ui.Warning("%v", w)
	}
	return nil
}
