package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/forduniver/wald/internal/cli/ui"
	"github.com/forduniver/wald/internal/core/workspace"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a wald workspace in the current directory",
	Long:  "Create the .wald/ metadata tree and the root .gitignore's wald-managed block in the current directory.",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Refresh an already-initialized workspace")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return wrapExit(err)
	}

	result, err := workspace.Init(context.Background(), cwd, forceInit)
	if err != nil {
		return wrapExit(err)
	}

	ui.Success("Initialized wald workspace in %s", cwd)
	for _, w := range result.Warnings {
		ui.Warning("%v", w)
	}
	return nil
}
