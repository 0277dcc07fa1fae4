package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/forduniver/wald/internal/cli/ui"
	"github.com/forduniver/wald/internal/core/sync"
)

var (
	syncAutostash bool
	syncForce     bool
	syncDryRun    bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the workspace, then replay baum moves/removals/materializations since the last sync",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncAutostash, "autostash", false, "Stash local modifications instead of failing on a dirty workspace")
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "Rebase past a diverged workspace instead of failing")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Report what sync would do against origin/main's current tip without changing anything")
}

func runSync(cmd *cobra.Command, args []string) error {
	root, err := findWorkspaceRoot()
	if err != nil {
		return wrapExit(err)
	}
	co := newCollaborators()

	engine := sync.NewEngine(co.driver, co.store)
	result, err := engine.Sync(context.Background(), root, sync.Options{
		Autostash: syncAutostash,
		Force:     syncForce,
		DryRun:    syncDryRun,
	})
	if err != nil {
		return wrapExit(err)
	}

	ui.PrintSyncResult(result)
	return nil
}
