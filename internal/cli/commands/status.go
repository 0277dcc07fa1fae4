package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/forduniver/wald/internal/cli/ui"
	"github.com/forduniver/wald/internal/core/manifest"
	"github.com/forduniver/wald/internal/core/state"
)

// statusReport is the --format json payload for status; LastSync is the
// full 40-hex hash, unlike the truncated form the pretty printer shows.
type statusReport struct {
	Root          string `json:"root"`
	ReposCount    int    `json:"repos_count"`
	BaumsCount    int    `json:"baums_count"`
	LastSync      string `json:"last_sync,omitempty"`
	AheadOfOrigin int    `json:"ahead_of_origin"`
	BehindOrigin  int    `json:"behind_origin"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the workspace's registry size, planted baums, and sync position",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	root, err := findWorkspaceRoot()
	if err != nil {
		return wrapExit(err)
	}
	co := newCollaborators()
	ctx := context.Background()

	ws, err := co.store.LoadWorkspace(ctx, root)
	if err != nil {
		return wrapExit(err)
	}
	baumPaths, err := manifest.FindAllBaums(root)
	if err != nil {
		return wrapExit(err)
	}

	st, err := state.NewStore().Read(ctx, root)
	if err != nil {
		return wrapExit(err)
	}
	lastSync := st.LastSync
	if lastSync == "" {
		lastSync = "(never synced)"
	} else if len(lastSync) > 10 {
		lastSync = lastSync[:10]
	}

	ahead, behind, err := co.driver.AheadBehind(ctx, root)
	if err != nil {
		return wrapExit(err)
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(statusReport{
			Root:          root,
			ReposCount:    len(ws.Repos),
			BaumsCount:    len(baumPaths),
			LastSync:      st.LastSync,
			AheadOfOrigin: ahead,
			BehindOrigin:  behind,
		})
	}

	ui.PrintSectionHeader(ui.WorkspaceIcon, "Workspace", 0)
	ui.PrintKeyValue("Root", root)
	ui.PrintKeyValue("Repos registered", strconv.Itoa(len(ws.Repos)))
	ui.PrintKeyValue("Baums planted", strconv.Itoa(len(baumPaths)))
	ui.PrintKeyValue("Last sync", lastSync)
	ui.PrintKeyValue("Ahead/behind origin", strconv.Itoa(ahead)+"/"+strconv.Itoa(behind))
	return nil
}
