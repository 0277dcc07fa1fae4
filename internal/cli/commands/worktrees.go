package commands

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forduniver/wald/internal/cli/ui"
	"github.com/forduniver/wald/internal/core/manifest"
)

var worktreesCmd = &cobra.Command{
	Use:   "worktrees [baum-path]",
	Short: "List planted worktrees, for one baum or the whole workspace",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWorktrees,
}

func runWorktrees(cmd *cobra.Command, args []string) error {
	root, err := findWorkspaceRoot()
	if err != nil {
		return wrapExit(err)
	}
	co := newCollaborators()
	ctx := context.Background()

	var baumPaths []string
	if len(args) == 1 {
		baumPath := args[0]
		if !filepath.IsAbs(baumPath) {
			baumPath = filepath.Join(root, baumPath)
		}
		if !manifest.IsBaum(baumPath) {
			return wrapExit(notABaumError(baumPath))
		}
		baumPaths = []string{baumPath}
	} else {
		baumPaths, err = manifest.FindAllBaums(root)
		if err != nil {
			return wrapExit(err)
		}
	}

	if len(baumPaths) == 0 {
		if ui.GlobalFormatter.IsJSON() {
			return ui.GlobalFormatter.Output([]baumReport{})
		}
		ui.Info("No baums planted")
		return nil
	}

	var reports []baumReport
	for _, baumPath := range baumPaths {
		b, err := co.store.LoadBaum(ctx, baumPath)
		if err != nil {
			return wrapExit(err)
		}
		rel, err := filepath.Rel(root, baumPath)
		if err != nil {
			rel = baumPath
		}
		if ui.GlobalFormatter.IsJSON() {
			reports = append(reports, baumReport{Path: rel, Baum: b})
			continue
		}
		ui.PrintBaum(rel, b)
	}
	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(reports)
	}
	return nil
}

// baumReport is the --format json payload for one baum entry.
type baumReport struct {
	Path string         `json:"path"`
	Baum *manifest.Baum `json:"baum"`
}
