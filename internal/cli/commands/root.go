// Package commands provides CLI command implementations for wald.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/forduniver/wald/internal/cli/ui"
)

var formatFlag string

var rootCmd = &cobra.Command{
	Use:   "wald",
	Short: "Unify many git repositories under one tracked workspace tree",

	Long: `Wald tracks a registry of upstream git repositories and the branches you
have checked out from them as worktrees ("baums") laid out wherever you like
inside one workspace directory. The workspace's own layout is itself a git
repository, so moving a baum, registering a new repo, or adding a branch is a
commit any machine can pull and replay.`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := ui.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		return ui.SetGlobalFormatter(format)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "pretty", "Output format (pretty, json)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(repoCmd)
	rootCmd.AddCommand(plantCmd)
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(uprootCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(worktreesCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(syncCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
