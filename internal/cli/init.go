package cli

import (
	"github.com/spf13/cobra"

	"vaultsync.dev/vaultsync/internal/actions"
	"vaultsync.dev/vaultsync/internal/cli/helpers"
	"vaultsync.dev/vaultsync/internal/runtime"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	var (
		gitignore bool
		overwrite bool
		noCommit  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the vault as a Git repository",
		Long: `Initialize the vault as a Git repository on the default branch.

A .gitignore tuned for Obsidian is written unless --gitignore=false is given,
and a fresh repository gets an initial commit of the existing notes.
Running init on a vault that is already a repository changes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.InitAction(ctx, actions.InitOptions{
					Gitignore:          gitignore,
					OverwriteGitignore: overwrite,
					Commit:             !noCommit,
				})
			})
		},
	}

	cmd.Flags().BoolVar(&gitignore, "gitignore", true, "Write the Obsidian .gitignore")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing .gitignore")
	cmd.Flags().BoolVar(&noCommit, "no-commit", false, "Skip the initial commit")

	return cmd
}
