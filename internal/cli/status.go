package cli

import (
	"github.com/spf13/cobra"

	"vaultsync.dev/vaultsync/internal/actions"
	"vaultsync.dev/vaultsync/internal/cli/helpers"
	"vaultsync.dev/vaultsync/internal/runtime"
)

// newStatusCmd creates the status command
func newStatusCmd() *cobra.Command {
	var fetch bool

	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"st"},
		Short:   "Show uncommitted changes and how the vault compares to its remote",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.StatusAction(ctx, actions.StatusOptions{Fetch: fetch})
			})
		},
	}

	cmd.Flags().BoolVar(&fetch, "fetch", false, "Fetch from the remote first so ahead/behind counts are current")

	return cmd
}
