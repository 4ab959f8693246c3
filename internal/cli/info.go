package cli

import (
	"github.com/spf13/cobra"

	"vaultsync.dev/vaultsync/internal/actions"
	"vaultsync.dev/vaultsync/internal/cli/helpers"
	"vaultsync.dev/vaultsync/internal/runtime"
)

// newInfoCmd creates the info command
func newInfoCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the git environment, the vault and its repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.InfoAction(ctx, actions.InfoOptions{JSON: jsonOutput})
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
