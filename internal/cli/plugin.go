package cli

import (
	"github.com/spf13/cobra"

	"vaultsync.dev/vaultsync/internal/actions"
	"vaultsync.dev/vaultsync/internal/cli/helpers"
	"vaultsync.dev/vaultsync/internal/runtime"
)

// newPluginCmd creates the plugin command
func newPluginCmd() *cobra.Command {
	var opts actions.PluginOptions

	cmd := &cobra.Command{
		Use:   "plugin",
		Short: "Configure the Obsidian Git plugin for automatic backups",
		Long: `Write settings for the Obsidian Git community plugin into the vault.

The plugin then commits, pulls and pushes on its own from inside Obsidian.
Settings you changed in the plugin that vaultsync does not manage are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.PluginAction(ctx, opts)
			})
		},
	}

	cmd.Flags().IntVar(&opts.IntervalMinutes, "interval", 0, "Minutes between automatic backups (default from config)")
	cmd.Flags().StringVar(&opts.CommitMessage, "message", "", "Commit message template (default from config)")

	return cmd
}
