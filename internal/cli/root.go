// Package cli defines the vaultsync command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultsync.dev/vaultsync/internal/cli/helpers"
	"vaultsync.dev/vaultsync/internal/tui"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:   "vaultsync",
		Short: "Sync an Obsidian vault through a Git remote",
		Long: `vaultsync keeps an Obsidian vault in sync across devices using a Git repository.

It initializes the vault as a repository, points it at a remote, and pulls,
commits and pushes your notes in one safe step. Syncs never force-push and
stop before pushing if pulling remote changes fails.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			tui.InitColors(noColor)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP(helpers.FlagVaultPath, "p", "", "Path to the vault (defaults to the configured vault, then the current directory)")
	flags.String(helpers.FlagConfig, "", "Path to the config file (default <user config dir>/vaultsync/config.yaml)")
	flags.Bool(helpers.FlagVerbose, false, "Show debug output")
	flags.String(helpers.FlagLogFile, "", "Log file path, or - to disable file logging")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newSetupRemoteCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(newPluginCmd())
	rootCmd.AddCommand(newVersionCmd(version, commit, date))

	return rootCmd
}
