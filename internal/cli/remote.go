package cli

import (
	"github.com/spf13/cobra"

	"vaultsync.dev/vaultsync/internal/actions"
	"vaultsync.dev/vaultsync/internal/cli/helpers"
	"vaultsync.dev/vaultsync/internal/runtime"
)

// newSetupRemoteCmd creates the setup-remote command
func newSetupRemoteCmd() *cobra.Command {
	var (
		remoteURL     string
		name          string
		auth          string
		noInteractive bool
	)

	cmd := &cobra.Command{
		Use:   "setup-remote [url]",
		Short: "Point the vault at its remote repository",
		Long: `Add or update the remote the vault syncs with.

SSH (git@host:owner/repo.git, ssh://...) and HTTPS URLs are accepted. With
--auth the URL is converted to the given form, so an HTTPS URL copied from
a browser can be stored as its SSH equivalent. Setting the same URL again
changes nothing.

Without a URL you are prompted for one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				remoteURL = args[0]
			}
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.SetupRemoteAction(ctx, actions.SetupRemoteOptions{
					URL:         remoteURL,
					Name:        name,
					Auth:        auth,
					Interactive: !noInteractive,
				})
			})
		},
	}

	cmd.Flags().StringVarP(&remoteURL, "remote-url", "r", "", "Remote repository URL")
	cmd.Flags().StringVar(&name, "name", "", "Remote name (defaults to the configured remote)")
	cmd.Flags().StringVar(&auth, "auth", "", "Authentication method: ssh or https")
	cmd.Flags().BoolVar(&noInteractive, "no-interactive", false, "Fail instead of prompting for missing values")
	_ = cmd.RegisterFlagCompletionFunc("auth", helpers.CompleteAuthMethods)

	return cmd
}
