package helpers

import (
	"github.com/spf13/cobra"

	"vaultsync.dev/vaultsync/internal/engine"
)

// CompleteAuthMethods is a helper for RegisterFlagCompletionFunc that offers
// the supported remote authentication methods.
func CompleteAuthMethods(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{engine.AuthSSH.String(), engine.AuthHTTPS.String()}, cobra.ShellCompDirectiveNoFileComp
}
