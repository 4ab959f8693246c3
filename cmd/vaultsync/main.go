package main

import (
	"os"

	"vaultsync.dev/vaultsync/internal/actions"
	"vaultsync.dev/vaultsync/internal/cli"
	"vaultsync.dev/vaultsync/internal/cli/helpers"
	"vaultsync.dev/vaultsync/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cli.NewRootCmd(version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		if !helpers.IsReported(err) {
			tui.NewSplog().Error(err.Error())
		}
		os.Exit(actions.ExitCode(err))
	}
}
