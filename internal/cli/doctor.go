package cli

import (
	"github.com/spf13/cobra"

	"vaultsync.dev/vaultsync/internal/actions/doctor"
	"vaultsync.dev/vaultsync/internal/cli/helpers"
	"vaultsync.dev/vaultsync/internal/runtime"
)

// newDoctorCmd creates the doctor command
func newDoctorCmd() *cobra.Command {
	var (
		fix     bool
		offline bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common issues with your vault sync setup",
		Long: `Run diagnostic checks on the vault and its repository.

The doctor command checks:
  - Environment: Git installation and SSH keys
  - Vault: .gitignore and large media files
  - Repository: initialization, remote, commit identity and conflicts
  - GitHub: that a GitHub remote exists, is private and accepts pushes

With --fix, a missing repository, .gitignore or commit identity is repaired.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return doctor.Action(ctx, doctor.Options{Fix: fix, Offline: offline})
			})
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Attempt to automatically fix any issues found")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip checks that contact GitHub")

	return cmd
}
