package cli

import (
	"github.com/spf13/cobra"

	"vaultsync.dev/vaultsync/internal/actions"
	"vaultsync.dev/vaultsync/internal/cli/helpers"
	"vaultsync.dev/vaultsync/internal/runtime"
)

func addProgressFlag(cmd *cobra.Command, opts *actions.SyncOptions) {
	cmd.Flags().BoolVar(&opts.NoProgress, "no-progress", false, "Print log lines instead of the live progress view")
}

// newCommitCmd creates the commit command
func newCommitCmd() *cobra.Command {
	var opts actions.SyncOptions

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Stage and commit every change in the vault",
		Long: `Stage every change in the vault, deletions included, and commit it.

The default message is "Vault sync: <timestamp>". A vault without a
configured author gets the vaultsync default identity first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.CommitAction(ctx, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "Commit message")
	cmd.Flags().BoolVar(&opts.Push, "push", false, "Push after committing")
	addProgressFlag(cmd, &opts)

	return cmd
}

// newPullCmd creates the pull command
func newPullCmd() *cobra.Command {
	var opts actions.SyncOptions

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull remote changes into the vault",
		Long: `Fetch the remote and integrate its changes, rebasing local commits by default.

If a rebase conflicts, it is aborted, the vault is left as it was, and the
conflicting files are listed. With --merge a conflict stays in the working
tree with its markers; resolve the listed files and commit the merge.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.PullAction(ctx, opts)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Merge, "merge", false, "Merge instead of rebasing and leave conflicts for manual resolution")
	addProgressFlag(cmd, &opts)

	return cmd
}

// newPushCmd creates the push command
func newPushCmd() *cobra.Command {
	var opts actions.SyncOptions

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Commit pending changes and push them",
		Long: `Commit any pending changes and push to the remote without pulling first.

A push the remote rejects is reported, never forced; run 'vaultsync sync'
to pull and retry.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.PushAction(ctx, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "Commit message for pending changes")
	cmd.Flags().BoolVar(&opts.PushAll, "all", false, "Push every local branch")
	addProgressFlag(cmd, &opts)

	return cmd
}

// newSyncCmd creates the sync command
func newSyncCmd() *cobra.Command {
	var opts actions.SyncOptions

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull, commit and push in one step",
		Long: `Pull remote changes with rebase, commit local changes, and push.

Nothing is pushed if the pull fails. Conflicts abort the rebase and leave
your notes untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.SyncAction(ctx, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "Commit message")
	addProgressFlag(cmd, &opts)

	return cmd
}
