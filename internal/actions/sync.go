package actions

import (
	"context"

	"vaultsync.dev/vaultsync/internal/engine"
	"vaultsync.dev/vaultsync/internal/runtime"
	"vaultsync.dev/vaultsync/internal/tui"
)

// SyncOptions contains options shared by commit, pull, push and sync
type SyncOptions struct {
	// Message is the commit message; empty uses a timestamped default
	Message string
	// Push pushes after committing (commit command only)
	Push bool
	// Merge pulls with a merge commit instead of rebasing (pull command only)
	Merge bool
	// PushAll pushes every local branch (push command only)
	PushAll bool
	// NoProgress prints plain log lines instead of the live progress view
	NoProgress bool
}

type engineOp func(ctx context.Context, eng *engine.Engine) (engine.SyncOutcome, error)

// runWithProgress runs op against an engine whose events feed the progress
// view, or the log when the view is off
func runWithProgress(ctx *runtime.Context, title string, noProgress bool, op engineOp) (engine.SyncOutcome, error) {
	var out engine.SyncOutcome
	run := func(c context.Context, obs engine.Observer) error {
		var err error
		out, err = op(c, ctx.WithObserver(obs).Engine)
		return err
	}

	if noProgress {
		err := run(ctx, tui.NewSplogObserver(ctx.Splog))
		return out, err
	}
	err := tui.RunProgress(ctx, ctx.Splog, title, run)
	return out, err
}

func printOutcome(splog *tui.Splog, out engine.SyncOutcome) {
	if !out.Success || out.Message == "" {
		return
	}
	splog.Success(out.Message)
}

// CommitAction stages and commits every change, optionally pushing
func CommitAction(ctx *runtime.Context, opts SyncOptions) error {
	out, err := runWithProgress(ctx, "Committing vault changes", opts.NoProgress,
		func(c context.Context, eng *engine.Engine) (engine.SyncOutcome, error) {
			return eng.CommitAll(c, ctx.VaultPath, opts.Message, opts.Push)
		})
	printOutcome(ctx.Splog, out)
	return err
}

// PullAction integrates remote changes into the vault
func PullAction(ctx *runtime.Context, opts SyncOptions) error {
	out, err := runWithProgress(ctx, "Pulling remote changes", opts.NoProgress,
		func(c context.Context, eng *engine.Engine) (engine.SyncOutcome, error) {
			return eng.PullChanges(c, ctx.VaultPath, !opts.Merge)
		})
	printOutcome(ctx.Splog, out)
	return err
}

// PushAction commits pending changes and pushes them without pulling
func PushAction(ctx *runtime.Context, opts SyncOptions) error {
	out, err := runWithProgress(ctx, "Pushing vault", opts.NoProgress,
		func(c context.Context, eng *engine.Engine) (engine.SyncOutcome, error) {
			return eng.PushChanges(c, ctx.VaultPath, opts.Message, opts.PushAll)
		})
	printOutcome(ctx.Splog, out)
	return err
}

// SyncAction pulls, commits and pushes in one pass. Nothing is pushed if
// the pull fails.
func SyncAction(ctx *runtime.Context, opts SyncOptions) error {
	out, err := runWithProgress(ctx, "Syncing vault", opts.NoProgress,
		func(c context.Context, eng *engine.Engine) (engine.SyncOutcome, error) {
			return eng.QuickSync(c, ctx.VaultPath, opts.Message)
		})
	printOutcome(ctx.Splog, out)
	if err != nil && out.Pulled && !out.Pushed {
		ctx.Splog.Info("Remote changes were pulled; your local changes were not pushed")
	}
	return err
}
