package engine

import (
	"context"
	"fmt"
	"strings"

	syncerrors "vaultsync.dev/vaultsync/internal/errors"
	"vaultsync.dev/vaultsync/internal/git"
)

// PullChanges integrates the remote branch into the current branch, by
// rebase or merge. A rebase conflict is aborted, leaving HEAD and the
// working tree as they were before the pull. A merge conflict is left in
// the working tree for the operator to resolve and commit.
func (e *Engine) PullChanges(ctx context.Context, vaultPath string, rebase bool) (SyncOutcome, error) {
	out := SyncOutcome{Op: OpPull}
	m := newMachine(OpPull, e.observer)

	abs, release, err := e.begin(ctx, OpPull, vaultPath)
	if err != nil {
		m.fail(err)
		out.States = m.states()
		return out, err
	}
	defer release()

	if err := e.pull(ctx, m, OpPull, abs, rebase, &out); err != nil {
		out.States = m.states()
		return out, err
	}
	m.to(Done)
	out.Success = true
	out.States = m.states()
	return out, nil
}

// PushChanges commits any pending changes and pushes. It never pulls and
// never forces; a diverged remote fails with PushRejected.
func (e *Engine) PushChanges(ctx context.Context, vaultPath, message string, pushAll bool) (SyncOutcome, error) {
	out := SyncOutcome{Op: OpPush}
	m := newMachine(OpPush, e.observer)

	abs, release, err := e.begin(ctx, OpPush, vaultPath)
	if err != nil {
		m.fail(err)
		out.States = m.states()
		return out, err
	}
	defer release()

	err = e.commitAndPush(ctx, m, OpPush, abs, message, true, pushAll, &out)
	out.States = m.states()
	return out, err
}

// QuickSync pulls with rebase, then commits and pushes. Nothing is pushed
// unless the pull succeeded, and a push rejected after a successful pull is
// reported as is without retrying.
func (e *Engine) QuickSync(ctx context.Context, vaultPath, message string) (SyncOutcome, error) {
	out := SyncOutcome{Op: OpQuickSync}
	m := newMachine(OpQuickSync, e.observer)

	abs, release, err := e.begin(ctx, OpQuickSync, vaultPath)
	if err != nil {
		m.fail(err)
		out.States = m.states()
		return out, err
	}
	defer release()

	if err := e.pull(ctx, m, OpQuickSync, abs, true, &out); err != nil {
		out.States = m.states()
		return out, err
	}

	pulled := out.Message
	err = e.commitAndPush(ctx, m, OpQuickSync, abs, message, true, false, &out)
	if out.Pulled {
		out.Message = pulled + "; " + out.Message
	}
	out.States = m.states()
	return out, err
}

// pull runs the integration half of the state machine from Idle to Merged.
// The caller holds the vault lock.
func (e *Engine) pull(ctx context.Context, m *machine, op, path string, rebase bool, out *SyncOutcome) error {
	m.to(CheckingStatus)
	remote := e.opts.RemoteName

	if _, ok, err := e.remoteURL(ctx, op, path, remote); err != nil {
		return m.fail(err)
	} else if !ok {
		return m.fail(noRemote(op, remote))
	}

	raw, err := e.status(ctx, op, path)
	if err != nil {
		return m.fail(err)
	}
	if err := checkBranch(op, raw); err != nil {
		return m.fail(err)
	}

	err = e.call(ctx, op, func(ctx context.Context) error {
		return e.backend.Fetch(ctx, path, remote)
	})
	if err != nil {
		return m.fail(err)
	}

	remoteRef := fmt.Sprintf("refs/remotes/%s/%s", remote, raw.Branch)
	var exists bool
	err = e.call(ctx, op, func(ctx context.Context) error {
		var err error
		exists, err = e.backend.RefExists(ctx, path, remoteRef)
		return err
	})
	if err != nil {
		return m.fail(err)
	}
	if !exists {
		e.info(op, fmt.Sprintf("%s/%s does not exist yet; nothing to pull", remote, raw.Branch))
		out.Message = "Already up to date"
		m.to(Merged)
		return nil
	}

	behind := 1
	if !raw.Unborn() {
		err = e.call(ctx, op, func(ctx context.Context) error {
			var err error
			_, behind, err = e.backend.AheadBehind(ctx, path, "HEAD", remoteRef)
			return err
		})
		if err != nil {
			return m.fail(err)
		}
	}
	if behind == 0 {
		out.Message = "Already up to date"
		e.info(op, out.Message)
		m.to(Merged)
		return nil
	}

	if raw.HasTrackedChanges() {
		return m.fail(syncerrors.NewSyncError(syncerrors.GenericFailure, op,
			"uncommitted changes in tracked files; commit them before pulling", syncerrors.ErrDirtyWorktree))
	}

	m.to(Pulling)
	e.info(op, fmt.Sprintf("Pulling %d commit(s) from %s/%s", behind, remote, raw.Branch))
	var result git.PullResult
	err = e.call(ctx, op, func(ctx context.Context) error {
		var err error
		result, err = e.backend.Pull(ctx, path, remote, raw.Branch, rebase)
		return err
	})
	if err != nil {
		return m.fail(err)
	}

	if result == git.PullConflict {
		m.to(Conflicted)
		return m.fail(e.conflict(ctx, op, path, rebase))
	}

	m.to(Merged)
	out.Pulled = result == git.PullDone
	if out.Pulled {
		out.Message = fmt.Sprintf("Pulled %d commit(s) from %s/%s", behind, remote, raw.Branch)
	} else {
		out.Message = "Already up to date"
	}
	e.info(op, out.Message)
	return nil
}

// conflict records the conflicted files and returns the MergeConflict
// error. An interrupted rebase is aborted to restore the pre-pull state;
// merge conflicts stay in place.
func (e *Engine) conflict(ctx context.Context, op, path string, rebase bool) error {
	// cleanup runs even when the operator canceled during the pull
	ctx = context.WithoutCancel(ctx)
	var files []string
	if raw, err := e.status(ctx, op, path); err == nil {
		files = raw.UnmergedPaths()
	}

	suffix := "resolve them and commit the merge"
	if rebase {
		suffix = "the pull was aborted"
		err := e.call(ctx, op, func(ctx context.Context) error {
			return e.backend.AbortRebase(ctx, path)
		})
		if err != nil {
			e.warn(op, fmt.Sprintf("failed to abort after conflict; resolve manually: %v", err))
		}
	}

	msg := "merge conflict while integrating remote changes; " + suffix
	if len(files) > 0 {
		msg = fmt.Sprintf("merge conflict in %s; %s", strings.Join(files, ", "), suffix)
	}
	return syncerrors.NewSyncError(syncerrors.MergeConflict, op, msg, syncerrors.NewUnmergedPathsError(files))
}
