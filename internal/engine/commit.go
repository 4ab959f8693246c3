package engine

import (
	"context"
	"fmt"
	"strings"

	syncerrors "vaultsync.dev/vaultsync/internal/errors"
	"vaultsync.dev/vaultsync/internal/git"
)

// CommitAll stages every change in the vault and commits it. An empty
// message gets a timestamped default. With push set the branch is pushed
// afterwards, even when there was nothing new to commit. A clean tree is
// reported as a successful outcome with Committed false.
func (e *Engine) CommitAll(ctx context.Context, vaultPath, message string, push bool) (SyncOutcome, error) {
	out := SyncOutcome{Op: OpCommit}
	m := newMachine(OpCommit, e.observer)

	abs, release, err := e.begin(ctx, OpCommit, vaultPath)
	if err != nil {
		m.fail(err)
		out.States = m.states()
		return out, err
	}
	defer release()

	err = e.commitAndPush(ctx, m, OpCommit, abs, message, push, false, &out)
	out.States = m.states()
	return out, err
}

func (e *Engine) defaultMessage() string {
	return "Vault sync: " + e.opts.Now().Format("2006-01-02 15:04")
}

// ensureIdentity writes the default author into the vault's local config
// when neither user.name nor user.email resolves. A partially configured
// identity is left alone.
func (e *Engine) ensureIdentity(ctx context.Context, op, path string) error {
	var hasName, hasEmail bool
	err := e.call(ctx, op, func(ctx context.Context) error {
		var err error
		if _, hasName, err = e.backend.GetConfig(ctx, path, "user.name"); err != nil {
			return err
		}
		_, hasEmail, err = e.backend.GetConfig(ctx, path, "user.email")
		return err
	})
	if err != nil || hasName || hasEmail {
		return err
	}

	id := e.opts.Identity
	e.warn(op, fmt.Sprintf("No git identity configured; committing as %s <%s>", id.Name, id.Email))
	return e.call(ctx, op, func(ctx context.Context) error {
		if err := e.backend.SetConfig(ctx, path, "user.name", id.Name); err != nil {
			return err
		}
		return e.backend.SetConfig(ctx, path, "user.email", id.Email)
	})
}

// commitAndPush runs the staging half of the state machine from Idle or
// Merged. The caller holds the vault lock.
func (e *Engine) commitAndPush(ctx context.Context, m *machine, op, path, message string, push, pushAll bool, out *SyncOutcome) error {
	m.to(Staging)

	raw, err := e.status(ctx, op, path)
	if err != nil {
		return m.fail(err)
	}
	if err := checkBranch(op, raw); err != nil {
		return m.fail(err)
	}

	if len(raw.Entries) > 0 {
		if err := e.ensureIdentity(ctx, op, path); err != nil {
			return m.fail(err)
		}
		err = e.call(ctx, op, func(ctx context.Context) error {
			return e.backend.StageAll(ctx, path)
		})
		if err != nil {
			return m.fail(err)
		}
		if raw, err = e.status(ctx, op, path); err != nil {
			return m.fail(err)
		}
	}

	if raw.HasStaged() {
		if strings.TrimSpace(message) == "" {
			message = e.defaultMessage()
		}
		m.to(Committing)
		var sha string
		err = e.call(ctx, op, func(ctx context.Context) error {
			var err error
			sha, err = e.backend.Commit(ctx, path, message)
			return err
		})
		if err != nil {
			return m.fail(err)
		}
		out.Committed = true
		out.CommitSHA = sha
		out.CommitMessage = message
		out.Message = fmt.Sprintf("Committed %d file(s): %s", len(raw.Entries), message)
		e.info(op, out.Message)
	} else {
		out.Message = "Nothing to commit, working tree clean"
		e.info(op, out.Message)
	}

	if !push {
		m.to(Done)
		out.Success = true
		return nil
	}
	if !out.Committed && raw.Unborn() {
		out.Message = "Nothing to commit or push"
		m.to(Done)
		out.Success = true
		return nil
	}

	m.to(Pushing)
	if err := e.push(ctx, op, path, raw.Branch, pushAll, out); err != nil {
		return m.fail(err)
	}
	m.to(Done)
	out.Success = true
	return nil
}

// push sends the branch to the configured remote. It never forces.
func (e *Engine) push(ctx context.Context, op, path, branch string, all bool, out *SyncOutcome) error {
	remote := e.opts.RemoteName
	if _, ok, err := e.remoteURL(ctx, op, path, remote); err != nil {
		return err
	} else if !ok {
		return noRemote(op, remote)
	}

	var result git.PushResult
	err := e.call(ctx, op, func(ctx context.Context) error {
		var err error
		result, err = e.backend.Push(ctx, path, remote, branch, all)
		return err
	})
	if err != nil {
		return err
	}

	out.Pushed = true
	msg := fmt.Sprintf("Pushed %s to %s", branch, remote)
	if result == git.PushUpToDate {
		msg = fmt.Sprintf("%s is up to date with %s", branch, remote)
	}
	if out.Committed {
		msg = out.Message + "; " + msg
	}
	out.Message = msg
	e.info(op, msg)
	return nil
}

// checkBranch rejects states no sync operation can work from
func checkBranch(op string, raw *git.RawStatus) error {
	if raw.Detached() {
		return syncerrors.NewSyncError(syncerrors.GenericFailure, op,
			"HEAD is detached; check out a branch before syncing", syncerrors.ErrDetachedHead)
	}
	if paths := raw.UnmergedPaths(); len(paths) > 0 {
		return syncerrors.Classify(op, syncerrors.NewUnmergedPathsError(paths))
	}
	return nil
}
