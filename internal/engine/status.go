package engine

import (
	"context"
	"path/filepath"

	syncerrors "vaultsync.dev/vaultsync/internal/errors"
	"vaultsync.dev/vaultsync/internal/git"
)

// GetStatus inspects the vault without modifying it or contacting the remote.
// A path that is not a repository yields the zero RepoStatus and no error.
func (e *Engine) GetStatus(ctx context.Context, vaultPath string) (RepoStatus, error) {
	abs, err := filepath.Abs(vaultPath)
	if err != nil {
		return RepoStatus{}, syncerrors.Classify(OpStatus, err)
	}

	ok, err := e.isRepo(ctx, OpStatus, abs)
	if err != nil || !ok {
		return RepoStatus{}, err
	}

	raw, err := e.status(ctx, OpStatus, abs)
	if err != nil {
		return RepoStatus{}, err
	}
	return statusFromRaw(raw), nil
}

// Fetch updates remote-tracking refs so a following GetStatus reports
// accurate ahead/behind counts.
func (e *Engine) Fetch(ctx context.Context, vaultPath string) error {
	abs, release, err := e.begin(ctx, OpFetch, vaultPath)
	if err != nil {
		return err
	}
	defer release()

	if _, ok, err := e.remoteURL(ctx, OpFetch, abs, e.opts.RemoteName); err != nil {
		return err
	} else if !ok {
		return noRemote(OpFetch, e.opts.RemoteName)
	}
	return e.call(ctx, OpFetch, func(ctx context.Context) error {
		return e.backend.Fetch(ctx, abs, e.opts.RemoteName)
	})
}

func statusFromRaw(raw *git.RawStatus) RepoStatus {
	s := RepoStatus{
		IsGitRepo:      true,
		HasCommits:     !raw.Unborn(),
		Branch:         raw.Branch,
		UpstreamBranch: raw.Upstream,
		CommitsAhead:   raw.Ahead,
		CommitsBehind:  raw.Behind,
	}

	for _, entry := range raw.Entries {
		switch {
		case entry.Untracked:
			s.UntrackedFiles = append(s.UntrackedFiles, entry.Path)
		case entry.Unmerged:
			s.ConflictedFiles = append(s.ConflictedFiles, entry.Path)
			s.ModifiedFiles = append(s.ModifiedFiles, entry.Path)
		default:
			if entry.IsStaged() {
				s.StagedFiles = append(s.StagedFiles, entry.Path)
			}
			if entry.IsModified() {
				s.ModifiedFiles = append(s.ModifiedFiles, entry.Path)
			}
		}
	}

	s.HasConflicts = len(s.ConflictedFiles) > 0
	s.HasUncommittedChanges = len(raw.Entries) > 0
	s.CanFastForward = s.UpstreamBranch != "" && s.CommitsAhead == 0
	return s
}

func noRemote(op, name string) error {
	return syncerrors.NewSyncError(syncerrors.GenericFailure, op,
		"no remote named '"+name+"' is configured; run 'vaultsync setup-remote' first",
		syncerrors.NewNoRemoteError(name))
}
