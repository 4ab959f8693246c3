package actions

import (
	"fmt"

	"vaultsync.dev/vaultsync/internal/engine"
	syncerrors "vaultsync.dev/vaultsync/internal/errors"
	"vaultsync.dev/vaultsync/internal/runtime"
	"vaultsync.dev/vaultsync/internal/tui"
)

const (
	maxListedModified  = 10
	maxListedUntracked = 5
)

// StatusOptions contains options for the status command
type StatusOptions struct {
	// Fetch updates remote-tracking refs first so ahead/behind is current
	Fetch bool
}

// StatusAction prints the sync status of the vault
func StatusAction(ctx *runtime.Context, opts StatusOptions) error {
	status, err := ctx.Engine.GetStatus(ctx, ctx.VaultPath)
	if err != nil {
		return err
	}
	if !status.IsGitRepo {
		return syncerrors.NewSyncError(syncerrors.NotARepository, engine.OpStatus,
			fmt.Sprintf("%s is not a git repository", ctx.VaultPath), syncerrors.ErrNotARepository)
	}

	if opts.Fetch {
		if err := ctx.Engine.Fetch(ctx, ctx.VaultPath); err != nil {
			ReportError(ctx.Splog, err)
			ctx.Splog.Warn("showing status without fetching")
		} else if status, err = ctx.Engine.GetStatus(ctx, ctx.VaultPath); err != nil {
			return err
		}
	}

	remoteURL := ""
	if remotes, err := ctx.Engine.ListRemotes(ctx, ctx.VaultPath); err == nil {
		for _, r := range remotes {
			if r.Name == ctx.Engine.RemoteName() {
				remoteURL = r.URL
			}
		}
	}

	PrintStatus(ctx.Splog, ctx.VaultPath, remoteURL, status)
	return nil
}

// PrintStatus renders a status snapshot
func PrintStatus(splog *tui.Splog, vaultPath, remoteURL string, status engine.RepoStatus) {
	branch := status.Branch
	if branch == "" {
		branch = tui.ColorYellow("(detached HEAD)")
	}
	if remoteURL == "" {
		remoteURL = tui.ColorDim("not configured")
	}

	splog.Info("%s %s", tui.Bold("Vault:"), vaultPath)
	splog.Info("%s %s", tui.Bold("Branch:"), branch)
	splog.Info("%s %s", tui.Bold("Remote:"), remoteURL)
	if status.UpstreamBranch != "" {
		splog.Info("%s %s", tui.Bold("Tracking:"), tui.ColorCyan(status.UpstreamBranch))
	}
	if !status.HasCommits {
		splog.Info(tui.ColorDim("No commits yet"))
	}

	if status.NeedsPush() {
		splog.Info(tui.ColorYellow(fmt.Sprintf("Ahead by %d commit(s)", status.CommitsAhead)))
	}
	if status.NeedsPull() {
		line := fmt.Sprintf("Behind by %d commit(s)", status.CommitsBehind)
		if status.CanFastForward {
			line += " (fast-forward)"
		}
		splog.Info(tui.ColorYellow(line))
	}

	if status.HasConflicts {
		splog.Newline()
		splog.Info(tui.ColorRed(fmt.Sprintf("Conflicted files (%d):", len(status.ConflictedFiles))))
		printFiles(splog, status.ConflictedFiles, len(status.ConflictedFiles))
	}

	if status.IsClean() {
		splog.Newline()
		splog.Info(tui.ColorGreen("No uncommitted changes"))
		return
	}

	if len(status.StagedFiles) > 0 {
		splog.Newline()
		splog.Info(tui.Bold(fmt.Sprintf("Staged files (%d):", len(status.StagedFiles))))
		printFiles(splog, status.StagedFiles, maxListedModified)
	}
	if len(status.ModifiedFiles) > 0 {
		splog.Newline()
		splog.Info(tui.Bold(fmt.Sprintf("Modified files (%d):", len(status.ModifiedFiles))))
		printFiles(splog, status.ModifiedFiles, maxListedModified)
	}
	if len(status.UntrackedFiles) > 0 {
		splog.Newline()
		splog.Info(tui.Bold(fmt.Sprintf("Untracked files (%d):", len(status.UntrackedFiles))))
		printFiles(splog, status.UntrackedFiles, maxListedUntracked)
	}
}

func printFiles(splog *tui.Splog, files []string, limit int) {
	for i, f := range files {
		if i == limit {
			splog.Info("  ... and %d more", len(files)-limit)
			return
		}
		splog.Info("  • %s", f)
	}
}
