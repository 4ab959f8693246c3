package doctor

import (
	"errors"

	"vaultsync.dev/vaultsync/internal/github"
	"vaultsync.dev/vaultsync/internal/runtime"
)

// checkGitHubRemote verifies that a GitHub-hosted remote exists and is
// private. Remotes on other hosts are not checked.
func checkGitHubRemote(ctx *runtime.Context, client github.Client, remoteURL string, report *Report) {
	splog := ctx.Splog

	info, err := github.ParseRemoteURL(remoteURL)
	if err != nil || !github.IsGitHubHost(info.Hostname) {
		splog.Debug("Skipping GitHub check for %s", remoteURL)
		return
	}

	if client == nil {
		rc, err := github.NewClientFromEnvironment(ctx, info.Hostname)
		if err != nil {
			report.add(SeverityInfo, FixNone, "GitHub token not available, repository visibility not checked")
			splog.Info("  ℹ️  No GitHub token found (set GITHUB_TOKEN or run 'gh auth login'); skipping visibility check")
			return
		}
		client = rc
	}

	repo, err := client.GetRepository(ctx, info.Owner, info.Repo)
	switch {
	case errors.Is(err, github.ErrRepositoryNotFound):
		report.add(SeverityWarning, FixNone, "GitHub repository %s/%s not found or not accessible with your token", info.Owner, info.Repo)
		splog.Warn("  GitHub repository %s/%s not found or not accessible", info.Owner, info.Repo)
		return
	case err != nil:
		report.add(SeverityWarning, FixNone, "failed to query GitHub: %v", err)
		splog.Warn("  Failed to query GitHub: %v", err)
		return
	}

	if !repo.Private {
		report.add(SeverityWarning, FixNone, "GitHub repository %s is public; your notes are visible to everyone", repo.FullName)
		splog.Warn("  GitHub repository %s is PUBLIC", repo.FullName)
	} else {
		splog.Info("  ✅ GitHub repository %s is private", repo.FullName)
	}
	if repo.Archived {
		report.add(SeverityError, FixNone, "GitHub repository %s is archived and rejects pushes", repo.FullName)
		splog.Error("  GitHub repository %s is archived", repo.FullName)
	} else if !repo.CanPush {
		report.add(SeverityError, FixNone, "your GitHub token cannot push to %s", repo.FullName)
		splog.Error("  Your GitHub token cannot push to %s", repo.FullName)
	}
}
