package doctor

import (
	"fmt"

	"vaultsync.dev/vaultsync/internal/runtime"
)

// checkRepository checks the repository, its remote and the commit identity.
// It returns the URL of the configured remote, or "" when there is none.
func checkRepository(ctx *runtime.Context, report *Report) string {
	splog := ctx.Splog

	status, err := ctx.Engine.GetStatus(ctx, ctx.VaultPath)
	if err != nil {
		report.add(SeverityError, FixNone, "failed to read repository status: %v", err)
		splog.Error("  Failed to read repository status: %v", err)
		return ""
	}
	if !status.IsGitRepo {
		report.add(SeverityError, FixInit, "vault is not a git repository (run 'vaultsync init')")
		splog.Error("  Vault is not a git repository")
		return ""
	}
	if status.Branch == "" {
		splog.Info("  ✅ Vault is a git repository (detached HEAD)")
	} else {
		splog.Info("  ✅ Vault is a git repository on '%s'", status.Branch)
	}

	var remoteURL string
	remotes, err := ctx.Engine.ListRemotes(ctx, ctx.VaultPath)
	if err != nil {
		report.add(SeverityWarning, FixNone, "failed to list remotes: %v", err)
		splog.Warn("  Failed to list remotes: %v", err)
	} else {
		name := ctx.Engine.RemoteName()
		for _, r := range remotes {
			if r.Name == name {
				remoteURL = r.URL
			}
		}
		if remoteURL == "" {
			report.add(SeverityWarning, FixNone, "remote '%s' is not configured (run 'vaultsync setup-remote <url>')", name)
			splog.Warn("  Remote '%s' is not configured", name)
		} else {
			splog.Info("  ✅ Remote '%s' -> %s", name, remoteURL)
		}
	}

	identity, err := ctx.Engine.GetIdentity(ctx, ctx.VaultPath)
	switch {
	case err != nil:
		report.add(SeverityWarning, FixNone, "failed to read git identity: %v", err)
		splog.Warn("  Failed to read git identity: %v", err)
	case identity.Complete():
		splog.Info("  ✅ Commits are authored as %s <%s>", identity.Name, identity.Email)
	default:
		missing := "user.email"
		if !identity.HasName && !identity.HasEmail {
			missing = "user.name and user.email"
		} else if !identity.HasName {
			missing = "user.name"
		}
		report.add(SeverityWarning, FixIdentity, "git identity is incomplete: %s not set", missing)
		splog.Warn("  Git identity is incomplete: %s not set", missing)
	}

	if status.HasConflicts {
		msg := fmt.Sprintf("%d file(s) have unresolved conflicts", len(status.ConflictedFiles))
		report.add(SeverityError, FixNone, "%s", msg)
		splog.Error("  %s", msg)
	}

	return remoteURL
}
