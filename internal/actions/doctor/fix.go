package doctor

import (
	"vaultsync.dev/vaultsync/internal/runtime"
	"vaultsync.dev/vaultsync/internal/vault"
)

// applyFixes repairs every fixable issue in report, marking those it fixed.
// The repository is initialized before the identity is filled in.
func applyFixes(ctx *runtime.Context, report *Report) {
	splog := ctx.Splog
	fixed := map[FixAction]bool{}

	for _, action := range []FixAction{FixInit, FixGitignore, FixIdentity} {
		if !report.Has(action) {
			continue
		}
		if err := applyFix(ctx, action); err != nil {
			splog.Error("  Could not fix %s: %v", action, err)
			continue
		}
		fixed[action] = true
	}

	// A fresh repository may still lack an identity; fill it in now that
	// the repository exists.
	if fixed[FixInit] && !fixed[FixIdentity] {
		if identity, err := ctx.Engine.GetIdentity(ctx, ctx.VaultPath); err == nil && !identity.Complete() {
			if applyFix(ctx, FixIdentity) == nil {
				fixed[FixIdentity] = true
			}
		}
	}

	for i := range report.Issues {
		if fixed[report.Issues[i].Fix] {
			report.Issues[i].Fixed = true
		}
	}
	if len(fixed) == 0 {
		splog.Info("  Nothing to fix")
	}
}

func applyFix(ctx *runtime.Context, action FixAction) error {
	splog := ctx.Splog
	switch action {
	case FixInit:
		result, err := ctx.Engine.InitRepo(ctx, ctx.VaultPath)
		if err != nil {
			return err
		}
		splog.Success("  Initialized repository on '%s'", result.Branch)
	case FixGitignore:
		result, err := vault.WriteGitignore(ctx.VaultPath, ctx.Config.Gitignore.ExtraPatterns, false)
		if err != nil {
			return err
		}
		splog.Success("  %s", result.Message)
	case FixIdentity:
		identity, err := ctx.Engine.FillIdentity(ctx, ctx.VaultPath)
		if err != nil {
			return err
		}
		splog.Success("  Commits will be authored as %s <%s>", identity.Name, identity.Email)
	}
	return nil
}
