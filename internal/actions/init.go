package actions

import (
	"os"

	"vaultsync.dev/vaultsync/internal/runtime"
	"vaultsync.dev/vaultsync/internal/vault"
)

// InitialCommitMessage is used for the commit made by init
const InitialCommitMessage = "Initial commit: Obsidian vault setup"

// InitOptions contains options for the init command
type InitOptions struct {
	// Gitignore writes the Obsidian .gitignore template
	Gitignore bool
	// OverwriteGitignore replaces an existing .gitignore
	OverwriteGitignore bool
	// Commit records an initial commit when the repository was just created
	Commit bool
}

// InitAction turns the vault directory into a repository ready to sync
func InitAction(ctx *runtime.Context, opts InitOptions) error {
	splog := ctx.Splog

	// InitRepo creates a missing directory; anything else odd is worth a warning
	if _, err := os.Stat(ctx.VaultPath); err == nil {
		if err := vault.Validate(ctx.VaultPath); err != nil {
			splog.Warn("%v", err)
		}
	}

	result, err := ctx.Engine.InitRepo(ctx, ctx.VaultPath)
	if err != nil {
		return err
	}
	if result.Created {
		splog.Success("Initialized git repository in %s (branch %s)", result.Path, result.Branch)
	} else {
		splog.Info(result.Message)
	}

	if opts.Gitignore {
		gi, err := vault.WriteGitignore(result.Path, ctx.Config.Gitignore.ExtraPatterns, opts.OverwriteGitignore)
		if err != nil {
			return err
		}
		if gi.Created {
			splog.Success("%s", gi.Message)
		} else {
			splog.Info(gi.Message)
		}
	}

	if !opts.Commit || !result.Created {
		return nil
	}
	out, err := ctx.Engine.CommitAll(ctx, result.Path, InitialCommitMessage, false)
	if err != nil {
		return err
	}
	if out.Committed {
		splog.Success("Created initial commit %s", shortSHA(out.CommitSHA))
	}
	splog.Tip("Next: vaultsync setup-remote <url>")
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
