package doctor

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"vaultsync.dev/vaultsync/internal/runtime"
	"vaultsync.dev/vaultsync/internal/vault"
)

// largeFileExtensions are media and archive types that bloat history
var largeFileExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
	".pdf": true,
	".zip": true,
	".dmg": true,
	".iso": true,
}

const maxListedLargeFiles = 5

// checkVault checks the vault directory itself: that it exists, looks like
// an Obsidian vault, ignores workspace files and holds no bulky media
func checkVault(ctx *runtime.Context, home string, report *Report) {
	splog := ctx.Splog

	if info, err := os.Stat(ctx.VaultPath); err != nil || !info.IsDir() {
		issue := report.add(SeverityError, FixInit, "vault directory %s does not exist", ctx.VaultPath)
		splog.Error("  Vault directory %s does not exist", ctx.VaultPath)
		suggestVault(ctx, home, issue)
		return
	}

	if err := vault.Validate(ctx.VaultPath); err != nil {
		issue := report.add(SeverityWarning, FixNone, "%v", err)
		splog.Warn("  %v", err)
		suggestVault(ctx, home, issue)
	} else {
		splog.Info("  ✅ %s looks like an Obsidian vault", ctx.VaultPath)
	}

	if vault.HasGitignore(ctx.VaultPath) {
		splog.Info("  ✅ .gitignore is present")
	} else {
		report.add(SeverityWarning, FixGitignore, ".gitignore is missing (workspace and cache files will be committed)")
		splog.Warn("  .gitignore is missing")
	}

	large := findLargeFiles(ctx.VaultPath)
	if len(large) == 0 {
		splog.Info("  ✅ No large media files found")
		return
	}
	issue := report.add(SeverityWarning, FixNone, "%d large media file(s) found; consider Git LFS or excluding them", len(large))
	splog.Warn("  Found %d large media file(s):", len(large))
	for i, f := range large {
		if i == maxListedLargeFiles {
			splog.Warn("    ... and %d more", len(large)-maxListedLargeFiles)
			break
		}
		issue.Details = append(issue.Details, f)
		splog.Warn("    %s", f)
	}
}

// suggestVault points at a vault in one of the usual places under home
func suggestVault(ctx *runtime.Context, home string, issue *Issue) {
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return
		}
	}
	found, ok := vault.FindVault(home)
	if !ok || found == ctx.VaultPath {
		return
	}
	issue.Details = append(issue.Details, "a vault was found at "+found)
	ctx.Splog.Tip("  A vault was found at %s; pass --vault-path %s", found, found)
}

// findLargeFiles lists vault-relative paths of media files outside .git
func findLargeFiles(root string) []string {
	var found []string
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if largeFileExtensions[strings.ToLower(filepath.Ext(p))] {
			if rel, err := filepath.Rel(root, p); err == nil {
				found = append(found, filepath.ToSlash(rel))
			}
		}
		return nil
	})
	return found
}
