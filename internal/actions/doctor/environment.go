package doctor

import (
	"os"
	"path/filepath"

	"vaultsync.dev/vaultsync/internal/runtime"
)

// checkEnvironment reports the git installation. It returns false when git
// is missing, in which case repository checks are skipped.
func checkEnvironment(ctx *runtime.Context, report *Report) bool {
	env := ctx.Engine.GetEnvironmentInfo(ctx)
	if !env.ToolInstalled {
		report.add(SeverityError, FixNone, "git is not installed or not in PATH")
		ctx.Splog.Error("  git is not installed or not in PATH")
		return false
	}
	ctx.Splog.Info("  ✅ git %s (%s backend)", env.ToolVersion, env.Backend)
	return true
}

// checkSSHKeys looks for id_* keys, which SSH remotes need
func checkSSHKeys(ctx *runtime.Context, sshDir string, report *Report) {
	if sshDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		sshDir = filepath.Join(home, ".ssh")
	}

	keys, _ := filepath.Glob(filepath.Join(sshDir, "id_*"))
	if len(keys) == 0 {
		report.add(SeverityInfo, FixNone, "No SSH keys found in %s (required for SSH authentication)", sshDir)
		ctx.Splog.Info("  ℹ️  No SSH keys found in %s (needed only for SSH remotes)", sshDir)
		return
	}
	ctx.Splog.Info("  ✅ Found %d SSH key file(s) in %s", len(keys), sshDir)
}
