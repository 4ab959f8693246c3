// Package doctor provides diagnostic functionality for checking a vault's sync setup.
package doctor

import (
	"fmt"

	"vaultsync.dev/vaultsync/internal/github"
	"vaultsync.dev/vaultsync/internal/runtime"
)

// Severity ranks an issue
type Severity int

const (
	// SeverityInfo is worth knowing but needs no action
	SeverityInfo Severity = iota
	// SeverityWarning may cause trouble later
	SeverityWarning
	// SeverityError prevents syncing
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// FixAction names an automatic repair
type FixAction string

const (
	FixNone      FixAction = ""
	FixInit      FixAction = "init"
	FixGitignore FixAction = "gitignore"
	FixIdentity  FixAction = "identity"
)

// Issue is one problem found by a check
type Issue struct {
	Severity Severity
	Message  string
	Details  []string
	Fix      FixAction
	Fixed    bool
}

// Report collects the issues of one doctor run
type Report struct {
	Issues []Issue
}

func (r *Report) add(severity Severity, fix FixAction, format string, args ...any) *Issue {
	r.Issues = append(r.Issues, Issue{Severity: severity, Fix: fix, Message: fmt.Sprintf(format, args...)})
	return &r.Issues[len(r.Issues)-1]
}

// Count returns how many unfixed issues have the given severity
func (r *Report) Count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity && !issue.Fixed {
			n++
		}
	}
	return n
}

// Has reports whether an issue with the given fix action was found
func (r *Report) Has(fix FixAction) bool {
	for _, issue := range r.Issues {
		if issue.Fix == fix {
			return true
		}
	}
	return false
}

// Options contains options for the doctor command
type Options struct {
	Fix bool
	// SSHDir is searched for id_* keys; empty means ~/.ssh
	SSHDir string
	// HomeDir is searched for a vault to suggest when the vault path does
	// not hold one; empty means the user's home directory
	HomeDir string
	// GitHub checks GitHub-hosted remotes; nil builds a client from the
	// environment, and the check is skipped if no token is available
	GitHub github.Client
	// Offline skips checks that need the network
	Offline bool
}

// Run performs every check, applying fixes when asked, and returns the report
func Run(ctx *runtime.Context, opts Options) *Report {
	splog := ctx.Splog
	report := &Report{}

	splog.Info("Environment:")
	gitOK := checkEnvironment(ctx, report)
	checkSSHKeys(ctx, opts.SSHDir, report)

	splog.Newline()
	splog.Info("Vault:")
	checkVault(ctx, opts.HomeDir, report)

	if gitOK {
		splog.Newline()
		splog.Info("Repository:")
		remoteURL := checkRepository(ctx, report)
		if remoteURL != "" && !opts.Offline {
			checkGitHubRemote(ctx, opts.GitHub, remoteURL, report)
		}
	}

	if opts.Fix {
		splog.Newline()
		splog.Info("Fixes:")
		applyFixes(ctx, report)
	}
	return report
}

// Action runs diagnostic checks on the vault and its repository
func Action(ctx *runtime.Context, opts Options) error {
	splog := ctx.Splog

	if opts.Fix {
		splog.Info("Running vaultsync doctor with --fix on %s...", ctx.VaultPath)
	} else {
		splog.Info("Running vaultsync doctor on %s...", ctx.VaultPath)
	}
	splog.Newline()

	report := Run(ctx, opts)

	errCount := report.Count(SeverityError)
	warnCount := report.Count(SeverityWarning)

	splog.Newline()
	switch {
	case errCount > 0:
		splog.Warn("Doctor found %d error(s) and %d warning(s).", errCount, warnCount)
		printUnfixed(ctx, report)
		if !opts.Fix && hasFixable(report) {
			splog.Tip("Run 'vaultsync doctor --fix' to repair what can be repaired automatically")
		}
		return fmt.Errorf("doctor found %d error(s)", errCount)
	case warnCount > 0:
		if opts.Fix {
			splog.Info("Doctor found %d warning(s) it could not fix.", warnCount)
		} else {
			splog.Info("Doctor found %d warning(s). Your vault can sync, but have a look.", warnCount)
		}
		printUnfixed(ctx, report)
		if !opts.Fix && hasFixable(report) {
			splog.Tip("Run 'vaultsync doctor --fix' to repair what can be repaired automatically")
		}
	default:
		splog.Success("All checks passed. Your vault is ready to sync.")
	}
	return nil
}

func printUnfixed(ctx *runtime.Context, report *Report) {
	for _, issue := range report.Issues {
		if issue.Fixed || issue.Severity == SeverityInfo {
			continue
		}
		if issue.Severity == SeverityError {
			ctx.Splog.Error("  %s", issue.Message)
		} else {
			ctx.Splog.Warn("  %s", issue.Message)
		}
	}
}

func hasFixable(report *Report) bool {
	for _, issue := range report.Issues {
		if issue.Fix != FixNone && !issue.Fixed {
			return true
		}
	}
	return false
}
