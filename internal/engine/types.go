package engine

import (
	"fmt"
	"strings"
)

// Operation names used in outcomes, errors and observer events
const (
	OpInit        = "init"
	OpSetupRemote = "setup-remote"
	OpStatus      = "status"
	OpFetch       = "fetch"
	OpCommit      = "commit"
	OpPull        = "pull"
	OpPush        = "push"
	OpQuickSync   = "quick-sync"
	OpInfo        = "info"
	OpIdentity    = "identity"
)

// RepoStatus is a point-in-time snapshot of a vault repository.
// When IsGitRepo is false every other field holds its zero value.
type RepoStatus struct {
	IsGitRepo             bool
	HasCommits            bool
	Branch                string
	HasUncommittedChanges bool
	UntrackedFiles        []string
	ModifiedFiles         []string
	StagedFiles           []string
	ConflictedFiles       []string
	CommitsAhead          int
	CommitsBehind         int
	UpstreamBranch        string
	CanFastForward        bool
	HasConflicts          bool
}

// IsClean reports whether there is nothing to commit
func (s RepoStatus) IsClean() bool {
	return !s.HasUncommittedChanges
}

// NeedsPush reports whether local commits are missing from the upstream
func (s RepoStatus) NeedsPush() bool {
	return s.CommitsAhead > 0
}

// NeedsPull reports whether upstream commits are missing locally
func (s RepoStatus) NeedsPull() bool {
	return s.CommitsBehind > 0
}

func (s RepoStatus) String() string {
	if !s.IsGitRepo {
		return "Not a Git repository"
	}

	var b strings.Builder
	branch := s.Branch
	if branch == "" {
		branch = "(detached)"
	}
	fmt.Fprintf(&b, "Branch: %s", branch)
	if s.UpstreamBranch != "" {
		fmt.Fprintf(&b, " -> %s", s.UpstreamBranch)
	}
	b.WriteString("\n")

	if s.IsClean() {
		b.WriteString("Working tree clean\n")
	} else {
		fmt.Fprintf(&b, "Uncommitted changes: %d staged, %d modified, %d untracked\n",
			len(s.StagedFiles), len(s.ModifiedFiles), len(s.UntrackedFiles))
	}
	if s.HasConflicts {
		fmt.Fprintf(&b, "Conflicts: %s\n", strings.Join(s.ConflictedFiles, ", "))
	}
	if s.NeedsPush() {
		fmt.Fprintf(&b, "Ahead by %d commit(s)\n", s.CommitsAhead)
	}
	if s.NeedsPull() {
		fmt.Fprintf(&b, "Behind by %d commit(s)\n", s.CommitsBehind)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// SyncOutcome is the result of a commit, pull, push or quick sync.
// Operations return a partially filled outcome alongside any error.
type SyncOutcome struct {
	Op            string
	Success       bool
	Pulled        bool
	Committed     bool
	Pushed        bool
	CommitSHA     string
	CommitMessage string
	Message       string
	// States lists the state machine states visited, in order
	States []State
}

// InitResult describes what InitRepo did
type InitResult struct {
	Path               string
	Created            bool
	AlreadyInitialized bool
	Branch             string
	Message            string
}

// EnvironmentInfo describes the version-control tooling available
type EnvironmentInfo struct {
	ToolInstalled bool
	ToolPath      string
	ToolVersion   string
	Backend       string
}

// Remote is a configured remote and its parsed URL form
type Remote struct {
	Name       string
	URL        string
	AuthMethod AuthMethod
}

// Info is a combined environment, status and remote report for a vault
type Info struct {
	Path        string
	Environment EnvironmentInfo
	Status      RepoStatus
	Remotes     []Remote
}
