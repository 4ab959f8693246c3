package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Backend is the narrow set of version-control capabilities the sync engine
// needs. Every method operates on the repository rooted at path and returns
// raw failures; interpreting them is the caller's job.
type Backend interface {
	// Name identifies the implementation, e.g. "cli" or "go-git".
	Name() string
	// Version reports the installed git version string.
	Version(ctx context.Context) (string, error)

	IsRepo(ctx context.Context, path string) (bool, error)
	Init(ctx context.Context, path, defaultBranch string) error
	Status(ctx context.Context, path string) (*RawStatus, error)
	// GitDir resolves the repository's git directory, which is not
	// <path>/.git for linked worktrees and submodules.
	GitDir(ctx context.Context, path string) (string, error)

	StageAll(ctx context.Context, path string) error
	Commit(ctx context.Context, path, message string) (string, error)

	Fetch(ctx context.Context, path, remote string) error
	Pull(ctx context.Context, path, remote, branch string, rebase bool) (PullResult, error)
	// AbortRebase abandons an in-progress rebase. An unfinished merge is
	// left for the operator.
	AbortRebase(ctx context.Context, path string) error
	Push(ctx context.Context, path, remote, branch string, allBranches bool) (PushResult, error)

	GetRemote(ctx context.Context, path, name string) (string, bool, error)
	SetRemote(ctx context.Context, path, name, url string) error
	ListRemotes(ctx context.Context, path string) ([]Remote, error)

	GetConfig(ctx context.Context, path, key string) (string, bool, error)
	SetConfig(ctx context.Context, path, key, value string) error

	RefExists(ctx context.Context, path, ref string) (bool, error)
	AheadBehind(ctx context.Context, path, local, upstream string) (int, int, error)
}

// Remote is a named remote and its fetch URL
type Remote struct {
	Name string
	URL  string
}

// PushResult represents the result of a push operation
type PushResult int

const (
	// PushDone indicates new commits were sent to the remote
	PushDone PushResult = iota
	// PushUpToDate indicates the remote already had everything
	PushUpToDate
)

// BackendKind selects a Backend implementation
type BackendKind string

const (
	// BackendAuto prefers go-git and falls back to the CLI
	BackendAuto BackendKind = "auto"
	// BackendGoGit uses go-git for local operations
	BackendGoGit BackendKind = "go-git"
	// BackendCLI shells out to git for everything
	BackendCLI BackendKind = "cli"
)

// ParseBackendKind validates a backend name
func ParseBackendKind(s string) (BackendKind, error) {
	switch BackendKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendAuto:
		return BackendAuto, nil
	case BackendGoGit, "gogit":
		return BackendGoGit, nil
	case BackendCLI, "git", "subprocess":
		return BackendCLI, nil
	default:
		return "", fmt.Errorf("unknown backend %q: expected auto, go-git or cli", s)
	}
}

// NewBackend returns the backend for kind. Extra environment entries are
// passed to every git subprocess the backend starts.
func NewBackend(kind BackendKind, env ...string) (Backend, error) {
	runner := NewCommandRunner("", env...)
	switch kind {
	case BackendCLI:
		return NewCLIBackend(runner), nil
	case BackendGoGit, BackendAuto, "":
		return NewGoGitBackend(NewCLIBackend(runner)), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

// LookPath reports whether the git executable is on PATH
func LookPath() (string, error) {
	return exec.LookPath("git")
}
