package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	syncerrors "vaultsync.dev/vaultsync/internal/errors"
)

// CLIBackend implements Backend by running the git executable.
type CLIBackend struct {
	runner *CommandRunner
}

// NewCLIBackend creates a backend that runs git through runner
func NewCLIBackend(runner *CommandRunner) *CLIBackend {
	if runner == nil {
		runner = NewCommandRunner("")
	}
	return &CLIBackend{runner: runner}
}

func (b *CLIBackend) in(path string) *CommandRunner {
	return b.runner.WithDir(path)
}

// Name returns "cli"
func (b *CLIBackend) Name() string {
	return string(BackendCLI)
}

// Version returns the version reported by `git --version`
func (b *CLIBackend) Version(ctx context.Context) (string, error) {
	out, err := b.runner.Run(ctx, "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(out, "git version "), nil
}

// IsRepo reports whether path is the top level of a work tree
func (b *CLIBackend) IsRepo(ctx context.Context, path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	top, err := b.in(path).Run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		var cmdErr *syncerrors.GitCommandError
		if errors.As(err, &cmdErr) && strings.Contains(strings.ToLower(cmdErr.Stderr), "not a git repository") {
			return false, nil
		}
		return false, err
	}
	return samePath(top, path), nil
}

// Init creates a repository whose first branch is defaultBranch
func (b *CLIBackend) Init(ctx context.Context, path, defaultBranch string) error {
	args := []string{"init"}
	if defaultBranch != "" {
		args = []string{"-c", "init.defaultBranch=" + defaultBranch, "init"}
	}
	_, err := b.runner.Run(ctx, append(args, path)...)
	return err
}

// Status parses porcelain v2 status output
func (b *CLIBackend) Status(ctx context.Context, path string) (*RawStatus, error) {
	out, err := b.in(path).RunRaw(ctx, "status", "--porcelain=v2", "--branch", "-z", "--untracked-files=all")
	if err != nil {
		return nil, err
	}
	return ParsePorcelainV2(out)
}

// StageAll stages additions, modifications and deletions
func (b *CLIBackend) StageAll(ctx context.Context, path string) error {
	_, err := b.in(path).Run(ctx, "add", "--all")
	return err
}

// Commit records the index and returns the new commit SHA
func (b *CLIBackend) Commit(ctx context.Context, path, message string) (string, error) {
	runner := b.in(path)
	if _, err := runner.Run(ctx, "commit", "--no-verify", "-m", message); err != nil {
		return "", err
	}
	return runner.Run(ctx, "rev-parse", "HEAD")
}

// Fetch updates remote-tracking refs for remote
func (b *CLIBackend) Fetch(ctx context.Context, path, remote string) error {
	_, err := b.in(path).Run(ctx, "fetch", "--prune", remote)
	return err
}

// Pull integrates remote/branch into the current branch. A conflict is
// reported as PullConflict with the repository left mid-operation.
func (b *CLIBackend) Pull(ctx context.Context, path, remote, branch string, rebase bool) (PullResult, error) {
	runner := b.in(path)
	before, _ := runner.Run(ctx, "rev-parse", "--verify", "--quiet", "HEAD")

	mode := "--no-rebase"
	if rebase {
		mode = "--rebase"
	}
	_, err := runner.Run(ctx, "pull", mode, "--no-edit", remote, branch)
	if err != nil {
		if b.inConflict(ctx, path) {
			return PullConflict, nil
		}
		return PullConflict, err
	}

	after, _ := runner.Run(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	if before != "" && before == after {
		return PullUnneeded, nil
	}
	return PullDone, nil
}

func (b *CLIBackend) inConflict(ctx context.Context, path string) bool {
	if b.IsRebaseInProgress(ctx, path) || b.isMergeInProgress(ctx, path) {
		return true
	}
	status, err := b.Status(ctx, path)
	return err == nil && len(status.UnmergedPaths()) > 0
}

// IsRebaseInProgress checks for .git/rebase-merge or .git/rebase-apply
func (b *CLIBackend) IsRebaseInProgress(ctx context.Context, path string) bool {
	gitDir, err := b.GitDir(ctx, path)
	if err != nil {
		return false
	}
	for _, dir := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(gitDir, dir)); err == nil {
			return true
		}
	}
	return false
}

func (b *CLIBackend) isMergeInProgress(ctx context.Context, path string) bool {
	gitDir, err := b.GitDir(ctx, path)
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(gitDir, "MERGE_HEAD"))
	return err == nil
}

// GitDir returns the absolute git directory of the repository at path
func (b *CLIBackend) GitDir(ctx context.Context, path string) (string, error) {
	dir, err := b.in(path).Run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	return dir, nil
}

// AbortRebase restores the state before an interrupted rebase. It is a
// no-op when no rebase is running; an unfinished merge is left alone.
func (b *CLIBackend) AbortRebase(ctx context.Context, path string) error {
	if !b.IsRebaseInProgress(ctx, path) {
		return nil
	}
	if _, err := b.in(path).Run(ctx, "rebase", "--abort"); err != nil {
		return fmt.Errorf("rebase abort failed: %w", err)
	}
	return nil
}

// Push sends branch (or every branch) to remote and sets upstream tracking.
// It never forces.
func (b *CLIBackend) Push(ctx context.Context, path, remote, branch string, allBranches bool) (PushResult, error) {
	args := []string{"push", "--porcelain", "-u", remote, branch}
	if allBranches {
		args = []string{"push", "--porcelain", "-u", "--all", remote}
	}
	out, err := b.in(path).Run(ctx, args...)
	if err != nil {
		return PushDone, err
	}
	if pushedNothing(out) {
		return PushUpToDate, nil
	}
	return PushDone, nil
}

// pushedNothing inspects `git push --porcelain` output, where '=' flags an
// up-to-date ref.
func pushedNothing(out string) bool {
	sawRef := false
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 2 || line[1] != '\t' {
			continue
		}
		switch line[0] {
		case '=':
			sawRef = true
		case ' ', '+', '-', '*':
			return false
		}
	}
	return sawRef
}

// GetRemote returns the URL of the named remote
func (b *CLIBackend) GetRemote(ctx context.Context, path, name string) (string, bool, error) {
	remotes, err := b.ListRemotes(ctx, path)
	if err != nil {
		return "", false, err
	}
	for _, r := range remotes {
		if r.Name == name {
			return r.URL, true, nil
		}
	}
	return "", false, nil
}

// SetRemote adds the remote, or replaces its URL when it already exists
func (b *CLIBackend) SetRemote(ctx context.Context, path, name, url string) error {
	_, exists, err := b.GetRemote(ctx, path, name)
	if err != nil {
		return err
	}
	if exists {
		_, err = b.in(path).Run(ctx, "remote", "set-url", name, url)
		return err
	}
	_, err = b.in(path).Run(ctx, "remote", "add", name, url)
	return err
}

// ListRemotes returns every configured remote with its fetch URL
func (b *CLIBackend) ListRemotes(ctx context.Context, path string) ([]Remote, error) {
	lines, err := b.in(path).RunLines(ctx, "remote", "-v")
	if err != nil {
		return nil, err
	}

	var remotes []Remote
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if len(fields) >= 3 && fields[2] != "(fetch)" {
			continue
		}
		remotes = append(remotes, Remote{Name: fields[0], URL: fields[1]})
	}
	return remotes, nil
}

// GetConfig reads the effective value of key
func (b *CLIBackend) GetConfig(ctx context.Context, path, key string) (string, bool, error) {
	out, err := b.in(path).Run(ctx, "config", "--get", key)
	if err != nil {
		// git config exits 1 when the key is unset
		var cmdErr *syncerrors.GitCommandError
		if errors.As(err, &cmdErr) && exitCode(cmdErr) == 1 {
			return "", false, nil
		}
		return "", false, err
	}
	return out, true, nil
}

// SetConfig writes key into the repository config
func (b *CLIBackend) SetConfig(ctx context.Context, path, key, value string) error {
	_, err := b.in(path).Run(ctx, "config", "--local", key, value)
	return err
}

// RefExists reports whether ref resolves to a commit
func (b *CLIBackend) RefExists(ctx context.Context, path, ref string) (bool, error) {
	_, err := b.in(path).Run(ctx, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		var cmdErr *syncerrors.GitCommandError
		if errors.As(err, &cmdErr) && exitCode(cmdErr) == 1 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// AheadBehind counts commits reachable from only one of local and upstream
func (b *CLIBackend) AheadBehind(ctx context.Context, path, local, upstream string) (int, int, error) {
	out, err := b.in(path).Run(ctx, "rev-list", "--left-right", "--count", local+"..."+upstream)
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", out)
	}
	ahead, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	behind, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

func exitCode(err *syncerrors.GitCommandError) int {
	var exitErr interface{ ExitCode() int }
	if errors.As(err.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func samePath(a, b string) bool {
	resolve := func(p string) string {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if real, err := filepath.EvalSymlinks(p); err == nil {
			p = real
		}
		return filepath.Clean(p)
	}
	return resolve(a) == resolve(b)
}
