package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	syncerrors "vaultsync.dev/vaultsync/internal/errors"
)

// DefaultCommandTimeout is the default timeout for git commands
const DefaultCommandTimeout = 5 * time.Minute

// waitDelay bounds how long a killed command may keep its output pipes open
const waitDelay = 2 * time.Second

// baseEnv keeps git from ever blocking on a terminal prompt or an editor.
var baseEnv = []string{
	"GIT_TERMINAL_PROMPT=0",
	"GIT_EDITOR=true",
	"GIT_MERGE_AUTOEDIT=no",
}

// CommandRunner handles execution of git commands
type CommandRunner struct {
	executable string
	workingDir string
	env        []string
}

// NewCommandRunner creates a new CommandRunner rooted at workingDir.
// Extra environment entries are appended after the defaults.
func NewCommandRunner(workingDir string, env ...string) *CommandRunner {
	return &CommandRunner{executable: "git", workingDir: workingDir, env: env}
}

// WithDir returns a copy of the runner that executes in dir.
func (r *CommandRunner) WithDir(dir string) *CommandRunner {
	clone := *r
	clone.workingDir = dir
	return &clone
}

// Run executes a git command with the given context and returns the trimmed output
func (r *CommandRunner) Run(ctx context.Context, args ...string) (string, error) {
	return r.runInternal(ctx, true, args...)
}

// RunRaw executes a git command and returns the untrimmed output
func (r *CommandRunner) RunRaw(ctx context.Context, args ...string) (string, error) {
	return r.runInternal(ctx, false, args...)
}

// RunLines executes a git command and returns output as lines
func (r *CommandRunner) RunLines(ctx context.Context, args ...string) ([]string, error) {
	output, err := r.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	if output == "" {
		return []string{}, nil
	}
	return strings.Split(output, "\n"), nil
}

func (r *CommandRunner) runInternal(ctx context.Context, trim bool, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// If no timeout/deadline is set in the context, add the default one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	executable := r.executable
	if executable == "" {
		executable = "git"
	}

	cmd := exec.CommandContext(ctx, executable, args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	cmd.Env = append(append(os.Environ(), baseEnv...), r.env...)
	setupProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", syncerrors.NewGitCommandError(executable, args, stdout.String(), stderr.String(), ctxErr)
		}
		return "", syncerrors.NewGitCommandError(executable, args, stdout.String(), stderr.String(), err)
	}
	if trim {
		return strings.TrimSpace(stdout.String()), nil
	}
	return stdout.String(), nil
}
