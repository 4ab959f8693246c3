package integration

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"vaultsync.dev/vaultsync/testhelpers"
)

// =============================================================================
// Test Shell - A helper to make integration tests read like terminal sessions
// =============================================================================

// TestShell is one device's vault. Commands run the vaultsync binary against
// it; tests using this read like a series of terminal commands.
type TestShell struct {
	t          *testing.T
	repo       *testhelpers.GitRepo
	remoteDir  string
	binaryPath string
	home       string
	lastOutput string
	lastCode   int
}

// NewTestShellWithRemote creates a vault with one committed note pushed to a
// local bare repository registered as "origin".
func NewTestShellWithRemote(t *testing.T, binaryPath string) *TestShell {
	t.Helper()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	return &TestShell{
		t:          t,
		repo:       scene.Repo,
		remoteDir:  scene.RemoteDir("origin"),
		binaryPath: binaryPath,
		home:       t.TempDir(),
	}
}

// NewEmptyVaultShell creates an uninitialized vault directory and an empty
// bare repository for it to sync with.
func NewEmptyVaultShell(t *testing.T, binaryPath string) *TestShell {
	t.Helper()
	dir := testhelpers.NewVaultDir(t)
	remoteDir := filepath.Join(t.TempDir(), "remote.git")
	cmd := exec.Command("git", "-c", "init.defaultBranch=main", "init", "--bare", remoteDir)
	cmd.Env = append(os.Environ(), testhelpers.GitEnv...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to create bare repo: %s", string(output))

	return &TestShell{
		t:          t,
		repo:       &testhelpers.GitRepo{Dir: dir},
		remoteDir:  remoteDir,
		binaryPath: binaryPath,
		home:       t.TempDir(),
	}
}

// Device clones the shared remote into a second vault, as another device
// setting up sync for the first time
func (s *TestShell) Device(name string) *TestShell {
	s.t.Helper()
	dir := filepath.Join(s.t.TempDir(), name)
	repo, err := testhelpers.CloneGitRepo(s.remoteDir, dir)
	require.NoError(s.t, err)
	return &TestShell{
		t:          s.t,
		repo:       repo,
		remoteDir:  s.remoteDir,
		binaryPath: s.binaryPath,
		home:       s.t.TempDir(),
	}
}

// Dir returns the vault directory of the test shell.
func (s *TestShell) Dir() string {
	return s.repo.Dir
}

// RemoteDir returns the shared bare repository.
func (s *TestShell) RemoteDir() string {
	return s.remoteDir
}

// =============================================================================
// Command Execution
// =============================================================================

func (s *TestShell) exec(args string) error {
	parts := append([]string{"--vault-path", s.repo.Dir, "--log-file", "-"}, splitArgs(args)...)
	cmd := exec.Command(s.binaryPath, parts...)
	cmd.Env = testhelpers.BinaryEnv(s.home)
	output, err := cmd.CombinedOutput()
	s.lastOutput = string(output)
	s.lastCode = 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		s.lastCode = exitErr.ExitCode()
	}
	return err
}

// Run executes a vaultsync command (e.g., "sync -m 'evening notes'")
func (s *TestShell) Run(args string) *TestShell {
	s.t.Helper()
	err := s.exec(args)
	require.NoError(s.t, err, "$ vaultsync %s\n%s", args, s.lastOutput)
	return s
}

// RunExpectError executes a vaultsync command and expects it to fail.
func (s *TestShell) RunExpectError(args string) *TestShell {
	s.t.Helper()
	err := s.exec(args)
	require.Error(s.t, err, "$ vaultsync %s (expected error)\n%s", args, s.lastOutput)
	return s
}

// ExitCode asserts the exit status of the last command
func (s *TestShell) ExitCode(expected int) *TestShell {
	s.t.Helper()
	require.Equal(s.t, expected, s.lastCode, "unexpected exit code\n%s", s.lastOutput)
	return s
}

// Git executes a raw git command (use sparingly - prefer vaultsync commands)
func (s *TestShell) Git(args string) *TestShell {
	s.t.Helper()
	cmd := exec.Command("git", splitArgs(args)...)
	cmd.Dir = s.repo.Dir
	cmd.Env = append(os.Environ(), testhelpers.GitEnv...)
	output, err := cmd.CombinedOutput()
	s.lastOutput = string(output)
	require.NoError(s.t, err, "$ git %s\n%s", args, s.lastOutput)
	return s
}

// =============================================================================
// Note Operations
// =============================================================================

// WriteNote creates or edits a note without staging it, as Obsidian would
func (s *TestShell) WriteNote(name, content string) *TestShell {
	s.t.Helper()
	require.NoError(s.t, s.repo.WriteFile(name, content), "failed to write %s", name)
	return s
}

// DeleteNote removes a note from disk
func (s *TestShell) DeleteNote(name string) *TestShell {
	s.t.Helper()
	require.NoError(s.t, os.Remove(filepath.Join(s.repo.Dir, name)), "failed to delete %s", name)
	return s
}

// RenameNote moves a note on disk
func (s *TestShell) RenameNote(from, to string) *TestShell {
	s.t.Helper()
	target := filepath.Join(s.repo.Dir, to)
	require.NoError(s.t, os.MkdirAll(filepath.Dir(target), 0o750))
	require.NoError(s.t, os.Rename(filepath.Join(s.repo.Dir, from), target), "failed to rename %s", from)
	return s
}

// CommitNote writes a note and commits it with raw git
func (s *TestShell) CommitNote(name, content, message string) *TestShell {
	s.t.Helper()
	require.NoError(s.t, s.repo.CommitFile(name, content, message), "failed to commit %s", name)
	return s
}

// =============================================================================
// Output Inspection
// =============================================================================

// Output returns the last command's output
func (s *TestShell) Output() string {
	return s.lastOutput
}

// OutputContains asserts the last output contains the given string
func (s *TestShell) OutputContains(substr string) *TestShell {
	s.t.Helper()
	require.Contains(s.t, s.lastOutput, substr)
	return s
}

// OutputNotContains asserts the last output does NOT contain the given string
func (s *TestShell) OutputNotContains(substr string) *TestShell {
	s.t.Helper()
	require.NotContains(s.t, s.lastOutput, substr)
	return s
}

// =============================================================================
// Assertions
// =============================================================================

// HasNote asserts a note exists with the given content
func (s *TestShell) HasNote(name, content string) *TestShell {
	s.t.Helper()
	testhelpers.ExpectNote(s.t, s.repo, name, content)
	return s
}

// NoNote asserts a note does not exist
func (s *TestShell) NoNote(name string) *TestShell {
	s.t.Helper()
	require.NoFileExists(s.t, filepath.Join(s.repo.Dir, name))
	return s
}

// IsClean asserts nothing is left to commit and no rebase is in progress
func (s *TestShell) IsClean() *TestShell {
	s.t.Helper()
	testhelpers.ExpectClean(s.t, s.repo)
	return s
}

// InSyncWithRemote asserts HEAD matches the remote branch
func (s *TestShell) InSyncWithRemote() *TestShell {
	s.t.Helper()
	testhelpers.ExpectInSync(s.t, s.repo, s.remoteDir, "main")
	return s
}

// CommitCount asserts the number of commits between two refs
func (s *TestShell) CommitCount(from, to string, expected int) *TestShell {
	s.t.Helper()
	cmd := exec.Command("git", "log", "--oneline", from+".."+to)
	cmd.Dir = s.repo.Dir
	output, err := cmd.CombinedOutput()
	require.NoError(s.t, err)
	actual := countNonEmptyLines(string(output))
	require.Equal(s.t, expected, actual, "expected %d commits between %s..%s, got %d", expected, from, to, actual)
	return s
}

// HeadMessage asserts the subject of the latest commit
func (s *TestShell) HeadMessage(expected string) *TestShell {
	s.t.Helper()
	testhelpers.ExpectCommits(s.t, s.repo, "HEAD", []string{expected})
	return s
}

// =============================================================================
// Logging
// =============================================================================

// Log prints a message (useful for documenting test steps)
func (s *TestShell) Log(msg string) *TestShell {
	s.t.Log(msg)
	return s
}

// =============================================================================
// Utility Functions
// =============================================================================

// splitArgs splits a command string into args, respecting quotes
func splitArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)

	for _, r := range s {
		switch {
		case r == '"' || r == '\'':
			switch {
			case inQuote && r == quoteChar:
				inQuote = false
			case !inQuote:
				inQuote = true
				quoteChar = r
			default:
				current.WriteRune(r)
			}
		case r == ' ' && !inQuote:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

// countNonEmptyLines counts lines that have non-whitespace content
func countNonEmptyLines(s string) int {
	count := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
