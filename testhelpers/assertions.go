// Package testhelpers provides testing utilities for vaultsync, including a
// scene system, Git repository helpers, fakes, and custom assertions.
package testhelpers

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value. This is useful for test setup code
// where errors are not expected and should halt execution immediately.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectNote asserts that the vault holds name with exactly content.
func ExpectNote(t *testing.T, repo *GitRepo, name, content string) {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(repo.Dir, name))
	require.NoError(t, err, "Note %s is missing", name)
	require.Equal(t, content, string(data), "Note %s does not match", name)
}

// ExpectClean asserts that the work tree has nothing to commit and no
// rebase is in progress.
func ExpectClean(t *testing.T, repo *GitRepo) {
	t.Helper()

	output, err := repo.RunGitCommandAndGetOutput("status", "--porcelain")
	require.NoError(t, err, "Failed to read status")
	require.Empty(t, output, "Work tree is not clean")
	require.False(t, repo.RebaseInProgress(), "Rebase still in progress")
}

// ExpectInSync asserts that HEAD is the commit branch points to in the bare
// repository remoteDir.
func ExpectInSync(t *testing.T, repo *GitRepo, remoteDir, branch string) {
	t.Helper()

	head, err := repo.GetRevision("HEAD")
	require.NoError(t, err)

	cmd := exec.Command("git", "--git-dir", remoteDir, "rev-parse", branch)
	cmd.Env = append(os.Environ(), GitEnv...)
	output, err := cmd.Output()
	require.NoError(t, err, "Failed to resolve %s in %s", branch, remoteDir)
	require.Equal(t, strings.TrimSpace(string(output)), head, "Vault is not in sync with the remote")
}

// ExpectCommits asserts that the newest commits reachable from rev have the
// expected messages, newest first.
func ExpectCommits(t *testing.T, repo *GitRepo, rev string, expected []string) {
	t.Helper()

	cmd := exec.Command("git", "-C", repo.Dir,
		"log", "--format=%s", rev)
	cmd.Env = append(os.Environ(), GitEnv...)
	output, err := cmd.Output()
	require.NoError(t, err, "Failed to list commits")

	filtered := []string{}
	for _, c := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		c = strings.TrimSpace(c)
		if c != "" {
			filtered = append(filtered, c)
		}
	}

	// Compare only the first N commits where N is the length of expected
	if len(filtered) < len(expected) {
		require.Fail(t, "Not enough commits", "Expected %d commits, got %d", len(expected), len(filtered))
		return
	}

	require.Equal(t, expected, filtered[:len(expected)], "Commits do not match")
}
