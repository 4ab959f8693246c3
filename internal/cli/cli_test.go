package cli_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vaultsync.dev/vaultsync/internal/actions"
	"vaultsync.dev/vaultsync/testhelpers"
)

// runVaultsync runs the binary against dir and returns its combined output
// and exit code
func runVaultsync(t *testing.T, dir string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(getVaultsyncBinary(t), append([]string{"--vault-path", dir, "--log-file", "-"}, args...)...)
	cmd.Env = testhelpers.BinaryEnv(t.TempDir())
	output, err := cmd.CombinedOutput()
	if exitErr, ok := err.(*exec.ExitError); ok {
		return string(output), exitErr.ExitCode()
	}
	require.NoError(t, err, "failed to run vaultsync: %s", string(output))
	return string(output), 0
}

func TestInitCommand(t *testing.T) {
	t.Parallel()

	t.Run("initializes a new vault", func(t *testing.T) {
		t.Parallel()
		dir := testhelpers.NewVaultDir(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Welcome.md"), []byte("# Welcome\n"), 0o644))

		output, code := runVaultsync(t, dir, "init")
		require.Equal(t, 0, code, output)
		require.FileExists(t, filepath.Join(dir, ".gitignore"))

		repo := &testhelpers.GitRepo{Dir: dir}
		msg, err := repo.LastCommitMessage()
		require.NoError(t, err)
		require.Equal(t, actions.InitialCommitMessage, msg)
	})

	t.Run("no commit and no gitignore", func(t *testing.T) {
		t.Parallel()
		dir := testhelpers.NewVaultDir(t)

		output, code := runVaultsync(t, dir, "init", "--gitignore=false", "--no-commit")
		require.Equal(t, 0, code, output)
		require.NoFileExists(t, filepath.Join(dir, ".gitignore"))
		require.DirExists(t, filepath.Join(dir, ".git"))
	})
}

func TestStatusCommand(t *testing.T) {
	t.Parallel()

	t.Run("reports not a repository", func(t *testing.T) {
		t.Parallel()
		output, code := runVaultsync(t, testhelpers.NewVaultDir(t), "status")
		require.Equal(t, 1, code)
		require.Contains(t, output, "is not a git repository")
		require.Contains(t, output, "vaultsync init")
	})

	t.Run("clean vault", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)

		output, code := runVaultsync(t, scene.Dir, "status")
		require.Equal(t, 0, code, output)
		require.Contains(t, output, "No uncommitted changes")
	})
}

func TestSyncCommand(t *testing.T) {
	t.Parallel()

	t.Run("round trip between two devices", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
		other := scene.CloneRemote(t, "origin")

		require.NoError(t, scene.Repo.WriteFile("Daily/monday.md", "laptop"))
		output, code := runVaultsync(t, scene.Dir, "sync", "-m", "laptop backup")
		require.Equal(t, 0, code, output)

		output, code = runVaultsync(t, other.Dir, "pull")
		require.Equal(t, 0, code, output)
		content, err := other.ReadFile("Daily/monday.md")
		require.NoError(t, err)
		require.Equal(t, "laptop", content)

		msg, err := other.LastCommitMessage()
		require.NoError(t, err)
		require.Equal(t, "laptop backup", msg)
	})

	t.Run("conflict exits with code 2 and keeps local notes", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
		other := scene.CloneRemote(t, "origin")
		require.NoError(t, other.CommitFile("1_note.md", "phone", "phone edit"))
		require.NoError(t, other.PushBranch("origin", "main"))

		require.NoError(t, scene.Repo.CommitFile("1_note.md", "laptop", "laptop edit"))
		before, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)

		output, code := runVaultsync(t, scene.Dir, "sync")
		require.Equal(t, 2, code, output)
		require.Contains(t, output, "1_note.md")

		after, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		require.Equal(t, before, after)
		require.False(t, scene.Repo.RebaseInProgress())
	})
}

func TestSetupRemoteCommand(t *testing.T) {
	t.Parallel()

	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

	output, code := runVaultsync(t, scene.Dir, "setup-remote", "https://github.com/owner/vault.git", "--auth", "ssh")
	require.Equal(t, 0, code, output)
	url, err := scene.Repo.RunGitCommandAndGetOutput("remote", "get-url", "origin")
	require.NoError(t, err)
	require.Equal(t, "git@github.com:owner/vault.git", url)

	output, code = runVaultsync(t, scene.Dir, "setup-remote", "not a url")
	require.Equal(t, 1, code, output)

	output, code = runVaultsync(t, scene.Dir, "setup-remote")
	require.Equal(t, 1, code)
	require.Contains(t, output, "a remote URL is required")
}

func TestInfoCommand(t *testing.T) {
	t.Parallel()

	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	cmd := exec.Command(getVaultsyncBinary(t), "--vault-path", scene.Dir, "--log-file", "-", "info", "--json")
	cmd.Env = testhelpers.BinaryEnv(t.TempDir())
	output, err := cmd.Output()
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal(output, &report))
	require.Contains(t, report, "Environment")
	require.Contains(t, report, "Remotes")
}

func TestDoctorCommand(t *testing.T) {
	t.Parallel()

	dir := testhelpers.NewVaultDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Welcome.md"), []byte("# Welcome\n"), 0o644))

	output, code := runVaultsync(t, dir, "doctor", "--offline")
	require.Equal(t, 1, code, output)
	require.Contains(t, output, "vaultsync doctor --fix")

	output, code = runVaultsync(t, dir, "doctor", "--offline", "--fix")
	require.Equal(t, 0, code, output)
	require.DirExists(t, filepath.Join(dir, ".git"))
	require.FileExists(t, filepath.Join(dir, ".gitignore"))
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := exec.Command(getVaultsyncBinary(t), "version")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err)
	require.Contains(t, string(output), "vaultsync dev")
}
