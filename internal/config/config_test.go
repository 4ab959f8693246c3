package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vaultsync.dev/vaultsync/internal/config"
	"vaultsync.dev/vaultsync/internal/git"
)

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		require.Equal(t, config.DefaultRemoteName, cfg.RemoteName)
		require.Equal(t, config.DefaultBranch, cfg.DefaultBranch)
		require.Equal(t, git.BackendAuto, cfg.BackendKind())
		require.Equal(t, config.DefaultIdentityName, cfg.Identity.Name)
		require.Equal(t, config.DefaultLockTimeout, cfg.LockTimeout)
	})

	t.Run("reads yaml values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `remote_name: backup
default_branch: trunk
backend: cli
auth_method: ssh
identity:
  name: Me
  email: me@example.com
command_timeout: 45s
lock_timeout: 2s
gitignore:
  extra_patterns:
    - "*.secret"
plugin:
  interval_minutes: 5
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, "backup", cfg.RemoteName)
		require.Equal(t, "trunk", cfg.DefaultBranch)
		require.Equal(t, git.BackendCLI, cfg.BackendKind())
		require.Equal(t, "ssh", cfg.AuthMethod)
		require.Equal(t, config.Identity{Name: "Me", Email: "me@example.com"}, cfg.Identity)
		require.Equal(t, 45*time.Second, cfg.CommandTimeout)
		require.Equal(t, 2*time.Second, cfg.LockTimeout)
		require.Equal(t, []string{"*.secret"}, cfg.Gitignore.ExtraPatterns)
		require.Equal(t, 5, cfg.Plugin.IntervalMinutes)
		require.Equal(t, config.DefaultPluginCommitMsg, cfg.Plugin.CommitMessage)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("remote_name: backup\n"), 0600))

		t.Setenv(config.EnvRemoteName, "mirror")
		t.Setenv(config.EnvLockTimeout, "3s")
		t.Setenv(config.EnvBackend, "go-git")

		cfg, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, "mirror", cfg.RemoteName)
		require.Equal(t, 3*time.Second, cfg.LockTimeout)
		require.Equal(t, git.BackendGoGit, cfg.BackendKind())
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("backend: svn\n"), 0600))
		_, err := config.Load(path)
		require.Error(t, err)

		require.NoError(t, os.WriteFile(path, []byte("auth_method: carrier-pigeon\n"), 0600))
		_, err = config.Load(path)
		require.Error(t, err)

		require.NoError(t, os.WriteFile(path, []byte("{{{{invalid yaml"), 0600))
		_, err = config.Load(path)
		require.Error(t, err)

		require.NoError(t, os.WriteFile(path, []byte(""), 0600))
		t.Setenv(config.EnvCommandTimeout, "soon")
		_, err = config.Load(path)
		require.Error(t, err)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := config.Default()
	cfg.RemoteName = "backup"
	cfg.LockTimeout = 5 * time.Second
	require.NoError(t, cfg.Save(path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(config.EnvConfigPath, "/tmp/custom.yaml")
	require.Equal(t, "/tmp/custom.yaml", config.DefaultPath())
}
