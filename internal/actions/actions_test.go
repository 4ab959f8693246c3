package actions_test

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vaultsync.dev/vaultsync/internal/actions"
	"vaultsync.dev/vaultsync/internal/config"
	"vaultsync.dev/vaultsync/internal/engine"
	syncerrors "vaultsync.dev/vaultsync/internal/errors"
	"vaultsync.dev/vaultsync/internal/lock"
	"vaultsync.dev/vaultsync/internal/runtime"
	"vaultsync.dev/vaultsync/internal/tui"
	"vaultsync.dev/vaultsync/internal/vault"
	"vaultsync.dev/vaultsync/testhelpers"
	"vaultsync.dev/vaultsync/testhelpers/scenario"
)

func initAction(opts actions.InitOptions) func(*runtime.Context) error {
	return func(ctx *runtime.Context) error { return actions.InitAction(ctx, opts) }
}

func syncAction(fn func(*runtime.Context, actions.SyncOptions) error, opts actions.SyncOptions) func(*runtime.Context) error {
	opts.NoProgress = true
	return func(ctx *runtime.Context) error { return fn(ctx, opts) }
}

func TestInitAction(t *testing.T) {
	t.Parallel()

	t.Run("new vault gets gitignore and initial commit", func(t *testing.T) {
		t.Parallel()
		s := scenario.NewVaultScenario(t).
			WithNote("Welcome.md", "# Welcome\n").
			Run(initAction(actions.InitOptions{Gitignore: true, Commit: true}))

		s.ExpectFile(".gitignore").
			ExpectHeadMessage(actions.InitialCommitMessage).
			ExpectClean().
			OutputContains("Created initial commit").
			OutputContains("vaultsync setup-remote")
	})

	t.Run("existing repository is left alone", func(t *testing.T) {
		t.Parallel()
		s := scenario.NewScenario(t, testhelpers.BasicSceneSetup)
		before, err := s.Repo.GetRevision("HEAD")
		require.NoError(t, err)

		s.Run(initAction(actions.InitOptions{Gitignore: true, Commit: true})).
			OutputContains("already a git repository").
			ExpectFile(".gitignore")

		after, err := s.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		require.Equal(t, before, after)
	})

	t.Run("existing gitignore is kept", func(t *testing.T) {
		t.Parallel()
		scenario.NewVaultScenario(t).
			WithNote(".gitignore", "custom\n").
			Run(initAction(actions.InitOptions{Gitignore: true})).
			ExpectNote(".gitignore", "custom\n").
			OutputContains("--overwrite")
	})

	t.Run("without gitignore", func(t *testing.T) {
		t.Parallel()
		scenario.NewVaultScenario(t).
			Run(initAction(actions.InitOptions{})).
			ExpectFile(".git/HEAD").
			ExpectNoFile(".gitignore")
	})
}

func TestStatusAction(t *testing.T) {
	t.Parallel()

	t.Run("not a repository", func(t *testing.T) {
		t.Parallel()
		s := scenario.NewVaultScenario(t)

		err := s.RunExpectError(func(ctx *runtime.Context) error {
			return actions.StatusAction(ctx, actions.StatusOptions{})
		})
		require.True(t, syncerrors.IsKind(err, syncerrors.NotARepository))
		require.Equal(t, 1, actions.ExitCode(err))
	})

	t.Run("lists changes", func(t *testing.T) {
		t.Parallel()
		s := scenario.NewScenario(t, testhelpers.RemoteSceneSetup).
			WithNote("1_note.md", "edited").
			WithNote("Inbox/idea.md", "new").
			Run(func(ctx *runtime.Context) error {
				return actions.StatusAction(ctx, actions.StatusOptions{Fetch: true})
			})

		s.OutputContains("main").
			OutputContains("Tracking: origin/main").
			OutputContains(s.Scene.RemoteDir("origin")).
			OutputContains("Modified files (1):").
			OutputContains("Untracked files (1):")
	})

	t.Run("clean", func(t *testing.T) {
		t.Parallel()
		scenario.NewScenario(t, testhelpers.RemoteSceneSetup).
			Run(func(ctx *runtime.Context) error {
				return actions.StatusAction(ctx, actions.StatusOptions{})
			}).
			OutputContains("No uncommitted changes")
	})
}

func TestSyncActions(t *testing.T) {
	t.Parallel()

	t.Run("sync pushes local edits", func(t *testing.T) {
		t.Parallel()
		s := scenario.NewScenario(t, testhelpers.RemoteSceneSetup).
			WithNote("Daily/today.md", "notes").
			Run(syncAction(actions.SyncAction, actions.SyncOptions{Message: "vault backup"})).
			ExpectHeadMessage("vault backup").
			ExpectClean()

		other := s.Scene.CloneRemote(t, "origin")
		testhelpers.ExpectNote(t, other, "Daily/today.md", "notes")
	})

	t.Run("pull brings remote edits", func(t *testing.T) {
		t.Parallel()
		s := scenario.NewScenario(t, testhelpers.RemoteSceneSetup)
		other := s.Scene.CloneRemote(t, "origin")
		require.NoError(t, other.CommitFile("from-phone.md", "hello", "phone edit"))
		require.NoError(t, other.PushBranch("origin", "main"))

		s.Run(syncAction(actions.PullAction, actions.SyncOptions{})).
			ExpectNote("from-phone.md", "hello").
			OutputContains("Pulled 1 commit(s)")
	})

	t.Run("sync reports a conflict and keeps local work", func(t *testing.T) {
		t.Parallel()
		s := scenario.NewScenario(t, testhelpers.RemoteSceneSetup)
		other := s.Scene.CloneRemote(t, "origin")
		require.NoError(t, other.CommitFile("1_note.md", "phone", "phone edit"))
		require.NoError(t, other.PushBranch("origin", "main"))
		s.WithCommittedNote("1_note.md", "laptop", "laptop edit")

		err := s.RunExpectError(syncAction(actions.SyncAction, actions.SyncOptions{}))
		require.Equal(t, 2, actions.ExitCode(err))
		s.ExpectNote("1_note.md", "laptop").
			ExpectHeadMessage("laptop edit").
			ExpectClean()
	})

	t.Run("commit without changes", func(t *testing.T) {
		t.Parallel()
		scenario.NewScenario(t, testhelpers.BasicSceneSetup).
			Run(syncAction(actions.CommitAction, actions.SyncOptions{})).
			OutputContains("Nothing to commit")
	})

	t.Run("push without remote fails", func(t *testing.T) {
		t.Parallel()
		s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
			WithNote("1_note.md", "edited")

		err := s.RunExpectError(syncAction(actions.PushAction, actions.SyncOptions{}))
		require.ErrorIs(t, err, syncerrors.ErrNoRemote)
	})
}

func TestSetupRemoteAction(t *testing.T) {
	t.Parallel()

	t.Run("converts to the requested method", func(t *testing.T) {
		t.Parallel()
		s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
			Run(func(ctx *runtime.Context) error {
				return actions.SetupRemoteAction(ctx, actions.SetupRemoteOptions{
					URL:  "git@github.com:owner/vault.git",
					Auth: "https",
				})
			}).
			OutputContains("credential.helper")

		url, err := s.Repo.RunGitCommandAndGetOutput("remote", "get-url", "origin")
		require.NoError(t, err)
		require.Equal(t, "https://github.com/owner/vault.git", url)
	})

	t.Run("missing url without prompts", func(t *testing.T) {
		t.Parallel()
		err := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
			RunExpectError(func(ctx *runtime.Context) error {
				return actions.SetupRemoteAction(ctx, actions.SetupRemoteOptions{})
			})
		require.EqualError(t, err, "a remote URL is required")
	})

	t.Run("invalid auth method", func(t *testing.T) {
		t.Parallel()
		scenario.NewScenario(t, testhelpers.BasicSceneSetup).
			RunExpectError(func(ctx *runtime.Context) error {
				return actions.SetupRemoteAction(ctx, actions.SetupRemoteOptions{
					URL:  "git@github.com:owner/vault.git",
					Auth: "token",
				})
			})
	})
}

func TestInfoActionJSON(t *testing.T) {
	t.Parallel()

	s := scenario.NewScenario(t, testhelpers.RemoteSceneSetup).
		Run(func(ctx *runtime.Context) error {
			return actions.InfoAction(ctx, actions.InfoOptions{JSON: true})
		})

	var report struct {
		Vault struct {
			MarkdownFiles int
			HasGit        bool
		}
		Status struct {
			IsGitRepo bool
			Branch    string
		}
		Remotes []struct {
			Name       string
			AuthMethod string
		}
	}
	require.NoError(t, json.Unmarshal(s.Out.Bytes(), &report))
	require.Equal(t, 1, report.Vault.MarkdownFiles)
	require.True(t, report.Vault.HasGit)
	require.True(t, report.Status.IsGitRepo)
	require.Equal(t, "main", report.Status.Branch)
	require.Len(t, report.Remotes, 1)
	require.Equal(t, "origin", report.Remotes[0].Name)
}

func TestPluginAction(t *testing.T) {
	t.Parallel()

	s := scenario.NewVaultScenario(t).
		Run(func(ctx *runtime.Context) error {
			return actions.PluginAction(ctx, actions.PluginOptions{})
		})

	settings, err := vault.ReadPluginSettings(s.Dir)
	require.NoError(t, err)
	require.Equal(t, config.DefaultPluginInterval, settings.AutoBackupInterval)
	s.OutputContains(vault.PluginDataPath(s.Dir))

	s.Run(func(ctx *runtime.Context) error {
		return actions.PluginAction(ctx, actions.PluginOptions{IntervalMinutes: 5, CommitMessage: "backup {{date}}"})
	})
	settings, err = vault.ReadPluginSettings(s.Dir)
	require.NoError(t, err)
	require.Equal(t, 5, settings.AutoBackupInterval)
	require.Equal(t, "backup {{date}}", settings.CommitMessage)
}

func newSplog(t *testing.T) (*tui.Splog, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	splog, err := tui.NewSplogWithOptions(tui.SplogOptions{Out: out, ErrOut: errOut})
	require.NoError(t, err)
	return splog, out, errOut
}

func TestReportError(t *testing.T) {
	t.Parallel()

	t.Run("conflict lists files and remediation", func(t *testing.T) {
		t.Parallel()
		splog, out, errOut := newSplog(t)
		err := syncerrors.NewSyncError(syncerrors.MergeConflict, engine.OpPull, "Merge conflicts detected",
			syncerrors.NewUnmergedPathsError([]string{"Daily/2024-01-01.md"}))

		actions.ReportError(splog, err)
		require.Contains(t, errOut.String(), "pull failed: Merge conflicts detected")
		require.Contains(t, out.String(), "Daily/2024-01-01.md")
		require.Contains(t, out.String(), syncerrors.MergeConflict.Remediation())
	})

	t.Run("lock timeout", func(t *testing.T) {
		t.Parallel()
		splog, out, errOut := newSplog(t)

		actions.ReportError(splog, &lock.TimeoutError{Path: "/vault/.git/vaultsync.lock", Timeout: time.Second})
		require.Contains(t, errOut.String(), "another sync is running")
		require.Contains(t, out.String(), "try again")
	})

	t.Run("nil prints nothing", func(t *testing.T) {
		t.Parallel()
		splog, out, errOut := newSplog(t)

		actions.ReportError(splog, nil)
		require.Empty(t, out.String())
		require.Empty(t, errOut.String())
	})
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, actions.ExitCode(nil))
	require.Equal(t, 1, actions.ExitCode(os.ErrNotExist))
	require.Equal(t, 2, actions.ExitCode(syncerrors.NewSyncError(syncerrors.MergeConflict, engine.OpPull, "conflict", nil)))
	require.Equal(t, 1, actions.ExitCode(syncerrors.NewSyncError(syncerrors.PushRejected, engine.OpPush, "rejected", nil)))
	require.Equal(t, 3, actions.ExitCode(&lock.TimeoutError{Path: "x", Timeout: time.Second}))
}
