package git_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	syncerrors "vaultsync.dev/vaultsync/internal/errors"
	"vaultsync.dev/vaultsync/internal/git"
	"vaultsync.dev/vaultsync/testhelpers"
)

func backends() map[string]git.Backend {
	cli := git.NewCLIBackend(git.NewCommandRunner("", testhelpers.GitEnv...))
	return map[string]git.Backend{
		"cli":    cli,
		"go-git": git.NewGoGitBackend(cli),
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, b git.Backend)) {
	for name, b := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fn(t, b)
		})
	}
}

func TestBackendInitAndIsRepo(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b git.Backend) {
		ctx := context.Background()
		dir := testhelpers.NewVaultDir(t)

		isRepo, err := b.IsRepo(ctx, dir)
		require.NoError(t, err)
		require.False(t, isRepo)

		isRepo, err = b.IsRepo(ctx, filepath.Join(dir, "missing"))
		require.NoError(t, err)
		require.False(t, isRepo)

		require.NoError(t, b.Init(ctx, dir, "main"))

		isRepo, err = b.IsRepo(ctx, dir)
		require.NoError(t, err)
		require.True(t, isRepo)

		status, err := b.Status(ctx, dir)
		require.NoError(t, err)
		require.Equal(t, "main", status.Branch)
		require.True(t, status.Unborn())
		require.Empty(t, status.Entries)
	})
}

func TestBackendStatusEntries(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b git.Backend) {
		ctx := context.Background()
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			if err := s.Repo.CommitFile("tracked.md", "one", "add tracked"); err != nil {
				return err
			}
			return s.Repo.CommitFile("doomed.md", "bye", "add doomed")
		})

		require.NoError(t, scene.Repo.WriteFile("tracked.md", "two"))
		require.NoError(t, scene.Repo.WriteFile("fresh.md", "new"))
		require.NoError(t, os.Remove(filepath.Join(scene.Dir, "doomed.md")))
		require.NoError(t, scene.Repo.CreateChange("staged", "staged", false))

		status, err := b.Status(ctx, scene.Dir)
		require.NoError(t, err)
		require.Equal(t, "main", status.Branch)
		require.False(t, status.Unborn())

		byPath := map[string]git.StatusEntry{}
		for _, e := range status.Entries {
			byPath[e.Path] = e
		}
		require.True(t, byPath["tracked.md"].IsModified())
		require.True(t, byPath["doomed.md"].IsModified())
		require.True(t, byPath["fresh.md"].Untracked)
		require.True(t, byPath["staged_note.md"].IsStaged())
		require.True(t, status.HasTrackedChanges())
	})
}

func TestBackendStageAllAndCommit(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b git.Backend) {
		ctx := context.Background()
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CommitFile("old.md", "old", "initial")
		})

		require.NoError(t, scene.Repo.WriteFile("notes/new.md", "hello"))
		require.NoError(t, os.Remove(filepath.Join(scene.Dir, "old.md")))

		require.NoError(t, b.StageAll(ctx, scene.Dir))

		status, err := b.Status(ctx, scene.Dir)
		require.NoError(t, err)
		require.True(t, status.HasStaged())
		for _, e := range status.Entries {
			require.False(t, e.Untracked, e.Path)
			require.False(t, e.IsModified(), e.Path)
		}

		sha, err := b.Commit(ctx, scene.Dir, "sync notes")
		require.NoError(t, err)

		head, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		require.Equal(t, head, sha)

		msg, err := scene.Repo.LastCommitMessage()
		require.NoError(t, err)
		require.Equal(t, "sync notes", msg)

		status, err = b.Status(ctx, scene.Dir)
		require.NoError(t, err)
		require.Empty(t, status.Entries)
	})
}

func TestBackendRemotes(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b git.Backend) {
		ctx := context.Background()
		scene := testhelpers.NewScene(t, nil)

		_, ok, err := b.GetRemote(ctx, scene.Dir, "origin")
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, b.SetRemote(ctx, scene.Dir, "origin", "git@github.com:me/vault.git"))
		url, ok, err := b.GetRemote(ctx, scene.Dir, "origin")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "git@github.com:me/vault.git", url)

		require.NoError(t, b.SetRemote(ctx, scene.Dir, "origin", "https://github.com/me/vault.git"))
		url, _, err = b.GetRemote(ctx, scene.Dir, "origin")
		require.NoError(t, err)
		require.Equal(t, "https://github.com/me/vault.git", url)

		remotes, err := b.ListRemotes(ctx, scene.Dir)
		require.NoError(t, err)
		require.Equal(t, []git.Remote{{Name: "origin", URL: "https://github.com/me/vault.git"}}, remotes)
	})
}

func TestBackendConfig(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b git.Backend) {
		ctx := context.Background()
		dir := testhelpers.NewVaultDir(t)
		require.NoError(t, b.Init(ctx, dir, "main"))

		_, ok, err := b.GetConfig(ctx, dir, "user.name")
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, b.SetConfig(ctx, dir, "user.name", "Vault Owner"))
		value, ok, err := b.GetConfig(ctx, dir, "user.name")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "Vault Owner", value)

		require.NoError(t, b.SetConfig(ctx, dir, "branch.main.rebase", "true"))
		value, ok, err = b.GetConfig(ctx, dir, "branch.main.rebase")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "true", value)
	})
}

func TestBackendFetchPushAheadBehind(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b git.Backend) {
		ctx := context.Background()
		scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)

		other := scene.CloneRemote(t, "origin")
		require.NoError(t, other.CommitFile("remote.md", "from elsewhere", "remote edit"))
		require.NoError(t, other.RunGitCommand("push", "origin", "main"))

		require.NoError(t, scene.Repo.CommitFile("local.md", "local", "local edit"))
		require.NoError(t, b.Fetch(ctx, scene.Dir, "origin"))

		exists, err := b.RefExists(ctx, scene.Dir, "origin/main")
		require.NoError(t, err)
		require.True(t, exists)

		exists, err = b.RefExists(ctx, scene.Dir, "origin/missing")
		require.NoError(t, err)
		require.False(t, exists)

		ahead, behind, err := b.AheadBehind(ctx, scene.Dir, "HEAD", "origin/main")
		require.NoError(t, err)
		require.Equal(t, 1, ahead)
		require.Equal(t, 1, behind)

		status, err := b.Status(ctx, scene.Dir)
		require.NoError(t, err)
		require.Equal(t, "origin/main", status.Upstream)
		require.Equal(t, 1, status.Ahead)
		require.Equal(t, 1, status.Behind)

		_, err = b.Push(ctx, scene.Dir, "origin", "main", false)
		require.Error(t, err)
		require.Equal(t, syncerrors.PushRejected, syncerrors.Classify("push", err).Kind)
	})
}

func TestBackendPullRebaseConflict(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b git.Backend) {
		ctx := context.Background()
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			if err := s.Repo.CommitFile("shared.md", "base\n", "base"); err != nil {
				return err
			}
			if _, err := s.Repo.CreateBareRemote("origin"); err != nil {
				return err
			}
			return s.Repo.PushBranch("origin", "main")
		})

		other := scene.CloneRemote(t, "origin")
		require.NoError(t, other.CommitFile("shared.md", "theirs\n", "their edit"))
		require.NoError(t, other.RunGitCommand("push", "origin", "main"))

		require.NoError(t, scene.Repo.CommitFile("shared.md", "ours\n", "our edit"))
		before, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)

		result, err := b.Pull(ctx, scene.Dir, "origin", "main", true)
		require.NoError(t, err)
		require.Equal(t, git.PullConflict, result)
		require.True(t, scene.Repo.RebaseInProgress())

		require.NoError(t, b.AbortRebase(ctx, scene.Dir))
		require.False(t, scene.Repo.RebaseInProgress())

		after, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		require.Equal(t, before, after)

		content, err := scene.Repo.ReadFile("shared.md")
		require.NoError(t, err)
		require.Equal(t, "ours\n", content)

		// aborting again is a no-op
		require.NoError(t, b.AbortRebase(ctx, scene.Dir))
	})
}

func TestBackendCleanRepository(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b git.Backend) {
		ctx := context.Background()
		scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)

		status, err := b.Status(ctx, scene.Dir)
		require.NoError(t, err)
		require.Empty(t, status.Entries)
		require.Empty(t, status.UnmergedPaths())
		require.False(t, status.HasTrackedChanges())
		require.False(t, status.HasStaged())

		branch, err := scene.Repo.CurrentBranchName()
		require.NoError(t, err)
		require.Equal(t, branch, status.Branch)

		gitDir, err := b.GitDir(ctx, scene.Dir)
		require.NoError(t, err)
		want, err := filepath.EvalSymlinks(filepath.Join(scene.Dir, ".git"))
		require.NoError(t, err)
		got, err := filepath.EvalSymlinks(gitDir)
		require.NoError(t, err)
		require.Equal(t, want, got)
	})
}

func TestBackendPullMergeConflict(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b git.Backend) {
		ctx := context.Background()
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			if err := s.Repo.CommitFile("shared.md", "base\n", "base"); err != nil {
				return err
			}
			if err := s.Repo.CommitFile("other.md", "untouched\n", "other"); err != nil {
				return err
			}
			if _, err := s.Repo.CreateBareRemote("origin"); err != nil {
				return err
			}
			return s.Repo.PushBranch("origin", "main")
		})

		other := scene.CloneRemote(t, "origin")
		require.NoError(t, other.CommitFile("shared.md", "theirs\n", "their edit"))
		require.NoError(t, other.RunGitCommand("push", "origin", "main"))
		require.NoError(t, scene.Repo.CommitFile("shared.md", "ours\n", "our edit"))

		result, err := b.Pull(ctx, scene.Dir, "origin", "main", false)
		require.NoError(t, err)
		require.Equal(t, git.PullConflict, result)
		require.False(t, scene.Repo.RebaseInProgress())

		status, err := b.Status(ctx, scene.Dir)
		require.NoError(t, err)
		require.Equal(t, []string{"shared.md"}, status.UnmergedPaths())

		// the merge is not a rebase, so it survives an abort
		require.NoError(t, b.AbortRebase(ctx, scene.Dir))
		gitDir, err := b.GitDir(ctx, scene.Dir)
		require.NoError(t, err)
		require.FileExists(t, filepath.Join(gitDir, "MERGE_HEAD"))

		status, err = b.Status(ctx, scene.Dir)
		require.NoError(t, err)
		require.Equal(t, []string{"shared.md"}, status.UnmergedPaths())

		ahead, err := scene.Repo.GetCommitCount("origin/main", "HEAD")
		require.NoError(t, err)
		require.Equal(t, 1, ahead)
	})
}

func TestBackendPullFastForward(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b git.Backend) {
		ctx := context.Background()
		scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)

		result, err := b.Pull(ctx, scene.Dir, "origin", "main", true)
		require.NoError(t, err)
		require.Equal(t, git.PullUnneeded, result)

		other := scene.CloneRemote(t, "origin")
		require.NoError(t, other.CommitFile("remote.md", "hi", "remote edit"))
		require.NoError(t, other.RunGitCommand("push", "origin", "main"))

		result, err = b.Pull(ctx, scene.Dir, "origin", "main", true)
		require.NoError(t, err)
		require.Equal(t, git.PullDone, result)

		content, err := scene.Repo.ReadFile("remote.md")
		require.NoError(t, err)
		require.Equal(t, "hi", content)

		pushed, err := b.Push(ctx, scene.Dir, "origin", "main", false)
		require.NoError(t, err)
		require.Equal(t, git.PushUpToDate, pushed)
	})
}

func TestNewBackend(t *testing.T) {
	t.Run("selects implementations", func(t *testing.T) {
		b, err := git.NewBackend(git.BackendCLI)
		require.NoError(t, err)
		require.Equal(t, "cli", b.Name())

		b, err = git.NewBackend(git.BackendAuto)
		require.NoError(t, err)
		require.Equal(t, "go-git", b.Name())
	})

	t.Run("parses kinds", func(t *testing.T) {
		kind, err := git.ParseBackendKind("GoGit")
		require.NoError(t, err)
		require.Equal(t, git.BackendGoGit, kind)

		kind, err = git.ParseBackendKind("")
		require.NoError(t, err)
		require.Equal(t, git.BackendAuto, kind)

		_, err = git.ParseBackendKind("svn")
		require.Error(t, err)
	})
}
