package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"vaultsync.dev/vaultsync/internal/engine"
	syncerrors "vaultsync.dev/vaultsync/internal/errors"
	"vaultsync.dev/vaultsync/internal/git"
	"vaultsync.dev/vaultsync/testhelpers"
)

// forEachBackend runs fn against the CLI backend and the default backend
// that NewBackend picks for a fresh configuration.
func forEachBackend(t *testing.T, fn func(t *testing.T, b git.Backend)) {
	auto := testhelpers.Must(git.NewBackend(git.BackendAuto, testhelpers.GitEnv...))

	for name, b := range map[string]git.Backend{"cli": cliBackend(), "auto": auto} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fn(t, b)
		})
	}
}

func conflictingScene(t *testing.T) *testhelpers.Scene {
	t.Helper()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	other := scene.CloneRemote(t, "origin")
	require.NoError(t, other.CommitFile("1_note.md", "other device\n", "remote edit"))
	require.NoError(t, other.PushBranch("origin", "main"))
	require.NoError(t, scene.Repo.CommitFile("1_note.md", "this device\n", "local edit"))
	return scene
}

func TestBackendsCleanRepository(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b git.Backend) {
		ctx := context.Background()
		scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
		e := newEngine(b, engine.Options{})

		status, err := e.GetStatus(ctx, scene.Dir)
		require.NoError(t, err)
		require.True(t, status.HasCommits)
		require.False(t, status.HasConflicts)
		require.Empty(t, status.ConflictedFiles)
		require.True(t, status.IsClean())

		out, err := e.CommitAll(ctx, scene.Dir, "", false)
		require.NoError(t, err)
		require.True(t, out.Success)
		require.False(t, out.Committed)

		out, err = e.QuickSync(ctx, scene.Dir, "")
		require.NoError(t, err)
		require.True(t, out.Success)
		require.True(t, out.Pushed)
	})
}

func TestBackendsEmptyRepository(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b git.Backend) {
		ctx := context.Background()
		dir := testhelpers.NewVaultDir(t)
		e := newEngine(b, engine.Options{})

		result, err := e.InitRepo(ctx, dir)
		require.NoError(t, err)
		require.True(t, result.Created)

		result, err = e.InitRepo(ctx, dir)
		require.NoError(t, err)
		require.False(t, result.Created)
		require.True(t, result.AlreadyInitialized)

		status, err := e.GetStatus(ctx, dir)
		require.NoError(t, err)
		require.True(t, status.IsGitRepo)
		require.False(t, status.HasCommits)
		require.Equal(t, "main", status.Branch)
		require.Zero(t, status.CommitsAhead)
		require.Zero(t, status.CommitsBehind)
		require.False(t, status.HasConflicts)
	})
}

func TestBackendsSyncRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b git.Backend) {
		ctx := context.Background()
		scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
		other := scene.CloneRemote(t, "origin")
		e := newEngine(b, engine.Options{})

		require.NoError(t, other.CommitFile("remote.md", "remote", "remote change"))
		require.NoError(t, other.PushBranch("origin", "main"))
		require.NoError(t, scene.Repo.WriteFile("local.md", "local"))

		out, err := e.QuickSync(ctx, scene.Dir, "sync")
		require.NoError(t, err)
		require.True(t, out.Pulled)
		require.True(t, out.Committed)
		require.True(t, out.Pushed)

		testhelpers.ExpectClean(t, scene.Repo)
		testhelpers.ExpectInSync(t, scene.Repo, scene.RemoteDir("origin"), "main")
	})
}

func TestBackendsRebaseConflictIsAborted(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b git.Backend) {
		ctx := context.Background()
		scene := conflictingScene(t)
		e := newEngine(b, engine.Options{})

		before, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)

		out, err := e.QuickSync(ctx, scene.Dir, "sync")
		require.True(t, syncerrors.IsKind(err, syncerrors.MergeConflict))
		require.False(t, out.Pushed)

		after, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		require.Equal(t, before, after)
		require.False(t, scene.Repo.RebaseInProgress())

		status, err := e.GetStatus(ctx, scene.Dir)
		require.NoError(t, err)
		require.False(t, status.HasConflicts)
		require.True(t, status.IsClean())
	})
}

func TestBackendsMergeConflictIsLeftInPlace(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b git.Backend) {
		ctx := context.Background()
		scene := conflictingScene(t)
		e := newEngine(b, engine.Options{})

		_, err := e.PullChanges(ctx, scene.Dir, false)
		require.True(t, syncerrors.IsKind(err, syncerrors.MergeConflict))
		require.ErrorIs(t, err, syncerrors.ErrUnmergedPaths)

		status, err := e.GetStatus(ctx, scene.Dir)
		require.NoError(t, err)
		require.True(t, status.HasConflicts)
		require.Equal(t, []string{"1_note.md"}, status.ConflictedFiles)

		_, err = e.CommitAll(ctx, scene.Dir, "", false)
		require.True(t, syncerrors.IsKind(err, syncerrors.MergeConflict))
	})
}
