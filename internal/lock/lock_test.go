package lock_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vaultsync.dev/vaultsync/internal/lock"
)

func TestAcquire(t *testing.T) {
	t.Parallel()

	t.Run("creates the lock file in the git directory", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), ".git", "worktrees", "notes")

		l, err := lock.Acquire(context.Background(), dir, time.Second)
		require.NoError(t, err)
		require.FileExists(t, filepath.Join(dir, lock.FileName))
		require.Equal(t, filepath.Join(dir, lock.FileName), lock.PathFor(dir))
		require.NoError(t, l.Unlock())
	})

	t.Run("second holder times out with a distinct error", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()

		held, err := lock.Acquire(context.Background(), dir, time.Second)
		require.NoError(t, err)
		defer func() { require.NoError(t, held.Unlock()) }()

		_, err = lock.Acquire(context.Background(), dir, 200*time.Millisecond)
		require.ErrorIs(t, err, lock.ErrTimeout)

		var timeoutErr *lock.TimeoutError
		require.ErrorAs(t, err, &timeoutErr)
		require.Equal(t, 200*time.Millisecond, timeoutErr.Timeout)
	})

	t.Run("lock can be taken again after release", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()

		first, err := lock.Acquire(context.Background(), dir, time.Second)
		require.NoError(t, err)
		require.NoError(t, first.Unlock())

		second, err := lock.Acquire(context.Background(), dir, time.Second)
		require.NoError(t, err)
		require.NoError(t, second.Unlock())
	})

	t.Run("caller cancellation is not a timeout", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()

		held, err := lock.Acquire(context.Background(), dir, time.Second)
		require.NoError(t, err)
		defer func() { require.NoError(t, held.Unlock()) }()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = lock.Acquire(ctx, dir, time.Second)
		require.ErrorIs(t, err, context.Canceled)
		require.NotErrorIs(t, err, lock.ErrTimeout)
	})

	t.Run("nil lock unlocks cleanly", func(t *testing.T) {
		t.Parallel()
		var l *lock.VaultLock
		require.NoError(t, l.Unlock())
	})
}
