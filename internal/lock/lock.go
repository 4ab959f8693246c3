// Package lock provides the advisory, process-external lock that serializes
// mutating sync operations on a single vault.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// FileName is the lock file created inside the repository's git directory
const FileName = "vaultsync.lock"

// DefaultTimeout bounds how long Acquire waits for another process
const DefaultTimeout = 30 * time.Second

// retryDelay is the polling interval while the lock is held elsewhere
const retryDelay = 100 * time.Millisecond

// ErrTimeout indicates the lock could not be acquired in time
var ErrTimeout = errors.New("timed out waiting for vault lock")

// TimeoutError reports which lock could not be acquired
type TimeoutError struct {
	Path    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("another sync is running on this vault: timed out after %s waiting for %s", e.Timeout, e.Path)
}

// Is returns true if the target error is ErrTimeout
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// VaultLock is a held lock. Release it with Unlock.
type VaultLock struct {
	fl *flock.Flock
}

// PathFor returns the lock file path inside gitDir, the resolved git
// directory of the vault (git rev-parse --absolute-git-dir)
func PathFor(gitDir string) string {
	return filepath.Join(gitDir, FileName)
}

// Acquire takes the vault lock in gitDir, waiting up to timeout for other
// holders. A timeout of zero or less uses DefaultTimeout.
func Acquire(ctx context.Context, gitDir string, timeout time.Duration) (*VaultLock, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	path := PathFor(gitDir)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to prepare lock directory: %w", err)
	}

	fl := flock.New(path)
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := fl.TryLockContext(waitCtx, retryDelay)
	if err != nil {
		// the caller's own cancellation is not a lock timeout
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{Path: path, Timeout: timeout}
		}
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, &TimeoutError{Path: path, Timeout: timeout}
	}
	return &VaultLock{fl: fl}, nil
}

// Unlock releases the lock. It is safe to call on a nil lock.
func (l *VaultLock) Unlock() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
