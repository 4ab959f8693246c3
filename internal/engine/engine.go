package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	syncerrors "vaultsync.dev/vaultsync/internal/errors"
	"vaultsync.dev/vaultsync/internal/git"
	"vaultsync.dev/vaultsync/internal/lock"
)

// Defaults applied by New for zero-valued options
const (
	DefaultRemoteName     = "origin"
	DefaultBranch         = "main"
	DefaultCommandTimeout = 2 * time.Minute
	DefaultIdentityName   = "Obsidian Vault Sync"
	DefaultIdentityEmail  = "vault@vaultsync.local"
)

// Identity is a commit author
type Identity struct {
	Name  string
	Email string
}

// Options configures an Engine
type Options struct {
	// RemoteName is the remote pulled from and pushed to
	RemoteName string
	// DefaultBranch names the first branch of new repositories
	DefaultBranch string
	// Identity is written to repositories that have no author configured
	Identity Identity
	// CommandTimeout bounds every individual backend call
	CommandTimeout time.Duration
	// LockTimeout bounds the wait for the vault lock
	LockTimeout time.Duration
	// Observer receives progress events; nil discards them
	Observer Observer
	// Now returns the current time; nil uses time.Now
	Now func() time.Time
}

// Engine runs sync operations against vaults through a Backend
type Engine struct {
	backend  git.Backend
	opts     Options
	observer Observer
}

// New creates an Engine. Zero-valued options take their defaults.
func New(backend git.Backend, opts Options) *Engine {
	if opts.RemoteName == "" {
		opts.RemoteName = DefaultRemoteName
	}
	if opts.DefaultBranch == "" {
		opts.DefaultBranch = DefaultBranch
	}
	if opts.Identity.Name == "" {
		opts.Identity.Name = DefaultIdentityName
	}
	if opts.Identity.Email == "" {
		opts.Identity.Email = DefaultIdentityEmail
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = DefaultCommandTimeout
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = lock.DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	observer := opts.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	return &Engine{backend: backend, opts: opts, observer: observer}
}

// Backend returns the backend the engine drives
func (e *Engine) Backend() git.Backend {
	return e.backend
}

// RemoteName returns the configured remote name
func (e *Engine) RemoteName() string {
	return e.opts.RemoteName
}

// call runs one backend operation under the command timeout and classifies
// any failure. This is the only place raw backend errors are interpreted.
// A canceled ctx stops the sequence before the next call starts; a call
// already running is bounded only by the command timeout, so a rebase or
// push is never killed halfway.
func (e *Engine) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return syncerrors.Classify(op, err)
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.opts.CommandTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		e.debug(op, err.Error())
		return syncerrors.Classify(op, err)
	}
	return nil
}

func (e *Engine) status(ctx context.Context, op, path string) (*git.RawStatus, error) {
	var raw *git.RawStatus
	err := e.call(ctx, op, func(ctx context.Context) error {
		var err error
		raw, err = e.backend.Status(ctx, path)
		return err
	})
	return raw, err
}

func (e *Engine) isRepo(ctx context.Context, op, path string) (bool, error) {
	var ok bool
	err := e.call(ctx, op, func(ctx context.Context) error {
		var err error
		ok, err = e.backend.IsRepo(ctx, path)
		return err
	})
	return ok, err
}

func (e *Engine) remoteURL(ctx context.Context, op, path, name string) (string, bool, error) {
	var (
		url string
		ok  bool
	)
	err := e.call(ctx, op, func(ctx context.Context) error {
		var err error
		url, ok, err = e.backend.GetRemote(ctx, path, name)
		return err
	})
	return url, ok, err
}

// begin validates the vault and takes its lock for a mutating operation.
// The returned release function must be called on every exit path.
func (e *Engine) begin(ctx context.Context, op, path string) (string, func(), error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", nil, syncerrors.Classify(op, err)
	}

	ok, err := e.isRepo(ctx, op, abs)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, notARepository(op, abs)
	}

	var gitDir string
	err = e.call(ctx, op, func(ctx context.Context) error {
		var err error
		gitDir, err = e.backend.GitDir(ctx, abs)
		return err
	})
	if err != nil {
		return "", nil, err
	}

	held, err := lock.Acquire(ctx, gitDir, e.opts.LockTimeout)
	if err != nil {
		return "", nil, err
	}
	e.debug(op, "acquired vault lock")
	return abs, func() {
		if err := held.Unlock(); err != nil {
			e.warn(op, fmt.Sprintf("failed to release vault lock: %v", err))
		}
	}, nil
}

func notARepository(op, path string) error {
	return syncerrors.NewSyncError(syncerrors.NotARepository, op,
		fmt.Sprintf("%s is not a git repository", path), syncerrors.ErrNotARepository)
}
