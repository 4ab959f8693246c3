package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	syncerrors "vaultsync.dev/vaultsync/internal/errors"
)

// InitRepo makes vaultPath a repository on the default branch, creating
// the directory when needed. An existing repository is left untouched and
// reported with AlreadyInitialized set.
func (e *Engine) InitRepo(ctx context.Context, vaultPath string) (InitResult, error) {
	abs, err := filepath.Abs(vaultPath)
	if err != nil {
		return InitResult{}, syncerrors.Classify(OpInit, err)
	}
	result := InitResult{Path: abs, Branch: e.opts.DefaultBranch}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return result, syncerrors.Classify(OpInit, err)
	}

	ok, err := e.isRepo(ctx, OpInit, abs)
	if err != nil {
		return result, err
	}
	if ok {
		if raw, err := e.status(ctx, OpInit, abs); err == nil && raw.Branch != "" {
			result.Branch = raw.Branch
		}
		result.AlreadyInitialized = true
		result.Message = fmt.Sprintf("%s is already a git repository", abs)
		e.info(OpInit, result.Message)
		return result, nil
	}

	err = e.call(ctx, OpInit, func(ctx context.Context) error {
		return e.backend.Init(ctx, abs, e.opts.DefaultBranch)
	})
	if err != nil {
		return result, err
	}
	result.Created = true
	result.Message = fmt.Sprintf("Initialized git repository in %s on branch %s", abs, e.opts.DefaultBranch)
	e.info(OpInit, result.Message)
	return result, nil
}
