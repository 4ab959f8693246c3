package engine

import (
	"context"
	"fmt"
	"path/filepath"

	syncerrors "vaultsync.dev/vaultsync/internal/errors"
	"vaultsync.dev/vaultsync/internal/git"
)

// GetEnvironmentInfo reports whether git is installed and which backend
// the engine uses. A missing git is not an error.
func (e *Engine) GetEnvironmentInfo(ctx context.Context) EnvironmentInfo {
	info := EnvironmentInfo{Backend: e.backend.Name()}

	path, err := git.LookPath()
	if err != nil {
		e.debug(OpInfo, "git not found on PATH")
		return info
	}
	info.ToolInstalled = true
	info.ToolPath = path

	err = e.call(ctx, OpInfo, func(ctx context.Context) error {
		var err error
		info.ToolVersion, err = e.backend.Version(ctx)
		return err
	})
	if err != nil {
		e.warn(OpInfo, fmt.Sprintf("failed to read the git version: %v", err))
	}
	return info
}

// GetInfo combines environment, status and remotes for one vault
func (e *Engine) GetInfo(ctx context.Context, vaultPath string) (Info, error) {
	abs, err := filepath.Abs(vaultPath)
	if err != nil {
		return Info{}, syncerrors.Classify(OpInfo, err)
	}
	info := Info{Path: abs, Environment: e.GetEnvironmentInfo(ctx)}
	if !info.Environment.ToolInstalled {
		return info, nil
	}

	if info.Status, err = e.GetStatus(ctx, abs); err != nil {
		return info, err
	}
	if !info.Status.IsGitRepo {
		return info, nil
	}
	info.Remotes, err = e.ListRemotes(ctx, abs)
	return info, err
}
