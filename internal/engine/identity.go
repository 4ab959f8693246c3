package engine

import (
	"context"
	"path/filepath"

	syncerrors "vaultsync.dev/vaultsync/internal/errors"
)

// IdentityStatus is the commit author a vault resolves, including values
// inherited from global git config
type IdentityStatus struct {
	Name     string
	Email    string
	HasName  bool
	HasEmail bool
}

// Complete reports whether both name and email resolve
func (s IdentityStatus) Complete() bool {
	return s.HasName && s.HasEmail
}

// GetIdentity reads the author configuration without modifying anything
func (e *Engine) GetIdentity(ctx context.Context, vaultPath string) (IdentityStatus, error) {
	abs, err := filepath.Abs(vaultPath)
	if err != nil {
		return IdentityStatus{}, syncerrors.Classify(OpIdentity, err)
	}
	ok, err := e.isRepo(ctx, OpIdentity, abs)
	if err != nil {
		return IdentityStatus{}, err
	}
	if !ok {
		return IdentityStatus{}, notARepository(OpIdentity, abs)
	}
	return e.readIdentity(ctx, abs)
}

func (e *Engine) readIdentity(ctx context.Context, path string) (IdentityStatus, error) {
	var s IdentityStatus
	err := e.call(ctx, OpIdentity, func(ctx context.Context) error {
		var err error
		if s.Name, s.HasName, err = e.backend.GetConfig(ctx, path, "user.name"); err != nil {
			return err
		}
		s.Email, s.HasEmail, err = e.backend.GetConfig(ctx, path, "user.email")
		return err
	})
	return s, err
}

// FillIdentity writes the configured default author for whichever of
// user.name and user.email is missing. Unlike the provisioning done before
// a commit, a half-configured identity is completed.
func (e *Engine) FillIdentity(ctx context.Context, vaultPath string) (IdentityStatus, error) {
	abs, release, err := e.begin(ctx, OpIdentity, vaultPath)
	if err != nil {
		return IdentityStatus{}, err
	}
	defer release()

	s, err := e.readIdentity(ctx, abs)
	if err != nil || s.Complete() {
		return s, err
	}

	id := e.opts.Identity
	err = e.call(ctx, OpIdentity, func(ctx context.Context) error {
		if !s.HasName {
			if err := e.backend.SetConfig(ctx, abs, "user.name", id.Name); err != nil {
				return err
			}
			s.Name, s.HasName = id.Name, true
		}
		if !s.HasEmail {
			if err := e.backend.SetConfig(ctx, abs, "user.email", id.Email); err != nil {
				return err
			}
			s.Email, s.HasEmail = id.Email, true
		}
		return nil
	})
	if err == nil {
		e.info(OpIdentity, "Set git identity to "+s.Name+" <"+s.Email+">")
	}
	return s, err
}
