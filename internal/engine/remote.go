package engine

import (
	"context"
	"fmt"

	syncerrors "vaultsync.dev/vaultsync/internal/errors"
)

// RemoteResult describes what SetupRemote did
type RemoteResult struct {
	Name        string
	URL         string
	PreviousURL string
	AuthMethod  AuthMethod
	Created     bool
	Updated     bool
	Message     string
}

// SetupRemote points the named remote at rawURL, converting it to the
// requested auth method first. Running it again with the same URL changes
// nothing. An empty name uses the engine's remote.
func (e *Engine) SetupRemote(ctx context.Context, vaultPath, rawURL, name string, method AuthMethod) (RemoteResult, error) {
	if name == "" {
		name = e.opts.RemoteName
	}

	parsed, err := ParseRemoteURL(rawURL)
	if err != nil {
		return RemoteResult{}, syncerrors.Classify(OpSetupRemote, err)
	}
	parsed = parsed.As(method)
	target := parsed.String()
	result := RemoteResult{Name: name, URL: target, AuthMethod: parsed.Method()}

	abs, release, err := e.begin(ctx, OpSetupRemote, vaultPath)
	if err != nil {
		return result, err
	}
	defer release()

	existing, ok, err := e.remoteURL(ctx, OpSetupRemote, abs, name)
	if err != nil {
		return result, err
	}

	if ok && SameRemoteURL(existing, target) {
		result.URL = existing
		result.Message = fmt.Sprintf("Remote '%s' already points to %s", name, existing)
		e.info(OpSetupRemote, result.Message)
		return result, nil
	}

	if ok {
		e.warn(OpSetupRemote, fmt.Sprintf("Replacing remote '%s' URL %s -> %s", name, existing, target))
	}
	err = e.call(ctx, OpSetupRemote, func(ctx context.Context) error {
		return e.backend.SetRemote(ctx, abs, name, target)
	})
	if err != nil {
		return result, err
	}

	if ok {
		result.Updated = true
		result.PreviousURL = existing
		result.Message = fmt.Sprintf("Updated remote '%s' to %s", name, target)
	} else {
		result.Created = true
		result.Message = fmt.Sprintf("Added remote '%s' -> %s", name, target)
	}
	e.info(OpSetupRemote, result.Message)
	return result, nil
}

// ListRemotes returns every configured remote with its inferred auth method
func (e *Engine) ListRemotes(ctx context.Context, vaultPath string) ([]Remote, error) {
	var remotes []Remote
	err := e.call(ctx, OpInfo, func(ctx context.Context) error {
		raw, err := e.backend.ListRemotes(ctx, vaultPath)
		if err != nil {
			return err
		}
		for _, r := range raw {
			remote := Remote{Name: r.Name, URL: r.URL}
			if parsed, err := ParseRemoteURL(r.URL); err == nil {
				remote.AuthMethod = parsed.Method()
			}
			remotes = append(remotes, remote)
		}
		return nil
	})
	return remotes, err
}
