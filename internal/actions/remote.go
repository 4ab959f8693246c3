package actions

import (
	"errors"
	"fmt"

	"vaultsync.dev/vaultsync/internal/engine"
	"vaultsync.dev/vaultsync/internal/runtime"
	"vaultsync.dev/vaultsync/internal/tui"
)

// SetupRemoteOptions contains options for the setup-remote command
type SetupRemoteOptions struct {
	URL  string
	Name string
	// Auth is "ssh", "https" or empty to keep the URL's own form
	Auth string
	// Interactive allows prompting for a missing URL or auth method
	Interactive bool
}

// SetupRemoteAction points the vault at its remote, converting the URL to
// the requested authentication method
func SetupRemoteAction(ctx *runtime.Context, opts SetupRemoteOptions) error {
	splog := ctx.Splog

	if opts.Auth == "" {
		opts.Auth = ctx.Config.AuthMethod
	}

	if opts.URL == "" {
		if !opts.Interactive {
			return fmt.Errorf("a remote URL is required")
		}
		url, err := tui.PromptText("Remote repository URL", "", func(s string) error {
			_, err := engine.ParseRemoteURL(s)
			return err
		})
		if err != nil {
			return promptErr(err, "a remote URL is required")
		}
		opts.URL = url

		if opts.Auth == "" {
			parsed, _ := engine.ParseRemoteURL(url)
			auth, err := tui.PromptSelect("Authentication method", []string{"ssh", "https"}, parsed.Method().String())
			if err != nil {
				return promptErr(err, "an authentication method is required")
			}
			opts.Auth = auth
		}
	}

	method, err := engine.ParseAuthMethod(opts.Auth)
	if err != nil {
		return err
	}

	if opts.Interactive {
		replace, err := confirmReplace(ctx, opts.Name, opts.URL, method)
		if err != nil {
			return err
		}
		if !replace {
			splog.Info("Kept the existing remote")
			return nil
		}
	}

	result, err := ctx.Engine.SetupRemote(ctx, ctx.VaultPath, opts.URL, opts.Name, method)
	if err != nil {
		return err
	}

	switch {
	case result.Created, result.Updated:
		splog.Success(result.Message)
	default:
		splog.Info(result.Message)
	}

	switch result.AuthMethod {
	case engine.AuthHTTPS:
		splog.Tip("HTTPS remotes need stored credentials: git config credential.helper store (or a credential manager)")
	case engine.AuthSSH:
		splog.Tip("Make sure your SSH key is added to the remote host (vaultsync doctor checks ~/.ssh)")
	}
	return nil
}

// confirmReplace asks before an existing remote is pointed elsewhere. Without
// a terminal the overwrite goes ahead and is reported by the engine.
func confirmReplace(ctx *runtime.Context, name, rawURL string, method engine.AuthMethod) (bool, error) {
	if name == "" {
		name = ctx.Engine.RemoteName()
	}
	target, err := engine.ConvertRemoteURL(rawURL, method)
	if err != nil {
		// SetupRemote reports the invalid URL
		return true, nil
	}
	remotes, err := ctx.Engine.ListRemotes(ctx, ctx.VaultPath)
	if err != nil {
		return true, nil
	}
	for _, r := range remotes {
		if r.Name != name || engine.SameRemoteURL(r.URL, target) {
			continue
		}
		ok, err := tui.PromptConfirm(fmt.Sprintf("Remote '%s' points to %s. Replace it with %s?", name, r.URL, target), false)
		if errors.Is(err, tui.ErrInteractiveDisabled) {
			return true, nil
		}
		return ok, err
	}
	return true, nil
}

func promptErr(err error, disabled string) error {
	if errors.Is(err, tui.ErrInteractiveDisabled) {
		return errors.New(disabled)
	}
	return err
}
