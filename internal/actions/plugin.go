package actions

import (
	"vaultsync.dev/vaultsync/internal/runtime"
	"vaultsync.dev/vaultsync/internal/vault"
)

// PluginOptions contains options for the plugin command. Zero values fall
// back to the configuration.
type PluginOptions struct {
	IntervalMinutes int
	CommitMessage   string
}

// PluginAction writes obsidian-git settings so the desktop app commits and
// syncs on its own
func PluginAction(ctx *runtime.Context, opts PluginOptions) error {
	interval := opts.IntervalMinutes
	if interval == 0 {
		interval = ctx.Config.Plugin.IntervalMinutes
	}
	message := opts.CommitMessage
	if message == "" {
		message = ctx.Config.Plugin.CommitMessage
	}

	result, err := vault.ConfigurePlugin(ctx.VaultPath, interval, message)
	if err != nil {
		return err
	}

	ctx.Splog.Success("Configured obsidian-git: backup every %d minute(s), pull before push", result.Settings.AutoBackupInterval)
	ctx.Splog.Info("  settings: %s", result.DataPath)
	if result.ManifestWritten {
		ctx.Splog.Tip("Install and enable the Obsidian Git community plugin in Obsidian to activate these settings")
	}
	return nil
}
