package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// PluginID is the community plugin vaultsync configures
const PluginID = "obsidian-git"

// Defaults written to the plugin settings
const (
	DefaultPluginInterval      = 10
	DefaultPluginCommitMessage = "vault backup: {{date}}"
)

// PluginSettings is the subset of obsidian-git's data.json that vaultsync
// manages. Keys the plugin writes that are not listed here are preserved.
type PluginSettings struct {
	CommitMessage                  string `json:"commitMessage"`
	AutoBackupInterval             int    `json:"autoBackupInterval"`
	AutoPush                       bool   `json:"autoPush"`
	AutoPull                       bool   `json:"autoPull"`
	PullBeforePush                 bool   `json:"pullBeforePush"`
	DisablePush                    bool   `json:"disablePush"`
	DisablePopups                  bool   `json:"disablePopups"`
	ShowStatusBar                  bool   `json:"showStatusBar"`
	UpdateSubmodules               bool   `json:"updateSubmodules"`
	SyncMethod                     string `json:"syncMethod"`
	CustomMessageOnAutoBackup      bool   `json:"customMessageOnAutoBackup"`
	AutoBackupAfterFileChange      bool   `json:"autoBackupAfterFileChange"`
	TreeStructure                  bool   `json:"treeStructure"`
	RefreshSourceControl           bool   `json:"refreshSourceControl"`
	BasePath                       string `json:"basePath"`
	DifferentIntervalCommitAndPush bool   `json:"differentIntervalCommitAndPush"`
	ChangedFilesInStatusBar        bool   `json:"changedFilesInStatusBar"`
	ShowedMobileNotice             bool   `json:"showedMobileNotice"`
	RefreshSourceControlTimer      int    `json:"refreshSourceControlTimer"`
	ShowBranchStatusBar            bool   `json:"showBranchStatusBar"`
	SetLastSaveToLastCommit        bool   `json:"setLastSaveToLastCommit"`
	SubmoduleRecurseCheckout       bool   `json:"submoduleRecurseCheckout"`
	GitDir                         string `json:"gitDir"`
}

// DefaultPluginSettings returns settings for unattended backups: commit on
// an interval, pull before pushing, push automatically.
func DefaultPluginSettings() PluginSettings {
	return PluginSettings{
		CommitMessage:             DefaultPluginCommitMessage,
		AutoBackupInterval:        DefaultPluginInterval,
		AutoPush:                  true,
		AutoPull:                  true,
		PullBeforePush:            true,
		ShowStatusBar:             true,
		SyncMethod:                "merge",
		RefreshSourceControl:      true,
		ShowedMobileNotice:        true,
		RefreshSourceControlTimer: 7000,
		ShowBranchStatusBar:       true,
	}
}

type pluginManifest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Version       string `json:"version"`
	MinAppVersion string `json:"minAppVersion"`
	Description   string `json:"description"`
	Author        string `json:"author"`
	AuthorURL     string `json:"authorUrl"`
	IsDesktopOnly bool   `json:"isDesktopOnly"`
}

var defaultManifest = pluginManifest{
	ID:            PluginID,
	Name:          "Obsidian Git",
	Version:       "2.24.1",
	MinAppVersion: "0.12.0",
	Description:   "Backup your vault with git.",
	Author:        "Vinzent03",
	AuthorURL:     "https://github.com/Vinzent03",
}

// PluginDir returns the obsidian-git plugin directory of a vault
func PluginDir(vaultPath string) string {
	return filepath.Join(vaultPath, ConfigDir, "plugins", PluginID)
}

// PluginDataPath returns the obsidian-git settings file of a vault
func PluginDataPath(vaultPath string) string {
	return filepath.Join(PluginDir(vaultPath), "data.json")
}

// PluginResult describes what ConfigurePlugin wrote
type PluginResult struct {
	DataPath        string
	ManifestWritten bool
	Settings        PluginSettings
}

// ConfigurePlugin validates the vault and writes obsidian-git settings for
// the given interval in minutes and commit message template. Existing
// settings the plugin owns are kept. manifest.json is written only when
// missing.
func ConfigurePlugin(vaultPath string, interval int, commitMessage string) (PluginResult, error) {
	if err := Validate(vaultPath); err != nil {
		return PluginResult{}, err
	}
	if interval <= 0 {
		return PluginResult{}, fmt.Errorf("backup interval must be positive, got %d", interval)
	}
	if commitMessage == "" {
		commitMessage = DefaultPluginCommitMessage
	}

	dir := PluginDir(vaultPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return PluginResult{}, fmt.Errorf("failed to create plugin directory %s: %w", dir, err)
	}

	settings := DefaultPluginSettings()
	settings.AutoBackupInterval = interval
	settings.CommitMessage = commitMessage

	result := PluginResult{DataPath: PluginDataPath(vaultPath), Settings: settings}
	if err := mergeJSON(result.DataPath, settings); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(dir, "manifest.json")
	if !fileExists(manifestPath) {
		if err := writeJSON(manifestPath, defaultManifest); err != nil {
			return result, err
		}
		result.ManifestWritten = true
	}
	return result, nil
}

// ReadPluginSettings loads the managed settings from a vault
func ReadPluginSettings(vaultPath string) (PluginSettings, error) {
	var settings PluginSettings
	data, err := os.ReadFile(PluginDataPath(vaultPath))
	if err != nil {
		return settings, err
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse plugin settings: %w", err)
	}
	return settings, nil
}

// mergeJSON overlays v's fields onto the JSON object stored at path
func mergeJSON(path string, v any) error {
	merged := map[string]any{}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &merged); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for k, val := range fields {
		merged[k] = val
	}
	return writeJSON(path, merged)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
