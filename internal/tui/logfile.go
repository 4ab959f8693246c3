package tui

import (
	"os"
	"path/filepath"
)

// EnvLogFile overrides the log file location
const EnvLogFile = "VAULTSYNC_LOG_FILE"

// GetLogFilePath returns VAULTSYNC_LOG_FILE, or ~/.vaultsync/logs/vaultsync.log
func GetLogFilePath() string {
	if custom := os.Getenv(EnvLogFile); custom != "" {
		return custom
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "vaultsync.log"
	}
	return filepath.Join(home, ".vaultsync", "logs", "vaultsync.log")
}
