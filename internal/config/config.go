package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"vaultsync.dev/vaultsync/internal/git"
)

// Environment variables that override file settings
const (
	EnvConfigPath     = "VAULTSYNC_CONFIG"
	EnvVaultPath      = "VAULTSYNC_VAULT_PATH"
	EnvRemoteName     = "VAULTSYNC_REMOTE"
	EnvDefaultBranch  = "VAULTSYNC_BRANCH"
	EnvBackend        = "VAULTSYNC_BACKEND"
	EnvAuthMethod     = "VAULTSYNC_AUTH_METHOD"
	EnvIdentityName   = "VAULTSYNC_GIT_NAME"
	EnvIdentityEmail  = "VAULTSYNC_GIT_EMAIL"
	EnvCommandTimeout = "VAULTSYNC_COMMAND_TIMEOUT"
	EnvLockTimeout    = "VAULTSYNC_LOCK_TIMEOUT"
)

// Defaults
const (
	DefaultRemoteName      = "origin"
	DefaultBranch          = "main"
	DefaultIdentityName    = "Obsidian Vault Sync"
	DefaultIdentityEmail   = "vault@vaultsync.local"
	DefaultCommandTimeout  = 2 * time.Minute
	DefaultLockTimeout     = 30 * time.Second
	DefaultPluginInterval  = 10
	DefaultPluginCommitMsg = "vault backup: {{date}}"
)

// Identity is the placeholder author written when a repository has none
type Identity struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// GitignoreConfig controls the generated .gitignore
type GitignoreConfig struct {
	ExtraPatterns []string `yaml:"extra_patterns,omitempty"`
}

// PluginConfig controls the generated obsidian-git plugin settings
type PluginConfig struct {
	IntervalMinutes int    `yaml:"interval_minutes"`
	CommitMessage   string `yaml:"commit_message"`
}

// Config is the full vaultsync configuration
type Config struct {
	VaultPath      string          `yaml:"vault_path,omitempty"`
	RemoteName     string          `yaml:"remote_name"`
	DefaultBranch  string          `yaml:"default_branch"`
	Backend        string          `yaml:"backend"`
	AuthMethod     string          `yaml:"auth_method,omitempty"`
	Identity       Identity        `yaml:"identity"`
	CommandTimeout time.Duration   `yaml:"command_timeout"`
	LockTimeout    time.Duration   `yaml:"lock_timeout"`
	Gitignore      GitignoreConfig `yaml:"gitignore"`
	Plugin         PluginConfig    `yaml:"plugin"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		RemoteName:     DefaultRemoteName,
		DefaultBranch:  DefaultBranch,
		Backend:        string(git.BackendAuto),
		Identity:       Identity{Name: DefaultIdentityName, Email: DefaultIdentityEmail},
		CommandTimeout: DefaultCommandTimeout,
		LockTimeout:    DefaultLockTimeout,
		Plugin: PluginConfig{
			IntervalMinutes: DefaultPluginInterval,
			CommitMessage:   DefaultPluginCommitMsg,
		},
	}
}

// DefaultPath returns VAULTSYNC_CONFIG or <user config dir>/vaultsync/config.yaml
func DefaultPath() string {
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return custom
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".vaultsync", "config.yaml")
	}
	return filepath.Join(dir, "vaultsync", "config.yaml")
}

// Load reads the file at path over the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables read through getenv
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(EnvVaultPath, &c.VaultPath)
	setString(EnvRemoteName, &c.RemoteName)
	setString(EnvDefaultBranch, &c.DefaultBranch)
	setString(EnvBackend, &c.Backend)
	setString(EnvAuthMethod, &c.AuthMethod)
	setString(EnvIdentityName, &c.Identity.Name)
	setString(EnvIdentityEmail, &c.Identity.Email)

	for key, dst := range map[string]*time.Duration{
		EnvCommandTimeout: &c.CommandTimeout,
		EnvLockTimeout:    &c.LockTimeout,
	} {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = d
	}
	return nil
}

// fillDefaults restores defaults for keys a config file set to empty values
func (c *Config) fillDefaults() {
	def := Default()
	if c.RemoteName == "" {
		c.RemoteName = def.RemoteName
	}
	if c.DefaultBranch == "" {
		c.DefaultBranch = def.DefaultBranch
	}
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.Identity.Name == "" {
		c.Identity.Name = def.Identity.Name
	}
	if c.Identity.Email == "" {
		c.Identity.Email = def.Identity.Email
	}
	if c.CommandTimeout == 0 {
		c.CommandTimeout = def.CommandTimeout
	}
	if c.LockTimeout == 0 {
		c.LockTimeout = def.LockTimeout
	}
	if c.Plugin.IntervalMinutes == 0 {
		c.Plugin.IntervalMinutes = def.Plugin.IntervalMinutes
	}
	if c.Plugin.CommitMessage == "" {
		c.Plugin.CommitMessage = def.Plugin.CommitMessage
	}
}

// Validate checks field values
func (c *Config) Validate() error {
	if _, err := git.ParseBackendKind(c.Backend); err != nil {
		return err
	}
	switch strings.ToLower(c.AuthMethod) {
	case "", "ssh", "https":
	default:
		return fmt.Errorf("invalid auth_method %q: expected ssh or https", c.AuthMethod)
	}
	if strings.ContainsAny(c.RemoteName, " \t/") {
		return fmt.Errorf("invalid remote_name %q", c.RemoteName)
	}
	if c.CommandTimeout < 0 || c.LockTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.Plugin.IntervalMinutes < 0 {
		return fmt.Errorf("plugin.interval_minutes must not be negative")
	}
	return nil
}

// BackendKind returns the validated backend selection
func (c *Config) BackendKind() git.BackendKind {
	kind, err := git.ParseBackendKind(c.Backend)
	if err != nil {
		return git.BackendAuto
	}
	return kind
}

// Save writes the configuration as YAML, creating parent directories
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
