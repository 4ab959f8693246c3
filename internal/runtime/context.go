package runtime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"vaultsync.dev/vaultsync/internal/config"
	"vaultsync.dev/vaultsync/internal/engine"
	"vaultsync.dev/vaultsync/internal/git"
	"vaultsync.dev/vaultsync/internal/tui"
)

// Context provides access to engine and output for commands
type Context struct {
	context.Context

	Engine    *engine.Engine
	Splog     *tui.Splog
	Config    *config.Config
	VaultPath string
}

// Options are the command-line inputs that shape a Context
type Options struct {
	// ConfigPath is the --config flag; empty means config.DefaultPath
	ConfigPath string
	// VaultPath is the --vault-path flag; empty falls back to config, then the working directory
	VaultPath string
	// Verbose shows debug output on the console
	Verbose bool
	// LogFile overrides tui.GetLogFilePath; "-" disables file logging
	LogFile string
}

// NewContext builds a Context from already constructed parts
func NewContext(ctx context.Context, eng *engine.Engine, splog *tui.Splog, cfg *config.Config, vaultPath string) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Context{
		Context:   ctx,
		Engine:    eng,
		Splog:     splog,
		Config:    cfg,
		VaultPath: vaultPath,
	}
}

// GetContext loads configuration, opens the log and builds the engine
func GetContext(ctx context.Context, opts Options) (*Context, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logFile := opts.LogFile
	switch logFile {
	case "":
		logFile = tui.GetLogFilePath()
	case "-":
		logFile = ""
	}
	splog, err := tui.NewSplogWithOptions(tui.SplogOptions{
		LogFile: logFile,
		Verbose: opts.Verbose || os.Getenv("DEBUG") != "",
	})
	if err != nil {
		// A broken log location should not stop a sync
		splog, _ = tui.NewSplogWithOptions(tui.SplogOptions{Verbose: opts.Verbose})
		splog.Debug("file logging disabled: %v", err)
	}

	vaultPath, err := ResolveVaultPath(opts.VaultPath, cfg)
	if err != nil {
		return nil, err
	}

	backend, err := git.NewBackend(cfg.BackendKind())
	if err != nil {
		return nil, err
	}
	eng := engine.New(backend, EngineOptions(cfg, tui.NewSplogObserver(splog)))

	splog.Debug("vault %s, backend %s, config %s", vaultPath, backend.Name(), configPath)
	return NewContext(ctx, eng, splog, cfg, vaultPath), nil
}

// EngineOptions maps configuration onto engine options
func EngineOptions(cfg *config.Config, observer engine.Observer) engine.Options {
	return engine.Options{
		RemoteName:     cfg.RemoteName,
		DefaultBranch:  cfg.DefaultBranch,
		Identity:       engine.Identity{Name: cfg.Identity.Name, Email: cfg.Identity.Email},
		CommandTimeout: cfg.CommandTimeout,
		LockTimeout:    cfg.LockTimeout,
		Observer:       observer,
	}
}

// ResolveVaultPath picks the vault from the flag, then configuration (which
// already includes VAULTSYNC_VAULT_PATH), then the working directory. The
// result is absolute.
func ResolveVaultPath(flag string, cfg *config.Config) (string, error) {
	path := flag
	if path == "" && cfg != nil {
		path = cfg.VaultPath
	}
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		path = wd
	}
	path = expandHome(path)

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve vault path %s: %w", path, err)
	}
	return abs, nil
}

func expandHome(path string) string {
	if path != "~" && !hasHomePrefix(path) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

func hasHomePrefix(path string) bool {
	return len(path) >= 2 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator)
}

// WithObserver returns a copy of c whose engine reports to observer
// instead of the default log observer
func (c *Context) WithObserver(observer engine.Observer) *Context {
	eng := engine.New(c.Engine.Backend(), EngineOptions(c.Config, observer))
	cp := *c
	cp.Engine = eng
	return &cp
}

// Close releases the log file
func (c *Context) Close() error {
	if c.Splog != nil {
		return c.Splog.Close()
	}
	return nil
}
