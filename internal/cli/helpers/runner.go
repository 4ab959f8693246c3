// Package helpers provides shared helper functions for CLI commands.
package helpers

import (
	"errors"

	"github.com/spf13/cobra"

	"vaultsync.dev/vaultsync/internal/actions"
	"vaultsync.dev/vaultsync/internal/runtime"
)

// Persistent flag names read by Run
const (
	FlagVaultPath = "vault-path"
	FlagConfig    = "config"
	FlagVerbose   = "verbose"
	FlagLogFile   = "log-file"
)

// ReportedError marks an error that has already been shown to the operator
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string {
	return e.Err.Error()
}

func (e *ReportedError) Unwrap() error {
	return e.Err
}

// IsReported reports whether err was already printed by Run
func IsReported(err error) bool {
	var reported *ReportedError
	return errors.As(err, &reported)
}

// ContextOptions collects the persistent flags into runtime options
func ContextOptions(cmd *cobra.Command) runtime.Options {
	flags := cmd.Flags()
	var opts runtime.Options
	opts.VaultPath, _ = flags.GetString(FlagVaultPath)
	opts.ConfigPath, _ = flags.GetString(FlagConfig)
	opts.Verbose, _ = flags.GetBool(FlagVerbose)
	opts.LogFile, _ = flags.GetString(FlagLogFile)
	return opts
}

// Run is a helper that provides a runtime context to a command's execution
// function. Errors returned by fn are reported through the context's logger.
func Run(cmd *cobra.Command, fn func(ctx *runtime.Context) error) error {
	ctx, err := runtime.GetContext(cmd.Context(), ContextOptions(cmd))
	if err != nil {
		return err
	}
	defer func() { _ = ctx.Close() }()

	ctx.Splog.Debug("vaultsync %s on %s (backend %s)", cmd.Name(), ctx.VaultPath, ctx.Engine.Backend().Name())
	if err := fn(ctx); err != nil {
		actions.ReportError(ctx.Splog, err)
		return &ReportedError{Err: err}
	}
	return nil
}
