// Package errors provides sentinel errors, custom error types and the error
// taxonomy used by the vaultsync engine.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for raw conditions detected by vaultsync itself rather than
// reported by git.
var (
	// ErrNotARepository indicates that the vault path has no git repository
	ErrNotARepository = errors.New("not a git repository")

	// ErrNoRemote indicates that no remote is configured under the requested name
	ErrNoRemote = errors.New("no remote configured")

	// ErrDetachedHead indicates that HEAD is not on a branch
	ErrDetachedHead = errors.New("HEAD is detached")

	// ErrUnmergedPaths indicates that the working tree contains unmerged paths
	ErrUnmergedPaths = errors.New("unmerged paths in working tree")

	// ErrDirtyWorktree indicates that tracked files have uncommitted changes
	// and the requested operation would have to rewrite them
	ErrDirtyWorktree = errors.New("uncommitted changes in working tree")

	// ErrInvalidRemoteURL indicates that a remote URL is neither SSH nor HTTPS
	ErrInvalidRemoteURL = errors.New("unrecognized remote URL")

	// ErrPushRejected indicates that the remote refused a non-fast-forward update
	ErrPushRejected = errors.New("push rejected by remote")

	// ErrInvalidVault indicates a path that cannot be used as an Obsidian vault
	ErrInvalidVault = errors.New("invalid vault")
)

// InvalidVaultError explains why a path is not a usable vault
type InvalidVaultError struct {
	Path   string
	Reason string
}

func (e *InvalidVaultError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Path)
}

// Is returns true if the target error is ErrInvalidVault
func (e *InvalidVaultError) Is(target error) bool {
	return target == ErrInvalidVault
}

// NewInvalidVaultError creates a new InvalidVaultError
func NewInvalidVaultError(path, reason string) *InvalidVaultError {
	return &InvalidVaultError{Path: path, Reason: reason}
}

// InvalidRemoteURLError reports a remote URL that could not be parsed
type InvalidRemoteURLError struct {
	URL string
}

func (e *InvalidRemoteURLError) Error() string {
	return fmt.Sprintf("unrecognized remote URL %q: expected git@host:owner/repo.git or https://host/owner/repo.git", e.URL)
}

// Is returns true if the target error is ErrInvalidRemoteURL
func (e *InvalidRemoteURLError) Is(target error) bool {
	return target == ErrInvalidRemoteURL
}

// NewInvalidRemoteURLError creates a new InvalidRemoteURLError
func NewInvalidRemoteURLError(url string) *InvalidRemoteURLError {
	return &InvalidRemoteURLError{URL: url}
}

// NoRemoteError represents an operation that needs a remote which is not configured
type NoRemoteError struct {
	Name string
}

func (e *NoRemoteError) Error() string {
	return fmt.Sprintf("no remote named %q is configured", e.Name)
}

// Is returns true if the target error is ErrNoRemote
func (e *NoRemoteError) Is(target error) bool {
	return target == ErrNoRemote
}

// NewNoRemoteError creates a new NoRemoteError
func NewNoRemoteError(name string) *NoRemoteError {
	return &NoRemoteError{Name: name}
}

// UnmergedPathsError lists the files left with conflict markers
type UnmergedPathsError struct {
	Files []string
}

func (e *UnmergedPathsError) Error() string {
	if len(e.Files) == 0 {
		return ErrUnmergedPaths.Error()
	}
	return fmt.Sprintf("%s: %v", ErrUnmergedPaths.Error(), e.Files)
}

// Is returns true if the target error is ErrUnmergedPaths
func (e *UnmergedPathsError) Is(target error) bool {
	return target == ErrUnmergedPaths
}

// NewUnmergedPathsError creates a new UnmergedPathsError
func NewUnmergedPathsError(files []string) *UnmergedPathsError {
	return &UnmergedPathsError{Files: files}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
