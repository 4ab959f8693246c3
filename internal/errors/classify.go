package errors

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Stderr fragments, lower-cased, grouped by the kind they indicate.
var (
	notRepoSignatures = []string{
		"not a git repository",
	}
	remoteExistsSignatures = []string{
		"already exists",
	}
	conflictSignatures = []string{
		"conflict (",
		"could not apply",
		"merge conflict",
		"unmerged files",
		"fix conflicts",
		"resolve all conflicts",
	}
	authSignatures = []string{
		"authentication failed",
		"permission denied",
		"could not read username",
		"could not read password",
		"could not read from remote repository",
		"terminal prompts disabled",
		"invalid username or password",
		"host key verification failed",
		"the requested url returned error: 403",
		"the requested url returned error: 401",
	}
	rejectedSignatures = []string{
		"[rejected]",
		"non-fast-forward",
		"fetch first",
		"updates were rejected",
		"failed to push some refs",
	}
)

type rule struct {
	kind    Kind
	summary string
	match   func(err error, text string) bool
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{
		kind:    ToolNotInstalled,
		summary: "git executable not found",
		match: func(err error, _ string) bool {
			return errors.Is(err, exec.ErrNotFound)
		},
	},
	{
		kind:    NotARepository,
		summary: "vault is not a git repository",
		match: func(err error, text string) bool {
			return errors.Is(err, ErrNotARepository) ||
				errors.Is(err, gogit.ErrRepositoryNotExists) ||
				containsAny(text, notRepoSignatures)
		},
	},
	{
		kind:    RemoteAlreadyExists,
		summary: "remote already exists",
		match: func(err error, text string) bool {
			return errors.Is(err, gogit.ErrRemoteExists) ||
				(strings.Contains(text, "remote") && containsAny(text, remoteExistsSignatures))
		},
	},
	{
		kind:    MergeConflict,
		summary: "merge conflict while integrating remote changes",
		match: func(err error, text string) bool {
			return errors.Is(err, ErrUnmergedPaths) || containsAny(text, conflictSignatures)
		},
	},
	{
		kind:    AuthenticationFailure,
		summary: "authentication with the remote failed",
		match: func(err error, text string) bool {
			return errors.Is(err, transport.ErrAuthenticationRequired) ||
				errors.Is(err, transport.ErrAuthorizationFailed) ||
				containsAny(text, authSignatures)
		},
	},
	{
		kind:    PushRejected,
		summary: "push rejected: remote has changes not present locally",
		match: func(err error, text string) bool {
			return errors.Is(err, ErrPushRejected) ||
				errors.Is(err, gogit.ErrForceNeeded) ||
				containsAny(text, rejectedSignatures)
		},
	},
}

// Classify maps a raw backend failure onto the closed Kind taxonomy.
// An error that is already a *SyncError is returned unchanged. Classify
// returns nil for a nil error.
func Classify(op string, err error) *SyncError {
	if err == nil {
		return nil
	}

	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr
	}

	text := strings.ToLower(rawText(err))
	for _, r := range rules {
		if r.match(err, text) {
			return NewSyncError(r.kind, op, r.summary, err)
		}
	}

	return NewSyncError(GenericFailure, op, genericMessage(err), err)
}

// rawText returns everything git said about the failure.
func rawText(err error) string {
	var cmdErr *GitCommandError
	if errors.As(err, &cmdErr) {
		text := cmdErr.Stderr + "\n" + cmdErr.Stdout
		if cmdErr.Err != nil {
			text += "\n" + cmdErr.Err.Error()
		}
		return text
	}
	return err.Error()
}

func genericMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "operation timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "operation canceled"
	}

	var cmdErr *GitCommandError
	if errors.As(err, &cmdErr) {
		if line := firstLine(cmdErr.Stderr); line != "" {
			return line
		}
		if line := firstLine(cmdErr.Stdout); line != "" {
			return line
		}
	}
	return err.Error()
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "fatal: ")
		line = strings.TrimPrefix(line, "error: ")
		if line != "" {
			return line
		}
	}
	return ""
}

func containsAny(text string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(text, f) {
			return true
		}
	}
	return false
}
