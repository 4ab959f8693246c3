package errors

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure categories surfaced to callers.
type Kind int

const (
	// GenericFailure is any failure that matches no other kind
	GenericFailure Kind = iota
	// ToolNotInstalled means the git executable could not be found
	ToolNotInstalled
	// NotARepository means the vault has not been initialized
	NotARepository
	// RemoteAlreadyExists means a remote with the requested name exists
	RemoteAlreadyExists
	// MergeConflict means integrating remote history produced conflicts
	MergeConflict
	// AuthenticationFailure means the remote refused our credentials
	AuthenticationFailure
	// PushRejected means the remote refused a non-fast-forward update
	PushRejected
)

var kindNames = map[Kind]string{
	GenericFailure:        "GenericFailure",
	ToolNotInstalled:      "ToolNotInstalled",
	NotARepository:        "NotARepository",
	RemoteAlreadyExists:   "RemoteAlreadyExists",
	MergeConflict:         "MergeConflict",
	AuthenticationFailure: "AuthenticationFailure",
	PushRejected:          "PushRejected",
}

// Remediation text shown to the operator, one per kind.
var remediations = map[Kind]string{
	GenericFailure:        "Check your network connection and remote configuration",
	ToolNotInstalled:      "Please install Git: https://git-scm.com/downloads",
	NotARepository:        "Run 'vaultsync init' first",
	RemoteAlreadyExists:   "Use 'vaultsync setup-remote' to update the existing remote",
	MergeConflict:         "Resolve conflicts manually and continue",
	AuthenticationFailure: "Check your SSH keys or credentials",
	PushRejected:          "Pull changes first to resolve any conflicts",
}

// Kinds returns every kind in classification order.
func Kinds() []Kind {
	return []Kind{
		ToolNotInstalled,
		NotARepository,
		RemoteAlreadyExists,
		MergeConflict,
		AuthenticationFailure,
		PushRejected,
		GenericFailure,
	}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Remediation returns the static advice for this kind.
func (k Kind) Remediation() string {
	if text, ok := remediations[k]; ok {
		return text
	}
	return remediations[GenericFailure]
}

// SyncError is the classified error returned by every engine operation.
type SyncError struct {
	Kind    Kind
	Op      string
	Message string
	Details string
	Err     error
}

func (e *SyncError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Is matches another *SyncError of the same kind, so callers can write
// errors.Is(err, &SyncError{Kind: PushRejected}).
func (e *SyncError) Is(target error) bool {
	var other *SyncError
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// NewSyncError creates a SyncError of the given kind with the kind's remediation text.
func NewSyncError(kind Kind, op, message string, err error) *SyncError {
	return &SyncError{
		Kind:    kind,
		Op:      op,
		Message: message,
		Details: kind.Remediation(),
		Err:     err,
	}
}

// KindOf returns the kind of a classified error, or GenericFailure.
func KindOf(err error) Kind {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Kind
	}
	return GenericFailure
}

// IsKind reports whether err is a SyncError of the given kind.
func IsKind(err error, kind Kind) bool {
	var syncErr *SyncError
	return errors.As(err, &syncErr) && syncErr.Kind == kind
}
