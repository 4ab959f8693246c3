package actions

import (
	"errors"
	"strings"

	syncerrors "vaultsync.dev/vaultsync/internal/errors"
	"vaultsync.dev/vaultsync/internal/lock"
	"vaultsync.dev/vaultsync/internal/tui"
)

// ReportError prints err for the operator. Classified errors show their
// message and remediation; the underlying git output only goes to debug.
func ReportError(splog *tui.Splog, err error) {
	if err == nil {
		return
	}

	var (
		syncErr  *syncerrors.SyncError
		lockErr  *lock.TimeoutError
		unmerged *syncerrors.UnmergedPathsError
	)
	switch {
	case errors.As(err, &syncErr):
		splog.Error("%s failed: %s", syncErr.Op, syncErr.Message)
		if errors.As(err, &unmerged) {
			for _, f := range unmerged.Files {
				splog.Info("  • %s", f)
			}
		}
		if syncErr.Details != "" {
			splog.Tip(syncErr.Details)
		}
		if syncErr.Err != nil {
			splog.Debug("[%s] %s: %s", syncErr.Op, syncErr.Kind, strings.TrimSpace(syncErr.Err.Error()))
		}
	case errors.As(err, &lockErr):
		splog.Error(lockErr.Error())
		splog.Tip("Another vaultsync run or git process is using this vault; try again once it finishes")
	default:
		splog.Error(err.Error())
	}
}

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, lock.ErrTimeout):
		return 3
	case syncerrors.IsKind(err, syncerrors.MergeConflict):
		return 2
	default:
		return 1
	}
}
