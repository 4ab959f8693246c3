package integration

import (
	"testing"
)

// =============================================================================
// Conflict Integration Tests
//
// These tests cover two devices editing the same note. A conflicting rebase
// must abort cleanly, leave local notes untouched, and push nothing. A
// conflicting merge stays in the working tree for the operator.
// =============================================================================

func TestConflictingEdits(t *testing.T) {
	t.Parallel()
	binaryPath := getVaultsyncBinary(t)

	t.Run("sync stops before pushing and restores the vault", func(t *testing.T) {
		t.Parallel()
		laptop := NewTestShellWithRemote(t, binaryPath)
		desktop := laptop.Device("desktop")

		// 1. Both devices edit the same line of the same note
		desktop.WriteNote("1_note.md", "desktop version").Run("sync -m 'desktop edit'")
		laptop.CommitNote("1_note.md", "laptop version", "laptop edit")

		// 2. The laptop's sync hits the conflict and aborts the rebase
		laptop.Log("Syncing conflicting edit from laptop...")
		laptop.RunExpectError("sync").
			ExitCode(2).
			OutputContains("1_note.md").
			OutputContains("Resolve conflicts manually").
			HasNote("1_note.md", "laptop version").
			IsClean().
			HeadMessage("laptop edit")

		// 3. Nothing was pushed
		desktop.Run("pull").
			OutputContains("Already up to date").
			HasNote("1_note.md", "desktop version")

		// 4. Resolve by hand on top of the remote, then sync again
		laptop.Log("Resolving on top of the remote version...")
		laptop.Git("reset --soft origin/main").
			WriteNote("1_note.md", "desktop version\nlaptop version").
			Run("sync -m 'merge laptop and desktop'").
			IsClean().
			InSyncWithRemote()

		desktop.Run("pull").HasNote("1_note.md", "desktop version\nlaptop version")
	})

	t.Run("uncommitted edit is not mixed with remote work", func(t *testing.T) {
		t.Parallel()
		laptop := NewTestShellWithRemote(t, binaryPath)
		desktop := laptop.Device("desktop")

		desktop.WriteNote("desk.md", "from desktop").Run("sync")
		laptop.WriteNote("1_note.md", "unsaved laptop edit")

		laptop.RunExpectError("sync").
			ExitCode(1).
			OutputContains("uncommitted changes").
			HasNote("1_note.md", "unsaved laptop edit").
			NoNote("desk.md")

		laptop.Log("Committing first lets the next sync rebase cleanly...")
		laptop.Run("commit -m 'laptop edit'").
			Run("sync").
			HasNote("desk.md", "from desktop").
			HasNote("1_note.md", "unsaved laptop edit").
			InSyncWithRemote()
	})

	t.Run("merge pull leaves the conflict to resolve", func(t *testing.T) {
		t.Parallel()
		laptop := NewTestShellWithRemote(t, binaryPath)
		desktop := laptop.Device("desktop")

		desktop.CommitNote("1_note.md", "desktop", "desktop edit").Git("push origin main")
		laptop.CommitNote("1_note.md", "laptop", "laptop edit")

		laptop.RunExpectError("pull --merge").
			ExitCode(2).
			OutputContains("1_note.md").
			OutputContains("commit the merge").
			Git("diff --name-only --diff-filter=U").
			OutputContains("1_note.md")

		laptop.Log("Committing with markers still unresolved is refused...")
		laptop.RunExpectError("commit -m 'too early'").
			ExitCode(2).
			OutputContains("1_note.md")

		laptop.Log("Resolving by hand and concluding the merge...")
		laptop.WriteNote("1_note.md", "desktop\nlaptop").
			Git("add 1_note.md").
			Run("commit -m 'merge desktop'").
			Run("push").
			IsClean().
			InSyncWithRemote().
			Git("rev-list --merges --count HEAD").
			OutputContains("1")

		desktop.Run("pull").HasNote("1_note.md", "desktop\nlaptop")
	})
}
