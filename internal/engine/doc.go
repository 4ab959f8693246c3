// Package engine is the vault synchronization engine.
//
// It composes a git.Backend into the operations exposed to the CLI:
//   - InitRepo and SetupRemote prepare a vault idempotently
//   - GetStatus inspects the repository without touching it
//   - CommitAll stages and commits everything, provisioning an identity if none exists
//   - PullChanges, PushChanges and QuickSync drive the sync state machine
//
// Mutating operations hold the per-vault lock from internal/lock. Every raw
// backend failure is classified exactly once, at the backend boundary, into
// the error taxonomy from internal/errors. Progress is reported through an
// injected Observer rather than logged directly.
package engine
