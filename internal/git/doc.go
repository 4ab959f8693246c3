// Package git provides the version-control backends used by the sync engine.
//
// Two interchangeable implementations of Backend exist:
//   - CLIBackend runs the git executable for every operation
//   - GoGitBackend uses go-git for local reads and writes (status, staging,
//     commits, config, remotes) and hands network and history-rewriting
//     operations (fetch, pull, rebase abort, push) to an embedded CLIBackend
//
// Backends report raw failures. Classification into the error taxonomy lives
// in internal/errors and is applied by the engine.
package git
