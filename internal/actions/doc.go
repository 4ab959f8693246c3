// Package actions provides the behavior behind each vaultsync command.
//
// Each action corresponds to a command (init, setup-remote, sync, etc.) and
// orchestrates the engine, the vault helpers and the tui package.
//
// Key patterns:
//   - Actions accept runtime.Context which provides Engine, Splog, Config and the vault path
//   - Actions print results; they return engine errors unchanged so ReportError
//     can render the classified message and its remediation
//   - Long-running git work is shown through tui.RunProgress
package actions
