// Package tui provides the terminal side of vaultsync.
//
// It handles:
//   - Operator logging (Splog) with an optional rotating log file
//   - Terminal styling (lipgloss, with termenv picking the color profile)
//   - A live progress view of sync state transitions (bubbletea)
//   - Interactive prompts (bubbles textinput and survey)
package tui
