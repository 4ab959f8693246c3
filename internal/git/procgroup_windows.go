//go:build windows

package git

import "os/exec"

// setupProcessGroup keeps the default cancellation, which kills git only;
// WaitDelay still bounds the wait on pipes held by its children.
func setupProcessGroup(*exec.Cmd) {}
