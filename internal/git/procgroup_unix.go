//go:build !windows

package git

import (
	"os/exec"
	"syscall"
)

// setupProcessGroup starts cmd in its own process group and makes
// cancellation kill the whole group, so helpers git spawned (ssh,
// git-remote-https) die with it instead of holding the output pipes open.
func setupProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		// Negative PID signals the entire process group
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
