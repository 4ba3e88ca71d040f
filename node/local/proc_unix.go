//go:build unix

package local

import (
	"os/exec"
	"syscall"
)

// setProcessGroup makes cancellation kill the whole process group, so that
// commands spawned by the script don't outlive it.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
