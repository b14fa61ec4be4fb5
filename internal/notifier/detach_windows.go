//go:build windows

package notifier

import (
	"os/exec"
	"syscall"
)

const detachedProcess = 0x00000008

// setSysProcAttr detaches the child from the parent's console so it survives
// the parent's exit.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | detachedProcess,
	}
}
