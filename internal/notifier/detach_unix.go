//go:build !windows

package notifier

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr puts the child in a new session, detached from the parent's
// terminal, so it survives the parent's exit.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
