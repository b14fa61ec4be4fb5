package notifier

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/enotify/enotify/internal/credentials"
)

// Detach re-executes the current binary as an independent background task
// running the given arguments, so the invoking shell gets its prompt back
// while the watch keeps going. The proven password travels to the child
// through its environment, never through argv. Stdout and stderr stay shared
// with the parent's, so the detached task's logs remain visible.
//
// Returns the pid of the background task.
func Detach(args []string, password string) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("locating own executable: %w", err)
	}

	cmd := exec.Command(exe, args...)
	cmd.Env = append(os.Environ(), credentials.EnvVar+"="+password)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	setSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting background watch task: %w", err)
	}

	pid := cmd.Process.Pid
	// The child is its own session leader; nothing waits on it.
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("releasing background watch task: %w", err)
	}
	return pid, nil
}
