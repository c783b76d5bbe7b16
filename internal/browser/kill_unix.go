//go:build !windows

package browser

import "syscall"

// killProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func killProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best effort; launcher.Cleanup waits for the main process either way.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
