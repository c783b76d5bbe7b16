//go:build windows

package browser

import (
	"os/exec"
	"strconv"
)

// killProcessGroup kills a process tree with taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func killProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
