//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

func setProcessGroup(*exec.Cmd) {}

// KillProcessGroup kills a process tree with taskkill.
// /F = force kill, /T = terminate child processes.
func KillProcessGroup(pid int) {
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
