//go:build unix

package render

import (
	"os/exec"
	"syscall"
)

// setProcAttrs places the render process in its own process group so the
// whole tree can be signalled at once.
func setProcAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killTree kills the render process and every descendant in its group.
func killTree(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	// Negative pid targets the process group.
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
