//go:build !windows

package launcher

import (
	"os/exec"
	"syscall"
)

// detach puts the GUI client in its own session so it survives the terminal
// and receives no terminal signals.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
