//go:build windows

package launcher

import "os/exec"

// detach is a no-op on Windows; GUI processes are not tied to the console
// session the way Unix process groups are.
func detach(cmd *exec.Cmd) {}
