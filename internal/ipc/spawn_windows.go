//go:build windows

package ipc

import (
	"os/exec"
	"syscall"
)

// setProcAttr detaches the daemon into a new process group.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
