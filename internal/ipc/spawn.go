package ipc

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"golang.org/x/sys/execabs"
)

// DaemonBinaryName is the name of the daemon executable.
const DaemonBinaryName = "beacond"

var (
	// Test seams for spawn behavior.
	quickDialFn  = quickDial
	lookupPathFn = exec.LookPath
	startCmdFn   = startDaemonProcess
)

// quickDial probes the daemon socket.
func quickDial(socketPath string) error {
	conn, err := net.DialTimeout("unix", socketPath, DialTimeout)
	if err != nil {
		return err
	}
	conn.Close()
	return nil
}

// EnsureDaemon makes sure a daemon is reachable at socketPath, spawning
// one if needed and waiting up to timeout for it to come up.
func EnsureDaemon(ctx context.Context, socketPath string, timeout time.Duration) error {
	if SocketExists(socketPath) && quickDialFn(socketPath) == nil {
		return nil
	}

	if err := SpawnDaemon(ctx); err != nil {
		return err
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("daemon did not start within %v", timeout)
		case <-ticker.C:
			if SocketExists(socketPath) && quickDialFn(socketPath) == nil {
				return nil
			}
		}
	}
}

// SpawnDaemon starts the daemon process in the background. It does not
// wait for the daemon to be ready.
func SpawnDaemon(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	daemonPath, err := findDaemonBinary()
	if err != nil {
		return err
	}

	return startCmdFn(daemonPath)
}

// startDaemonProcess launches the daemon binary fully detached.
func startDaemonProcess(daemonPath string) error {
	// execabs refuses binaries resolved to relative paths.
	cmd := execabs.Command(daemonPath)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	setProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	// Not waiting: the daemon outlives this process.
	return cmd.Process.Release()
}

// findDaemonBinary locates the daemon executable.
func findDaemonBinary() (string, error) {
	// Explicit override.
	if path := os.Getenv("BEACON_DAEMON_PATH"); path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve BEACON_DAEMON_PATH: %w", err)
		}
		if _, err := os.Stat(absPath); err == nil {
			return absPath, nil
		}
		return "", fmt.Errorf("BEACON_DAEMON_PATH does not exist: %s", absPath)
	}

	// Same directory as the current executable.
	if exe, err := os.Executable(); err == nil {
		daemonPath := filepath.Join(filepath.Dir(exe), DaemonBinaryName)
		if _, err := os.Stat(daemonPath); err == nil {
			return daemonPath, nil
		}
	}

	// PATH lookup.
	if path, err := lookupPathFn(DaemonBinaryName); err == nil {
		if absPath, absErr := filepath.Abs(path); absErr == nil {
			return absPath, nil
		}
		return path, nil
	}

	// Common install locations.
	commonPaths := []string{
		"/usr/local/bin/" + DaemonBinaryName,
		"/usr/bin/" + DaemonBinaryName,
	}
	if home, err := os.UserHomeDir(); err == nil {
		commonPaths = append(commonPaths,
			filepath.Join(home, ".local", "bin", DaemonBinaryName),
			filepath.Join(home, "go", "bin", DaemonBinaryName),
		)
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("daemon binary %q not found", DaemonBinaryName)
}

// IsDaemonRunning checks whether a daemon answers on socketPath.
func IsDaemonRunning(socketPath string) bool {
	return SocketExists(socketPath) && quickDialFn(socketPath) == nil
}
