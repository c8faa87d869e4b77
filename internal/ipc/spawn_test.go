//go:build !windows

package ipc

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDaemonBinaryEnvOverride(t *testing.T) {
	bin := filepath.Join(t.TempDir(), DaemonBinaryName)
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))
	t.Setenv("BEACON_DAEMON_PATH", bin)

	path, err := findDaemonBinary()
	require.NoError(t, err)
	assert.Equal(t, bin, path)
}

func TestFindDaemonBinaryEnvOverrideMissing(t *testing.T) {
	t.Setenv("BEACON_DAEMON_PATH", filepath.Join(t.TempDir(), "nope"))

	_, err := findDaemonBinary()
	require.Error(t, err)
}

func TestEnsureDaemonFastPath(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "daemon.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	defer listener.Close()
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	spawned := false
	origStart := startCmdFn
	startCmdFn = func(string) error { spawned = true; return nil }
	defer func() { startCmdFn = origStart }()

	require.NoError(t, EnsureDaemon(context.Background(), socketPath, time.Second))
	assert.False(t, spawned)
}

func TestEnsureDaemonSpawnTimeout(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "daemon.sock")

	bin := filepath.Join(t.TempDir(), DaemonBinaryName)
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))
	t.Setenv("BEACON_DAEMON_PATH", bin)

	// Spawn succeeds but the socket never appears.
	origStart := startCmdFn
	startCmdFn = func(string) error { return nil }
	defer func() { startCmdFn = origStart }()

	err := EnsureDaemon(context.Background(), socketPath, 100*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not start")
}

func TestSpawnDaemonCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SpawnDaemon(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEnsureDaemonSpawnFailure(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "daemon.sock")

	bin := filepath.Join(t.TempDir(), DaemonBinaryName)
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))
	t.Setenv("BEACON_DAEMON_PATH", bin)

	origStart := startCmdFn
	startCmdFn = func(string) error { return errors.New("fork failed") }
	defer func() { startCmdFn = origStart }()

	err := EnsureDaemon(context.Background(), socketPath, time.Second)
	require.Error(t, err)
}

func TestIsDaemonRunning(t *testing.T) {
	t.Parallel()

	assert.False(t, IsDaemonRunning(filepath.Join(t.TempDir(), "absent.sock")))
}
