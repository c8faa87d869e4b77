//go:build !windows

package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockFileAcquireRelease(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "beacon.lock")
	lock := NewLockFile(path)

	require.NoError(t, lock.Acquire())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	require.NoError(t, lock.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Release is idempotent.
	require.NoError(t, lock.Release())
}

func TestReadHeldPID(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "beacon.lock")

	// No lock file at all.
	_, held, err := ReadHeldPID(path)
	require.NoError(t, err)
	assert.False(t, held)

	lock := NewLockFile(path)
	require.NoError(t, lock.Acquire())
	defer lock.Release()

	pid, held, err := ReadHeldPID(path)
	require.NoError(t, err)
	assert.True(t, held)
	assert.Equal(t, os.Getpid(), pid)
}

func TestReadHeldPIDUnlockedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "beacon.lock")
	require.NoError(t, os.WriteFile(path, []byte("99999\n"), 0o600))

	// File exists but nobody holds the flock.
	_, held, err := ReadHeldPID(path)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestLockFileAcquireOverStaleFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "beacon.lock")
	require.NoError(t, os.WriteFile(path, []byte("99999\n"), 0o600))

	lock := NewLockFile(path)
	require.NoError(t, lock.Acquire())
	defer lock.Release()

	pid, held, err := ReadHeldPID(path)
	require.NoError(t, err)
	assert.True(t, held)
	assert.Equal(t, os.Getpid(), pid)
}

func TestLockFilePath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/run/beacon/beacon.lock", LockFilePath("/run/beacon"))
}
