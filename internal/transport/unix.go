//go:build !windows

package transport

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// UnixTransport implements Transport using Unix domain sockets.
type UnixTransport struct {
	socketPath string
	listener   net.Listener
	mu         sync.Mutex
}

// New creates the platform transport. On Unix this is a domain socket;
// an empty socketPath selects the default resolution.
func New(socketPath string) Transport {
	return NewUnixTransport(socketPath)
}

// NewUnixTransport creates a Unix socket transport. If socketPath is
// empty, the default path resolution is used:
//  1. $XDG_RUNTIME_DIR/beacon/daemon.sock
//  2. $TMPDIR/beacon-$UID/daemon.sock
//  3. /tmp/beacon-$UID/daemon.sock
func NewUnixTransport(socketPath string) *UnixTransport {
	if socketPath == "" {
		socketPath = DefaultSocketPath()
	}
	return &UnixTransport{socketPath: socketPath}
}

// DefaultSocketPath returns the default socket path following XDG and
// security conventions.
func DefaultSocketPath() string {
	if xdgRuntime := os.Getenv("XDG_RUNTIME_DIR"); xdgRuntime != "" {
		return filepath.Join(xdgRuntime, "beacon", "daemon.sock")
	}

	uid := strconv.Itoa(os.Getuid())

	if tmpdir := os.Getenv("TMPDIR"); tmpdir != "" {
		return filepath.Join(tmpdir, "beacon-"+uid, "daemon.sock")
	}

	return filepath.Join("/tmp", "beacon-"+uid, "daemon.sock")
}

// Listen creates the socket listener. It ensures the parent directory
// exists with 0700 permissions and removes any stale socket left behind
// by a crashed daemon before binding.
func (t *UnixTransport) Listen() (net.Listener, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	dir := filepath.Dir(t.socketPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}

	if err := t.cleanupStaleSocket(); err != nil {
		return nil, fmt.Errorf("failed to cleanup stale socket: %w", err)
	}

	listener, err := net.Listen("unix", t.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on socket: %w", err)
	}

	// Owner read/write only.
	if err := os.Chmod(t.socketPath, 0600); err != nil {
		listener.Close()
		os.Remove(t.socketPath)
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	t.listener = listener
	return listener, nil
}

// cleanupStaleSocket removes the socket file if it exists and no daemon
// answers on it.
func (t *UnixTransport) cleanupStaleSocket() error {
	_, err := os.Stat(t.socketPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat socket: %w", err)
	}

	conn, err := net.DialTimeout("unix", t.socketPath, 100*time.Millisecond)
	if err == nil {
		conn.Close()
		return fmt.Errorf("socket is active (another daemon may be running)")
	}

	if err := os.Remove(t.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	return nil
}

// Dial connects to the Unix socket with the specified timeout.
func (t *UnixTransport) Dial(timeout time.Duration) (net.Conn, error) {
	if _, err := os.Stat(t.socketPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("socket not found: %s", t.socketPath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", t.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket: %w", err)
	}

	return conn, nil
}

// Close releases resources and removes the socket file.
func (t *UnixTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error

	if t.listener != nil {
		if err := t.listener.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close listener: %w", err))
		}
		t.listener = nil
	}

	if err := os.Remove(t.socketPath); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("failed to remove socket: %w", err))
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// SocketPath returns the path to the Unix socket file.
func (t *UnixTransport) SocketPath() string {
	return t.socketPath
}

var _ Transport = (*UnixTransport)(nil)
