//go:build windows

package transport

import (
	"errors"
	"fmt"
	"net"
	"os/user"
	"time"
)

// ErrNotImplemented is returned until Windows named pipe support lands.
var ErrNotImplemented = errors.New("windows named pipe transport not implemented")

// WindowsTransport implements Transport using Windows named pipes.
// Currently a stub that returns ErrNotImplemented.
type WindowsTransport struct {
	pipePath string
}

// New creates the platform transport. On Windows this is a named pipe;
// an empty pipePath selects the per-user default.
func New(pipePath string) Transport {
	return NewWindowsTransport(pipePath)
}

// NewWindowsTransport creates a Windows named pipe transport. If
// pipePath is empty, the default path \\.\pipe\beacon-<SID>-daemon is
// used.
func NewWindowsTransport(pipePath string) *WindowsTransport {
	if pipePath == "" {
		pipePath = DefaultSocketPath()
	}
	return &WindowsTransport{pipePath: pipePath}
}

// DefaultSocketPath returns the default named pipe path for the current
// user.
func DefaultSocketPath() string {
	return fmt.Sprintf(`\\.\pipe\beacon-%s-daemon`, currentUserSID())
}

func currentUserSID() string {
	u, err := user.Current()
	if err != nil {
		return "unknown"
	}
	// On Windows, Uid holds the SID.
	return u.Uid
}

// Listen is a stub that returns ErrNotImplemented.
func (t *WindowsTransport) Listen() (net.Listener, error) {
	return nil, fmt.Errorf("listen: %w", ErrNotImplemented)
}

// Dial is a stub that returns ErrNotImplemented.
func (t *WindowsTransport) Dial(timeout time.Duration) (net.Conn, error) {
	return nil, fmt.Errorf("dial: %w", ErrNotImplemented)
}

// Close is a stub that returns ErrNotImplemented.
func (t *WindowsTransport) Close() error {
	return fmt.Errorf("close: %w", ErrNotImplemented)
}

// SocketPath returns the named pipe path.
func (t *WindowsTransport) SocketPath() string {
	return t.pipePath
}

var _ Transport = (*WindowsTransport)(nil)
