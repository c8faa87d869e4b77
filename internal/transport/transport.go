// Package transport provides IPC transport abstractions for the beacon
// daemon. It supports Unix domain sockets on macOS/Linux; Windows named
// pipes are stubbed pending a native implementation.
package transport

import (
	"net"
	"time"
)

// Transport is the platform IPC mechanism between the launcher frontend
// and the daemon.
type Transport interface {
	// Listen creates a listener for the transport. The implementation
	// creates any necessary directories and cleans up stale sockets.
	Listen() (net.Listener, error)

	// Dial connects to the transport with the specified timeout.
	Dial(timeout time.Duration) (net.Conn, error)

	// Close releases resources held by the transport, including socket
	// files on Unix systems.
	Close() error

	// SocketPath returns the path to the socket file or pipe name.
	SocketPath() string
}
