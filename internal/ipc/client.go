// Package ipc provides the client side of the beacon daemon protocol:
// JSON over HTTP across the platform IPC transport, plus daemon
// spawning for on-demand startup.
package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/runger/beacon/internal/daemon"
	"github.com/runger/beacon/internal/result"
	"github.com/runger/beacon/internal/transport"
)

// Default timeouts for different operation types.
const (
	// DialTimeout is the maximum time to wait for a socket connection.
	DialTimeout = 250 * time.Millisecond

	// SearchTimeout bounds interactive queries; the picker issues one per
	// debounced keystroke.
	SearchTimeout = 500 * time.Millisecond

	// ActivateTimeout bounds launches, which may fork processes.
	ActivateTimeout = 5 * time.Second

	// RefreshTimeout bounds a full catalog rescan.
	RefreshTimeout = 30 * time.Second
)

// SocketPath resolves the daemon socket path: an explicit path wins,
// then $BEACON_SOCKET, then the platform default.
func SocketPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if path := os.Getenv("BEACON_SOCKET"); path != "" {
		return path
	}
	return transport.DefaultSocketPath()
}

// SocketExists checks whether the daemon socket file exists.
func SocketExists(socketPath string) bool {
	_, err := os.Stat(socketPath)
	return err == nil
}

// Client talks to the beacon daemon.
type Client struct {
	httpc      *http.Client
	socketPath string
}

// NewClient creates a client for the daemon at socketPath (empty uses
// the default resolution). No connection is made until the first call.
func NewClient(socketPath string) *Client {
	path := SocketPath(socketPath)
	tr := transport.New(path)
	return &Client{
		socketPath: path,
		httpc: &http.Client{
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					return tr.Dial(DialTimeout)
				},
			},
		},
	}
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpc.CloseIdleConnections()
	return nil
}

// SocketPath returns the resolved daemon socket path.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// Search asks the daemon for the ranked results of a query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]result.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, SearchTimeout)
	defer cancel()

	var resp daemon.SearchResponse
	err := c.post(ctx, "/search", daemon.SearchRequest{Query: query, Limit: limit}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Activate asks the daemon to launch a result. Returns whether the
// activation was recorded in the usage store.
func (c *Client) Activate(ctx context.Context, res result.Result) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, ActivateTimeout)
	defer cancel()

	var resp daemon.ActivateResponse
	if err := c.post(ctx, "/activate", daemon.ActivateRequest{Result: res}, &resp); err != nil {
		return false, err
	}
	return resp.Recorded, nil
}

// Refresh triggers a catalog rescan and returns the new entry count.
func (c *Client) Refresh(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, RefreshTimeout)
	defer cancel()

	var resp daemon.RefreshResponse
	if err := c.post(ctx, "/refresh", struct{}{}, &resp); err != nil {
		return 0, err
	}
	return resp.Entries, nil
}

// Status retrieves daemon status information.
func (c *Client) Status(ctx context.Context) (*daemon.StatusResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, SearchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://beacon/status", nil)
	if err != nil {
		return nil, err
	}
	var resp daemon.StatusResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ping reports whether the daemon is responsive.
func (c *Client) Ping(ctx context.Context) bool {
	_, err := c.Status(ctx)
	return err == nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://beacon"+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("daemon request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr daemon.ErrorResponse
		if decErr := json.NewDecoder(resp.Body).Decode(&apiErr); decErr == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon error %s: %s", apiErr.Error, apiErr.Message)
		}
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
