package banner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"
)

// DefaultURL is the endpoint the OBS plugin's WebSocket server listens on.
const DefaultURL = "ws://localhost:9001"

var (
	// ErrConnectionRefused indicates the endpoint could not be reached at connect time.
	ErrConnectionRefused = errors.New("could not connect")

	// ErrTransport indicates a send failed or the connection dropped mid-session.
	ErrTransport = errors.New("transport failure")

	// ErrClosed is returned when sending on a client that has been closed.
	ErrClosed = fmt.Errorf("%w: client is closed", ErrTransport)
)

// Client sends banner commands over a single WebSocket connection.
// Commands are fire-and-forget: no data message is read back from the server.
type Client struct {
	conn    Conn
	writeMu sync.Mutex

	closed atomic.Bool

	// peerDone is closed once the connection is gone, including a close
	// initiated by the server. Nil for clients built with NewClient.
	peerDone <-chan struct{}
}

// NewClient creates a new banner client with the given connection.
func NewClient(conn Conn) *Client {
	return &Client{conn: conn}
}

// Dial connects to a banner endpoint and returns a new client.
// No timeout is applied beyond what ctx carries.
func Dial(ctx context.Context, wsURL string) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w to %s: %w", ErrConnectionRefused, wsURL, err)
	}

	// Control frames are only processed while something reads, so a
	// background reader handles pings and the server's close frame.
	// A data message from the server closes the connection.
	readCtx := conn.CloseRead(context.Background())

	c := NewClient(conn)
	c.peerDone = readCtx.Done()
	return c, nil
}

// Done returns a channel that is closed when the connection has gone away.
// Returns nil for clients built with NewClient.
func (c *Client) Done() <-chan struct{} {
	return c.peerDone
}

// Send serializes cmd and writes it as a single text frame.
// Returns the payload that was written so callers can echo it.
func (c *Client) Send(ctx context.Context, cmd Command) ([]byte, error) {
	if cmd == nil {
		return nil, errors.New("no command to send")
	}
	if c.closed.Load() {
		return nil, ErrClosed
	}
	select {
	case <-c.peerDone:
		return nil, fmt.Errorf("%w: connection closed by server", ErrTransport)
	default:
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", cmd.Name(), err)
	}

	c.writeMu.Lock()
	err = c.conn.Write(ctx, websocket.MessageText, data)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send %s: %w", ErrTransport, cmd.Name(), err)
	}

	return data, nil
}

// Close closes the connection with a normal closure status.
// Calling Close more than once is a no-op.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}
	return c.conn.Close(websocket.StatusNormalClosure, "client closing")
}
