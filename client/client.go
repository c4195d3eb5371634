// Package client provides an event-driven client for the game server's
// line protocol. Callers register handlers for server lines and for
// disconnection, then connect and send moves as plain text lines.
package client

import (
	"bufio"
	"fmt"
	"net"
	"sync"
	"time"
)

// LineHandler is called with each complete line received from the server,
// with the trailing newline removed. Handlers run on the read goroutine so
// lines arrive in order; they must not block.
type LineHandler func(line string)

// DisconnectHandler is called once when the connection is lost without a
// prior Close. err is nil when the server closed the connection cleanly.
type DisconnectHandler func(err error)

// Config holds connection settings for the game client.
type Config struct {
	// Addr is the server "host:port".
	Addr string
	// DialTimeout is the max duration for establishing the connection.
	DialTimeout time.Duration
	// WriteTimeout is the max duration for a single send; 0 means no timeout.
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config for the given address with a 10s dial
// timeout and a 10s write timeout.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:         addr,
		DialTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Client is a line-oriented TCP client for the game server. It is safe for
// concurrent use.
type Client struct {
	cfg Config

	mu           sync.RWMutex
	conn         net.Conn
	onLine       LineHandler
	onDisconnect DisconnectHandler
	closed       bool
	wg           sync.WaitGroup
}

// New creates a Client for the given config. The client starts disconnected;
// call Connect to reach the server.
//
// Parameters:
//   - cfg: Connection settings (e.g. from DefaultConfig)
//
// Returns:
//   - A new *Client; call Close when done to release resources.
func New(cfg Config) *Client {
	return &Client{cfg: cfg}
}

// OnLine registers the handler for incoming server lines. Only one handler
// is active; repeated calls replace the previous handler.
func (c *Client) OnLine(handler LineHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLine = handler
}

// OnDisconnect registers the handler invoked when the server closes the
// connection or the read fails. Only one handler is active; repeated calls
// replace the previous handler.
func (c *Client) OnDisconnect(handler DisconnectHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDisconnect = handler
}

// Connect dials the server and starts reading lines. It returns an error if
// the client is closed, already connected, or the dial fails. After a lost
// connection, Connect may be called again; the server will treat it as a
// brand new player.
//
// Returns:
//   - nil on success; otherwise an error.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("client is closed")
	}
	if c.conn != nil {
		c.mu.Unlock()
		return fmt.Errorf("already connected")
	}
	c.mu.Unlock()

	dialer := net.Dialer{Timeout: c.cfg.DialTimeout}

	conn, err := dialer.Dial("tcp", c.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.cfg.Addr, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return fmt.Errorf("client is closed")
	}
	c.conn = conn
	c.mu.Unlock()

	c.wg.Add(1)
	go c.readLoop(conn)

	return nil
}

// SendLine writes one line to the server, appending the protocol's newline
// terminator.
//
// Parameters:
//   - line: Text to send, without a trailing newline
//
// Returns:
//   - nil on success; an error if not connected or the write fails.
func (c *Client) SendLine(line string) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	if c.cfg.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
			return err
		}

		defer func() {
			_ = conn.SetWriteDeadline(time.Time{}) // Best effort to clear deadline
		}()
	}

	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("failed to send %q: %w", line, err)
	}

	return nil
}

// IsConnected reports whether the client currently holds a live connection.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil
}

// Close shuts down the client and waits for the read goroutine to stop. The
// disconnect handler is not invoked for a requested Close. Idempotent.
//
// Returns:
//   - nil
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}

	c.closed = true

	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.wg.Wait()

	return nil
}

// readLoop delivers server lines to the line handler until the connection
// ends, then reports the disconnect unless Close requested it.
func (c *Client) readLoop(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		c.emitLine(scanner.Text())
	}
	err := scanner.Err()

	c.mu.Lock()
	requested := c.closed
	if c.conn == conn {
		_ = conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	// Done before the handler runs so the handler may call Close.
	c.wg.Done()

	if !requested {
		c.emitDisconnect(err)
	}
}

func (c *Client) emitLine(line string) {
	c.mu.RLock()
	handler := c.onLine
	c.mu.RUnlock()

	if handler != nil {
		handler(line)
	}
}

func (c *Client) emitDisconnect(err error) {
	c.mu.RLock()
	handler := c.onDisconnect
	c.mu.RUnlock()

	if handler != nil {
		handler(err)
	}
}
