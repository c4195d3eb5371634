// Package transport provides the blocking send/receive primitives used to
// talk to a connected player: full-text sends, single-read receives with a
// per-call deadline, and the typed fault errors the protocol layer
// dispatches on.
package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// UnknownIdentity is the sentinel identity reported for a connection whose
// remote endpoint cannot be resolved.
const UnknownIdentity = "unknown:0"

// DefaultBufferSize is the read buffer size used when none is configured.
const DefaultBufferSize = 1024

// DisconnectedError signals that the peer is gone: a failed write, an
// orderly close, or any other read failure. It carries the offending
// connection's identity so the session can pick the surviving player.
type DisconnectedError struct {
	Addr  string
	Cause string
}

func (e *DisconnectedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Cause, e.Addr)
}

// TimeoutError signals that a receive deadline expired before the peer sent
// anything. It carries the offending connection's identity and the bound
// that was exceeded.
type TimeoutError struct {
	Addr    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s: %s", e.Timeout, e.Addr)
}

// Conn wraps a net.Conn with the fixed-size, single-read receive the wire
// protocol assumes: one client message must fit in one read. A Conn is owned
// by exactly one goroutine at a time; only Close is safe to call
// concurrently with other methods.
type Conn struct {
	conn net.Conn
	buf  []byte
}

// NewConn wraps c with a read buffer of bufSize bytes. A non-positive
// bufSize falls back to DefaultBufferSize.
func NewConn(c net.Conn, bufSize int) *Conn {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	return &Conn{
		conn: c,
		buf:  make([]byte, bufSize),
	}
}

// Identity returns the remote endpoint as host:port, or UnknownIdentity when
// it cannot be resolved.
func (c *Conn) Identity() string {
	if addr := c.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}

	return UnknownIdentity
}

// Send writes the whole text to the peer. Any write failure is reported as a
// *DisconnectedError.
func (c *Conn) Send(text string) error {
	if _, err := c.conn.Write([]byte(text)); err != nil {
		return &DisconnectedError{
			Addr:  c.Identity(),
			Cause: fmt.Sprintf("send failed: %v", err),
		}
	}

	return nil
}

// Receive blocks for one message from the peer, for at most timeout.
//
// It performs exactly one read into the connection's buffer and returns the
// received bytes with surrounding whitespace trimmed. Zero bytes from an
// orderly close yield a *DisconnectedError, an expired deadline yields a
// *TimeoutError, and any other read failure yields a *DisconnectedError. The
// read deadline is cleared again on every exit path, so later operations on
// the connection block indefinitely as usual.
func (c *Conn) Receive(timeout time.Duration) (string, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", &DisconnectedError{
			Addr:  c.Identity(),
			Cause: fmt.Sprintf("recv failed: %v", err),
		}
	}
	defer func() {
		_ = c.conn.SetReadDeadline(time.Time{})
	}()

	n, err := c.conn.Read(c.buf)
	if n > 0 {
		// Data arrived; a trailing error will surface on the next read.
		return strings.TrimSpace(string(c.buf[:n])), nil
	}

	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		return "", &TimeoutError{Addr: c.Identity(), Timeout: timeout}
	case err == nil || errors.Is(err, io.EOF):
		return "", &DisconnectedError{Addr: c.Identity(), Cause: "client closed connection"}
	default:
		return "", &DisconnectedError{
			Addr:  c.Identity(),
			Cause: fmt.Sprintf("recv failed: %v", err),
		}
	}
}

// Close closes the underlying connection. Closing an already-closed Conn
// returns the underlying error but never panics.
func (c *Conn) Close() error {
	return c.conn.Close()
}
