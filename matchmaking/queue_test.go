package matchmaking

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberinferno/xo-server/logger"
	"github.com/cyberinferno/xo-server/transport"
)

type pairing struct {
	p1, p2 *transport.Conn
}

// newConn returns the server side of a fresh loopback connection.
func newConn(t *testing.T) *transport.Conn {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			accepted <- nil
			return
		}
		accepted <- c
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	server := <-accepted
	require.NotNil(t, server)

	conn := transport.NewConn(server, 0)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func waitPair(t *testing.T, pairs <-chan pairing) pairing {
	t.Helper()

	select {
	case p := <-pairs:
		return p
	case <-time.After(time.Second):
		t.Fatal("no pairing happened in time")
		return pairing{}
	}
}

func assertNoPair(t *testing.T, pairs <-chan pairing) {
	t.Helper()

	select {
	case <-pairs:
		t.Fatal("unexpected pairing")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestQueueOffer(t *testing.T) {
	t.Run("lone waiter stays queued", func(t *testing.T) {
		pairs := make(chan pairing, 1)
		q := New(func(p1, p2 *transport.Conn) { pairs <- pairing{p1, p2} }, logger.Nop())

		q.Offer(newConn(t))

		assert.Equal(t, 1, q.Len())
		assertNoPair(t, pairs)
	})

	t.Run("second offer pairs the two oldest in order", func(t *testing.T) {
		pairs := make(chan pairing, 1)
		q := New(func(p1, p2 *transport.Conn) { pairs <- pairing{p1, p2} }, logger.Nop())

		c1 := newConn(t)
		c2 := newConn(t)
		q.Offer(c1)
		q.Offer(c2)

		got := waitPair(t, pairs)
		assert.Same(t, c1, got.p1)
		assert.Same(t, c2, got.p2)
		assert.Equal(t, 0, q.Len())
	})

	t.Run("third client keeps waiting", func(t *testing.T) {
		pairs := make(chan pairing, 2)
		q := New(func(p1, p2 *transport.Conn) { pairs <- pairing{p1, p2} }, logger.Nop())

		c1 := newConn(t)
		c2 := newConn(t)
		c3 := newConn(t)
		q.Offer(c1)
		q.Offer(c2)
		q.Offer(c3)

		got := waitPair(t, pairs)
		assert.Same(t, c1, got.p1)
		assert.Same(t, c2, got.p2)

		assert.Equal(t, 1, q.Len())
		assertNoPair(t, pairs)
	})

	t.Run("concurrent offers never pair a connection twice", func(t *testing.T) {
		const clients = 20

		pairs := make(chan pairing, clients/2)
		q := New(func(p1, p2 *transport.Conn) { pairs <- pairing{p1, p2} }, logger.Nop())

		conns := make([]*transport.Conn, clients)
		for i := range conns {
			conns[i] = newConn(t)
		}

		var wg sync.WaitGroup
		for _, c := range conns {
			wg.Add(1)
			go func(c *transport.Conn) {
				defer wg.Done()
				q.Offer(c)
			}(c)
		}
		wg.Wait()

		seen := make(map[*transport.Conn]bool, clients)
		for i := 0; i < clients/2; i++ {
			got := waitPair(t, pairs)
			assert.False(t, seen[got.p1], "connection paired twice")
			assert.False(t, seen[got.p2], "connection paired twice")
			seen[got.p1] = true
			seen[got.p2] = true
		}

		assert.Len(t, seen, clients)
		assert.Equal(t, 0, q.Len())
	})
}

func TestQueueDrain(t *testing.T) {
	pairs := make(chan pairing, 1)
	q := New(func(p1, p2 *transport.Conn) { pairs <- pairing{p1, p2} }, logger.Nop())

	c1 := newConn(t)
	c2 := newConn(t)
	c3 := newConn(t)
	q.Offer(c1)
	q.Offer(c2)
	q.Offer(c3)
	waitPair(t, pairs)

	drained := q.Drain()
	require.Len(t, drained, 1)
	assert.Same(t, c3, drained[0])
	assert.Equal(t, 0, q.Len())

	assert.Empty(t, q.Drain())
}
