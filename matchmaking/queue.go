// Package matchmaking holds connections that are waiting for an opponent and
// pairs them two at a time, oldest first.
package matchmaking

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/cyberinferno/xo-server/logger"
	"github.com/cyberinferno/xo-server/transport"
)

// PairFunc receives a matched pair in removal order: p1 has waited longest.
type PairFunc func(p1, p2 *transport.Conn)

// Queue is the process-wide holding area for connections awaiting a second
// player. One mutex covers append and pop-pair as a single atomic step, so a
// connection is never paired twice and a pair is always the two oldest
// waiters. The queue is unbounded and a lone waiter waits indefinitely.
type Queue struct {
	mu      sync.Mutex
	waiting *queue.Queue
	pair    PairFunc
	log     logger.Logger
}

// New creates a Queue that hands matched pairs to pair.
func New(pair PairFunc, log logger.Logger) *Queue {
	if log == nil {
		log = logger.Nop()
	}

	return &Queue{
		waiting: queue.New(),
		pair:    pair,
		log:     log,
	}
}

// Offer adds c to the queue. If that makes two or more waiters, the two
// oldest are removed under the same lock and handed to the pair function in
// a new goroutine. The lock is never held across the pair call.
func (q *Queue) Offer(c *transport.Conn) {
	q.mu.Lock()
	q.waiting.Add(c)

	var p1, p2 *transport.Conn
	if q.waiting.Length() >= 2 {
		p1 = q.waiting.Remove().(*transport.Conn)
		p2 = q.waiting.Remove().(*transport.Conn)
	}
	q.mu.Unlock()

	if p1 == nil {
		q.log.Debug("player waiting for opponent", logger.Field{Key: "player", Value: c.Identity()})
		return
	}

	q.log.Debug("players paired",
		logger.Field{Key: "p1", Value: p1.Identity()},
		logger.Field{Key: "p2", Value: p2.Identity()},
	)
	go q.pair(p1, p2)
}

// Len returns the number of connections currently waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.waiting.Length()
}

// Drain removes and returns every waiting connection. Used on server stop to
// close clients that never got an opponent.
func (q *Queue) Drain() []*transport.Conn {
	q.mu.Lock()
	defer q.mu.Unlock()

	drained := make([]*transport.Conn, 0, q.waiting.Length())
	for q.waiting.Length() > 0 {
		drained = append(drained, q.waiting.Remove().(*transport.Conn))
	}

	return drained
}
