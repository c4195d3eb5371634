package scoreboard

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// memoryScoreboard keeps tallies in a go-cache store. A single mutex makes
// the read-modify-write in Record atomic; go-cache's own locking is not
// enough because two sessions may record for the same player at once.
type memoryScoreboard struct {
	mu    sync.Mutex
	cache *cache.Cache
	ttl   time.Duration
}

// NewMemoryScoreboard creates an in-memory scoreboard. Each Record refreshes
// the player's TTL; a non-positive ttl keeps tallies forever.
func NewMemoryScoreboard(ttl time.Duration) Scoreboard {
	cleanup := ttl
	if ttl <= 0 {
		ttl = cache.NoExpiration
		cleanup = 0
	}

	return &memoryScoreboard{
		cache: cache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// Record implements Scoreboard.
func (m *memoryScoreboard) Record(ctx context.Context, player string, outcome Outcome) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var tally Tally
	if val, found := m.cache.Get(player); found {
		if existing, ok := val.(Tally); ok {
			tally = existing
		}
	}

	switch outcome {
	case Win:
		tally.Wins++
	case Loss:
		tally.Losses++
	case Draw:
		tally.Draws++
	case Forfeit:
		tally.Forfeits++
	}

	m.cache.Set(player, tally, m.ttl)

	return nil
}

// Get implements Scoreboard.
func (m *memoryScoreboard) Get(ctx context.Context, player string) (Tally, error) {
	select {
	case <-ctx.Done():
		return Tally{}, ctx.Err()
	default:
	}

	if val, found := m.cache.Get(player); found {
		if tally, ok := val.(Tally); ok {
			return tally, nil
		}
	}

	return Tally{}, nil
}

// Players implements Scoreboard.
func (m *memoryScoreboard) Players(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	return m.cache.ItemCount(), nil
}

// Reset implements Scoreboard.
func (m *memoryScoreboard) Reset(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m.cache.Flush()

	return nil
}
