package scoreboard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces tally hashes in a shared Redis database.
const redisKeyPrefix = "xo:score:"

// redisScoreboard keeps tallies in Redis hashes, one hash per player, so
// several server processes can share a scoreboard. HINCRBY makes each Record
// atomic without client-side locking.
type redisScoreboard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisScoreboard creates a scoreboard backed by Redis. Each Record
// refreshes the player key's TTL; a non-positive ttl keeps tallies forever.
//
// Example:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	board := scoreboard.NewRedisScoreboard(client, 24*time.Hour)
func NewRedisScoreboard(client *redis.Client, ttl time.Duration) Scoreboard {
	return &redisScoreboard{
		client: client,
		ttl:    ttl,
	}
}

func redisKey(player string) string {
	return redisKeyPrefix + player
}

// Record implements Scoreboard.
func (r *redisScoreboard) Record(ctx context.Context, player string, outcome Outcome) error {
	key := redisKey(player)
	if err := r.client.HIncrBy(ctx, key, outcome.String(), 1).Err(); err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}

	if r.ttl > 0 {
		if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
			return fmt.Errorf("failed to refresh tally ttl: %w", err)
		}
	}

	return nil
}

// Get implements Scoreboard. A player with no recorded outcomes yields a
// zero tally, matching the HGETALL behavior for a missing key.
func (r *redisScoreboard) Get(ctx context.Context, player string) (Tally, error) {
	fields, err := r.client.HGetAll(ctx, redisKey(player)).Result()
	if err != nil {
		return Tally{}, fmt.Errorf("failed to read tally: %w", err)
	}

	var tally Tally
	for field, raw := range fields {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return Tally{}, fmt.Errorf("failed to parse tally field %s: %w", field, err)
		}

		switch field {
		case Win.String():
			tally.Wins = count
		case Loss.String():
			tally.Losses = count
		case Draw.String():
			tally.Draws = count
		case Forfeit.String():
			tally.Forfeits = count
		}
	}

	return tally, nil
}

// Players implements Scoreboard.
func (r *redisScoreboard) Players(ctx context.Context) (int, error) {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return 0, err
	}

	return len(keys), nil
}

// Reset implements Scoreboard.
func (r *redisScoreboard) Reset(ctx context.Context) error {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete tallies: %w", err)
		}
	}

	return nil
}

// scanKeys enumerates tally keys with SCAN rather than KEYS so Redis stays
// responsive on large databases.
func (r *redisScoreboard) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string

	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan tally keys: %w", err)
	}

	return keys, nil
}
