// Package scoreboard keeps aggregate per-player results across matches.
// Tallies are bookkeeping only; they are never part of the wire protocol.
package scoreboard

import (
	"context"
	"net"
)

// Outcome is the result of one match from a single player's point of view.
type Outcome int

const (
	// Win is a decisive win by filling a line.
	Win Outcome = iota
	// Loss is a decisive loss.
	Loss
	// Draw is a full board with no winner.
	Draw
	// Forfeit covers quitting, timing out, or disconnecting mid-game.
	Forfeit
)

// String returns the tally field name for the outcome.
func (o Outcome) String() string {
	switch o {
	case Win:
		return "wins"
	case Loss:
		return "losses"
	case Draw:
		return "draws"
	case Forfeit:
		return "forfeits"
	default:
		return "unknown"
	}
}

// Tally is a player's accumulated results.
type Tally struct {
	Wins     int
	Losses   int
	Draws    int
	Forfeits int
}

// Scoreboard records and reads per-player tallies. Implementations must be
// safe for concurrent use; sessions record outcomes from their own
// goroutines.
type Scoreboard interface {
	// Record adds one outcome to the player's tally.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - player: The player key, as produced by PlayerKey
	//   - outcome: The outcome to add
	//
	// Returns:
	//   - An error if the tally could not be updated
	Record(ctx context.Context, player string, outcome Outcome) error

	// Get returns the player's current tally. An unknown player yields a
	// zero tally, not an error.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - player: The player key to look up
	//
	// Returns:
	//   - The player's tally
	//   - An error if the lookup failed
	Get(ctx context.Context, player string) (Tally, error)

	// Players returns the number of players with a recorded tally.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//
	// Returns:
	//   - The player count
	//   - An error if counting failed
	Players(ctx context.Context) (int, error)

	// Reset removes all recorded tallies.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//
	// Returns:
	//   - An error if the reset failed
	Reset(ctx context.Context) error
}

// PlayerKey derives the tally key from a connection identity: the host with
// the port stripped, so a player keeps one tally across connections. An
// identity that is not host:port is used as-is.
func PlayerKey(identity string) string {
	host, _, err := net.SplitHostPort(identity)
	if err != nil {
		return identity
	}

	return host
}
