// Package events publishes match lifecycle events for downstream consumers.
// Publishing is always best-effort from the server's point of view: a failed
// publish is logged by the caller and never affects a running game.
package events

import (
	"context"
	"time"
)

// Type identifies a match lifecycle event.
type Type string

const (
	// TypeStarted is published when a session begins.
	TypeStarted Type = "started"
	// TypeFinished is published when a session terminates, whatever the
	// reason.
	TypeFinished Type = "finished"
)

// Reasons carried by finished events.
const (
	ReasonWin         = "win"
	ReasonDraw        = "draw"
	ReasonQuit        = "quit"
	ReasonTimeout     = "timeout"
	ReasonDisconnect  = "disconnect"
	ReasonGameOver    = "game_over"
	ReasonServerError = "server_error"
)

// Event is one match lifecycle record.
type Event struct {
	Type    Type      `json:"type"`
	MatchID uint32    `json:"match_id"`
	P1      string    `json:"p1"`
	P2      string    `json:"p2"`
	Winner  string    `json:"winner,omitempty"`
	Reason  string    `json:"reason,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher emits match events. Implementations must be safe for concurrent
// use; every session publishes from its own goroutine.
type Publisher interface {
	// Publish emits one event.
	Publish(ctx context.Context, e Event) error

	// Close releases the publisher's resources. Safe to call more than
	// once.
	Close() error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
func (nopPublisher) Close() error                         { return nil }

// Nop returns a Publisher that discards every event. It is the default when
// no event transport is configured.
func Nop() Publisher {
	return nopPublisher{}
}
