package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "xo.match"

// natsPublisher emits events onto NATS subjects of the form
// <prefix>.<matchID>.<type>, so consumers can subscribe to one match, one
// event type, or everything with wildcards.
type natsPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSPublisher connects to the NATS server at url and returns a
// Publisher emitting JSON events under the given subject prefix. An empty
// prefix falls back to DefaultSubjectPrefix.
func NewNATSPublisher(url, prefix string) (Publisher, error) {
	conn, err := nats.Connect(
		url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	return &natsPublisher{
		conn:   conn,
		prefix: prefix,
	}, nil
}

// Publish implements Publisher.
func (p *natsPublisher) Publish(ctx context.Context, e Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(subject(p.prefix, e), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close implements Publisher.
func (p *natsPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}

	return nil
}

// subject builds the NATS subject for an event.
func subject(prefix string, e Event) string {
	return fmt.Sprintf("%s.%d.%s", prefix, e.MatchID, e.Type)
}
