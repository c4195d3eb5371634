package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopPublisher(t *testing.T) {
	p := Nop()

	assert.NoError(t, p.Publish(context.Background(), Event{Type: TypeStarted, MatchID: 1}))
	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}

func TestSubject(t *testing.T) {
	e := Event{Type: TypeFinished, MatchID: 42}

	assert.Equal(t, "xo.match.42.finished", subject(DefaultSubjectPrefix, e))
	assert.Equal(t, "custom.42.finished", subject("custom", e))
}

func TestEventJSON(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e := Event{
		Type:    TypeFinished,
		MatchID: 7,
		P1:      "127.0.0.1:50001",
		P2:      "127.0.0.1:50002",
		Winner:  "X",
		Reason:  ReasonWin,
		At:      at,
	}

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "finished", decoded["type"])
	assert.EqualValues(t, 7, decoded["match_id"])
	assert.Equal(t, "X", decoded["winner"])
	assert.Equal(t, "win", decoded["reason"])

	// Empty winner and reason stay off the wire.
	data, err = json.Marshal(Event{Type: TypeStarted, MatchID: 7, At: at})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "winner")
	assert.NotContains(t, string(data), "reason")
}
