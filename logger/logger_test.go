package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZerologLogger(t *testing.T) {
	t.Run("writes structured entries with service name", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewZerologLogger(zerolog.New(&buf), "test-service", zerolog.InfoLevel)

		log.Info("hello", Field{Key: "player", Value: "127.0.0.1:5000"})

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "test-service", entry["service"])
		assert.Equal(t, "hello", entry["message"])
		assert.Equal(t, "127.0.0.1:5000", entry["player"])
	})

	t.Run("filters entries below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewZerologLogger(zerolog.New(&buf), "test-service", zerolog.WarnLevel)

		log.Debug("dropped")
		log.Info("dropped too")
		assert.Zero(t, buf.Len())

		log.Warn("kept")
		assert.NotZero(t, buf.Len())
	})

	t.Run("close without file is a no-op", func(t *testing.T) {
		log := NewZerologLogger(zerolog.New(os.Stdout), "test-service", zerolog.InfoLevel)
		assert.NoError(t, log.Close())
		assert.NoError(t, log.Close())
	})
}

func TestZerologLoggerWith(t *testing.T) {
	t.Run("derived logger carries fields on every entry", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewZerologLogger(zerolog.New(&buf), "test-service", zerolog.InfoLevel)

		derived := log.With(Field{Key: "match_id", Value: 7})
		derived.Info("first")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.EqualValues(t, 7, entry["match_id"])
	})

	t.Run("original logger is unchanged", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewZerologLogger(zerolog.New(&buf), "test-service", zerolog.InfoLevel)

		_ = log.With(Field{Key: "match_id", Value: 7})
		log.Info("plain")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		_, found := entry["match_id"]
		assert.False(t, found)
	})
}

func TestNewZerologFileLogger(t *testing.T) {
	t.Run("creates directory and appends to the log file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "logs")

		log, err := NewZerologFileLogger("xo-server", dir, zerolog.InfoLevel)
		require.NoError(t, err)

		log.Info("started")
		require.NoError(t, log.Close())

		data, err := os.ReadFile(filepath.Join(dir, "xo-server.log"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "started")
		assert.Contains(t, string(data), "xo-server")
	})

	t.Run("close is idempotent", func(t *testing.T) {
		log, err := NewZerologFileLogger("xo-server", t.TempDir(), zerolog.InfoLevel)
		require.NoError(t, err)

		require.NoError(t, log.Close())
		assert.NoError(t, log.Close())
	})
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Debug("ignored")
	log.Info("ignored", Field{Key: "k", Value: "v"})
	log.Warn("ignored")
	log.Error("ignored")
	assert.NoError(t, log.Close())
}
