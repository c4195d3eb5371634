package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "127.0.0.1:5000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.MoveTimeout)
	assert.Equal(t, 1024, cfg.Server.ReadBufferSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 24*time.Hour, cfg.Scoreboard.TTL)
	assert.Equal(t, "xo.match", cfg.NATS.SubjectPrefix)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.NATS.URL)

	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("empty path keeps defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("yaml file overlays defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := `
server:
  addr: "0.0.0.0:6000"
  move_timeout: 5s
log:
  level: debug
redis:
  addr: "localhost:6379"
  db: 2
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0:6000", cfg.Server.Addr)
		assert.Equal(t, 5*time.Second, cfg.Server.MoveTimeout)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
		assert.Equal(t, 2, cfg.Redis.DB)
		// Untouched settings keep their defaults.
		assert.Equal(t, 1024, cfg.Server.ReadBufferSize)
		assert.Equal(t, "xo.match", cfg.NATS.SubjectPrefix)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: ["), 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("environment overrides file and defaults", func(t *testing.T) {
		t.Setenv("XO_ADDR", "127.0.0.1:7000")
		t.Setenv("XO_MOVE_TIMEOUT", "2s")
		t.Setenv("XO_LOG_LEVEL", "warn")
		t.Setenv("XO_REDIS_ADDR", "redis:6379")
		t.Setenv("XO_NATS_URL", "nats://localhost:4222")

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
		assert.Equal(t, 2*time.Second, cfg.Server.MoveTimeout)
		assert.Equal(t, "warn", cfg.Log.Level)
		assert.Equal(t, "redis:6379", cfg.Redis.Addr)
		assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	})

	t.Run("move timeout accepts bare seconds", func(t *testing.T) {
		t.Setenv("XO_MOVE_TIMEOUT", "45")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 45*time.Second, cfg.Server.MoveTimeout)
	})

	t.Run("unparseable move timeout fails", func(t *testing.T) {
		t.Setenv("XO_MOVE_TIMEOUT", "soon")

		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero move timeout", func(c *Config) { c.Server.MoveTimeout = 0 }},
		{"negative move timeout", func(c *Config) { c.Server.MoveTimeout = -time.Second }},
		{"zero read buffer", func(c *Config) { c.Server.ReadBufferSize = 0 }},
		{"negative scoreboard ttl", func(c *Config) { c.Scoreboard.TTL = -time.Minute }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
