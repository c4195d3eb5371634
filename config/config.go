// Package config loads and validates the server configuration from defaults,
// an optional YAML file and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the TCP listener and match loop settings.
type ServerConfig struct {
	// Addr is the host:port the server listens on.
	Addr string `yaml:"addr"`
	// MoveTimeout is how long a player may take to answer a move prompt.
	MoveTimeout time.Duration `yaml:"move_timeout"`
	// ReadBufferSize is the size in bytes of the per-connection read buffer.
	ReadBufferSize int `yaml:"read_buffer_size"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level"`
	// Dir, when set, enables logging to {dir}/xo-server.log in addition
	// to stdout.
	Dir string `yaml:"dir"`
}

// ScoreboardConfig holds win/loss tally settings.
type ScoreboardConfig struct {
	// TTL is how long a player's tally is retained after its last update.
	TTL time.Duration `yaml:"ttl"`
}

// RedisConfig holds the optional Redis connection settings. When Addr is
// empty the server keeps tallies in memory instead.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NATSConfig holds the optional NATS connection settings. When URL is empty
// match events are not published.
type NATSConfig struct {
	URL string `yaml:"url"`
	// SubjectPrefix is prepended to every published subject.
	SubjectPrefix string `yaml:"subject_prefix"`
}

// Config is the root configuration for the server.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Scoreboard ScoreboardConfig `yaml:"scoreboard"`
	Redis      RedisConfig      `yaml:"redis"`
	NATS       NATSConfig       `yaml:"nats"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
//
// Returns:
//   - A Config populated with the built-in defaults
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           "127.0.0.1:5000",
			MoveTimeout:    30 * time.Second,
			ReadBufferSize: 1024,
		},
		Log: LogConfig{
			Level: "info",
		},
		Scoreboard: ScoreboardConfig{
			TTL: 24 * time.Hour,
		},
		NATS: NATSConfig{
			SubjectPrefix: "xo.match",
		},
	}
}

// Load builds the effective configuration. It starts from Default, overlays
// the YAML file at path if path is non-empty, then applies environment
// variable overrides and validates the result.
//
// Parameters:
//   - path: Path to a YAML config file, or "" to skip the file layer
//
// Returns:
//   - The effective Config
//   - An error if the file cannot be read or parsed, or validation fails
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
//
// Returns:
//   - An error describing the first invalid value found, or nil
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}

	if c.Server.MoveTimeout <= 0 {
		return fmt.Errorf("server.move_timeout must be positive, got %s", c.Server.MoveTimeout)
	}

	if c.Server.ReadBufferSize <= 0 {
		return fmt.Errorf("server.read_buffer_size must be positive, got %d", c.Server.ReadBufferSize)
	}

	if c.Scoreboard.TTL < 0 {
		return fmt.Errorf("scoreboard.ttl must not be negative, got %s", c.Scoreboard.TTL)
	}

	return nil
}

// applyEnv overrides individual settings from XO_* environment variables.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("XO_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	if v := os.Getenv("XO_MOVE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			// Accept a bare number of seconds as well.
			secs, serr := strconv.Atoi(v)
			if serr != nil {
				return fmt.Errorf("parse XO_MOVE_TIMEOUT: %w", err)
			}
			d = time.Duration(secs) * time.Second
		}
		cfg.Server.MoveTimeout = d
	}

	if v := os.Getenv("XO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("XO_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}

	if v := os.Getenv("XO_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}

	return nil
}
