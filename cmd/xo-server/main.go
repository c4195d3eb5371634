// Command xo-server runs the matchmaking and game server.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cyberinferno/xo-server/config"
	"github.com/cyberinferno/xo-server/events"
	"github.com/cyberinferno/xo-server/logger"
	"github.com/cyberinferno/xo-server/scoreboard"
	"github.com/cyberinferno/xo-server/server"
	"github.com/cyberinferno/xo-server/session"
	"github.com/cyberinferno/xo-server/transport"
)

const serviceName = "xo-server"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", cfg.Log.Level, err)
	}

	var log logger.Logger
	if cfg.Log.Dir != "" {
		log, err = logger.NewZerologFileLogger(serviceName, cfg.Log.Dir, level)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
	} else {
		log = logger.NewZerologLogger(zerolog.New(os.Stdout), serviceName, level)
	}
	defer func() { _ = log.Close() }()

	board := scoreboard.NewMemoryScoreboard(cfg.Scoreboard.TTL)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		board = scoreboard.NewRedisScoreboard(client, cfg.Scoreboard.TTL)
		log.Info("using redis scoreboard", logger.Field{Key: "addr", Value: cfg.Redis.Addr})
	}

	publisher := events.Nop()
	if cfg.NATS.URL != "" {
		publisher, err = events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			return fmt.Errorf("connect event publisher: %w", err)
		}
		log.Info("publishing match events", logger.Field{Key: "url", Value: cfg.NATS.URL})
	}
	defer func() { _ = publisher.Close() }()

	newSession := func(id uint32, p1, p2 *transport.Conn) server.Session {
		return session.New(id, p1, p2, session.Config{
			MoveTimeout: cfg.Server.MoveTimeout,
			Logger:      log,
			Scoreboard:  board,
			Events:      publisher,
		})
	}

	srv := server.New(cfg.Server, log, newSession)
	if err := srv.Start(); err != nil {
		return err
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	sig := <-shutdown
	log.Info("shutdown signal received", logger.Field{Key: "signal", Value: sig.String()})

	srv.Stop()

	return nil
}
