// Package server accepts player connections, welcomes them into the
// matchmaking queue, and runs one session per matched pair.
package server

import (
	"fmt"
	"net"
	"sync/atomic"

	"github.com/cyberinferno/xo-server/config"
	"github.com/cyberinferno/xo-server/logger"
	"github.com/cyberinferno/xo-server/matchmaking"
	"github.com/cyberinferno/xo-server/protocol"
	"github.com/cyberinferno/xo-server/session"
	"github.com/cyberinferno/xo-server/transport"
)

// Session is the per-pair worker the server runs and tracks. *session.Session
// satisfies it.
type Session interface {
	ID() uint32
	Run()
	Close() error
}

// NewSessionFunc creates the session for a matched pair.
//
// Parameters:
//   - id: server-assigned session ID, unique for the server's lifetime
//   - p1: connection matched first; plays X and moves first
//   - p2: connection matched second; plays O
type NewSessionFunc func(id uint32, p1, p2 *transport.Conn) Session

// Server owns the listener, the accept loop, the matchmaking queue and the
// registry of running sessions.
type Server struct {
	log        logger.Logger
	cfg        config.ServerConfig
	listener   net.Listener
	queue      *matchmaking.Queue
	sessions   *registry
	running    atomic.Bool
	newSession NewSessionFunc
	nextID     atomic.Uint32
}

// New creates a Server.
//
// Parameters:
//   - cfg: listen address, move timeout and read buffer size
//   - log: logger instance; nil falls back to a no-op logger
//   - newSession: session factory; nil falls back to plain sessions built
//     from cfg, with no scoreboard or event publisher
//
// Returns:
//   - *Server: server ready for Start
func New(cfg config.ServerConfig, log logger.Logger, newSession NewSessionFunc) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if newSession == nil {
		newSession = func(id uint32, p1, p2 *transport.Conn) Session {
			return session.New(id, p1, p2, session.Config{
				MoveTimeout: cfg.MoveTimeout,
				Logger:      log,
			})
		}
	}

	s := &Server{
		log:        log,
		cfg:        cfg,
		sessions:   newRegistry(),
		newSession: newSession,
	}
	s.queue = matchmaking.New(s.startSession, log)

	return s
}

// Start binds the configured address and begins the accept loop in a
// goroutine.
//
// Returns:
//   - error: when the server is already running or the listener cannot bind
func (s *Server) Start() error {
	if s.running.Load() {
		s.log.Error("server already running", logger.Field{Key: "addr", Value: s.cfg.Addr})
		return fmt.Errorf("server already running on %s", s.cfg.Addr)
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.log.Error("server failed to start", logger.Field{Key: "error", Value: err.Error()})
		return fmt.Errorf("server failed to start: %w", err)
	}

	s.listener = ln
	s.running.Store(true)

	s.log.Info("server started", logger.Field{Key: "addr", Value: ln.Addr().String()})
	go s.AcceptLoop()

	return nil
}

// Addr returns the bound listener address once started, otherwise the
// configured address. Useful when the configured port is 0.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}

	return s.cfg.Addr
}

// AcceptLoop accepts connections until the server stops. Each accepted
// connection is greeted and queued from its own goroutine so a slow client
// cannot stall the loop.
func (s *Server) AcceptLoop() {
	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() {
				return
			}
			s.log.Error("failed to accept connection", logger.Field{Key: "error", Value: err.Error()})
			continue
		}

		go s.welcome(conn)
	}
}

// SessionCount returns the number of sessions currently running.
func (s *Server) SessionCount() int {
	return s.sessions.len()
}

// WaitingCount returns the number of players queued for an opponent.
func (s *Server) WaitingCount() int {
	return s.queue.Len()
}

// Stop stops accepting, disconnects queued players, and closes every running
// session. Safe to call when the server is not running.
func (s *Server) Stop() {
	if !s.running.Load() {
		s.log.Info("server is not running")
		return
	}

	s.running.Store(false)
	if s.listener != nil {
		_ = s.listener.Close()
	}

	for _, c := range s.queue.Drain() {
		_ = c.Close()
	}

	s.sessions.each(func(sess Session) {
		_ = sess.Close()
	})

	s.log.Info("server stopped")
}

// welcome wraps a raw connection, greets it, and offers it for matchmaking.
// Clients that cannot be greeted are dropped before they reach the queue.
func (s *Server) welcome(raw net.Conn) {
	c := transport.NewConn(raw, s.cfg.ReadBufferSize)
	s.log.Info("client connected", logger.Field{Key: "player", Value: c.Identity()})

	if err := c.Send(protocol.MsgWelcome + "\n"); err != nil {
		s.log.Warn("client left before matchmaking", logger.Field{Key: "error", Value: err.Error()})
		_ = c.Close()
		return
	}

	s.queue.Offer(c)
}

// startSession runs as the matchmaking pair handler, on the goroutine the
// queue spawned for the pair. It keeps the session registered for as long as
// it runs.
func (s *Server) startSession(p1, p2 *transport.Conn) {
	id := s.nextID.Add(1)
	sess := s.newSession(id, p1, p2)

	s.sessions.add(sess)
	defer s.sessions.remove(id)

	s.log.Info("session starting",
		logger.Field{Key: "session_id", Value: id},
		logger.Field{Key: "p1", Value: p1.Identity()},
		logger.Field{Key: "p2", Value: p2.Identity()},
	)

	sess.Run()
}
