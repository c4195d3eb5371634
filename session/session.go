// Package session drives one paired game from greeting to termination: it
// owns the two connections, consults the rules engine, translates engine
// outcomes and transport faults into wire messages, and decides when the
// game is over.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cyberinferno/xo-server/events"
	"github.com/cyberinferno/xo-server/game"
	"github.com/cyberinferno/xo-server/logger"
	"github.com/cyberinferno/xo-server/protocol"
	"github.com/cyberinferno/xo-server/scoreboard"
	"github.com/cyberinferno/xo-server/transport"
)

// DefaultMoveTimeout bounds how long a player may take to answer a prompt
// when no timeout is configured.
const DefaultMoveTimeout = 30 * time.Second

// QuitError signals that a player ended the game with QUIT. Terminal; the
// opponent is notified and wins.
type QuitError struct {
	Addr  string
	Cause string
}

func (e *QuitError) Error() string {
	return fmt.Sprintf("%s: %s", e.Cause, e.Addr)
}

// InvalidMessageError signals a message that broke the protocol grammar. It
// is the one recoverable fault: the offender is notified and the loop
// continues with the same player on turn.
type InvalidMessageError struct {
	Addr  string
	Cause string
}

func (e *InvalidMessageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Cause, e.Addr)
}

// Engine is the rules collaborator a session drives. A *game.Engine keyed by
// connection satisfies it.
type Engine interface {
	Turn() *transport.Conn
	Symbol(p *transport.Conn) (game.Symbol, bool)
	Winner() game.Result
	Render() string
	Apply(p *transport.Conn, token string) error
}

var _ Engine = (*game.Engine[*transport.Conn])(nil)

// Config carries the collaborators and settings a session needs. Zero values
// get safe defaults: DefaultMoveTimeout, a nop logger, a nop event publisher
// and no scoreboard.
type Config struct {
	MoveTimeout time.Duration
	Logger      logger.Logger
	Scoreboard  scoreboard.Scoreboard
	Events      events.Publisher
}

// Session drives one game between two connections. Run owns both
// connections and the engine for the session's lifetime and closes both on
// every exit path. Close may be called from another goroutine to abort.
type Session struct {
	id      uint32
	p1      *transport.Conn
	p2      *transport.Conn
	engine  Engine
	timeout time.Duration
	log     logger.Logger
	scores  scoreboard.Scoreboard
	events  events.Publisher
}

// New creates the session for one pairing. p1 plays X and moves first.
func New(id uint32, p1, p2 *transport.Conn, cfg Config) *Session {
	if cfg.MoveTimeout <= 0 {
		cfg.MoveTimeout = DefaultMoveTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Events == nil {
		cfg.Events = events.Nop()
	}

	return &Session{
		id:      id,
		p1:      p1,
		p2:      p2,
		engine:  game.NewEngine(p1, p2),
		timeout: cfg.MoveTimeout,
		log: cfg.Logger.With(
			logger.Field{Key: "session_id", Value: id},
			logger.Field{Key: "p1", Value: p1.Identity()},
			logger.Field{Key: "p2", Value: p2.Identity()},
		),
		scores: cfg.Scoreboard,
		events: cfg.Events,
	}
}

// ID returns the identifier the server assigned to this session.
func (s *Session) ID() uint32 {
	return s.id
}

// Run drives the game to termination: greet both players, then loop over
// board, prompts, receive, parse, apply and winner check until a terminal
// condition. Both connections are closed when Run returns, whatever the
// exit path.
func (s *Session) Run() {
	defer s.closeBoth()

	s.log.Info("session started")
	s.publish(events.TypeStarted, "", "")

	if err := s.greet(); err != nil {
		s.log.Warn("player disconnected during game start",
			logger.Field{Key: "error", Value: err.Error()})
		s.publish(events.TypeFinished, "", events.ReasonDisconnect)
		return
	}

	for {
		done, err := s.step()
		if err != nil {
			if s.dispatchFault(err) {
				return
			}
			continue
		}
		if done {
			return
		}
	}
}

// Close aborts the session by closing both connections, which unblocks any
// read or write Run is waiting on. Safe to call more than once and
// concurrently with Run.
func (s *Session) Close() error {
	_ = s.p1.Close()
	_ = s.p2.Close()
	return nil
}

// greet tells each player which symbol it got. A failure here ends the
// session before the move loop starts.
func (s *Session) greet() error {
	for _, c := range []*transport.Conn{s.p1, s.p2} {
		sym, _ := s.engine.Symbol(c)
		if err := s.send(c, protocol.GameStart(string(sym))); err != nil {
			return err
		}
	}

	return nil
}

// step runs one move-loop iteration. done reports that the session reached a
// terminal state cleanly; a returned error is a fault for dispatchFault.
func (s *Session) step() (done bool, err error) {
	if err := s.broadcast(s.engine.Render()); err != nil {
		return false, err
	}

	current := s.engine.Turn()
	other := s.p2
	if current == s.p2 {
		other = s.p1
	}

	if err := s.send(current, protocol.MsgPromptMove); err != nil {
		return false, err
	}
	if err := s.send(other, protocol.MsgWaitingForOpponent); err != nil {
		return false, err
	}

	text, err := current.Receive(s.timeout)
	if err != nil {
		return false, err
	}

	cmd := protocol.Parse(text)
	switch cmd.Kind {
	case protocol.KindQuit:
		return false, &QuitError{Addr: current.Identity(), Cause: "player quit"}
	case protocol.KindMalformed:
		return false, &InvalidMessageError{Addr: current.Identity(), Cause: "Malformed MOVE: " + cmd.Text}
	case protocol.KindFreeText:
		// Not a protocol fault; tell the player and prompt again.
		if err := s.send(current, protocol.InvalidMoveFormat(cmd.Text)); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.engine.Apply(current, cmd.Move); err != nil {
		return s.applyFailed(current, err)
	}

	if err := s.broadcast(s.engine.Render()); err != nil {
		return false, err
	}

	return s.checkWinner()
}

// applyFailed translates an engine rejection into the player-visible
// reaction. Rule violations are inline and keep the offender on turn;
// everything else is terminal.
func (s *Session) applyFailed(current *transport.Conn, err error) (bool, error) {
	var ruleErr *game.RuleError
	switch {
	case errors.As(err, &ruleErr):
		if serr := s.send(current, protocol.RuleViolation(string(ruleErr.Kind), ruleErr.Detail)); serr != nil {
			return false, serr
		}
		return false, nil

	case errors.Is(err, game.ErrUnknownPlayer):
		// The engine not knowing a connection is a server-side bug.
		s.log.Error("engine rejected player",
			logger.Field{Key: "player", Value: current.Identity()},
			logger.Field{Key: "error", Value: err.Error()})
		if serr := s.send(current, protocol.RuleViolation("UnknownPlayer", err.Error())); serr != nil {
			return false, serr
		}
		s.publish(events.TypeFinished, "", events.ReasonServerError)
		return true, nil

	case errors.Is(err, game.ErrGameOver):
		final := s.engine.Render()
		for _, c := range []*transport.Conn{s.p1, s.p2} {
			if serr := s.send(c, final); serr == nil {
				_ = s.send(c, protocol.GameOver(err.Error()))
			}
		}
		s.publish(events.TypeFinished, string(s.engine.Winner()), events.ReasonGameOver)
		return true, nil

	default:
		// Unexpected engine failure; the catch-all fault path takes it.
		return false, err
	}
}

// checkWinner ends the session once the engine reports an outcome. Draw
// notices propagate failures so a vanished player is still handled as a
// disconnect; win and lose notices are best-effort because the game is over
// either way.
func (s *Session) checkWinner() (bool, error) {
	result := s.engine.Winner()
	switch {
	case result == game.ResultDraw:
		if err := s.send(s.p1, protocol.MsgDraw); err != nil {
			return false, err
		}
		if err := s.send(s.p2, protocol.MsgDraw); err != nil {
			return false, err
		}

		s.log.Info("game ended in a draw")
		s.record(s.p1, scoreboard.Draw)
		s.record(s.p2, scoreboard.Draw)
		s.publish(events.TypeFinished, string(result), events.ReasonDraw)
		return true, nil

	case result.Decisive():
		winner := game.Symbol(result)
		s.log.Info("game won", logger.Field{Key: "winner", Value: string(winner)})

		for _, c := range []*transport.Conn{s.p1, s.p2} {
			sym, ok := s.engine.Symbol(c)
			if ok && sym == winner {
				_ = s.send(c, protocol.MsgWin)
				s.record(c, scoreboard.Win)
			} else {
				_ = s.send(c, protocol.MsgLose)
				s.record(c, scoreboard.Loss)
			}
		}

		s.publish(events.TypeFinished, string(winner), events.ReasonWin)
		return true, nil
	}

	return false, nil
}

// dispatchFault reacts to a loop fault and reports whether the session must
// terminate. Survivor notices are best-effort: the game is ending and a
// second failure changes nothing.
func (s *Session) dispatchFault(err error) bool {
	var (
		timeoutErr *transport.TimeoutError
		quitErr    *QuitError
		discErr    *transport.DisconnectedError
		msgErr     *InvalidMessageError
	)

	switch {
	case errors.As(err, &timeoutErr):
		s.log.Info("player timed out", logger.Field{Key: "error", Value: err.Error()})
		s.finishForfeit(timeoutErr.Addr, protocol.MsgOpponentTimeout, events.ReasonTimeout)
		return true

	case errors.As(err, &quitErr):
		s.log.Info("player quit", logger.Field{Key: "error", Value: err.Error()})
		s.finishForfeit(quitErr.Addr, protocol.MsgOpponentQuit, events.ReasonQuit)
		return true

	case errors.As(err, &discErr):
		s.log.Info("player disconnected", logger.Field{Key: "error", Value: err.Error()})
		s.finishForfeit(discErr.Addr, protocol.MsgOpponentDisconnected, events.ReasonDisconnect)
		return true

	case errors.As(err, &msgErr):
		s.log.Info("invalid message", logger.Field{Key: "error", Value: err.Error()})
		_, offender := s.survivorOf(msgErr.Addr)
		_ = s.send(offender, protocol.InvalidMessage(msgErr.Cause))
		return false

	default:
		// A bug, not player behavior. Log it loudly and tell both sides.
		s.log.Error("unexpected session error", logger.Field{Key: "error", Value: err.Error()})
		detail := err.Error()
		_ = s.send(s.p1, protocol.ServerError(detail))
		_ = s.send(s.p2, protocol.ServerError(detail))
		s.publish(events.TypeFinished, "", events.ReasonServerError)
		return true
	}
}

// finishForfeit notifies the player that did not cause the fault and books
// the forfeit.
func (s *Session) finishForfeit(faultAddr, notice, reason string) {
	survivor, offender := s.survivorOf(faultAddr)
	_ = s.send(survivor, notice)

	s.record(survivor, scoreboard.Win)
	s.record(offender, scoreboard.Forfeit)

	winner := ""
	if sym, ok := s.engine.Symbol(survivor); ok {
		winner = string(sym)
	}
	s.publish(events.TypeFinished, winner, reason)
}

// survivorOf splits the pair by the fault's endpoint identity. An identity
// matching neither connection leaves p1 as the survivor.
func (s *Session) survivorOf(addr string) (survivor, offender *transport.Conn) {
	if addr == s.p1.Identity() {
		return s.p2, s.p1
	}

	return s.p1, s.p2
}

// send writes one newline-terminated protocol line.
func (s *Session) send(c *transport.Conn, msg string) error {
	return c.Send(msg + "\n")
}

// broadcast sends text to p1 then p2, failing on the first error.
func (s *Session) broadcast(text string) error {
	if err := s.send(s.p1, text); err != nil {
		return err
	}

	return s.send(s.p2, text)
}

// record books one outcome, keyed by the player's host.
func (s *Session) record(c *transport.Conn, outcome scoreboard.Outcome) {
	if s.scores == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.scores.Record(ctx, scoreboard.PlayerKey(c.Identity()), outcome); err != nil {
		s.log.Warn("failed to record outcome",
			logger.Field{Key: "player", Value: c.Identity()},
			logger.Field{Key: "outcome", Value: outcome.String()},
			logger.Field{Key: "error", Value: err.Error()})
	}
}

// publish emits a lifecycle event, best-effort.
func (s *Session) publish(t events.Type, winner, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	e := events.Event{
		Type:    t,
		MatchID: s.id,
		P1:      s.p1.Identity(),
		P2:      s.p2.Identity(),
		Winner:  winner,
		Reason:  reason,
		At:      time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn("failed to publish match event",
			logger.Field{Key: "error", Value: err.Error()})
	}
}

// closeBoth closes both connections, each close isolated from the other.
func (s *Session) closeBoth() {
	_ = s.p1.Close()
	_ = s.p2.Close()
	s.log.Info("session ended")
}
