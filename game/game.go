// Package game implements the tic-tac-toe rules for one pairing: board
// state, symbol assignment, turn ownership, move legality and win/draw
// detection. The engine is generic over the player identity type so callers
// can key it by connection, address, or anything comparable.
package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Symbol is a player's mark on the board.
type Symbol string

const (
	X Symbol = "X"
	O Symbol = "O"
)

// Result is the outcome of a game. The zero value means play continues.
type Result string

const (
	ResultNone Result = ""
	ResultX    Result = "X"
	ResultO    Result = "O"
	ResultDraw Result = "Draw"
)

// Decisive reports whether r names a winning symbol.
func (r Result) Decisive() bool {
	return r == ResultX || r == ResultO
}

// ErrUnknownPlayer is returned by Apply when the mover is not one of the two
// players the engine was built with.
var ErrUnknownPlayer = errors.New("player is not part of this game")

// ErrGameOver is returned by Apply when the game has already been decided.
var ErrGameOver = errors.New("game is already over")

// ViolationKind names the rule a rejected move broke.
type ViolationKind string

const (
	MalformedMove ViolationKind = "MalformedMove"
	OutOfRange    ViolationKind = "OutOfRange"
	CellOccupied  ViolationKind = "CellOccupied"
	NotYourTurn   ViolationKind = "NotYourTurn"
)

// RuleError is a recoverable move rejection. The move is not applied and the
// turn does not pass.
type RuleError struct {
	Kind   ViolationKind
	Detail string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// winLines enumerates the eight winning cell triples.
var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Engine drives one game between two players of identity type P. It is not
// safe for concurrent use; one session drives it from a single goroutine.
type Engine[P comparable] struct {
	players [2]P
	symbols map[P]Symbol
	board   [9]Symbol
	turn    P
	winner  Result
	moves   int
}

// NewEngine creates the engine for one pairing. p1 plays X, p2 plays O, and
// X moves first.
func NewEngine[P comparable](p1, p2 P) *Engine[P] {
	return &Engine[P]{
		players: [2]P{p1, p2},
		symbols: map[P]Symbol{p1: X, p2: O},
		turn:    p1,
	}
}

// Turn returns the player whose move is expected next.
func (e *Engine[P]) Turn() P {
	return e.turn
}

// Symbol returns the symbol assigned to p.
func (e *Engine[P]) Symbol(p P) (Symbol, bool) {
	s, ok := e.symbols[p]
	return s, ok
}

// Winner returns the current outcome, ResultNone while play continues.
func (e *Engine[P]) Winner() Result {
	return e.winner
}

// Render returns the board as three rows separated by rules. Empty cells
// show their index so players know what to type.
func (e *Engine[P]) Render() string {
	var cells [9]string
	for i, s := range e.board {
		if s == "" {
			cells[i] = strconv.Itoa(i)
		} else {
			cells[i] = string(s)
		}
	}

	rows := []string{
		fmt.Sprintf(" %s | %s | %s", cells[0], cells[1], cells[2]),
		"-----------",
		fmt.Sprintf(" %s | %s | %s", cells[3], cells[4], cells[5]),
		"-----------",
		fmt.Sprintf(" %s | %s | %s", cells[6], cells[7], cells[8]),
	}

	return strings.Join(rows, "\n")
}

// Apply validates and applies one move for player p. token must be the cell
// index in decimal digits. On success the cell is marked, the outcome is
// recomputed and, while the game remains undecided, the turn passes to the
// opponent. A *RuleError rejection leaves the engine untouched.
func (e *Engine[P]) Apply(p P, token string) error {
	sym, ok := e.symbols[p]
	if !ok {
		return ErrUnknownPlayer
	}

	if e.winner != ResultNone {
		return ErrGameOver
	}

	cell, err := strconv.Atoi(token)
	if err != nil {
		return &RuleError{Kind: MalformedMove, Detail: fmt.Sprintf("move %q is not a number", token)}
	}

	if cell < 0 || cell > 8 {
		return &RuleError{Kind: OutOfRange, Detail: fmt.Sprintf("move %d is outside 0-8", cell)}
	}

	if e.turn != p {
		return &RuleError{Kind: NotYourTurn, Detail: "it is not your turn"}
	}

	if e.board[cell] != "" {
		return &RuleError{Kind: CellOccupied, Detail: fmt.Sprintf("cell %d is already occupied", cell)}
	}

	e.board[cell] = sym
	e.moves++
	e.winner = e.outcome()
	if e.winner == ResultNone {
		e.turn = e.opponent(p)
	}

	return nil
}

// opponent returns the other player.
func (e *Engine[P]) opponent(p P) P {
	if p == e.players[0] {
		return e.players[1]
	}

	return e.players[0]
}

// outcome computes the result for the current board.
func (e *Engine[P]) outcome() Result {
	for _, line := range winLines {
		s := e.board[line[0]]
		if s != "" && s == e.board[line[1]] && s == e.board[line[2]] {
			return Result(s)
		}
	}

	if e.moves == 9 {
		return ResultDraw
	}

	return ResultNone
}
