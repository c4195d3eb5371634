// Package protocol defines the wire messages the server speaks and the
// parsing of the line commands clients send.
package protocol

import (
	"fmt"
	"strings"
)

// Fixed server-to-client messages. Every line on the wire is terminated with
// a newline by the sender.
const (
	MsgWelcome              = "Welcome! Waiting for opponent..."
	MsgPromptMove           = "Your move (0-8) or QUIT:"
	MsgWaitingForOpponent   = "Waiting for opponent..."
	MsgDraw                 = "Game over! It's a draw."
	MsgWin                  = "You win!"
	MsgLose                 = "You lose!"
	MsgOpponentTimeout      = "OPPONENT_TIMEOUT - you win"
	MsgOpponentQuit         = "OPPONENT_QUIT - you win"
	MsgOpponentDisconnected = "OPPONENT_DISCONNECTED - you win"
)

// GameStart returns the greeting for a player assigned the given symbol.
func GameStart(symbol string) string {
	return fmt.Sprintf("Game start! You are %s", symbol)
}

// InvalidMoveFormat returns the inline notice for free text that is neither
// a move nor a recognized command.
func InvalidMoveFormat(text string) string {
	return fmt.Sprintf("Invalid move format: %s", text)
}

// RuleViolation returns the inline notice for a move the rules rejected.
func RuleViolation(kind, detail string) string {
	return fmt.Sprintf("ERROR: %s: %s", kind, detail)
}

// InvalidMessage returns the notice for a message that broke the protocol
// grammar.
func InvalidMessage(detail string) string {
	return fmt.Sprintf("INVALID_MESSAGE: %s", detail)
}

// GameOver returns the terminal notice sent with the final board.
func GameOver(detail string) string {
	return fmt.Sprintf("GAME OVER: %s", detail)
}

// ServerError returns the terminal notice for an unexpected internal
// failure.
func ServerError(detail string) string {
	return fmt.Sprintf("Server error: %s", detail)
}

// Kind classifies one line received from a client.
type Kind int

const (
	// KindQuit is a case-insensitive QUIT.
	KindQuit Kind = iota
	// KindMove carries a move token, either bare digits or a MOVE command.
	KindMove
	// KindMalformed is a MOVE command that breaks the command grammar.
	KindMalformed
	// KindFreeText is anything else; it is answered inline and costs the
	// sender nothing.
	KindFreeText
)

// Command is one parsed client line.
type Command struct {
	Kind Kind
	// Move holds the digit token when Kind is KindMove.
	Move string
	// Text holds the raw input for KindMalformed and KindFreeText.
	Text string
}

// Parse classifies a single trimmed line from a client. The grammar accepts
// QUIT in any letter case, MOVE followed by exactly one all-digit token, or
// a bare all-digit token. Range checking is left to the rules engine.
func Parse(text string) Command {
	if strings.EqualFold(text, "QUIT") {
		return Command{Kind: KindQuit}
	}

	if strings.HasPrefix(strings.ToUpper(text), "MOVE ") {
		fields := strings.Fields(text)
		if len(fields) != 2 || !allDigits(fields[1]) {
			return Command{Kind: KindMalformed, Text: text}
		}

		return Command{Kind: KindMove, Move: fields[1]}
	}

	if allDigits(text) {
		return Command{Kind: KindMove, Move: text}
	}

	return Command{Kind: KindFreeText, Text: text}
}

// allDigits reports whether s is non-empty and all ASCII digits.
func allDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
