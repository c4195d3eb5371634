package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Command
	}{
		{"quit uppercase", "QUIT", Command{Kind: KindQuit}},
		{"quit lowercase", "quit", Command{Kind: KindQuit}},
		{"quit mixed case", "QuIt", Command{Kind: KindQuit}},

		{"bare digit", "4", Command{Kind: KindMove, Move: "4"}},
		{"bare zero", "0", Command{Kind: KindMove, Move: "0"}},
		{"bare multi digit", "12", Command{Kind: KindMove, Move: "12"}},

		{"move command", "MOVE 4", Command{Kind: KindMove, Move: "4"}},
		{"move lowercase", "move 7", Command{Kind: KindMove, Move: "7"}},
		{"move extra spaces", "MOVE  5", Command{Kind: KindMove, Move: "5"}},
		{"move leading zeros", "MOVE 007", Command{Kind: KindMove, Move: "007"}},
		{"move out of range parses", "MOVE 12", Command{Kind: KindMove, Move: "12"}},

		{"move without argument", "MOVE ", Command{Kind: KindMalformed, Text: "MOVE "}},
		{"move non digit", "MOVE four", Command{Kind: KindMalformed, Text: "MOVE four"}},
		{"move mixed token", "MOVE 4x", Command{Kind: KindMalformed, Text: "MOVE 4x"}},
		{"move too many tokens", "MOVE 4 5", Command{Kind: KindMalformed, Text: "MOVE 4 5"}},

		{"bare move keyword", "MOVE", Command{Kind: KindFreeText, Text: "MOVE"}},
		{"empty line", "", Command{Kind: KindFreeText, Text: ""}},
		{"free text", "hello there", Command{Kind: KindFreeText, Text: "hello there"}},
		{"negative number", "-4", Command{Kind: KindFreeText, Text: "-4"}},
		{"decimal number", "4.5", Command{Kind: KindFreeText, Text: "4.5"}},
		{"non ascii digits", "١٢", Command{Kind: KindFreeText, Text: "١٢"}},
		{"quit with suffix", "QUIT!", Command{Kind: KindFreeText, Text: "QUIT!"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input))
		})
	}
}

func TestMessageFormatting(t *testing.T) {
	assert.Equal(t, "Game start! You are X", GameStart("X"))
	assert.Equal(t, "Invalid move format: bogus", InvalidMoveFormat("bogus"))
	assert.Equal(t, "ERROR: CellOccupied: cell 4 is already occupied",
		RuleViolation("CellOccupied", "cell 4 is already occupied"))
	assert.Equal(t, "INVALID_MESSAGE: Malformed MOVE: MOVE x", InvalidMessage("Malformed MOVE: MOVE x"))
	assert.Equal(t, "GAME OVER: game is already over", GameOver("game is already over"))
	assert.Equal(t, "Server error: boom", ServerError("boom"))
}
