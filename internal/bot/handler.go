// Package bot holds the decision makers driven by the runner.
package bot

import (
	"github.com/lox/hiddenrank/internal/game"
)

// Handler receives round events from the runner. Calls are never concurrent.
type Handler interface {
	// HandleNewRound is called once our hole cards are known.
	HandleNewRound(gs game.GameState, rs *game.RoundState, seat int)
	// HandleRoundOver is called when the server reports our delta. Opponent
	// hole cards are in ts.Previous.Hands if they were revealed.
	HandleRoundOver(gs game.GameState, ts *game.TerminalState, seat int)
	// GetAction is called whenever it is our turn. Illegal answers are
	// coerced by the runner.
	GetAction(gs game.GameState, rs *game.RoundState, seat int) game.Action
}
