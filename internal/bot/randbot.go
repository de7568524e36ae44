package bot

import (
	"math/rand/v2"

	"github.com/lox/hiddenrank/internal/game"
)

// RandBot is a simple bot that makes uniform random legal actions
type RandBot struct {
	rng *rand.Rand
}

// NewRandBot creates a new RandBot instance
func NewRandBot(rng *rand.Rand) *RandBot {
	return &RandBot{rng: rng}
}

func (r *RandBot) HandleNewRound(game.GameState, *game.RoundState, int)     {}
func (r *RandBot) HandleRoundOver(game.GameState, *game.TerminalState, int) {}

func (r *RandBot) GetAction(gs game.GameState, rs *game.RoundState, seat int) game.Action {
	legal := rs.LegalActions()
	var choices []game.ActionType
	for _, t := range []game.ActionType{game.Fold, game.Call, game.Check, game.Raise} {
		if legal.Has(t) {
			choices = append(choices, t)
		}
	}

	// Pick random valid action
	switch choice := choices[r.rng.IntN(len(choices))]; choice {
	case game.Raise:
		lo, hi := rs.RaiseBounds()
		return game.RaiseAction(lo + r.rng.IntN(hi-lo+1))
	default:
		return game.Action{Type: choice}
	}
}
