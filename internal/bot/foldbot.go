package bot

import (
	"github.com/lox/hiddenrank/internal/game"
)

// FoldBot is a simple bot that always folds (or checks when possible)
type FoldBot struct{}

// NewFoldBot creates a new FoldBot instance
func NewFoldBot() *FoldBot {
	return &FoldBot{}
}

func (f *FoldBot) HandleNewRound(game.GameState, *game.RoundState, int)     {}
func (f *FoldBot) HandleRoundOver(game.GameState, *game.TerminalState, int) {}

func (f *FoldBot) GetAction(gs game.GameState, rs *game.RoundState, seat int) game.Action {
	if rs.LegalActions().Has(game.Check) {
		return game.CheckAction()
	}
	return game.FoldAction()
}
