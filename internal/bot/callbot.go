package bot

import (
	"github.com/charmbracelet/log"

	"github.com/lox/hiddenrank/internal/game"
)

// CallBot checks or calls down, but folds the river to a bet larger than
// RiverFoldRatio of the pot.
type CallBot struct {
	logger *log.Logger
}

// RiverFoldRatio is the bet-to-pot ratio at which CallBot gives up on the river.
const RiverFoldRatio = 0.8

// NewCallBot creates a new CallBot instance
func NewCallBot(logger *log.Logger) *CallBot {
	return &CallBot{logger: logger.WithPrefix("callbot")}
}

func (c *CallBot) HandleNewRound(game.GameState, *game.RoundState, int)     {}
func (c *CallBot) HandleRoundOver(game.GameState, *game.TerminalState, int) {}

func (c *CallBot) GetAction(gs game.GameState, rs *game.RoundState, seat int) game.Action {
	legal := rs.LegalActions()
	if legal.Has(game.Check) {
		return game.CheckAction()
	}

	cost := rs.ContinueCost()
	if rs.Street == game.River && float64(cost) > RiverFoldRatio*float64(rs.Pot()-cost) {
		c.logger.Debug("Folding river to large bet", "cost", cost, "pot", rs.Pot())
		return game.FoldAction()
	}
	return game.CallAction()
}
