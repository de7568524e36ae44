// Package simulator deals heads-up matches locally under a hidden rank
// ordering, playing the same rounds an engine server would.
package simulator

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/lox/hiddenrank/internal/bot"
	"github.com/lox/hiddenrank/internal/game"
	"github.com/lox/hiddenrank/internal/randutil"
	"github.com/lox/hiddenrank/internal/showdown"
	"github.com/lox/hiddenrank/poker"
)

// Tracker is an ordering hypothesis that is sampled at checkpoints.
type Tracker interface {
	CurrentOrdering() poker.Ordering
	Uncertainty() uint64
}

// Config holds configuration for running simulations
type Config struct {
	Rounds int
	Seed   int64
	// Hidden is the true ordering. Nil draws one from Seed.
	Hidden *poker.Ordering
	// Every is the checkpoint interval in rounds; zero disables checkpoints.
	Every   int
	Tracker Tracker
	Logger  *log.Logger
}

// Checkpoint samples the tracker after a round.
type Checkpoint struct {
	Round       int
	Agreement   float64
	Uncertainty uint64
	Ordering    poker.Ordering
}

// Result summarises a simulated match. Index 0 is the first handler.
type Result struct {
	Hidden      poker.Ordering
	Rounds      int
	Showdowns   int
	Folds       int
	Splits      int
	Bankroll    [2]int
	Checkpoints []Checkpoint
}

// Simulator plays two handlers against each other.
type Simulator struct {
	config  Config
	players [2]bot.Handler
	logger  *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config, first, second bot.Handler) *Simulator {
	if config.Rounds <= 0 {
		config.Rounds = game.NumRounds
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Simulator{
		config:  config,
		players: [2]bot.Handler{first, second},
		logger:  logger.WithPrefix("simulator"),
	}
}

// Run plays the match. Players swap seats every round.
func (s *Simulator) Run() (*Result, error) {
	rng := randutil.New(s.config.Seed)
	res := &Result{}
	if s.config.Hidden != nil {
		if err := s.config.Hidden.Validate(); err != nil {
			return nil, fmt.Errorf("hidden ordering: %w", err)
		}
		res.Hidden = *s.config.Hidden
	} else {
		res.Hidden = poker.RandomOrdering(randutil.Split(rng))
	}
	s.logger.Debug("Starting match", "rounds", s.config.Rounds, "hidden", res.Hidden.Compact())

	states := [2]game.GameState{game.NewGameState(), game.NewGameState()}
	for round := 1; round <= s.config.Rounds; round++ {
		// players[p] sits in seat (p+round+1)%2, so players[0] opens in seat 0.
		seatOf := [2]int{(round + 1) % 2, round % 2}
		deck := poker.NewDeck(randutil.Split(rng))

		deltas, showed := s.playRound(res.Hidden, deck, states, seatOf)
		for p := range s.players {
			res.Bankroll[p] += deltas[seatOf[p]]
		}
		switch {
		case !showed:
			res.Folds++
		case deltas[0] == 0:
			res.Showdowns++
			res.Splits++
		default:
			res.Showdowns++
		}
		res.Rounds = round

		for p := range states {
			states[p].Bankroll = res.Bankroll[p]
			states[p].RoundNum = round + 1
		}

		if s.config.Tracker != nil && s.config.Every > 0 && (round%s.config.Every == 0 || round == s.config.Rounds) {
			o := s.config.Tracker.CurrentOrdering()
			cp := Checkpoint{
				Round:       round,
				Agreement:   o.Agreement(res.Hidden),
				Uncertainty: s.config.Tracker.Uncertainty(),
				Ordering:    o,
			}
			res.Checkpoints = append(res.Checkpoints, cp)
			s.logger.Debug("Checkpoint", "round", round, "agreement", cp.Agreement, "uncertainty", cp.Uncertainty)
		}
	}
	return res, nil
}

// playRound deals and plays one round, returning per-seat deltas and whether
// it reached showdown.
func (s *Simulator) playRound(hidden poker.Ordering, deck *poker.Deck, states [2]game.GameState, seatOf [2]int) ([2]int, bool) {
	var holes [2][]poker.Card
	holes[0] = deck.Deal(2)
	holes[1] = deck.Deal(2)
	board := deck.Deal(5)

	var playerAt [2]int
	for p, seat := range seatOf {
		playerAt[seat] = p
	}

	state := game.NewRound(0, holes[0])
	state.Hands = holes
	for seat := range holes {
		p := playerAt[seat]
		s.players[p].HandleNewRound(states[p], view(state, seat), seat)
	}

	var terminal *game.TerminalState
	showed := false
	for terminal == nil {
		seat := state.Active()
		p := playerAt[seat]
		action := state.Coerce(s.players[p].GetAction(states[p], view(state, seat), seat))

		next, ts := state.Proceed(action)
		if ts != nil {
			terminal = ts
			showed = action.Type != game.Fold
			break
		}
		if next.Street != state.Street {
			next = next.WithBoard(board[:next.Street])
		}
		state = next
	}

	if showed {
		terminal.Deltas = settle(hidden, terminal.Previous)
	}

	for seat := range holes {
		p := playerAt[seat]
		ts := *terminal
		if !showed {
			ts.Previous = view(terminal.Previous, seat)
		}
		s.players[p].HandleRoundOver(states[p], &ts, seat)
	}
	return terminal.Deltas, showed
}

// settle awards the pot at showdown under the hidden ordering.
func settle(hidden poker.Ordering, last *game.RoundState) [2]int {
	var hands [2]showdown.Hand
	for seat := range hands {
		cards := append(slices.Clone(last.Hands[seat]), last.Board...)
		hands[seat] = showdown.Classify(hidden, cards)
	}
	contribution := game.StartingStack - last.Stacks[0]
	switch showdown.Compare(hidden, hands[0], hands[1]) {
	case 1:
		return [2]int{contribution, -contribution}
	case -1:
		return [2]int{-contribution, contribution}
	default:
		return [2]int{}
	}
}

// view hides the opponent's hole cards from seat.
func view(s *game.RoundState, seat int) *game.RoundState {
	v := *s
	v.Hands[1-seat] = nil
	return &v
}
