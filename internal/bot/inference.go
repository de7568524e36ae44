package bot

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/lox/hiddenrank/internal/evidence"
	"github.com/lox/hiddenrank/internal/game"
	"github.com/lox/hiddenrank/internal/inference"
	"github.com/lox/hiddenrank/internal/showdown"
	"github.com/lox/hiddenrank/poker"
)

// Policy holds the InferenceBot's betting thresholds.
type Policy struct {
	// StraightUncertainty is the largest engine Uncertainty at which
	// straights are trusted when classifying our hand.
	StraightUncertainty uint64
	RaiseAt             showdown.Category
	CallAt              showdown.Category
	// RaisePot is the fraction of the pot added to the minimum raise.
	RaisePot float64
}

// DefaultPolicy raises trips or better, calls a pair and trusts straights
// once at most 1000 orderings remain.
func DefaultPolicy() Policy {
	return Policy{
		StraightUncertainty: 1000,
		RaiseAt:             showdown.ThreeOfAKind,
		CallAt:              showdown.Pair,
		RaisePot:            0.5,
	}
}

// Stats counts what the bot has learned so far.
type Stats struct {
	Rounds       int
	Showdowns    int
	Observations int
	Accepted     int
}

// InferenceBot plays on the engine's current ordering and feeds showdowns
// back into it.
type InferenceBot struct {
	engine    *inference.Engine
	policy    Policy
	logger    *log.Logger
	snapshots *SnapshotWriter

	ordering  poker.Ordering
	straights bool
	stats     Stats
}

// InferenceOption configures an InferenceBot.
type InferenceOption func(*InferenceBot)

// WithPolicy replaces DefaultPolicy.
func WithPolicy(p Policy) InferenceOption {
	return func(b *InferenceBot) { b.policy = p }
}

// WithSnapshots writes engine snapshots after finished rounds.
func WithSnapshots(w *SnapshotWriter) InferenceOption {
	return func(b *InferenceBot) { b.snapshots = w }
}

// NewInferenceBot creates a bot around engine.
func NewInferenceBot(engine *inference.Engine, logger *log.Logger, opts ...InferenceOption) *InferenceBot {
	b := &InferenceBot{
		engine:   engine,
		policy:   DefaultPolicy(),
		logger:   logger.WithPrefix("bot"),
		ordering: poker.CanonicalOrdering(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Stats returns the running counters.
func (b *InferenceBot) Stats() Stats { return b.stats }

// HandleNewRound picks up the latest ordering hypothesis for the round.
func (b *InferenceBot) HandleNewRound(gs game.GameState, rs *game.RoundState, seat int) {
	b.stats.Rounds++
	b.ordering = b.engine.CurrentOrdering()
	uncertainty := b.engine.Uncertainty()
	b.straights = uncertainty <= b.policy.StraightUncertainty
	b.logger.Debug("New round",
		"round", gs.RoundNum,
		"seat", seat,
		"hand", poker.FormatCards(rs.Hands[seat], ""),
		"ordering", b.ordering.Compact(),
		"uncertainty", uncertainty,
		"straights", b.straights)
}

// GetAction classifies our best hand under the current hypothesis and maps
// its category onto raise, call or check/fold.
func (b *InferenceBot) GetAction(gs game.GameState, rs *game.RoundState, seat int) game.Action {
	hand := b.classify(rs, seat)
	legal := rs.LegalActions()

	var action game.Action
	switch {
	case hand.Category >= b.policy.RaiseAt && legal.Has(game.Raise):
		lo, hi := rs.RaiseBounds()
		action = game.RaiseAction(min(hi, lo+int(b.policy.RaisePot*float64(rs.Pot()))))
	case hand.Category >= b.policy.CallAt:
		action = game.CallAction()
		if legal.Has(game.Check) {
			action = game.CheckAction()
		}
	case legal.Has(game.Check):
		action = game.CheckAction()
	default:
		action = game.FoldAction()
	}

	b.logger.Debug("Decision", "street", rs.Street.String(), "hand", hand.String(), "action", action.String())
	return action
}

func (b *InferenceBot) classify(rs *game.RoundState, seat int) showdown.Hand {
	cards := append(slices.Clone(rs.Hands[seat]), rs.Board...)
	if b.straights {
		return b.engine.Evaluate(b.ordering, cards)
	}
	return b.engine.EvaluateIgnoringStraights(b.ordering, cards)
}

// HandleRoundOver turns a showdown into evidence and submits it.
func (b *InferenceBot) HandleRoundOver(gs game.GameState, ts *game.TerminalState, seat int) {
	last := ts.Previous
	hero, villain := last.Hands[seat], last.Hands[1-seat]
	if len(hero) != 2 {
		b.logger.Warn("Round over without our hole cards", "round", gs.RoundNum)
		return
	}

	out := evidence.Outcome{
		Hero:  [2]poker.Card{hero[0], hero[1]},
		Board: last.Board,
		Delta: ts.Deltas[seat],
	}
	if len(villain) == 2 {
		out.Villain = [2]poker.Card{villain[0], villain[1]}
		out.Showdown = true
		b.stats.Showdowns++
	}

	observations := evidence.Derive(b.ordering, out)
	accepted := evidence.Submit(b.engine, observations)
	b.stats.Observations += len(observations)
	b.stats.Accepted += accepted
	for _, obs := range observations {
		b.logger.Debug("Observation", "evidence", obs.String())
	}

	if b.snapshots != nil && b.snapshots.Due(gs.RoundNum) {
		if err := b.snapshots.Write(gs, b.engine.Report()); err != nil {
			b.logger.Error("Failed to write snapshot", "path", b.snapshots.Path(), "error", err)
		}
	}
}
