package game

import (
	"github.com/lox/hiddenrank/poker"
)

// GameState is the match-level state the server reports between rounds.
type GameState struct {
	Bankroll  int
	GameClock float64 // seconds left on our clock
	RoundNum  int     // 1-based
}

// NewGameState returns the state at the start of a match.
func NewGameState() GameState {
	return GameState{RoundNum: 1}
}

// TerminalState is a finished round. Deltas are the chips each seat won or
// lost; they stay zero until the server reports them.
type TerminalState struct {
	Deltas   [2]int
	Previous *RoundState
}

// RoundState is one node of the round's game tree.
type RoundState struct {
	Button   int
	Street   Street
	Pips     [2]int // chips committed on the current street
	Stacks   [2]int
	Hands    [2][]poker.Card // nil when unknown
	Board    []poker.Card
	Previous *RoundState
}

// NewRound returns the opening state with blinds posted and the observing
// seat's hole cards known.
func NewRound(seat int, hole []poker.Card) *RoundState {
	var hands [2][]poker.Card
	hands[seat] = hole
	return &RoundState{
		Pips:   [2]int{SmallBlind, BigBlind},
		Stacks: [2]int{StartingStack - SmallBlind, StartingStack - BigBlind},
		Hands:  hands,
	}
}

// Active returns the seat whose turn it is.
func (s *RoundState) Active() int {
	return s.Button % 2
}

// ContinueCost is what the active seat must add to stay in.
func (s *RoundState) ContinueCost() int {
	active := s.Active()
	return s.Pips[1-active] - s.Pips[active]
}

// Pot returns the chips committed by both seats so far.
func (s *RoundState) Pot() int {
	return 2*StartingStack - s.Stacks[0] - s.Stacks[1]
}

// LegalActions returns the set of actions the active seat may take. Raising
// requires both seats to have chips behind.
func (s *RoundState) LegalActions() ActionType {
	active := s.Active()
	cost := s.ContinueCost()
	if cost == 0 {
		if s.Stacks[0] == 0 || s.Stacks[1] == 0 {
			return Check
		}
		return Check | Raise
	}
	if cost == s.Stacks[active] || s.Stacks[1-active] == 0 {
		return Fold | Call
	}
	return Fold | Call | Raise
}

// RaiseBounds returns the smallest and largest legal raise totals.
func (s *RoundState) RaiseBounds() (minRaise, maxRaise int) {
	active := s.Active()
	cost := s.ContinueCost()
	maxContrib := min(s.Stacks[active], s.Stacks[1-active]+cost)
	minContrib := min(maxContrib, cost+max(cost, BigBlind))
	return s.Pips[active] + minContrib, s.Pips[active] + maxContrib
}

// WithBoard returns a copy of s with the community cards replaced.
func (s *RoundState) WithBoard(board []poker.Card) *RoundState {
	next := *s
	next.Board = board
	return &next
}

// Showdown ends the round with both hands still in.
func (s *RoundState) Showdown() *TerminalState {
	return &TerminalState{Previous: s}
}

// ProceedStreet clears the pips and moves to the next street, or to showdown
// after the river.
func (s *RoundState) ProceedStreet() (*RoundState, *TerminalState) {
	if s.Street == River {
		return nil, s.Showdown()
	}
	street := s.Street + 1
	if s.Street == Preflop {
		street = Flop
	}
	return &RoundState{
		Button:   1,
		Street:   street,
		Stacks:   s.Stacks,
		Hands:    s.Hands,
		Board:    s.Board,
		Previous: s,
	}, nil
}

// Proceed applies the active seat's action. Exactly one of the results is
// non-nil.
func (s *RoundState) Proceed(a Action) (*RoundState, *TerminalState) {
	active := s.Active()
	switch a.Type {
	case Fold:
		delta := StartingStack - s.Stacks[1]
		if active == 0 {
			delta = s.Stacks[0] - StartingStack
		}
		return nil, &TerminalState{Deltas: [2]int{delta, -delta}, Previous: s}

	case Call:
		if s.Button == 0 {
			// Small blind completes; the big blind still has the option.
			return &RoundState{
				Button:   1,
				Pips:     [2]int{BigBlind, BigBlind},
				Stacks:   [2]int{StartingStack - BigBlind, StartingStack - BigBlind},
				Hands:    s.Hands,
				Board:    s.Board,
				Previous: s,
			}, nil
		}
		next := s.advance()
		contrib := next.Pips[1-active] - next.Pips[active]
		next.Stacks[active] -= contrib
		next.Pips[active] += contrib
		return next.ProceedStreet()

	case Check:
		if (s.Street == Preflop && s.Button > 0) || s.Button > 1 {
			return s.ProceedStreet()
		}
		return s.advance(), nil

	default: // Raise
		next := s.advance()
		contrib := a.Amount - next.Pips[active]
		next.Stacks[active] -= contrib
		next.Pips[active] += contrib
		return next, nil
	}
}

func (s *RoundState) advance() *RoundState {
	next := *s
	next.Button++
	next.Previous = s
	return &next
}

// Coerce maps an action onto the closest legal one: an out-of-range or
// forbidden raise becomes check (or call), an illegal check becomes fold,
// and call or fold become check when checking is free.
func (s *RoundState) Coerce(a Action) Action {
	legal := s.LegalActions()
	passive := CallAction()
	if legal.Has(Check) {
		passive = CheckAction()
	}
	switch a.Type {
	case Raise:
		if legal.Has(Raise) {
			lo, hi := s.RaiseBounds()
			if a.Amount >= lo && a.Amount <= hi {
				return a
			}
		}
		return passive
	case Check:
		if legal.Has(Check) {
			return a
		}
		return FoldAction()
	case Call:
		return passive
	default:
		if legal.Has(Check) {
			return CheckAction()
		}
		return FoldAction()
	}
}
