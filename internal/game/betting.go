package game

import (
	"fmt"
	"strings"
)

// Match constants used by the engine server.
const (
	NumRounds     = 1000
	StartingStack = 200
	BigBlind      = 2
	SmallBlind    = 1
)

// Street is the number of community cards dealt: 0, 3, 4 or 5.
type Street int

const (
	Preflop Street = 0
	Flop    Street = 3
	Turn    Street = 4
	River   Street = 5
)

func (s Street) String() string {
	switch s {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	default:
		return fmt.Sprintf("street(%d)", int(s))
	}
}

// ActionType is a bit set of action kinds, as returned by LegalActions.
type ActionType uint8

const (
	Fold ActionType = 1 << iota
	Call
	Check
	Raise
)

// Has reports whether every kind in other is present in t.
func (t ActionType) Has(other ActionType) bool {
	return t&other == other
}

func (t ActionType) String() string {
	var names []string
	for _, kind := range []struct {
		t    ActionType
		name string
	}{{Fold, "fold"}, {Call, "call"}, {Check, "check"}, {Raise, "raise"}} {
		if t.Has(kind.t) {
			names = append(names, kind.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Action is a single player decision. Amount is only meaningful for Raise
// and is the total the raiser has in front of them on this street.
type Action struct {
	Type   ActionType
	Amount int
}

// FoldAction, CallAction, CheckAction and RaiseAction build actions.
func FoldAction() Action  { return Action{Type: Fold} }
func CallAction() Action  { return Action{Type: Call} }
func CheckAction() Action { return Action{Type: Check} }

func RaiseAction(amount int) Action {
	return Action{Type: Raise, Amount: amount}
}

func (a Action) String() string {
	if a.Type == Raise {
		return fmt.Sprintf("raise %d", a.Amount)
	}
	return a.Type.String()
}
