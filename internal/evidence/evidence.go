// Package evidence turns finished rounds into pairwise rank observations for
// the inference engine.
//
// Rules only compare hands whose category does not depend on the hidden
// ordering (straights are ignored), so the category of each player's hand is
// known; the winner then tells us which of the deciding ranks is stronger.
package evidence

import (
	"fmt"

	"github.com/lox/hiddenrank/internal/showdown"
	"github.com/lox/hiddenrank/poker"
)

// Rule names, as they appear in diagnostics and the deny-list.
const (
	RulePairPair   = "pair-pair"
	RuleTwoPair    = "two-pair"
	RuleTripsTrips = "trips-trips"
	RuleQuadsQuads = "quads-quads"
	RuleFullHouse  = "full-house"
	RuleHighCard   = "high-card"
)

// Certainty attached to each rule's observations.
var Certainty = map[string]float64{
	RulePairPair:   0.9,
	RuleTwoPair:    0.5,
	RuleTripsTrips: 0.9,
	RuleQuadsQuads: 0.95,
	RuleFullHouse:  0.8,
	RuleHighCard:   0.3,
}

// Outcome is what the observing player learns when a round ends.
type Outcome struct {
	Hero     [2]poker.Card
	Villain  [2]poker.Card
	Board    []poker.Card
	Delta    int  // chips won (positive) or lost by the hero
	Showdown bool // Villain is only meaningful when true
}

// Observation claims that Weaker is weaker than Stronger.
type Observation struct {
	Rule      string
	Weaker    poker.Rank
	Stronger  poker.Rank
	Certainty float64
}

func (o Observation) String() string {
	return fmt.Sprintf("%s: %s < %s (%.2f)", o.Rule, o.Weaker, o.Stronger, o.Certainty)
}

// Sink receives observations. inference.Engine satisfies it.
type Sink interface {
	SubmitEvidence(rule string, a, b poker.Rank, certainty float64) bool
}

// Submit sends every observation to sink and returns how many were accepted.
func Submit(sink Sink, observations []Observation) int {
	accepted := 0
	for _, obs := range observations {
		if sink.SubmitEvidence(obs.Rule, obs.Weaker, obs.Stronger, obs.Certainty) {
			accepted++
		}
	}
	return accepted
}

// Derive extracts observations from a showdown. o is only used to choose
// between cards whose relative strength the rule cannot otherwise decide.
// Rounds without a showdown, split pots and incomplete boards yield nothing.
func Derive(o poker.Ordering, out Outcome) []Observation {
	if !out.Showdown || out.Delta == 0 || len(out.Board) < 3 {
		return nil
	}

	hero := append(out.Hero[:], out.Board...)
	villain := append(out.Villain[:], out.Board...)
	if showdown.Validate(hero) != nil || showdown.Validate(villain) != nil {
		return nil
	}
	if poker.HasDuplicates(append(append([]poker.Card{}, out.Hero[:]...), villain...)) {
		return nil
	}

	winner := showdown.ClassifyIgnoringStraights(o, hero)
	loser := showdown.ClassifyIgnoringStraights(o, villain)
	winnerHole, loserHole := out.Hero[:], out.Villain[:]
	if out.Delta < 0 {
		winner, loser = loser, winner
		winnerHole, loserHole = loserHole, winnerHole
	}
	if winner.Category != loser.Category {
		return nil
	}

	observe := func(rule string, weaker, stronger poker.Rank) []Observation {
		if weaker == stronger {
			return nil
		}
		return []Observation{{Rule: rule, Weaker: weaker, Stronger: stronger, Certainty: Certainty[rule]}}
	}

	switch winner.Category {
	case showdown.Pair:
		return observe(RulePairPair, loser.Cards[0].Rank, winner.Cards[0].Rank)
	case showdown.ThreeOfAKind:
		return observe(RuleTripsTrips, loser.Cards[0].Rank, winner.Cards[0].Rank)
	case showdown.FourOfAKind:
		return observe(RuleQuadsQuads, loser.Cards[0].Rank, winner.Cards[0].Rank)
	case showdown.FullHouse:
		return observe(RuleFullHouse, loser.Cards[0].Rank, winner.Cards[0].Rank)
	case showdown.TwoPair:
		return observe(RuleTwoPair, loser.Highest(o).Rank, winner.Highest(o).Rank)
	case showdown.HighCard:
		// A board card cannot decide a high-card showdown, so the winner's
		// best hole card beats both of the loser's hole cards.
		best := showdown.HighestCard(o, winnerHole)
		var obs []Observation
		for _, c := range loserHole {
			obs = append(obs, observe(RuleHighCard, c.Rank, best.Rank)...)
		}
		return obs
	default:
		return nil
	}
}
