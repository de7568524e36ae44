// Package belief accumulates noisy pairwise evidence about the hidden rank
// ordering and turns it into a cycle-free relation set.
package belief

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/lox/hiddenrank/internal/relations"
	"github.com/lox/hiddenrank/poker"
)

var (
	// ErrInvalidCertainty is returned for a certainty outside (-1, 1) or NaN.
	ErrInvalidCertainty = errors.New("certainty must be in (-1, 1)")
	// ErrCorruptBelief is returned when an update would leave a belief
	// non-finite. The update is reverted.
	ErrCorruptBelief = errors.New("belief became non-finite")
	// ErrUnresolvableCycle is returned when a cycle consists only of
	// maximally confident edges and cannot be broken.
	ErrUnresolvableCycle = errors.New("unresolvable cycle")
)

// Pair is an unordered rank pair stored with the lower print index first.
type Pair struct {
	Lo poker.Rank `json:"lo"`
	Hi poker.Rank `json:"hi"`
}

func (p Pair) String() string {
	return p.Lo.String() + p.Hi.String()
}

// canonical orders a and b by print index. flip is -1 when they were swapped.
func canonical(a, b poker.Rank) (Pair, float64) {
	if a < b {
		return Pair{Lo: a, Hi: b}, 1
	}
	return Pair{Lo: b, Hi: a}, -1
}

// Evidence is one accepted observation. Certainty is signed relative to the
// pair: positive means Lo is weaker than Hi.
type Evidence struct {
	Rule      string  `json:"rule"`
	Certainty float64 `json:"certainty"`
}

// Belief is the aggregated state of one pair. Probability lies in [-1, 1];
// positive means Lo is weaker than Hi.
type Belief struct {
	Pair        Pair       `json:"pair"`
	Probability float64    `json:"probability"`
	Reps        int        `json:"reps"`
	Evidence    []Evidence `json:"evidence"`
}

// Engine owns every pair belief and the deny-list. It is not safe for
// concurrent use.
type Engine struct {
	beliefs map[Pair]*Belief
	denied  map[string]struct{}
	// strikes holds, per rule, the pairs it was blamed for in a contradiction.
	strikes map[string]map[Pair]struct{}
	logger  *log.Logger
}

// New creates an empty engine.
func New(logger *log.Logger) *Engine {
	return &Engine{
		beliefs: make(map[Pair]*Belief),
		denied:  make(map[string]struct{}),
		strikes: make(map[string]map[Pair]struct{}),
		logger:  logger.WithPrefix("belief"),
	}
}

// Update folds one observation into the belief for (a, b). Positive
// certainty claims a is weaker than b. The result reports whether the
// observation was applied: equal ranks, zero certainty and deny-listed rules
// are ignored without error.
//
// The pair's probability moves towards the sign of the certainty with weight
// |certainty|/reps, so early evidence moves it far and later evidence less.
func (e *Engine) Update(rule string, a, b poker.Rank, certainty float64) (bool, error) {
	if math.IsNaN(certainty) || certainty <= -1 || certainty >= 1 {
		return false, fmt.Errorf("%w: got %v from %q", ErrInvalidCertainty, certainty, rule)
	}
	if !a.Valid() || !b.Valid() {
		return false, fmt.Errorf("%w: %d/%d from %q", poker.ErrInvalidRank, a, b, rule)
	}
	if a == b || certainty == 0 {
		return false, nil
	}
	if _, denied := e.denied[rule]; denied {
		return false, nil
	}

	pair, flip := canonical(a, b)
	certainty *= flip

	bel, ok := e.beliefs[pair]
	if !ok {
		bel = &Belief{Pair: pair}
	}
	reps := bel.Reps + 1
	sign := 1.0
	if certainty < 0 {
		sign = -1
	}
	next := bel.Probability + math.Abs(certainty)/float64(reps)*(sign-bel.Probability)
	if math.IsNaN(next) || math.IsInf(next, 0) {
		return false, fmt.Errorf("%w: pair %s from %q", ErrCorruptBelief, pair, rule)
	}

	bel.Reps = reps
	bel.Probability = next
	bel.Evidence = append(bel.Evidence, Evidence{Rule: rule, Certainty: certainty})
	e.beliefs[pair] = bel
	return true, nil
}

// Probability returns the aggregated belief that a is weaker than b, in
// [-1, 1]. Unknown pairs are 0.
func (e *Engine) Probability(a, b poker.Rank) float64 {
	pair, flip := canonical(a, b)
	bel, ok := e.beliefs[pair]
	if !ok {
		return 0
	}
	return bel.Probability * flip
}

// LikelyOrdering returns the currently favoured direction for a and b as an
// edge from the weaker rank. ok is false when there is no preference.
func (e *Engine) LikelyOrdering(a, b poker.Rank) (relations.Edge, bool) {
	p := e.Probability(a, b)
	switch {
	case p > 0:
		return relations.E(a, b), true
	case p < 0:
		return relations.E(b, a), true
	default:
		return relations.Edge{}, false
	}
}

// Deny adds rule to the deny-list. It reports whether the rule was new.
func (e *Engine) Deny(rule string) bool {
	if _, ok := e.denied[rule]; ok {
		return false
	}
	e.denied[rule] = struct{}{}
	return true
}

// IsDenied reports whether rule is on the deny-list.
func (e *Engine) IsDenied(rule string) bool {
	_, ok := e.denied[rule]
	return ok
}

// Denied returns the deny-listed rules in sorted order.
func (e *Engine) Denied() []string {
	out := make([]string, 0, len(e.denied))
	for rule := range e.denied {
		out = append(out, rule)
	}
	slices.Sort(out)
	return out
}

// Beliefs returns a copy of every known pair, most confident first.
func (e *Engine) Beliefs() []Belief {
	out := make([]Belief, 0, len(e.beliefs))
	for _, bel := range e.beliefs {
		cp := *bel
		cp.Evidence = slices.Clone(bel.Evidence)
		out = append(out, cp)
	}
	slices.SortFunc(out, func(a, b Belief) int {
		if c := cmp.Compare(math.Abs(b.Probability), math.Abs(a.Probability)); c != 0 {
			return c
		}
		return comparePairs(a.Pair, b.Pair)
	})
	return out
}

// Evidence returns the number of accepted observations across all pairs.
func (e *Engine) Evidence() int {
	total := 0
	for _, bel := range e.beliefs {
		total += bel.Reps
	}
	return total
}

func comparePairs(a, b Pair) int {
	if c := cmp.Compare(a.Lo, b.Lo); c != 0 {
		return c
	}
	return cmp.Compare(a.Hi, b.Hi)
}
