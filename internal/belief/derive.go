package belief

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/lox/hiddenrank/internal/relations"
	"github.com/lox/hiddenrank/poker"
)

const (
	// ConfirmationThreshold is the path confidence at which earlier edges
	// decide a pair's direction outright.
	ConfirmationThreshold = 0.7
	// CorroborationBump is added to the confidence of a transitively
	// confirmed edge.
	CorroborationBump = 0.01
	// CloseEnough is how far below a cycle's best edge another edge of the
	// cycle may be and still survive.
	CloseEnough = 0.02
	// InconsistentBelief is the belief magnitude at which a discarded edge
	// marks its pair's evidence as suspect.
	InconsistentBelief = 0.5
	// SettledBelief is the belief magnitude at which a pair takes its
	// believed direction without a coin flip.
	SettledBelief = 0.9
	// MaxStructuralOdds bounds the factor by which endpoint structure may
	// shift a pair's odds, so structure only decides near-ties.
	MaxStructuralOdds = 2.0
	// MaxConfidence caps every proposal below the unresolvable level.
	MaxConfidence = 0.999
	// DenyAfter is how many distinct pairs a rule must be blamed for before
	// it is deny-listed.
	DenyAfter = 3
	// DenyShare is the fraction of a rule's pairs that must be blamed before
	// it is deny-listed.
	DenyShare = 0.25
)

type proposal struct {
	edge       relations.Edge
	confidence float64
	// explored marks an edge whose direction came from the coin flip.
	explored bool
}

// proposals tracks accepted edges together with the widest-path confidence
// between every two ranks: reach[u][v] is the best, over all paths u to v,
// of the weakest edge confidence on the path.
type proposals struct {
	edges []proposal
	reach [poker.NumRanks][poker.NumRanks]float64
}

func (ps *proposals) add(p proposal) {
	ps.edges = append(ps.edges, p)
	x, y := p.edge.From, p.edge.To
	var from, to [poker.NumRanks]float64
	for u := range from {
		from[u] = ps.reach[u][x]
		to[u] = ps.reach[y][u]
	}
	from[x], to[y] = 1, 1
	for u := range poker.NumRanks {
		if from[u] == 0 {
			continue
		}
		for v := range poker.NumRanks {
			if to[v] == 0 {
				continue
			}
			w := min(from[u], p.confidence, to[v])
			if w > ps.reach[u][v] {
				ps.reach[u][v] = w
			}
		}
	}
}

func (ps *proposals) successors(v poker.Rank) int {
	n := 0
	for u := range poker.NumRanks {
		if u != int(v) && ps.reach[v][u] > 0 {
			n++
		}
	}
	return n
}

func (ps *proposals) predecessors(v poker.Rank) int {
	n := 0
	for u := range poker.NumRanks {
		if u != int(v) && ps.reach[u][v] > 0 {
			n++
		}
	}
	return n
}

// excused returns the edges of every cycle that contains an explored edge.
// Discarding them says nothing about the evidence behind the pair.
func (ps *proposals) excused(cycles [][]poker.Rank) map[relations.Edge]bool {
	explored := make(map[relations.Edge]bool)
	for _, p := range ps.edges {
		if p.explored {
			explored[p.edge] = true
		}
	}
	out := make(map[relations.Edge]bool)
	for _, cycle := range cycles {
		edges := relations.CycleEdges(cycle)
		if !slices.ContainsFunc(edges, func(e relations.Edge) bool { return explored[e] }) {
			continue
		}
		for _, edge := range edges {
			out[edge] = true
		}
	}
	return out
}

func (ps *proposals) list() []relations.Edge {
	out := make([]relations.Edge, len(ps.edges))
	for i, p := range ps.edges {
		out[i] = p.edge
	}
	return out
}

// Relations derives a cycle-free relation set from the current beliefs.
//
// Pairs are visited from most to least confident. A pair whose direction is
// already implied by earlier edges with confidence at least
// ConfirmationThreshold takes that direction. A pair believed with at least
// SettledBelief takes its believed direction. Otherwise its direction is a
// weighted coin flip that combines the pair's belief with how many ranks each
// endpoint is already known to precede or follow, the latter bounded by
// MaxStructuralOdds.
//
// Cycles in the result are then broken by discarding the edges of each cycle
// that are not within CloseEnough of its best edge, or the single weakest
// edge when they all are. Discarding an edge that the pair's own belief
// strongly supported flags that pair's evidence, unless the cycle contains a
// coin-flip edge: with two or more contributing rules the rule most biased
// the wrong way takes a strike, otherwise the pair's belief is halved.
func (e *Engine) Relations(rng *rand.Rand) ([]relations.Edge, error) {
	pairs := make([]*Belief, 0, len(e.beliefs))
	candidates := make([]relations.Edge, 0, len(e.beliefs))
	for _, bel := range e.beliefs {
		if bel.Probability != 0 {
			pairs = append(pairs, bel)
			candidates = append(candidates, relations.E(bel.Pair.Lo, bel.Pair.Hi))
		}
	}
	if err := relations.Validate(candidates); err != nil {
		return nil, err
	}
	slices.SortFunc(pairs, func(a, b *Belief) int {
		if c := cmp.Compare(math.Abs(a.Probability), math.Abs(b.Probability)); c != 0 {
			return c
		}
		return comparePairs(b.Pair, a.Pair)
	})

	var ps proposals
	for i := len(pairs) - 1; i >= 0; i-- {
		ps.add(e.propose(&ps, pairs[i], rng))
	}

	for {
		cycles := relations.DetectCycles(ps.list())
		if len(cycles) == 0 {
			return ps.list(), nil
		}
		discard, err := e.pickDiscards(&ps, cycles)
		if err != nil {
			return nil, err
		}
		excused := ps.excused(cycles)
		var kept proposals
		for i, p := range ps.edges {
			if discard[i] {
				if !excused[p.edge] {
					e.flagInconsistent(p.edge)
				}
				continue
			}
			kept.add(p)
		}
		ps = kept
	}
}

func (e *Engine) propose(ps *proposals, bel *Belief, rng *rand.Rand) proposal {
	lo, hi := bel.Pair.Lo, bel.Pair.Hi

	forward, backward := ps.reach[lo][hi], ps.reach[hi][lo]
	if forward >= ConfirmationThreshold || backward >= ConfirmationThreshold {
		if forward >= backward {
			return proposal{edge: relations.E(lo, hi), confidence: min(MaxConfidence, forward+CorroborationBump)}
		}
		return proposal{edge: relations.E(hi, lo), confidence: min(MaxConfidence, backward+CorroborationBump)}
	}

	prior := (1 + bel.Probability) / 2
	up := float64((ps.successors(lo) + 1) * (ps.predecessors(hi) + 1))
	down := float64((ps.successors(hi) + 1) * (ps.predecessors(lo) + 1))
	odds := min(max(up/down, 1/MaxStructuralOdds), MaxStructuralOdds)
	pLoWeaker := prior * odds / (prior*odds + 1 - prior)

	forwardEdge := proposal{edge: relations.E(lo, hi), confidence: min(MaxConfidence, pLoWeaker)}
	backwardEdge := proposal{edge: relations.E(hi, lo), confidence: min(MaxConfidence, 1-pLoWeaker)}
	switch {
	case bel.Probability >= SettledBelief:
		return forwardEdge
	case bel.Probability <= -SettledBelief:
		return backwardEdge
	}

	forwardEdge.explored, backwardEdge.explored = true, true
	if rng.Float64() < pLoWeaker {
		return forwardEdge
	}
	return backwardEdge
}

func (e *Engine) pickDiscards(ps *proposals, cycles [][]poker.Rank) (map[int]bool, error) {
	index := make(map[relations.Edge]int, len(ps.edges))
	for i, p := range ps.edges {
		index[p.edge] = i
	}

	discard := make(map[int]bool)
	for _, cycle := range cycles {
		var members []int
		for _, edge := range relations.CycleEdges(cycle) {
			if i, ok := index[edge]; ok {
				members = append(members, i)
			}
		}
		if len(members) == 0 {
			continue
		}

		best := 0.0
		for _, i := range members {
			best = max(best, ps.edges[i].confidence)
		}
		found := false
		for _, i := range members {
			if ps.edges[i].confidence < best-CloseEnough {
				discard[i] = true
				found = true
			}
		}
		if found {
			continue
		}

		weakest := members[0]
		for _, i := range members[1:] {
			c, w := ps.edges[i].confidence, ps.edges[weakest].confidence
			if c < w || (c == w && i > weakest) {
				weakest = i
			}
		}
		if ps.edges[weakest].confidence >= 1 {
			e.logger.Error("Cycle of fully confident edges", "cycle", formatCycle(cycle))
			return nil, fmt.Errorf("%w: %s", ErrUnresolvableCycle, formatCycle(cycle))
		}
		discard[weakest] = true
	}
	if len(discard) == 0 {
		return nil, fmt.Errorf("%w: no cycle edge is tracked", ErrUnresolvableCycle)
	}
	return discard, nil
}

// flagInconsistent inspects the pair behind a discarded edge. Nothing
// happens unless the pair's own belief favoured the discarded direction.
func (e *Engine) flagInconsistent(edge relations.Edge) {
	pair, flip := canonical(edge.From, edge.To)
	bel, ok := e.beliefs[pair]
	if !ok || bel.Probability*flip < InconsistentBelief {
		return
	}

	byRule := make(map[string]float64)
	var rules []string
	for _, ev := range bel.Evidence {
		if _, seen := byRule[ev.Rule]; !seen {
			rules = append(rules, ev.Rule)
		}
		byRule[ev.Rule] += ev.Certainty * flip
	}

	if len(rules) < 2 {
		bel.Probability /= 2
		e.logger.Debug("Weakened isolated belief", "pair", pair, "rule", rules, "probability", bel.Probability)
		return
	}

	culprit, worst := "", 0.0
	for _, rule := range rules {
		if byRule[rule] > worst {
			culprit, worst = rule, byRule[rule]
		}
	}
	if culprit == "" {
		return
	}
	if e.strike(culprit, pair) {
		e.logger.Warn("Deny-listed rule", "rule", culprit, "pair", pair, "edge", edge.String(), "weight", worst, "strikes", len(e.strikes[culprit]))
		return
	}
	e.logger.Debug("Blamed rule", "rule", culprit, "pair", pair, "edge", edge.String(), "strikes", len(e.strikes[culprit]))
}

// strike blames rule for a contradiction on pair. The rule is deny-listed
// once it has been blamed on DenyAfter distinct pairs that make up at least
// DenyShare of the pairs it contributed to. It reports whether the rule was
// newly denied.
func (e *Engine) strike(rule string, pair Pair) bool {
	blamed, ok := e.strikes[rule]
	if !ok {
		blamed = make(map[Pair]struct{})
		e.strikes[rule] = blamed
	}
	blamed[pair] = struct{}{}

	if len(blamed) < DenyAfter || float64(len(blamed)) < DenyShare*float64(e.pairsFrom(rule)) {
		return false
	}
	return e.Deny(rule)
}

// pairsFrom counts the pairs with at least one observation from rule.
func (e *Engine) pairsFrom(rule string) int {
	n := 0
	for _, bel := range e.beliefs {
		if slices.ContainsFunc(bel.Evidence, func(ev Evidence) bool { return ev.Rule == rule }) {
			n++
		}
	}
	return n
}

func formatCycle(cycle []poker.Rank) string {
	s := ""
	for i, r := range cycle {
		if i > 0 {
			s += " -> "
		}
		s += r.String()
	}
	return s
}
