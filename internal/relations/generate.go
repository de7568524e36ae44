package relations

import (
	"fmt"
	"math/rand/v2"

	"github.com/lox/hiddenrank/poker"
)

// StopProbability is the chance that GenerateOrdering settles on each
// eligible rank it scans.
const StopProbability = 0.25

// GenerateOrdering builds one ordering consistent with a cycle-free edge set.
// Position by position, the eligible ranks (every predecessor placed, no
// successor placed) are scanned in canonical print order and each is taken
// with probability StopProbability; if none is taken the first eligible rank
// is used. Weak evidence therefore leaves the result close to the print order.
func GenerateOrdering(edges []Edge, rng *rand.Rand) (poker.Ordering, error) {
	var o poker.Ordering
	g, err := newGraph(edges)
	if err != nil {
		return o, err
	}
	for v := range poker.Rank(poker.NumRanks) {
		if g.pre[v]&g.post[v] != 0 || g.pre[v].has(v) {
			return o, fmt.Errorf("%w: %s is both before and after %v", ErrCyclic, v, (g.pre[v] & g.post[v]).ranks())
		}
	}
	if !g.acyclic() {
		return o, ErrCyclic
	}

	var placed rankSet
	for i := range o {
		var eligible []poker.Rank
		for v := range poker.Rank(poker.NumRanks) {
			if !placed.has(v) && g.pre[v]&^placed == 0 && g.post[v]&placed == 0 {
				eligible = append(eligible, v)
			}
		}
		if len(eligible) == 0 {
			return o, ErrCyclic
		}
		choice := eligible[0]
		for _, v := range eligible {
			if rng.Float64() < StopProbability {
				choice = v
				break
			}
		}
		o[i] = choice
		placed |= 1 << choice
	}
	return o, nil
}
