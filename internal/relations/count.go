package relations

import (
	"github.com/lox/hiddenrank/poker"
)

// Possibilities returns the exact number of orderings of all 13 ranks that
// satisfy every edge, i.e. the number of linear extensions of the partial
// order. It is 13! for an empty set and never grows when an edge is added.
//
// The count is a dynamic program over down-sets: ways[S] is the number of
// ways to place exactly the ranks in S as the weakest |S| positions.
func Possibilities(edges []Edge) (uint64, error) {
	g, err := newGraph(edges)
	if err != nil {
		return 0, err
	}

	const full = 1<<poker.NumRanks - 1
	ways := make([]uint64, full+1)
	ways[0] = 1
	for mask := 0; mask < full; mask++ {
		if ways[mask] == 0 {
			continue
		}
		placed := rankSet(mask)
		for v := range poker.Rank(poker.NumRanks) {
			if placed.has(v) || g.pre[v]&^placed != 0 {
				continue
			}
			ways[mask|1<<v] += ways[mask]
		}
	}
	if ways[full] == 0 {
		return 0, ErrCyclic
	}
	return ways[full], nil
}
