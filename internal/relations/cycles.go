package relations

import (
	"cmp"
	"math/bits"
	"slices"

	"github.com/lox/hiddenrank/poker"
)

// DetectCycles returns one closed walk [v0, ..., vk=v0] per vertex set that
// supports an elementary cycle. Vertex sets that are a proper subset of
// another detected cycle's set are omitted. A self loop is reported as [v, v].
//
// The search extends paths over (visited set, last vertex) states, with each
// path rooted at the lowest print index of its set, so its cost does not
// depend on how many distinct walks the graph contains.
//
// Edges must pass Validate. A set naming an unknown rank is not a graph over
// the ranks and yields no cycles, so a nil result only means acyclic for
// valid input.
func DetectCycles(edges []Edge) [][]poker.Rank {
	g, err := newGraph(edges)
	if err != nil {
		return nil
	}

	const n = poker.NumRanks
	const none = -1
	parent := make([]int8, (1<<n)*n)
	reached := make([]bool, (1<<n)*n)
	for v := range n {
		reached[(1<<v)*n+v] = true
		parent[(1<<v)*n+v] = none
	}

	var found []uint16
	walks := make(map[uint16][]poker.Rank)
	for mask := 1; mask < 1<<n; mask++ {
		low := bits.TrailingZeros16(uint16(mask))
		for last := range n {
			if !reached[mask*n+last] {
				continue
			}
			if g.post[last].has(poker.Rank(low)) {
				if _, ok := walks[uint16(mask)]; !ok {
					found = append(found, uint16(mask))
					walks[uint16(mask)] = reconstruct(parent, mask, last, low)
				}
			}
			for next := g.post[last]; next != 0; next &= next - 1 {
				w := bits.TrailingZeros16(uint16(next))
				if w <= low || mask&(1<<w) != 0 {
					continue
				}
				state := (mask|1<<w)*n + w
				if !reached[state] {
					reached[state] = true
					parent[state] = int8(last)
				}
			}
		}
	}

	bySize := slices.Clone(found)
	slices.SortStableFunc(bySize, func(a, b uint16) int {
		return cmp.Compare(bits.OnesCount16(b), bits.OnesCount16(a))
	})
	maximal := make(map[uint16]bool)
	var kept []uint16
	for _, mask := range bySize {
		covered := false
		for _, other := range kept {
			if other != mask && other&mask == mask {
				covered = true
				break
			}
		}
		if !covered {
			kept = append(kept, mask)
			maximal[mask] = true
		}
	}

	var cycles [][]poker.Rank
	for _, mask := range found {
		if maximal[mask] {
			cycles = append(cycles, walks[mask])
		}
	}
	return cycles
}

func reconstruct(parent []int8, mask, last, low int) []poker.Rank {
	const n = poker.NumRanks
	var rev []poker.Rank
	for v := last; v >= 0; {
		rev = append(rev, poker.Rank(v))
		p := int(parent[mask*n+v])
		mask &^= 1 << v
		v = p
	}
	slices.Reverse(rev)
	return append(rev, poker.Rank(low))
}

// CycleEdges lists the edges walked by a cycle.
func CycleEdges(cycle []poker.Rank) []Edge {
	if len(cycle) < 2 {
		return nil
	}
	out := make([]Edge, 0, len(cycle)-1)
	for i := 0; i+1 < len(cycle); i++ {
		out = append(out, E(cycle[i], cycle[i+1]))
	}
	return out
}

// ResolveCycles proposes which cycle edges can be reinstated on top of
// surviving, the edge set left after every cycle edge was removed.
//
// Each candidate edge a -> b is scored by how pinned down its endpoints
// already are: the number of ancestors of a plus the number of descendants
// of b under surviving. Starting from a uniform prior over the candidates,
// the posterior weight of a candidate is proportional to 1 + score. Edges
// whose posterior beats the prior are accepted, heaviest first, unless they
// would close a cycle.
func ResolveCycles(surviving []Edge, cycles [][]poker.Rank) []Edge {
	g, err := newGraph(surviving)
	if err != nil {
		return nil
	}

	present := make(map[Edge]bool, len(surviving))
	for _, e := range surviving {
		present[e] = true
	}

	type candidate struct {
		edge  Edge
		score int
	}
	var candidates []candidate
	seen := make(map[Edge]bool)
	for _, cycle := range cycles {
		for _, e := range CycleEdges(cycle) {
			if seen[e] || present[e] || e.From == e.To || !e.From.Valid() || !e.To.Valid() {
				continue
			}
			seen[e] = true
			score := g.ancestors(e.From).len() + g.descendants(e.To).len()
			candidates = append(candidates, candidate{edge: e, score: score})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	total := 0
	for _, c := range candidates {
		total += 1 + c.score
	}
	prior := 1 / float64(len(candidates))

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(b.score, a.score)
	})

	var accepted []Edge
	for _, c := range candidates {
		posterior := float64(1+c.score) / float64(total)
		if posterior <= prior {
			break
		}
		if g.descendants(c.edge.To).has(c.edge.From) {
			continue
		}
		g.add(c.edge)
		accepted = append(accepted, c.edge)
	}
	return accepted
}

// BreakCycles returns a cycle-free subset of edges. Each round strips the
// edges of every detected cycle and reinstates what ResolveCycles proposes;
// every round removes at least one edge, so the loop terminates.
func BreakCycles(edges []Edge) []Edge {
	current := RemoveRedundancies(edges)
	for {
		cycles := DetectCycles(current)
		if len(cycles) == 0 {
			return current
		}
		cut := make(map[Edge]bool)
		for _, cycle := range cycles {
			for _, e := range CycleEdges(cycle) {
				cut[e] = true
			}
		}
		surviving := make([]Edge, 0, len(current))
		for _, e := range current {
			if !cut[e] {
				surviving = append(surviving, e)
			}
		}
		current = append(surviving, ResolveCycles(surviving, cycles)...)
	}
}
