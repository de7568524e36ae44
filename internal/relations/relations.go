// Package relations implements the "weaker-than" graph over the 13 ranks:
// cycle detection and resolution, transitive reduction, linear extension
// counting and ordering generation.
//
// Edge sets are plain slices. All functions are pure and never modify their
// input.
package relations

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/lox/hiddenrank/poker"
)

// Edge asserts that From is weaker than To.
type Edge struct {
	From poker.Rank `json:"from"`
	To   poker.Rank `json:"to"`
}

// E is shorthand for building an edge.
func E(from, to poker.Rank) Edge {
	return Edge{From: from, To: to}
}

func (e Edge) String() string {
	return e.From.String() + " -> " + e.To.String()
}

// Reverse returns the opposite assertion.
func (e Edge) Reverse() Edge {
	return Edge{From: e.To, To: e.From}
}

var (
	// ErrCyclic is returned by operations that require a DAG.
	ErrCyclic = errors.New("relation set is cyclic")
	// ErrInvalidEdge is returned when an edge names an unknown rank.
	ErrInvalidEdge = errors.New("invalid edge")
)

// rankSet is a bitset over the 13 ranks, indexed by print index.
type rankSet uint16

func (s rankSet) has(r poker.Rank) bool { return s&(1<<r) != 0 }
func (s rankSet) len() int              { return bits.OnesCount16(uint16(s)) }

func (s rankSet) ranks() []poker.Rank {
	out := make([]poker.Rank, 0, s.len())
	for rest := s; rest != 0; rest &= rest - 1 {
		out = append(out, poker.Rank(bits.TrailingZeros16(uint16(rest))))
	}
	return out
}

// graph is the adjacency of an edge set as predecessor and successor bitsets.
type graph struct {
	pre  [poker.NumRanks]rankSet
	post [poker.NumRanks]rankSet
}

// Validate reports the first edge that names an unknown rank.
func Validate(edges []Edge) error {
	for _, e := range edges {
		if !e.From.Valid() || !e.To.Valid() {
			return fmt.Errorf("%w: %d -> %d", ErrInvalidEdge, e.From, e.To)
		}
	}
	return nil
}

func newGraph(edges []Edge) (*graph, error) {
	if err := Validate(edges); err != nil {
		return nil, err
	}
	g := &graph{}
	for _, e := range edges {
		g.add(e)
	}
	return g, nil
}

func (g *graph) add(e Edge) {
	g.post[e.From] |= 1 << e.To
	g.pre[e.To] |= 1 << e.From
}

// descendants returns every rank reachable from v by one or more edges.
func (g *graph) descendants(v poker.Rank) rankSet {
	return g.closure(g.post[v], &g.post)
}

// ancestors returns every rank that reaches v by one or more edges.
func (g *graph) ancestors(v poker.Rank) rankSet {
	return g.closure(g.pre[v], &g.pre)
}

func (g *graph) closure(start rankSet, adj *[poker.NumRanks]rankSet) rankSet {
	seen := start
	frontier := start
	for frontier != 0 {
		v := bits.TrailingZeros16(uint16(frontier))
		frontier &^= 1 << v
		next := adj[v] &^ seen
		seen |= next
		frontier |= next
	}
	return seen
}

// acyclic reports whether the graph has a topological order.
func (g *graph) acyclic() bool {
	const full rankSet = 1<<poker.NumRanks - 1
	var placed rankSet
	for placed != full {
		progress := false
		for v := range poker.Rank(poker.NumRanks) {
			if !placed.has(v) && g.pre[v]&^placed == 0 {
				placed |= 1 << v
				progress = true
			}
		}
		if !progress {
			return false
		}
	}
	return true
}

// Relationships returns the ranks with an edge into v (pre), the ranks v has
// an edge to (post), and the ranks appearing in both. Each list follows the
// order in which the ranks first appear in edges. violations is empty for a
// valid relation set.
func Relationships(edges []Edge, v poker.Rank) (pre, post, violations []poker.Rank) {
	var seenPre, seenPost rankSet
	for _, e := range edges {
		if e.To == v && e.From.Valid() && !seenPre.has(e.From) {
			seenPre |= 1 << e.From
			pre = append(pre, e.From)
		}
		if e.From == v && e.To.Valid() && !seenPost.has(e.To) {
			seenPost |= 1 << e.To
			post = append(post, e.To)
		}
	}
	for _, r := range pre {
		if seenPost.has(r) {
			violations = append(violations, r)
		}
	}
	return pre, post, violations
}

// RemoveRedundancies drops exact duplicate edges, keeping first occurrences.
func RemoveRedundancies(edges []Edge) []Edge {
	out := make([]Edge, 0, len(edges))
	seen := make(map[Edge]struct{}, len(edges))
	for _, e := range edges {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Simplify returns the transitive reduction of a cycle-free edge set: an edge
// is dropped when the remaining edges still connect its endpoints.
func Simplify(edges []Edge) []Edge {
	unique := RemoveRedundancies(edges)
	out := make([]Edge, 0, len(unique))
	for i, e := range unique {
		if !e.From.Valid() || !e.To.Valid() {
			continue
		}
		var g graph
		for j, other := range unique {
			if j != i && other.From.Valid() && other.To.Valid() {
				g.add(other)
			}
		}
		if !g.descendants(e.From).has(e.To) {
			out = append(out, e)
		}
	}
	return out
}

// Violations returns the edges of edges that o places in the wrong order.
func Violations(edges []Edge, o poker.Ordering) []Edge {
	pos := o.Positions()
	var out []Edge
	for _, e := range edges {
		if e.From.Valid() && e.To.Valid() && pos[e.To] < pos[e.From] {
			out = append(out, e)
		}
	}
	return out
}

// Satisfies reports whether o honours every edge.
func Satisfies(edges []Edge, o poker.Ordering) bool {
	return len(Violations(edges, o)) == 0
}
