package poker

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Ordering is a permutation of all 13 ranks. Index 0 is the weakest rank and
// index 12 the strongest.
type Ordering [NumRanks]Rank

// ErrInvalidOrdering is returned when an ordering is not a permutation of the ranks.
var ErrInvalidOrdering = errors.New("invalid ordering")

// CanonicalOrdering returns the conventional print order 2..A. It is used as
// the reference direction for canonicalising rank pairs and as the default
// hypothesis before any evidence arrives.
func CanonicalOrdering() Ordering {
	var o Ordering
	for i := range o {
		o[i] = Rank(i)
	}
	return o
}

// RandomOrdering returns a uniformly random ordering drawn from rng.
func RandomOrdering(rng *rand.Rand) Ordering {
	o := CanonicalOrdering()
	rng.Shuffle(len(o), func(i, j int) { o[i], o[j] = o[j], o[i] })
	return o
}

// ParseOrdering parses an ordering written weakest first, either comma
// separated ("2,3,4,...") or compact ("23456789TJQKA").
func ParseOrdering(s string) (Ordering, error) {
	compact := strings.Map(func(r rune) rune {
		if r == ',' || r == ' ' || r == '\t' || r == '>' || r == '-' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	var o Ordering
	if len(compact) != NumRanks {
		return o, fmt.Errorf("%w: expected %d ranks, got %d in %q", ErrInvalidOrdering, NumRanks, len(compact), s)
	}
	for i := 0; i < NumRanks; i++ {
		r, err := ParseRank(compact[i])
		if err != nil {
			return o, fmt.Errorf("%w: %w", ErrInvalidOrdering, err)
		}
		o[i] = r
	}
	if err := o.Validate(); err != nil {
		return o, err
	}
	return o, nil
}

// MustParseOrdering is like ParseOrdering but panics on error.
func MustParseOrdering(s string) Ordering {
	o, err := ParseOrdering(s)
	if err != nil {
		panic(err)
	}
	return o
}

// Validate checks that every rank appears exactly once.
func (o Ordering) Validate() error {
	var seen [NumRanks]bool
	for i, r := range o {
		if !r.Valid() {
			return fmt.Errorf("%w: position %d holds %d", ErrInvalidOrdering, i, r)
		}
		if seen[r] {
			return fmt.Errorf("%w: rank %s appears twice", ErrInvalidOrdering, r)
		}
		seen[r] = true
	}
	return nil
}

// Positions returns a rank-indexed table of strength positions.
func (o Ordering) Positions() [NumRanks]int {
	var pos [NumRanks]int
	for i, r := range o {
		pos[r] = i
	}
	return pos
}

// Position returns the strength index of r, or -1 if r is not present.
func (o Ordering) Position(r Rank) int {
	for i, v := range o {
		if v == r {
			return i
		}
	}
	return -1
}

// Less reports whether a is weaker than b.
func (o Ordering) Less(a, b Rank) bool {
	return o.Position(a) < o.Position(b)
}

// Weakest returns the rank at index 0.
func (o Ordering) Weakest() Rank { return o[0] }

// Strongest returns the rank at index 12.
func (o Ordering) Strongest() Rank { return o[NumRanks-1] }

// String renders the ordering weakest first, comma separated.
func (o Ordering) String() string {
	var b strings.Builder
	for i, r := range o {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(r.String())
	}
	return b.String()
}

// Compact renders the ordering as 13 characters, weakest first.
func (o Ordering) Compact() string {
	var b strings.Builder
	for _, r := range o {
		b.WriteString(r.String())
	}
	return b.String()
}

// Agreement returns the fraction of the 78 rank pairs that o and other order
// the same way. 1 means identical orderings.
func (o Ordering) Agreement(other Ordering) float64 {
	a, b := o.Positions(), other.Positions()
	agree, total := 0, 0
	for x := 0; x < NumRanks; x++ {
		for y := x + 1; y < NumRanks; y++ {
			total++
			if (a[x] < a[y]) == (b[x] < b[y]) {
				agree++
			}
		}
	}
	return float64(agree) / float64(total)
}
