package showdown

import (
	"fmt"

	"github.com/lox/hiddenrank/poker"
)

// ClassifyExhaustive classifies every five card subset of cards and keeps
// the best under Compare. Hands with fewer than five cards are classified
// whole. It is slower than Classify and exists as a reference.
func ClassifyExhaustive(o poker.Ordering, cards []poker.Card) Hand {
	return exhaustive(o, cards, Classify)
}

// ClassifyExhaustiveIgnoringStraights is the reference for ClassifyIgnoringStraights.
func ClassifyExhaustiveIgnoringStraights(o poker.Ordering, cards []poker.Card) Hand {
	return exhaustive(o, cards, ClassifyIgnoringStraights)
}

func exhaustive(o poker.Ordering, cards []poker.Card, classify func(poker.Ordering, []poker.Card) Hand) Hand {
	if err := Validate(cards); err != nil {
		panic(fmt.Sprintf("showdown: %v", err))
	}
	if len(cards) <= 5 {
		return classify(o, cards)
	}

	var best Hand
	found := false
	subset := make([]poker.Card, 5)
	n := len(cards)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			for c := b + 1; c < n; c++ {
				for d := c + 1; d < n; d++ {
					for e := d + 1; e < n; e++ {
						subset[0], subset[1], subset[2], subset[3], subset[4] = cards[a], cards[b], cards[c], cards[d], cards[e]
						h := classify(o, subset)
						if !found || Compare(o, h, best) > 0 {
							best, found = h, true
						}
					}
				}
			}
		}
	}
	return best
}
