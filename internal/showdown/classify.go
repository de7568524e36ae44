package showdown

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/lox/hiddenrank/poker"
)

// Classify returns the best hand that cards make under o. It panics if the
// cards fail Validate.
func Classify(o poker.Ordering, cards []poker.Card) Hand {
	return newClassifier(o, cards).classify(true)
}

// ClassifyIgnoringStraights is Classify with straights and straight flushes
// disabled. Flushes and grouped categories are still detected.
func ClassifyIgnoringStraights(o poker.Ordering, cards []poker.Card) Hand {
	return newClassifier(o, cards).classify(false)
}

type classifier struct {
	pos   [poker.NumRanks]int
	cards []poker.Card
}

func newClassifier(o poker.Ordering, cards []poker.Card) *classifier {
	if err := Validate(cards); err != nil {
		panic(fmt.Sprintf("showdown: %v", err))
	}
	return &classifier{pos: o.Positions(), cards: cards}
}

func (c *classifier) classify(straights bool) Hand {
	flushes := c.flushes()

	if straights {
		var best []poker.Card
		for _, suited := range flushes {
			if run := c.straight(suited); run != nil {
				if best == nil || c.pos[run[0].Rank] > c.pos[best[0].Rank] {
					best = run
				}
			}
		}
		if best != nil {
			if c.pos[best[len(best)-1].Rank] >= poker.NumRanks-5 {
				return Hand{Category: RoyalFlush, Cards: best}
			}
			return Hand{Category: StraightFlush, Cards: best}
		}
	}

	// Quads and full houses are checked before flushes. Seven cards cannot
	// hold a flush alongside either of them, so the order never changes a
	// category.
	if quads := c.group(c.cards, 4, true); quads != nil {
		return Hand{Category: FourOfAKind, Cards: quads}
	}
	trips := c.group(c.cards, 3, true)
	if trips != nil {
		// A second set of three also fills the pair, two of its cards playing.
		if pair := c.group(without(c.cards, trips), 2, false); pair != nil {
			return Hand{Category: FullHouse, Cards: append(trips, pair...)}
		}
	}

	if len(flushes) > 0 {
		best := flushes[0]
		for _, f := range flushes[1:] {
			if c.pos[highest(&c.pos, f).Rank] > c.pos[highest(&c.pos, best).Rank] {
				best = f
			}
		}
		return Hand{Category: Flush, Cards: c.bestFive(best)}
	}

	if straights {
		if run := c.straight(c.cards); run != nil {
			return Hand{Category: Straight, Cards: run}
		}
	}

	if trips != nil {
		return Hand{Category: ThreeOfAKind, Cards: trips}
	}
	if pair := c.group(c.cards, 2, true); pair != nil {
		if second := c.group(without(c.cards, pair), 2, true); second != nil {
			return Hand{Category: TwoPair, Cards: append(pair, second...)}
		}
		return Hand{Category: Pair, Cards: pair}
	}
	return Hand{Category: HighCard, Cards: []poker.Card{highest(&c.pos, c.cards)}}
}

// flushes returns, per suit, the cards of every suit held five or more times.
func (c *classifier) flushes() [][]poker.Card {
	var out [][]poker.Card
	for suit := range poker.Suit(poker.NumSuits) {
		var suited []poker.Card
		for _, card := range c.cards {
			if card.Suit == suit {
				suited = append(suited, card)
			}
		}
		if len(suited) >= 5 {
			out = append(out, suited)
		}
	}
	return out
}

// windows lists the five-bin straight windows by the position of their
// highest card, strongest first. Bin 0 is a virtual copy of the top rank, so
// window 0 is the single wrap straight {12,0,1,2,3}; window w>0 covers
// positions w-1..w+3.
var windows = [...]int{9, 0, 8, 7, 6, 5, 4, 3, 2, 1}

// straight finds the strongest five consecutive positions present in cards
// and returns one card per position, strongest first.
func (c *classifier) straight(cards []poker.Card) []poker.Card {
	var bins [poker.NumRanks + 1]int
	for i := range bins {
		bins[i] = -1
	}
	for i, card := range cards {
		b := c.pos[card.Rank] + 1
		if bins[b] < 0 {
			bins[b] = i
		}
	}
	bins[0] = bins[poker.NumRanks]

	for _, w := range windows {
		run := make([]poker.Card, 0, 5)
		for b := w; b < w+5; b++ {
			if bins[b] < 0 {
				break
			}
			run = append(run, cards[bins[b]])
		}
		if len(run) == 5 {
			return c.bestFive(run)
		}
	}
	return nil
}

// group returns the n cards of the strongest rank held exactly n times, or at
// least n times when exact is false.
func (c *classifier) group(cards []poker.Card, n int, exact bool) []poker.Card {
	var counts [poker.NumRanks]int
	for _, card := range cards {
		counts[card.Rank]++
	}
	best := -1
	for r, count := range counts {
		if count == n || (!exact && count > n) {
			if best < 0 || c.pos[r] > c.pos[best] {
				best = r
			}
		}
	}
	if best < 0 {
		return nil
	}
	out := make([]poker.Card, 0, n)
	for _, card := range cards {
		if card.Rank == poker.Rank(best) && len(out) < n {
			out = append(out, card)
		}
	}
	return out
}

// bestFive keeps at most the five strongest cards, strongest first.
func (c *classifier) bestFive(cards []poker.Card) []poker.Card {
	sorted := slices.Clone(cards)
	slices.SortStableFunc(sorted, func(a, b poker.Card) int {
		return cmp.Compare(c.pos[b.Rank], c.pos[a.Rank])
	})
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	return sorted
}

func without(cards, remove []poker.Card) []poker.Card {
	out := make([]poker.Card, 0, len(cards))
	for _, card := range cards {
		if !slices.Contains(remove, card) {
			out = append(out, card)
		}
	}
	return out
}
