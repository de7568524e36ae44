// Package showdown classifies and compares poker hands under an arbitrary
// rank ordering.
//
// Every function takes the ordering explicitly; nothing in this package
// assumes the conventional 2..A strength order.
package showdown

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lox/hiddenrank/poker"
)

// Hand size limits accepted by the classifiers.
const (
	MinCards = 2
	MaxCards = 7
)

// Category is the kind of made hand, in ascending strength.
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns the display name of the category.
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// IsStraight reports whether the category depends on rank adjacency.
func (c Category) IsStraight() bool {
	return c == Straight || c == StraightFlush || c == RoyalFlush
}

// IsFlush reports whether the category depends on suit.
func (c Category) IsFlush() bool {
	return c == Flush || c == StraightFlush || c == RoyalFlush
}

// Hand is a classified hand: its category and the representative cards that
// make it (at most five, exactly one for HighCard).
type Hand struct {
	Category Category
	Cards    []poker.Card
}

// String renders the hand as "[Full House As Ah Ac 2c 2h]".
func (h Hand) String() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(h.Category.String())
	for _, c := range h.Cards {
		b.WriteByte(' ')
		b.WriteString(c.String())
	}
	b.WriteByte(']')
	return b.String()
}

// Highest returns the strongest representative card under o.
func (h Hand) Highest(o poker.Ordering) poker.Card {
	return HighestCard(o, h.Cards)
}

var (
	ErrHandSize      = errors.New("hand size out of range")
	ErrDuplicateCard = errors.New("duplicate card in hand")
)

// Validate checks the classifier preconditions: 2 to 7 valid, distinct cards.
func Validate(cards []poker.Card) error {
	if len(cards) < MinCards || len(cards) > MaxCards {
		return fmt.Errorf("%w: got %d cards, want %d-%d", ErrHandSize, len(cards), MinCards, MaxCards)
	}
	for _, c := range cards {
		if !c.Rank.Valid() || c.Suit >= poker.NumSuits {
			return fmt.Errorf("%w: %v", poker.ErrInvalidCard, c)
		}
	}
	if poker.HasDuplicates(cards) {
		return fmt.Errorf("%w: %s", ErrDuplicateCard, poker.FormatCards(cards, ","))
	}
	return nil
}

// HighestCard returns the card with the greatest position under o. Ties
// between equal ranks go to the earliest card. cards must be non-empty.
func HighestCard(o poker.Ordering, cards []poker.Card) poker.Card {
	pos := o.Positions()
	return highest(&pos, cards)
}

func highest(pos *[poker.NumRanks]int, cards []poker.Card) poker.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if pos[c.Rank] > pos[best.Rank] {
			best = c
		}
	}
	return best
}

// Compare orders two hands under o: first by category, then by the position
// of each hand's highest representative card. Kickers are never consulted.
// It returns -1, 0 or +1.
func Compare(o poker.Ordering, a, b Hand) int {
	switch {
	case a.Category < b.Category:
		return -1
	case a.Category > b.Category:
		return 1
	}
	pa := o.Position(a.Highest(o).Rank)
	pb := o.Position(b.Highest(o).Rank)
	switch {
	case pa < pb:
		return -1
	case pa > pb:
		return 1
	default:
		return 0
	}
}
