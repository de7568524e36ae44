// Package poker defines the card domain shared by the evaluator and the
// inference engine.
//
// A Rank is only a symbol. Its numeric value is the position in the printed
// order 2,3,...,K,A and says nothing about strength; strength is always taken
// from an explicit Ordering.
package poker

import (
	"errors"
	"fmt"
	"strings"
)

// NumRanks is the number of distinct ranks in a deck.
const NumRanks = 13

// NumSuits is the number of distinct suits in a deck.
const NumSuits = 4

// Rank is one of the 13 card rank symbols.
type Rank uint8

// Rank symbols in canonical print order.
const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const rankChars = "23456789TJQKA"

// String returns the single character used for the rank ("2".."9", "T", "J", "Q", "K", "A").
func (r Rank) String() string {
	if !r.Valid() {
		return "?"
	}
	return string(rankChars[r])
}

// Valid reports whether r is one of the 13 rank symbols.
func (r Rank) Valid() bool {
	return r < NumRanks
}

// AllRanks returns every rank in canonical print order.
func AllRanks() []Rank {
	ranks := make([]Rank, NumRanks)
	for i := range ranks {
		ranks[i] = Rank(i)
	}
	return ranks
}

// ParseRank parses a single rank character. Face cards are case-insensitive.
func ParseRank(c byte) (Rank, error) {
	idx := strings.IndexByte(rankChars, upper(c))
	if idx < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRank, c)
	}
	return Rank(idx), nil
}

// Suit is one of the four card suits.
type Suit uint8

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

const suitChars = "hdcs"

// String returns the lower-case suit character used on the wire ("h", "d", "c", "s").
func (s Suit) String() string {
	if s >= NumSuits {
		return "?"
	}
	return string(suitChars[s])
}

// Symbol returns the unicode suit symbol, for display.
func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// IsRed returns true for hearts and diamonds.
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// ParseSuit parses a single suit character, case-insensitively.
func ParseSuit(c byte) (Suit, error) {
	idx := strings.IndexByte(suitChars, lower(c))
	if idx < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSuit, c)
	}
	return Suit(idx), nil
}

// Card is a (rank, suit) pair.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a card.
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the wire form of the card, e.g. "Ah".
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Pretty returns the card with a unicode suit symbol, e.g. "A♥".
func (c Card) Pretty() string {
	return c.Rank.String() + c.Suit.Symbol()
}

var (
	ErrInvalidRank = errors.New("invalid rank")
	ErrInvalidSuit = errors.New("invalid suit")
	ErrInvalidCard = errors.New("invalid card")
)

// ParseCard parses a two character card such as "As" or "td".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("%w: %q must be two characters", ErrInvalidCard, s)
	}
	rank, err := ParseRank(s[0])
	if err != nil {
		return Card{}, err
	}
	suit, err := ParseSuit(s[1])
	if err != nil {
		return Card{}, err
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// ParseCards parses a list of cards. Cards may be run together ("AsKd"),
// or separated by commas or whitespace ("As,Kd" / "As Kd").
func ParseCards(s string) ([]Card, error) {
	compact := strings.Map(func(r rune) rune {
		if r == ',' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if len(compact)%2 != 0 {
		return nil, fmt.Errorf("%w: %q has an odd number of characters", ErrInvalidCard, s)
	}
	cards := make([]Card, 0, len(compact)/2)
	for i := 0; i < len(compact); i += 2 {
		card, err := ParseCard(compact[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards is like ParseCards but panics on error. Intended for tests
// and literals.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// FormatCards joins cards with the given separator.
func FormatCards(cards []Card, sep string) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, sep)
}

// HasDuplicates reports whether any card appears more than once.
func HasDuplicates(cards []Card) bool {
	var seen [NumRanks * NumSuits]bool
	for _, c := range cards {
		idx := int(c.Rank)*NumSuits + int(c.Suit)
		if idx >= len(seen) {
			continue
		}
		if seen[idx] {
			return true
		}
		seen[idx] = true
	}
	return false
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}
