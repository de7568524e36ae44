package poker

import (
	"math/rand/v2"
)

// Deck represents a standard 52-card deck
type Deck struct {
	cards [NumRanks * NumSuits]Card
	next  int
	rng   *rand.Rand // Random source for deterministic shuffling
}

// NewDeck creates a new shuffled deck with explicit RNG
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}

	i := 0
	for suit := range Suit(NumSuits) {
		for rank := range Rank(NumRanks) {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}

	d.Shuffle()
	return d
}

// Shuffle shuffles the deck using Fisher-Yates
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal deals n cards from the deck. It returns nil when fewer than n remain.
// The returned slice is a copy and safe to retain.
func (d *Deck) Deal(n int) []Card {
	if d.next+n > len(d.cards) {
		return nil
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}
