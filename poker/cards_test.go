package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardCreation(t *testing.T) {
	t.Parallel()

	aceSpades := NewCard(Ace, Spades)
	assert.Equal(t, Ace, aceSpades.Rank)
	assert.Equal(t, Spades, aceSpades.Suit)
	assert.Equal(t, "As", aceSpades.String())
	assert.Equal(t, "A♠", aceSpades.Pretty())

	assert.Equal(t, "2c", NewCard(Two, Clubs).String())
	assert.Equal(t, "Th", NewCard(Ten, Hearts).String())
}

func TestParseCard(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		wantCard Card
		wantErr  error
	}{
		{name: "ace of spades", input: "As", wantCard: Card{Ace, Spades}},
		{name: "two of hearts", input: "2h", wantCard: Card{Two, Hearts}},
		{name: "king of diamonds", input: "Kd", wantCard: Card{King, Diamonds}},
		{name: "ten with T notation", input: "Tc", wantCard: Card{Ten, Clubs}},
		{name: "lower case face", input: "qS", wantCard: Card{Queen, Spades}},
		{name: "invalid rank", input: "Xs", wantErr: ErrInvalidRank},
		{name: "invalid suit", input: "Ax", wantErr: ErrInvalidSuit},
		{name: "too long", input: "10h", wantErr: ErrInvalidCard},
		{name: "empty", input: "", wantErr: ErrInvalidCard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			card, err := ParseCard(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCard, card)
		})
	}
}

func TestParseCards(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"AsKdQh", "As,Kd,Qh", "As Kd Qh"} {
		cards, err := ParseCards(input)
		require.NoError(t, err, input)
		assert.Equal(t, []Card{{Ace, Spades}, {King, Diamonds}, {Queen, Hearts}}, cards, input)
	}

	cards, err := ParseCards("")
	require.NoError(t, err)
	assert.Empty(t, cards)

	_, err = ParseCards("AsK")
	assert.ErrorIs(t, err, ErrInvalidCard)
}

func TestFormatCards(t *testing.T) {
	t.Parallel()
	cards := MustParseCards("2c3d4h")
	assert.Equal(t, "2c,3d,4h", FormatCards(cards, ","))
	assert.Equal(t, "", FormatCards(nil, ","))
}

func TestHasDuplicates(t *testing.T) {
	t.Parallel()
	assert.False(t, HasDuplicates(MustParseCards("AsAhAdAc")))
	assert.True(t, HasDuplicates(MustParseCards("AsKhAs")))
}

func TestRankRoundTrip(t *testing.T) {
	t.Parallel()
	for _, r := range AllRanks() {
		parsed, err := ParseRank(r.String()[0])
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
	assert.Equal(t, "?", Rank(13).String())
	assert.False(t, Rank(13).Valid())
}
