package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/hiddenrank/internal/showdown"
	"github.com/lox/hiddenrank/poker"
)

type ClassifyCmd struct {
	Cards       []string `arg:"" help:"Cards such as 'As Kd 7h 7c 2s' or AsKd7h7c2s"`
	Ordering    string   `short:"o" default:"23456789TJQKA" help:"Rank ordering, weakest first"`
	Exhaustive  bool     `help:"Score every five card subset instead of the direct classifier"`
	NoStraights bool     `help:"Ignore straights and straight flushes"`
}

func (c *ClassifyCmd) Run() error {
	hand, o, err := c.classify()
	if err != nil {
		return err
	}
	renderHand(os.Stdout, o, hand)
	return nil
}

func (c *ClassifyCmd) classify() (showdown.Hand, poker.Ordering, error) {
	o, err := poker.ParseOrdering(c.Ordering)
	if err != nil {
		return showdown.Hand{}, o, err
	}
	cards, err := poker.ParseCards(strings.Join(c.Cards, ""))
	if err != nil {
		return showdown.Hand{}, o, err
	}
	if err := showdown.Validate(cards); err != nil {
		return showdown.Hand{}, o, err
	}

	var classify func(poker.Ordering, []poker.Card) showdown.Hand
	switch {
	case c.Exhaustive && c.NoStraights:
		classify = showdown.ClassifyExhaustiveIgnoringStraights
	case c.Exhaustive:
		classify = showdown.ClassifyExhaustive
	case c.NoStraights:
		classify = showdown.ClassifyIgnoringStraights
	default:
		classify = showdown.Classify
	}
	return classify(o, cards), o, nil
}

func renderHand(w io.Writer, o poker.Ordering, hand showdown.Hand) {
	pretty := make([]string, len(hand.Cards))
	for i, card := range hand.Cards {
		pretty[i] = card.Pretty()
	}
	fmt.Fprintln(w, titleStyle.Render(hand.Category.String()))
	fmt.Fprintln(w, field("Ordering", o.Compact()))
	fmt.Fprintln(w, field("Cards", strings.Join(pretty, " ")))
	fmt.Fprintln(w, field("Highest", hand.Highest(o).Pretty()))
}
