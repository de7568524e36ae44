// Package protocol encodes and decodes the engine server's line protocol.
//
// Each packet from the server is one line of space separated clauses. A
// clause is a single type character followed by its argument, e.g. "T9.50",
// "P0", "HAs,Kd", "R12" or "Q". The client answers every packet with exactly
// one action line.
package protocol

import (
	"errors"
	"fmt"

	"github.com/lox/hiddenrank/poker"
)

// Kind identifies a clause.
type Kind byte

const (
	// Server -> Client
	KindGameClock Kind = 'T' // seconds left on our clock
	KindSeat      Kind = 'P' // our seat index for this round
	KindHand      Kind = 'H' // our hole cards, starts a round
	KindFold      Kind = 'F'
	KindCall      Kind = 'C'
	KindCheck     Kind = 'K'
	KindRaise     Kind = 'R'
	KindBoard     Kind = 'B' // community cards dealt so far
	KindReveal    Kind = 'O' // opponent's hole cards at showdown
	KindDelta     Kind = 'D' // our chip delta for the finished round
	KindQuit      Kind = 'Q'
)

func (k Kind) String() string {
	switch k {
	case KindGameClock:
		return "game_clock"
	case KindSeat:
		return "seat"
	case KindHand:
		return "hand"
	case KindFold:
		return "fold"
	case KindCall:
		return "call"
	case KindCheck:
		return "check"
	case KindRaise:
		return "raise"
	case KindBoard:
		return "board"
	case KindReveal:
		return "reveal"
	case KindDelta:
		return "delta"
	case KindQuit:
		return "quit"
	default:
		return fmt.Sprintf("unknown(%q)", byte(k))
	}
}

// Clause is one decoded server instruction. Only the field matching Kind is
// set.
type Clause struct {
	Kind      Kind
	GameClock float64      // KindGameClock
	Seat      int          // KindSeat
	Cards     []poker.Card // KindHand, KindBoard, KindReveal
	Amount    int          // KindRaise (raise total), KindDelta
}

// Ack is sent when the server expects a reply but no decision is pending.
const Ack = "K"

var (
	ErrUnknownClause   = errors.New("unknown clause")
	ErrMalformedClause = errors.New("malformed clause")
	ErrUnknownAction   = errors.New("unknown action")
)
