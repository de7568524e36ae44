package protocol

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/lox/hiddenrank/internal/game"
	"github.com/lox/hiddenrank/poker"
)

// Pool of buffers shared by the encoders
var bufferPool = sync.Pool{
	New: func() interface{} {
		return &bytes.Buffer{}
	},
}

// Parse decodes one packet into its clauses, in order.
func Parse(packet string) ([]Clause, error) {
	fields := strings.Fields(packet)
	clauses := make([]Clause, 0, len(fields))
	for _, field := range fields {
		c, err := ParseClause(field)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

// ParseClause decodes a single clause such as "R12" or "B2h,7d,Jc".
func ParseClause(s string) (Clause, error) {
	if s == "" {
		return Clause{}, fmt.Errorf("%w: empty", ErrMalformedClause)
	}
	c := Clause{Kind: Kind(s[0])}
	arg := s[1:]

	var err error
	switch c.Kind {
	case KindGameClock:
		c.GameClock, err = strconv.ParseFloat(arg, 64)
	case KindSeat:
		c.Seat, err = strconv.Atoi(arg)
		if err == nil && c.Seat != 0 && c.Seat != 1 {
			err = fmt.Errorf("seat %d out of range", c.Seat)
		}
	case KindHand, KindReveal:
		c.Cards, err = poker.ParseCards(arg)
		if err == nil && len(c.Cards) != 2 {
			err = fmt.Errorf("want 2 cards, got %d", len(c.Cards))
		}
	case KindBoard:
		c.Cards, err = poker.ParseCards(arg)
		if err == nil && len(c.Cards) > 5 {
			err = fmt.Errorf("want at most 5 cards, got %d", len(c.Cards))
		}
	case KindRaise:
		c.Amount, err = strconv.Atoi(arg)
		if err == nil && c.Amount <= 0 {
			err = fmt.Errorf("raise to %d", c.Amount)
		}
	case KindDelta:
		c.Amount, err = strconv.Atoi(arg)
	case KindFold, KindCall, KindCheck, KindQuit:
		if arg != "" {
			err = fmt.Errorf("unexpected argument %q", arg)
		}
	default:
		return Clause{}, fmt.Errorf("%w: %q", ErrUnknownClause, s)
	}
	if err != nil {
		return Clause{}, fmt.Errorf("%w: %s clause %q: %w", ErrMalformedClause, c.Kind, s, err)
	}
	return c, nil
}

// String encodes the clause in wire form.
func (c Clause) String() string {
	switch c.Kind {
	case KindGameClock:
		return "T" + strconv.FormatFloat(c.GameClock, 'f', -1, 64)
	case KindSeat:
		return "P" + strconv.Itoa(c.Seat)
	case KindHand, KindBoard, KindReveal:
		return string(c.Kind) + poker.FormatCards(c.Cards, ",")
	case KindRaise, KindDelta:
		return string(c.Kind) + strconv.Itoa(c.Amount)
	default:
		return string(c.Kind)
	}
}

// Encode joins clauses into a packet, without the trailing newline.
func Encode(clauses []Clause) string {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	for i, c := range clauses {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(c.String())
	}
	return buf.String()
}

// Action converts an action clause into a game action. ok is false for
// clauses that are not actions.
func (c Clause) Action() (a game.Action, ok bool) {
	switch c.Kind {
	case KindFold:
		return game.FoldAction(), true
	case KindCall:
		return game.CallAction(), true
	case KindCheck:
		return game.CheckAction(), true
	case KindRaise:
		return game.RaiseAction(c.Amount), true
	default:
		return game.Action{}, false
	}
}

// EncodeAction renders a client action: "F", "C", "K" or "R<amount>".
func EncodeAction(a game.Action) (string, error) {
	switch a.Type {
	case game.Fold:
		return "F", nil
	case game.Call:
		return "C", nil
	case game.Check:
		return "K", nil
	case game.Raise:
		return "R" + strconv.Itoa(a.Amount), nil
	default:
		return "", fmt.Errorf("%w: %v", ErrUnknownAction, a)
	}
}

// DecodeAction parses a client action line.
func DecodeAction(s string) (game.Action, error) {
	c, err := ParseClause(strings.TrimSpace(s))
	if err != nil {
		return game.Action{}, fmt.Errorf("%w: %w", ErrUnknownAction, err)
	}
	a, ok := c.Action()
	if !ok {
		return game.Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return a, nil
}
