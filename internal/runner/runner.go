// Package runner drives a bot through a match against the engine server.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/hiddenrank/internal/bot"
	"github.com/lox/hiddenrank/internal/game"
	"github.com/lox/hiddenrank/internal/protocol"
)

// DefaultReadTimeout is how long the runner waits for a packet before
// giving up on the server.
const DefaultReadTimeout = 30 * time.Second

// ErrReadTimeout is returned by Run when the server goes quiet.
var ErrReadTimeout = errors.New("no packet from server within read timeout")

// Runner owns the match state and feeds server clauses to a bot.Handler.
type Runner struct {
	transport   Transport
	handler     bot.Handler
	clock       quartz.Clock
	logger      *log.Logger
	readTimeout time.Duration

	game     game.GameState
	seat     int
	round    *game.RoundState
	terminal *game.TerminalState

	timedOut atomic.Bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithClock sets the clock driving the read watchdog.
func WithClock(clock quartz.Clock) Option {
	return func(r *Runner) { r.clock = clock }
}

// WithReadTimeout overrides DefaultReadTimeout.
func WithReadTimeout(d time.Duration) Option {
	return func(r *Runner) { r.readTimeout = d }
}

// New creates a runner for one match.
func New(transport Transport, handler bot.Handler, opts ...Option) *Runner {
	r := &Runner{
		transport:   transport,
		handler:     handler,
		clock:       quartz.NewReal(),
		logger:      log.New(io.Discard),
		readTimeout: DefaultReadTimeout,
		game:        game.NewGameState(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithPrefix("runner")
	return r
}

// GameState returns the match state as of the last processed packet. It must
// not be called concurrently with Run.
func (r *Runner) GameState() game.GameState {
	return r.game
}

// Run plays until the server sends Q or closes the connection, the read
// watchdog fires, or ctx is cancelled. The transport is closed on return.
func (r *Runner) Run(ctx context.Context) error {
	defer r.transport.Close()

	stop := context.AfterFunc(ctx, func() { _ = r.transport.Close() })
	defer stop()

	watchdog := r.clock.AfterFunc(r.readTimeout, func() {
		r.timedOut.Store(true)
		_ = r.transport.Close()
	})
	defer watchdog.Stop()

	r.logger.Info("Match started")
	for {
		packet, err := r.transport.ReadPacket()
		switch {
		case err == nil:
		case r.timedOut.Load():
			r.logger.Error("Server stopped responding", "timeout", r.readTimeout, "round", r.game.RoundNum)
			return ErrReadTimeout
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, io.EOF):
			r.logger.Info("Server closed connection", "round", r.game.RoundNum, "bankroll", r.game.Bankroll)
			return nil
		default:
			return fmt.Errorf("read packet: %w", err)
		}
		watchdog.Reset(r.readTimeout)

		reply, quit := r.handlePacket(packet)
		if quit {
			r.logger.Info("Match over", "rounds", r.game.RoundNum-1, "bankroll", r.game.Bankroll)
			return nil
		}
		if err := r.transport.WritePacket(reply); err != nil {
			return fmt.Errorf("write packet: %w", err)
		}
	}
}

// handlePacket applies every clause in order and returns the line to send
// back: our action when it is our turn, otherwise an ack.
func (r *Runner) handlePacket(packet string) (reply string, quit bool) {
	r.logger.Debug("Received packet", "packet", packet)

	clauses, err := protocol.Parse(packet)
	if err != nil {
		r.logger.Error("Failed to parse packet", "packet", packet, "error", err)
		return protocol.Ack, false
	}

	for _, c := range clauses {
		if c.Kind == protocol.KindQuit {
			return "", true
		}
		if err := r.apply(c); err != nil {
			r.logger.Error("Ignoring clause", "clause", c.String(), "error", err)
		}
	}

	if r.round == nil {
		return protocol.Ack, false
	}
	if r.round.Active() != r.seat {
		r.logger.Warn("Packet ended on opponent's turn", "seat", r.seat, "button", r.round.Button)
		return protocol.Ack, false
	}
	return r.decide(), false
}

func (r *Runner) apply(c protocol.Clause) error {
	switch c.Kind {
	case protocol.KindGameClock:
		r.game.GameClock = c.GameClock

	case protocol.KindSeat:
		r.seat = c.Seat

	case protocol.KindHand:
		r.round = game.NewRound(r.seat, c.Cards)
		r.terminal = nil
		r.handler.HandleNewRound(r.game, r.round, r.seat)

	case protocol.KindBoard:
		switch {
		case r.round != nil:
			r.round = r.round.WithBoard(c.Cards)
		case r.terminal != nil:
			r.terminal = &game.TerminalState{Deltas: r.terminal.Deltas, Previous: r.terminal.Previous.WithBoard(c.Cards)}
		default:
			return errors.New("board with no round in progress")
		}

	case protocol.KindReveal:
		if r.terminal == nil {
			return errors.New("reveal before the round ended")
		}
		last := *r.terminal.Previous
		last.Hands[1-r.seat] = c.Cards
		r.terminal = &game.TerminalState{Previous: &last}

	case protocol.KindDelta:
		if r.terminal == nil {
			return errors.New("delta before the round ended")
		}
		deltas := [2]int{-c.Amount, -c.Amount}
		deltas[r.seat] = c.Amount
		r.terminal = &game.TerminalState{Deltas: deltas, Previous: r.terminal.Previous}
		r.game.Bankroll += c.Amount
		r.handler.HandleRoundOver(r.game, r.terminal, r.seat)
		r.logger.Debug("Round over", "round", r.game.RoundNum, "delta", c.Amount, "bankroll", r.game.Bankroll)
		r.game.RoundNum++
		r.round = nil

	default:
		a, ok := c.Action()
		if !ok {
			return fmt.Errorf("unhandled clause kind %s", c.Kind)
		}
		if r.round == nil {
			return fmt.Errorf("%s with no round in progress", a)
		}
		next, done := r.round.Proceed(a)
		r.round = next
		if done != nil {
			r.terminal = done
		}
	}
	return nil
}

func (r *Runner) decide() string {
	want := r.handler.GetAction(r.game, r.round, r.seat)
	action := r.round.Coerce(want)
	if action != want {
		r.logger.Warn("Coerced illegal action", "wanted", want.String(), "sent", action.String(),
			"legal", r.round.LegalActions().String())
	}
	line, err := protocol.EncodeAction(action)
	if err != nil {
		r.logger.Error("Failed to encode action", "action", action.String(), "error", err)
		return protocol.Ack
	}
	return line
}
