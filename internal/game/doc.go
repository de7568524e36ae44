// Package game models one heads-up round the way the engine server plays it.
//
// A RoundState is immutable: Proceed and ProceedStreet return the next state
// (or the TerminalState that ends the round) and link back to the previous
// one, so the full action history of a round is always available.
//
// # Basic Usage
//
//	state := game.NewRound(0, hole)
//	next, done := state.Proceed(game.CallAction())
//	if done != nil {
//	    // round over
//	}
//
// Seats are indexed 0 (small blind, acts first preflop) and 1 (big blind,
// acts first on every later street). The active seat is Button % 2.
package game
