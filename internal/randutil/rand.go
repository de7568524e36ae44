// Package randutil derives reproducible random streams for the engine and
// its tests.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a PCG-backed *rand.Rand whose stream depends only on seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(splitmix(u), splitmix(u+goldenRatio64)))
}

// Seed returns seed unchanged unless it is zero, in which case a wall-clock
// seed is chosen. Configuration uses zero to mean "not pinned".
func Seed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

// Split draws a child stream from parent. Children of the same parent state
// are reproducible, and drawing from a child never advances the parent again.
func Split(parent *rand.Rand) *rand.Rand {
	return rand.New(rand.NewPCG(splitmix(parent.Uint64()), splitmix(parent.Uint64())))
}

func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
