package grammar

import "math/rand/v2"

// Rand is the randomness the resolver draws from. *rand.Rand satisfies it.
// Tests inject a seeded source to make expansions reproducible.
type Rand interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n). n must be positive.
	IntN(n int) int
}

// NewRand returns a deterministic PCG-backed source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandomRand returns a source seeded from the runtime's entropy.
func NewRandomRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
