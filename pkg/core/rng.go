package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Chance returns true with probability num/den.
func (r *RNG) Chance(num, den int) bool {
	if den <= 0 {
		return false
	}
	return r.r.IntN(den) < num
}

// Uint8n returns a random uint8 in [0, n).
func (r *RNG) Uint8n(n uint8) uint8 {
	if n == 0 {
		return 0
	}
	return uint8(r.r.IntN(int(n)))
}

// BinaryNoise returns a cell source that yields 255 with probability
// num/den and 0 otherwise.
func (r *RNG) BinaryNoise(num, den int) func() uint8 {
	return func() uint8 {
		if r.Chance(num, den) {
			return 255
		}
		return 0
	}
}

// UniformNoise returns a cell source with values uniform in [0, 255).
func (r *RNG) UniformNoise() func() uint8 {
	return func() uint8 { return r.Uint8n(255) }
}

// Source exposes the underlying rand.Rand for advanced use.
func (r *RNG) Source() *rand.Rand { return r.r }
