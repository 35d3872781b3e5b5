package handdrawn

import "hash/fnv"

// hash mixes a string with a seed into a stable 64-bit value.
func hash(s string, seed uint64) uint64 {
	h := fnv.New64a()
	var b [8]byte
	for i := range b {
		b[i] = byte(seed >> (8 * i))
	}
	h.Write(b[:])
	h.Write([]byte(s))
	return h.Sum64()
}

// rng is a xorshift64* generator; every shape gets its own stream so that
// adding a box does not change the wobble of the others.
type rng struct{ state uint64 }

func newRNG(seed uint64) *rng {
	if seed == 0 {
		seed = 0x9e3779b97f4a7c15
	}
	return &rng{state: seed}
}

// next returns a value in [0, 1).
func (r *rng) next() float64 {
	r.state ^= r.state >> 12
	r.state ^= r.state << 25
	r.state ^= r.state >> 27
	return float64((r.state*2685821657736338717)>>11) / (1 << 53)
}

// jitter returns a value in [-amp, amp).
func (r *rng) jitter(amp float64) float64 {
	return (r.next()*2 - 1) * amp
}
