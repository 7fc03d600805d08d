package engine

// RNG is a deterministic, splittable pseudo-random source: every Split
// call derives an independent child stream from the parent's state, so a
// root seed plus a task index always reproduces the same draws regardless
// of how many goroutines are in flight. No process-global RNG is used
// anywhere in the engine.
type RNG struct {
	state uint64
}

// NewRNG derives a root RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{state: uint64(seed) ^ 0x9E3779B97F4A7C15}
}

// next advances the generator's internal splitmix64 state and returns the
// next raw 64-bit output.
func (r *RNG) next() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Split derives an independent child RNG for sub-task index i, leaving the
// parent's own stream unaffected beyond the single draw used to seed it.
func (r *RNG) Split(i int) *RNG {
	mixed := r.next() ^ (uint64(i)*0xD6E8FEB86659FD93 + 1)
	return &RNG{state: mixed}
}

// Float64 returns a uniform draw in [0, 1), using the top 53 bits of the
// raw output as an IEEE-754 mantissa.
func (r *RNG) Float64() float64 {
	return float64(r.next()>>11) / (1 << 53)
}

// Intn returns a uniform draw in [0, n).
func (r *RNG) Intn(n int) int {
	return int(r.next() % uint64(n))
}
