package policy

import "math/rand"

// seededRNG wraps math/rand.Rand for reproducible, subsystem-local
// randomness: a fixed seed derives a reproducible sequence, so two runs
// of NMRU against the same trace and the same seed make bit-for-bit
// identical victim choices. NMRU is the only policy here with a
// randomness subsystem, so there is nothing to partition by name — the
// seed is taken directly.
type seededRNG struct {
	r *rand.Rand
}

func newSeededRNG(seed int64) *seededRNG {
	return &seededRNG{r: rand.New(rand.NewSource(seed))}
}

// intn returns a pseudo-random integer in [0, n).
func (s *seededRNG) intn(n int) int {
	return s.r.Intn(n)
}
