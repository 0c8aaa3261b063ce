package sim

import "github.com/cachesim/cachesim/sim/trace"

// Stack is the ordered list of caches probed for every memory
// reference, L1 first. Probing stops at the first Hit; every cache
// probed (including the one that hits) accounts its own Hit/Miss.
type Stack struct {
	Caches []*Cache
}

// NewStack builds a cache stack in probe order.
func NewStack(caches []*Cache) *Stack {
	return &Stack{Caches: caches}
}

// probe walks the stack for a single address, stopping at the first
// Hit. Every level probed gets its Hit/Miss counter updated.
func (s *Stack) probe(cpu *CPU, addr uint64) {
	for _, c := range s.Caches {
		if c.Access(cpu, addr) == Hit {
			c.Hit()
			return
		}
		c.Miss()
	}
}

// Step replays one instruction across every address it generates — the
// IP, then each non-zero source-memory entry, then each non-zero
// destination-memory entry — then advances the logical clock by one.
func (s *Stack) Step(cpu *CPU, instr trace.Instr) {
	cpu.IP = instr.IP
	for _, addr := range instr.Addresses() {
		s.probe(cpu, addr)
	}
	cpu.InstrIdx++
}

// ClearStats resets every cache in the stack — called once, at the
// warmup/measurement boundary.
func (s *Stack) ClearStats() {
	for _, c := range s.Caches {
		c.ClearStats()
	}
}

// Stats returns the aggregate stats for every cache in the stack, in
// probe order.
func (s *Stack) Stats(cpu *CPU) []CacheStats {
	out := make([]CacheStats, len(s.Caches))
	for i, c := range s.Caches {
		out[i] = c.MakeStats(cpu)
	}
	return out
}
