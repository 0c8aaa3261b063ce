package sim

// CPU holds the only clock and program-counter state the cache engine
// observes: the logical instruction index and the instruction pointer
// of the instruction currently being replayed. No registers, no
// timing, no branch state.
type CPU struct {
	IP       uint64 // instruction pointer of the instruction currently in flight
	InstrIdx uint64 // number of instructions retired since the process started
}

// NewCPU returns a CPU at its initial state.
func NewCPU() *CPU {
	return &CPU{}
}
