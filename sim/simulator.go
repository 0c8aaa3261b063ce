package sim

import "github.com/cachesim/cachesim/sim/trace"

// RunConfig bounds a simulation run: nWarm instructions of warmup
// (after which stats are cleared) followed by nInstr instructions of
// measurement. If nWarm is 0 the measurement phase starts immediately.
// Heartbeat is an optional narrow interface into an external
// collaborator — called with the current instruction index every time
// it advances past a heartbeatInterval boundary; nil or 0 disables it.
type RunConfig struct {
	NWarm             uint64
	NInstr            uint64
	HeartbeatInterval uint64
	Heartbeat         func(instrIdx uint64)
}

// Simulator owns the CPU clock and the cache stack it drives. It has
// no knowledge of how instruction batches are produced — it only pulls
// them off a channel, which keeps the single-threaded core decoupled
// from the concurrent trace producer.
type Simulator struct {
	CPU   *CPU
	Stack *Stack
}

// NewSimulator builds a simulator over the given cache stack.
func NewSimulator(stack *Stack) *Simulator {
	return &Simulator{CPU: NewCPU(), Stack: stack}
}

// Run drives the simulator to completion: a warmup pass, a clear, then
// a measurement pass, pulling instruction batches from batches until
// the measurement goal is reached. It returns the final per-cache
// stats. done is closed when Run returns (whether because the goal was
// reached or batches was closed early), signalling the producer to
// stop rewinding and exit.
func (sim *Simulator) Run(batches <-chan []trace.Instr, done chan<- struct{}, cfg RunConfig) []CacheStats {
	defer close(done)

	warmingUp := cfg.NWarm > 0
	goal := cfg.NInstr
	if warmingUp {
		goal = cfg.NWarm
	}

	nextHeartbeat := cfg.HeartbeatInterval

	for batch := range batches {
		for _, instr := range batch {
			sim.Stack.Step(sim.CPU, instr)

			if cfg.HeartbeatInterval != 0 && cfg.Heartbeat != nil && sim.CPU.InstrIdx > nextHeartbeat {
				cfg.Heartbeat(sim.CPU.InstrIdx)
				for nextHeartbeat < sim.CPU.InstrIdx {
					nextHeartbeat += cfg.HeartbeatInterval
				}
			}

			if sim.CPU.InstrIdx >= goal {
				if warmingUp {
					sim.Stack.ClearStats()
					goal = sim.CPU.InstrIdx + cfg.NInstr
					warmingUp = false
				} else {
					return sim.Stack.Stats(sim.CPU)
				}
			}
		}
	}

	// batches closed before the measurement goal was reached (trace
	// decode error, or a trace shorter than requested with rewind
	// disabled in a test harness): finalize over whatever was
	// processed.
	return sim.Stack.Stats(sim.CPU)
}
