package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachesim/cachesim/sim/trace"
)

func alwaysMissStack() (*Stack, *Cache) {
	c := NewCache("L1", 64, 4, 2, &recordingPolicy{results: []AccessResult{Miss}})
	return NewStack([]*Cache{c}), c
}

// TestSimulator_Run_ClearsStatsAtWarmupBoundary verifies that misses
// accumulated during warmup are discarded, and that Run returns once
// the measurement goal is reached.
func TestSimulator_Run_ClearsStatsAtWarmupBoundary(t *testing.T) {
	stack, cache := alwaysMissStack()
	sim := NewSimulator(stack)

	batches := make(chan []trace.Instr, 1)
	done := make(chan struct{})
	instr := trace.Instr{IP: 0x10}
	batch := make([]trace.Instr, 10)
	for i := range batch {
		batch[i] = instr
	}
	batches <- batch
	close(batches)

	stats := sim.Run(batches, done, RunConfig{NWarm: 2, NInstr: 3})

	require.Len(t, stats, 1)
	// Instructions 1..2 are warmup; measurement instructions 3..5
	// (inclusive) are counted, and Run returns once the goal is reached.
	assert.Equal(t, uint64(3), stats[0].Misses)
	assert.Equal(t, uint64(5), sim.CPU.InstrIdx)
	assert.Equal(t, uint64(0), cache.Hits)

	select {
	case <-done:
	default:
		t.Fatal("done channel was not closed when Run returned")
	}
}

func TestSimulator_Run_NoWarmup_StartsMeasurementImmediately(t *testing.T) {
	stack, _ := alwaysMissStack()
	sim := NewSimulator(stack)

	batches := make(chan []trace.Instr, 1)
	done := make(chan struct{})
	batch := make([]trace.Instr, 5)
	for i := range batch {
		batch[i] = trace.Instr{IP: 0x10}
	}
	batches <- batch
	close(batches)

	stats := sim.Run(batches, done, RunConfig{NWarm: 0, NInstr: 3})

	require.Len(t, stats, 1)
	assert.Equal(t, uint64(3), stats[0].Misses)
}

// TestSimulator_Run_HeartbeatFiresAtEachBoundaryCrossed verifies the
// heartbeat callback fires once per interval boundary crossed, in
// instruction order, without re-firing for boundaries already passed.
func TestSimulator_Run_HeartbeatFiresAtEachBoundaryCrossed(t *testing.T) {
	stack, _ := alwaysMissStack()
	sim := NewSimulator(stack)

	batches := make(chan []trace.Instr, 1)
	done := make(chan struct{})
	batch := make([]trace.Instr, 10)
	for i := range batch {
		batch[i] = trace.Instr{IP: 0x10}
	}
	batches <- batch
	close(batches)

	var fired []uint64
	sim.Run(batches, done, RunConfig{
		NWarm:             2,
		NInstr:            5,
		HeartbeatInterval: 3,
		Heartbeat:         func(idx uint64) { fired = append(fired, idx) },
	})

	assert.Equal(t, []uint64{4, 7}, fired)
}

// TestSimulator_Run_ChannelClosedEarly_FinalizesOverWhatWasProcessed
// verifies Run does not hang and returns stats over the instructions it
// actually saw when the trace producer stops before the goal is
// reached.
func TestSimulator_Run_ChannelClosedEarly_FinalizesOverWhatWasProcessed(t *testing.T) {
	stack, _ := alwaysMissStack()
	sim := NewSimulator(stack)

	batches := make(chan []trace.Instr, 1)
	done := make(chan struct{})
	batch := []trace.Instr{{IP: 0x10}, {IP: 0x10}}
	batches <- batch
	close(batches)

	stats := sim.Run(batches, done, RunConfig{NWarm: 0, NInstr: 1_000_000})

	require.Len(t, stats, 1)
	assert.Equal(t, uint64(2), stats[0].Misses)
	assert.Equal(t, uint64(2), sim.CPU.InstrIdx)
}
