package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachesim/cachesim/sim/trace"
)

type recordingPolicy struct {
	results []AccessResult
	i       int
}

func (p *recordingPolicy) Access(cpu *CPU, c *Cache, addr Addr) AccessResult {
	r := p.results[p.i%len(p.results)]
	p.i++
	return r
}

// TestStack_Probe_StopsAtFirstHit verifies that once a level hits, no
// deeper level is probed for that address.
//
// Given: a two-level stack where L1 hits
// When: an address is probed
// Then: L1 accounts a hit and L2 is never accessed
func TestStack_Probe_StopsAtFirstHit(t *testing.T) {
	l1 := NewCache("L1", 64, 4, 2, &recordingPolicy{results: []AccessResult{Hit}})
	l2 := NewCache("L2", 64, 4, 2, &recordingPolicy{results: []AccessResult{Hit}})
	stack := NewStack([]*Cache{l1, l2})
	cpu := NewCPU()

	stack.probe(cpu, 0x1000)

	assert.Equal(t, uint64(1), l1.Hits)
	assert.Zero(t, l1.Misses)
	assert.Zero(t, l2.Hits)
	assert.Zero(t, l2.Misses)
}

func TestStack_Probe_MissesEveryLevelProbed(t *testing.T) {
	l1 := NewCache("L1", 64, 4, 2, &recordingPolicy{results: []AccessResult{Miss}})
	l2 := NewCache("L2", 64, 4, 2, &recordingPolicy{results: []AccessResult{Hit}})
	stack := NewStack([]*Cache{l1, l2})
	cpu := NewCPU()

	stack.probe(cpu, 0x1000)

	assert.Equal(t, uint64(1), l1.Misses)
	assert.Zero(t, l1.Hits)
	assert.Equal(t, uint64(1), l2.Hits)
}

// TestStack_Step_ProbesAddressesInOrder verifies the IP, then
// non-zero source-memory, then non-zero destination-memory probe order,
// and that the CPU clock advances exactly once per instruction.
func TestStack_Step_ProbesAddressesInOrder(t *testing.T) {
	l1 := NewCache("L1", 64, 4, 2, &recordingPolicy{results: []AccessResult{Miss}})
	stack := NewStack([]*Cache{l1})
	cpu := NewCPU()

	instr := trace.Instr{
		IP:                0x100,
		SourceMemory:      [4]uint64{0x200, 0, 0, 0},
		DestinationMemory: [2]uint64{0x300, 0},
	}

	stack.Step(cpu, instr)

	// 3 distinct addresses (IP, one source, one destination) each probed once
	assert.Equal(t, uint64(3), l1.Misses)
	assert.Equal(t, uint64(1), cpu.InstrIdx)
	assert.Equal(t, uint64(0x100), cpu.IP)
}

func TestStack_ClearStats_ResetsEveryCache(t *testing.T) {
	l1 := NewCache("L1", 64, 4, 2, &stubPolicy{})
	l1.Hits = 5
	stack := NewStack([]*Cache{l1})

	stack.ClearStats()

	assert.Zero(t, l1.Hits)
}

func TestStack_Stats_ReturnsOnePerCacheInOrder(t *testing.T) {
	l1 := NewCache("L1", 64, 4, 2, &stubPolicy{})
	l2 := NewCache("L2", 64, 4, 2, &stubPolicy{})
	stack := NewStack([]*Cache{l1, l2})
	cpu := NewCPU()

	stats := stack.Stats(cpu)

	require.Len(t, stats, 2)
	assert.Equal(t, "L1", stats[0].Name)
	assert.Equal(t, "L2", stats[1].Name)
}
