package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachesim/cachesim/sim"
)

// lrudbTestCache builds a cache with enough sets for the adjacent-set
// rule (set XOR 8) to be well-defined.
func lrudbTestCache(t *testing.T, nWays int, p sim.Policy) *sim.Cache {
	t.Helper()
	return sim.NewCache("test", 64, 16, nWays, p)
}

func TestLRUDB_FillsInvalidWaysFirst_NoDemotion(t *testing.T) {
	p := NewLRUDB()
	c := lrudbTestCache(t, 2, p)
	cpu := sim.NewCPU()

	result := p.Access(cpu, c, sim.Addr{Set: 0, Tag: 1})

	assert.Equal(t, sim.Miss, result)
	assert.True(t, c.Blocks[0].Valid)
	assert.False(t, c.Blocks[0].Receiver)
}

func TestLRUDB_HomeHit(t *testing.T) {
	p := NewLRUDB()
	c := lrudbTestCache(t, 2, p)
	cpu := sim.NewCPU()

	p.Access(cpu, c, sim.Addr{Set: 0, Tag: 1})

	result := p.Access(cpu, c, sim.Addr{Set: 0, Tag: 1})

	assert.Equal(t, sim.Hit, result)
}

// TestLRUDB_Miss_DemotesHomeLRUToAdjacentSet verifies that once the
// home set is full, a miss demotes the home set's LRU block into the
// adjacent set (set XOR 8) as a receiver rather than discarding it.
func TestLRUDB_Miss_DemotesHomeLRUToAdjacentSet(t *testing.T) {
	p := NewLRUDB()
	c := lrudbTestCache(t, 2, p)
	cpu := sim.NewCPU()

	p.Access(cpu, c, sim.Addr{Set: 0, Tag: 1}) // way 0
	p.Access(cpu, c, sim.Addr{Set: 0, Tag: 2}) // way 1, set full, order [1,0]

	result := p.Access(cpu, c, sim.Addr{Set: 0, Tag: 3}) // evicts LRU way (0, tag 1)

	require.Equal(t, sim.Miss, result)

	adjStart, _ := c.SetRange(8)
	found := false
	for way := 0; way < c.NWays; way++ {
		b := &c.Blocks[adjStart+way]
		if b.Valid && b.Receiver && b.Tag == 1 {
			found = true
		}
	}
	assert.True(t, found, "demoted tag 1 should be a receiver block in set 8")
}

// TestLRUDB_PromotionSwapsBlockBackHome verifies that a later access to
// a demoted block's tag is treated as a hit, and that the swap returns
// it to the home set while demoting the home-LRU block that takes its
// place in the adjacent set.
func TestLRUDB_PromotionSwapsBlockBackHome(t *testing.T) {
	p := NewLRUDB()
	c := lrudbTestCache(t, 2, p)
	cpu := sim.NewCPU()

	p.Access(cpu, c, sim.Addr{Set: 0, Tag: 1}) // way 0
	p.Access(cpu, c, sim.Addr{Set: 0, Tag: 2}) // way 1, set full
	p.Access(cpu, c, sim.Addr{Set: 0, Tag: 3}) // demotes tag 1 into set 8

	result := p.Access(cpu, c, sim.Addr{Set: 0, Tag: 1})

	require.Equal(t, sim.Hit, result)

	homeStart, _ := c.SetRange(0)
	found := false
	for way := 0; way < c.NWays; way++ {
		b := &c.Blocks[homeStart+way]
		if b.Valid && !b.Receiver && b.Tag == 1 {
			found = true
		}
	}
	assert.True(t, found, "tag 1 should be back home and no longer a receiver")
}

func TestLRUDB_OnlyProbesItsOwnSet(t *testing.T) {
	p := NewLRUDB()
	c := lrudbTestCache(t, 2, p)
	cpu := sim.NewCPU()

	p.Access(cpu, c, sim.Addr{Set: 0, Tag: 9})

	start, _ := c.SetRange(1)
	assert.False(t, c.Blocks[start].Valid)
}
