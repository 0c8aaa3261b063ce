package policy

import "github.com/cachesim/cachesim/sim"

// NMRU evicts a uniformly random way of the target set that is not the
// most-recently-used way — a cheap approximation of LRU that avoids
// maintaining a full recency ordering.
type NMRU struct {
	rng *seededRNG
}

// NewNMRU builds an NMRU policy seeded for reproducible victim draws.
func NewNMRU(seed int64) *NMRU {
	return &NMRU{rng: newSeededRNG(seed)}
}

// Access implements sim.Policy.
func (p *NMRU) Access(cpu *sim.CPU, c *sim.Cache, addr sim.Addr) sim.AccessResult {
	start, _ := c.SetRange(addr.Set)
	set := &c.Sets[addr.Set]

	for way := 0; way < c.NWays; way++ {
		b := &c.Blocks[start+way]
		if b.Valid && b.Tag == addr.Tag {
			set.MRUWay = way
			b.Touch(cpu)
			return sim.Hit
		}
	}

	victim := -1
	for way := 0; way < c.NWays; way++ {
		if !c.Blocks[start+way].Valid {
			victim = way
			break
		}
	}
	if victim == -1 {
		// Draw uniformly from the n_ways-1 ways that are not the MRU
		// way by drawing from [0, n_ways-1) and skipping over it.
		r := p.rng.intn(c.NWays - 1)
		if r >= set.MRUWay {
			r++
		}
		victim = r
		c.Blocks[start+victim].Evict(cpu)
	}

	set.MRUWay = victim
	c.Blocks[start+victim].Fill(cpu, addr.Tag)
	return sim.Miss
}
