package policy

import "github.com/cachesim/cachesim/sim"

// LRU evicts the least-recently-used way of the target set.
type LRU struct{}

// NewLRU builds an LRU policy. It carries no per-cache state, so one
// value can (in principle) serve any number of caches, but the registry
// in policy.go allocates a fresh instance per cache for symmetry with
// NMRU and LRU-DB.
func NewLRU() *LRU {
	return &LRU{}
}

// Access implements sim.Policy.
func (p *LRU) Access(cpu *sim.CPU, c *sim.Cache, addr sim.Addr) sim.AccessResult {
	start, _ := c.SetRange(addr.Set)
	order := &c.Sets[addr.Set].Order

	for way := 0; way < c.NWays; way++ {
		b := &c.Blocks[start+way]
		if b.Valid && b.Tag == addr.Tag {
			order.MoveToFront(way)
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
		victim = order.PopBack()
		c.Blocks[start+victim].Evict(cpu)
	}

	order.PushFront(victim)
	c.Blocks[start+victim].Fill(cpu, addr.Tag)
	return sim.Miss
}
