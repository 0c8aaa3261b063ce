package policy

import "github.com/cachesim/cachesim/sim"

const (
	predTableSize = 1 << 15
	predTraceMask = predTableSize - 1

	predMax int8 = 3
	predMin int8 = -4
)

// LRUDB augments LRU with a dead-block predictor and a cross-set
// receiver: on a miss into a full set, the home set's LRU block is
// demoted into the adjacent set rather than evicted outright, giving it
// one more chance to be reused. Blocks predicted dead (unlikely to be
// reused) are the preferred slots in the adjacent set for it to
// overwrite. The predictor table is private to one LRUDB instance — one
// per cache, never shared.
type LRUDB struct {
	predTable [predTableSize]int8
}

// NewLRUDB builds an LRU-DB policy with a freshly zeroed predictor
// table.
func NewLRUDB() *LRUDB {
	return &LRUDB{}
}

// Access implements sim.Policy.
func (p *LRUDB) Access(cpu *sim.CPU, c *sim.Cache, addr sim.Addr) sim.AccessResult {
	homeStart, _ := c.SetRange(addr.Set)
	adjSet := addr.Set ^ (1 << sim.LRUDBAdjacencyBit)
	adjStart, _ := c.SetRange(adjSet)

	homeOrder := &c.Sets[addr.Set].Order
	adjOrder := &c.Sets[adjSet].Order

	hitWay := p.findHomeHit(c, homeStart, addr.Tag)
	if hitWay == -1 {
		hitWay = p.tryPromoteFromAdjacent(c, homeStart, adjStart, homeOrder, adjOrder, addr.Tag)
	}

	if hitWay != -1 {
		b := &c.Blocks[homeStart+hitWay]
		p.incrementPredictor(b.Trace)
		p.updateTrace(b, cpu.IP)
		b.Touch(cpu)
		homeOrder.MoveToFront(hitWay)
		return sim.Hit
	}

	victim := p.selectHomeVictim(cpu, c, homeStart, adjStart, homeOrder, adjOrder)

	homeIdx := homeStart + victim
	c.Blocks[homeIdx].Fill(cpu, addr.Tag)
	c.Blocks[homeIdx].Receiver = false
	homeOrder.PushFront(victim)
	p.updateTrace(&c.Blocks[homeIdx], cpu.IP)
	return sim.Miss
}

// findHomeHit scans the home set for a valid, non-receiver block whose
// tag matches. Returns -1 if none.
func (p *LRUDB) findHomeHit(c *sim.Cache, homeStart int, tag uint64) int {
	for way := 0; way < c.NWays; way++ {
		b := &c.Blocks[homeStart+way]
		if b.Valid && !b.Receiver && b.Tag == tag {
			return way
		}
	}
	return -1
}

// tryPromoteFromAdjacent scans the adjacent set for a receiver block
// with a matching tag. If found, it is swapped with the home set's
// current LRU victim — the receiver's content returns home, and the
// evicted home-LRU content is demoted into the adjacent set in its
// place — and the home way the swapped-in content now occupies is
// returned as a hit. Returns -1 if no such block exists.
func (p *LRUDB) tryPromoteFromAdjacent(c *sim.Cache, homeStart, adjStart int, homeOrder, adjOrder *sim.Recency, tag uint64) int {
	adjWay := -1
	for way := 0; way < c.NWays; way++ {
		b := &c.Blocks[adjStart+way]
		if b.Valid && b.Receiver && b.Tag == tag {
			adjWay = way
			break
		}
	}
	if adjWay == -1 {
		return -1
	}

	v := homeOrder.Back()
	homeIdx := homeStart + v
	adjIdx := adjStart + adjWay

	c.Blocks[homeIdx], c.Blocks[adjIdx] = c.Blocks[adjIdx], c.Blocks[homeIdx]
	c.Blocks[homeIdx].Receiver = false
	c.Blocks[adjIdx].Receiver = true
	adjOrder.MoveToFront(adjWay)

	return v
}

// selectHomeVictim picks the home-set way that will hold the new block
// on a miss, demoting the displaced home-LRU block into the adjacent
// set if the home set is already full.
func (p *LRUDB) selectHomeVictim(cpu *sim.CPU, c *sim.Cache, homeStart, adjStart int, homeOrder, adjOrder *sim.Recency) int {
	for way := 0; way < c.NWays; way++ {
		if !c.Blocks[homeStart+way].Valid {
			return way
		}
	}

	victim := homeOrder.PopBack()
	demoteWay := p.selectAdjacentSlot(c, adjStart, adjOrder)
	adjIdx := adjStart + demoteWay

	if c.Blocks[adjIdx].Valid {
		c.Blocks[adjIdx].Evict(cpu)
		p.decrementPredictorAndReset(&c.Blocks[adjIdx])
	}

	homeIdx := homeStart + victim
	c.Blocks[adjIdx] = c.Blocks[homeIdx]
	c.Blocks[adjIdx].Receiver = true
	ensureFront(adjOrder, demoteWay)

	c.Blocks[homeIdx].Evict(cpu)
	return victim
}

// selectAdjacentSlot chooses which way of the adjacent set receives a
// demoted home-LRU block: an invalid way first, else a way predicted
// dead, else the adjacent set's own LRU way.
func (p *LRUDB) selectAdjacentSlot(c *sim.Cache, adjStart int, adjOrder *sim.Recency) int {
	for way := 0; way < c.NWays; way++ {
		if !c.Blocks[adjStart+way].Valid {
			return way
		}
	}
	for way := 0; way < c.NWays; way++ {
		if c.Blocks[adjStart+way].Dead {
			return way
		}
	}
	return adjOrder.Back()
}

// ensureFront moves way to the front of order, inserting it if it is
// not already tracked.
func ensureFront(order *sim.Recency, way int) {
	if order.Contains(way) {
		order.MoveToFront(way)
	} else {
		order.PushFront(way)
	}
}

// incrementPredictor saturating-increments the predictor counter at
// trace, capped at predMax.
func (p *LRUDB) incrementPredictor(trace uint16) {
	if p.predTable[trace&predTraceMask] < predMax {
		p.predTable[trace&predTraceMask]++
	}
}

// decrementPredictorAndReset saturating-decrements the predictor
// counter at b's current trace, floored at predMin, then resets b's
// trace to 0 — the "replacement" predictor update applied whenever a
// valid adjacent-set block is overwritten rather than reused.
func (p *LRUDB) decrementPredictorAndReset(b *sim.Block) {
	if p.predTable[b.Trace&predTraceMask] > predMin {
		p.predTable[b.Trace&predTraceMask]--
	}
	b.Trace = 0
}

// updateTrace folds pc into b's trace signature and refreshes its dead
// prediction from the (now current) predictor table entry.
func (p *LRUDB) updateTrace(b *sim.Block, pc uint64) {
	delta := (pc & predTraceMask) ^ ((pc >> 15) & predTraceMask)
	b.Trace = uint16((uint64(b.Trace) + delta) & predTraceMask)
	b.Dead = p.predTable[b.Trace] < 0
}
