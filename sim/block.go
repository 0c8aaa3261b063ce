package sim

// Block is one way of one set: a slot that may be vacant or valid.
// Lifetime counters are monotonic and accumulate across the block's
// entire residency history; they are only reset (clamped) by
// ClearStats, never by eviction.
//
// The LRU-DB-specific fields (Trace, Dead, Receiver) are unused scratch
// for LRU and NMRU.
type Block struct {
	Valid bool
	Tag   uint64

	AllocCount  uint64
	AccessCount uint64
	LiveDur     uint64
	DeadDur     uint64

	AllocTime  uint64
	AccessTime uint64

	// Trace is the 15-bit PC-history signature driving the dead-block
	// predictor; Dead is the cached prediction at the block's current
	// Trace; Receiver is true iff this block currently lives in its
	// adjacent (non-home) set as a demoted block. LRU-DB only.
	Trace    uint16
	Dead     bool
	Receiver bool
}

// Fill installs a new tag into this block on a miss, starting a fresh
// residency. The caller is responsible for having already called Evict
// on the previous occupant, if any.
func (b *Block) Fill(cpu *CPU, tag uint64) {
	b.Valid = true
	b.Tag = tag
	b.AllocTime = cpu.InstrIdx
	b.AccessTime = cpu.InstrIdx
	b.AllocCount++
}

// Touch advances the in-flight access timestamp on a hit.
func (b *Block) Touch(cpu *CPU) {
	b.AccessTime = cpu.InstrIdx
	b.AccessCount++
}

// Evict closes out the block's current residency, folding the elapsed
// live and dead durations into the running totals. It does not clear
// Valid or Tag — the caller overwrites those as part of the Fill that
// follows.
func (b *Block) Evict(cpu *CPU) {
	if !b.Valid {
		return
	}
	b.LiveDur += b.AccessTime - b.AllocTime
	b.DeadDur += cpu.InstrIdx - b.AccessTime
}
