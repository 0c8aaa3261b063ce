package sim

import "math"

// CacheStats is the aggregate performance summary for one cache level,
// derived from its counters and per-block lifetime accumulators.
// Field names match the JSON wire format the CLI writes.
type CacheStats struct {
	Name       string  `json:"name"`
	Misses     uint64  `json:"misses"`
	Hits       uint64  `json:"hits"`
	MissRate   float64 `json:"miss_rate"`
	MPKI       float64 `json:"mpki"`
	Reuse      float64 `json:"reuse"`
	Lifetime   float64 `json:"lifetime"`
	Efficiency float64 `json:"efficiency"`
}

// safeDiv returns num/den, or 0 when den is zero. Every CacheStats
// field must be JSON-serializable, and JSON has no NaN/Inf literal;
// zero is this system's representation of "not a number" for a
// metric whose denominator never accumulated.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// MakeStats produces the five derived metrics plus raw hit/miss
// counts for this cache, as of cpu's current instruction index.
func (c *Cache) MakeStats(cpu *CPU) CacheStats {
	var totalAlloc, totalLive, totalDead float64
	for i := range c.Blocks {
		b := &c.Blocks[i]
		totalAlloc += float64(b.AllocCount)
		totalLive += float64(b.LiveDur)
		totalDead += float64(b.DeadDur)
	}
	totalBoth := totalLive + totalDead
	totalAccess := float64(c.Hits + c.Misses)

	return CacheStats{
		Name:       c.Name,
		Misses:     c.Misses,
		Hits:       c.Hits,
		MissRate:   safeDiv(float64(c.Misses), totalAccess),
		MPKI:       safeDiv(float64(c.Misses), float64(cpu.InstrIdx)),
		Reuse:      safeDiv(totalAccess, totalAlloc),
		Lifetime:   safeDiv(totalBoth, totalAlloc),
		Efficiency: safeDiv(totalLive, totalBoth),
	}
}
