package sim

// Recency is a per-set MRU-to-LRU ordering of way indices. Front is
// most-recently-used, back is least-recently-used. It contains each
// way that has ever been allocated exactly once; ways never allocated
// do not appear. Used by LRU and LRU-DB; NMRU tracks only MRUWay.
//
// Exported so policy implementations in sim/policy (an external
// package, by the registration-variable design documented in
// cache.go) can manipulate it directly — the policy needs the same
// unguarded access to per-set scratch a single-threaded in-package
// implementation would have.
type Recency struct {
	ways []int
}

func newRecency(nWays int) Recency {
	return Recency{ways: make([]int, 0, nWays)}
}

// PushFront installs way at the MRU position. Callers must ensure way
// is not already present.
func (r *Recency) PushFront(way int) {
	r.ways = append(r.ways, 0)
	copy(r.ways[1:], r.ways)
	r.ways[0] = way
}

// MoveToFront relocates an already-present way to the MRU position.
func (r *Recency) MoveToFront(way int) {
	for i, w := range r.ways {
		if w == way {
			copy(r.ways[1:i+1], r.ways[:i])
			r.ways[0] = way
			return
		}
	}
	panic("recency: MoveToFront on way not present in set")
}

// PopBack removes and returns the LRU way. Panics if empty — callers
// only invoke this once they know the set holds n_ways occupied slots.
func (r *Recency) PopBack() int {
	n := len(r.ways)
	if n == 0 {
		panic("recency: PopBack on empty set — a block array / recency desync bug")
	}
	way := r.ways[n-1]
	r.ways = r.ways[:n-1]
	return way
}

// Back returns the LRU way without removing it.
func (r *Recency) Back() int {
	n := len(r.ways)
	if n == 0 {
		panic("recency: Back on empty set — a block array / recency desync bug")
	}
	return r.ways[n-1]
}

// Contains reports whether way currently occupies a slot in this set.
func (r *Recency) Contains(way int) bool {
	for _, w := range r.ways {
		if w == way {
			return true
		}
	}
	return false
}

// Len returns the number of occupied ways tracked.
func (r *Recency) Len() int { return len(r.ways) }

// SetScratch is the per-set policy-private state described in §3: an
// ordering of ways for LRU / LRU-DB, or a single MRU way for NMRU.
type SetScratch struct {
	Order  Recency
	MRUWay int
}

func newSetScratch(nWays int) SetScratch {
	return SetScratch{Order: newRecency(nWays)}
}
