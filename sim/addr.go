package sim

import "math/bits"

// Addr is the decoded form of a linear memory address: the byte offset
// within its block, the set it maps to, and the tag that distinguishes
// it from other addresses mapping to the same set.
type Addr struct {
	Offset uint64
	Set    uint64
	Tag    uint64
}

// bitSection describes a contiguous run of bits within an address:
// shift right by Shift, then mask to Mask. Computed once at cache
// construction time rather than re-derived on every access.
type bitSection struct {
	shift uint
	mask  uint64
}

func (b bitSection) apply(addr uint64) uint64 {
	return (addr >> b.shift) & b.mask
}

// addrLayout is the immutable (offset, set, tag) bitfield split for a
// given block size / set count, derived once at construction.
type addrLayout struct {
	offset bitSection
	set    bitSection
	tag    bitSection
}

// newAddrLayout builds the bitfield layout for a cache with the given
// block size and set count. Both must already be validated as powers
// of two by the caller (see BuildCaches in config.go).
func newAddrLayout(blockSize, nSets uint64) addrLayout {
	offsetBits := uint(bits.TrailingZeros64(blockSize))
	setBits := uint(bits.TrailingZeros64(nSets))

	return addrLayout{
		offset: bitSection{shift: 0, mask: blockSize - 1},
		set:    bitSection{shift: offsetBits, mask: nSets - 1},
		tag:    bitSection{shift: offsetBits + setBits, mask: ^uint64(0)},
	}
}

// split decodes addr into (offset, set, tag) per §4.A. Offset is
// exposed for completeness; no sub-block accesses are modeled
// downstream.
func (l addrLayout) split(addr uint64) Addr {
	return Addr{
		Offset: l.offset.apply(addr),
		Set:    l.set.apply(addr),
		Tag:    l.tag.apply(addr),
	}
}

// isPowerOfTwo reports whether n is a power of two (n > 0).
func isPowerOfTwo(n uint64) bool {
	return n > 0 && n&(n-1) == 0
}
