package sim

import "fmt"

// AccessResult is the outcome of a single cache access.
type AccessResult int

const (
	Miss AccessResult = iota
	Hit
)

func (r AccessResult) String() string {
	if r == Hit {
		return "Hit"
	}
	return "Miss"
}

// Policy is a pluggable replacement strategy. It is given exclusive,
// unguarded access to the cache's block array and per-set scratch —
// the simulator core is single-threaded, so no synchronization is
// needed here.
//
// Policy is defined here, in the package that owns Cache, rather than
// in sim/policy, precisely so Cache need not import the concrete
// policy implementations. Those implementations (in sim/policy) import
// sim to operate on *Cache; wiring a concrete name ("lru", "nmru",
// "lrudb") to a constructor happens through NewPolicyFunc below, set by
// sim/policy's init() — a registration-variable pattern that keeps
// sim/policy a one-way dependency on sim.
type Policy interface {
	Access(cpu *CPU, c *Cache, addr Addr) AccessResult
}

// PolicyFactory builds a Policy for a cache of the given shape. seed
// seeds any policy-private randomness (only NMRU uses it); policies
// that are deterministic ignore it.
type PolicyFactory func(nSets, nWays int, seed int64) (Policy, error)

// NewPolicyFunc maps a config "repl" name to its factory. Populated by
// blank-importing sim/policy (see cmd/root.go); nil until then.
var NewPolicyFunc map[string]PolicyFactory

// NewPolicy builds the named replacement policy. An unknown name is
// returned as an error so config loading can report it as the fatal
// configuration error §7 requires. It panics only if no policy has been
// registered at all (sim/policy was never imported).
func NewPolicy(name string, nSets, nWays int, seed int64) (Policy, error) {
	if NewPolicyFunc == nil {
		panic("sim.NewPolicy: no policy registered — import sim/policy (or blank-import it) " +
			"before building caches")
	}
	factory, ok := NewPolicyFunc[name]
	if !ok {
		return nil, fmt.Errorf("unknown replacement policy %q; valid policies: %s", name, validPolicyNames())
	}
	return factory(nSets, nWays, seed)
}

func validPolicyNames() string {
	names := make([]string, 0, len(NewPolicyFunc))
	for n := range NewPolicyFunc {
		names = append(names, n)
	}
	return fmt.Sprint(names)
}

// Cache is a fixed-capacity set-associative structure: block_size,
// n_sets, n_ways and the active replacement policy are immutable after
// construction.
type Cache struct {
	Name      string
	BlockSize uint64
	NSets     int
	NWays     int

	layout  addrLayout
	Blocks  []Block
	Sets    []SetScratch
	Policy  Policy

	Hits   uint64
	Misses uint64
}

// NewCache constructs a cache. blockSize, nSets and nWays must already
// be validated as powers of two by the caller (sim/config.go).
func NewCache(name string, blockSize uint64, nSets, nWays int, policy Policy) *Cache {
	blocks := make([]Block, nSets*nWays)
	sets := make([]SetScratch, nSets)
	for s := range sets {
		sets[s] = newSetScratch(nWays)
	}
	return &Cache{
		Name:      name,
		BlockSize: blockSize,
		NSets:     nSets,
		NWays:     nWays,
		layout:    newAddrLayout(blockSize, uint64(nSets)),
		Blocks:    blocks,
		Sets:      sets,
		Policy:    policy,
	}
}

// SplitAddr decodes a linear address per §4.A.
func (c *Cache) SplitAddr(addr uint64) Addr {
	return c.layout.split(addr)
}

// SetRange returns the half-open [start, end) index range of set's
// ways within c.Blocks.
func (c *Cache) SetRange(set uint64) (int, int) {
	start := int(set) * c.NWays
	return start, start + c.NWays
}

// Access dispatches to the active policy with the decoded address. The
// caller — the cache-stack driver (stack.go) — is responsible for
// calling Hit/Miss to account the result, and for stopping on Hit.
func (c *Cache) Access(cpu *CPU, addr uint64) AccessResult {
	return c.Policy.Access(cpu, c, c.SplitAddr(addr))
}

// Hit accounts a Hit against this cache's global counters.
func (c *Cache) Hit() { c.Hits++ }

// Miss accounts a Miss against this cache's global counters.
func (c *Cache) Miss() { c.Misses++ }

// ClearStats zeroes the global hit/miss counters and every block's
// durations and access count. alloc_count is clamped to 1 for blocks
// that are currently valid (0 otherwise) so a warmup phase can be
// discarded without losing the notion that these blocks already exist.
func (c *Cache) ClearStats() {
	c.Hits = 0
	c.Misses = 0
	for i := range c.Blocks {
		b := &c.Blocks[i]
		b.LiveDur = 0
		b.DeadDur = 0
		b.AccessCount = 0
		if b.Valid {
			b.AllocCount = 1
		} else {
			b.AllocCount = 0
		}
	}
}
