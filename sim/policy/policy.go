// Package policy implements sim.Policy: LRU, NMRU, and LRU-DB. Each
// constructor is wired into sim.NewPolicyFunc by this file's init(), a
// registration-variable pattern that lets sim/policy depend on sim
// without sim depending back on sim/policy.
//
// Production code imports this package (or blank-imports it, as
// cmd/root.go does) once, at startup, before building any caches.
package policy

import "github.com/cachesim/cachesim/sim"

func init() {
	if sim.NewPolicyFunc == nil {
		sim.NewPolicyFunc = map[string]sim.PolicyFactory{}
	}
	sim.NewPolicyFunc["lru"] = func(nSets, nWays int, seed int64) (sim.Policy, error) {
		return NewLRU(), nil
	}
	sim.NewPolicyFunc["nmru"] = func(nSets, nWays int, seed int64) (sim.Policy, error) {
		return NewNMRU(seed), nil
	}
	sim.NewPolicyFunc["lrudb"] = func(nSets, nWays int, seed int64) (sim.Policy, error) {
		return NewLRUDB(), nil
	}
}
