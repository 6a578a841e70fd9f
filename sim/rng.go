package sim

import (
	"hash/fnv"
	"math/rand"
)

// SimulationKey uniquely identifies a reproducible run. Two runs with the
// same SimulationKey, configuration, and action sequence must produce
// bit-for-bit identical observations, rewards, and finish times.
type SimulationKey int64

// SubsystemBaselineRandom names the RNG stream the random-assignment
// baseline driver draws from, so a run's target-VM choices reproduce
// under a fixed seed the same way the core's own state does.
const SubsystemBaselineRandom = "baseline_random"

// PartitionedRNG provides deterministic, isolated RNG streams per subsystem
// so two concerns drawing random numbers under the same seed never perturb
// each other's sequence.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		key:        SimulationKey(seed),
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named
// subsystem, derived as masterSeed XOR fnv1a64(name). The same name always
// returns the same cached *rand.Rand.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derived := int64(p.key) ^ fnv1a64(name)
	rng := rand.New(rand.NewSource(derived))
	p.subsystems[name] = rng
	return rng
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
