package sched

import "math/rand"

// rngBank holds the independent PRNG sources the determinism model
// requires: same-time ordering, bus arbitration, and preemption each
// get their own seeded stream so a run can vary one axis of
// nondeterminism while holding the others fixed — interleaving a
// single global PRNG across sources would destroy that property.
// deviceSeed is not itself a *rand.Rand: per-device streams are
// derived lazily (and deterministically) by id, see DeviceRNG.
type rngBank struct {
	sameTime    *rand.Rand
	arbitration *rand.Rand
	preemption  *rand.Rand
	deviceSeed  uint64
	deviceRNGs  map[ComponentID]*rand.Rand
}

func newRNGBank(sameTimeSeed, arbitrationSeed, preemptionSeed, deviceSeed uint64) *rngBank {
	return &rngBank{
		sameTime:    rand.New(rand.NewSource(int64(sameTimeSeed))),
		arbitration: rand.New(rand.NewSource(int64(arbitrationSeed))),
		preemption:  rand.New(rand.NewSource(int64(preemptionSeed))),
		deviceSeed:  deviceSeed,
		deviceRNGs:  make(map[ComponentID]*rand.Rand),
	}
}

// splitmix64Mix is a fixed-point avalanche mixer used only to combine a
// device's ComponentID with the run's device-noise seed into a distinct
// per-device seed; it is not itself used as a PRNG.
func splitmix64Mix(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

// DeviceRNG returns the seeded, per-device PRNG stream for id, creating
// it on first use from the run's device-noise seed mixed with id so
// every device gets an independent but reproducible stream without a
// device needing to manage its own seed.
func (b *rngBank) DeviceRNG(id ComponentID) *rand.Rand {
	if r, ok := b.deviceRNGs[id]; ok {
		return r
	}
	seed := splitmix64Mix(b.deviceSeed ^ uint64(id))
	r := rand.New(rand.NewSource(int64(seed)))
	b.deviceRNGs[id] = r
	return r
}
