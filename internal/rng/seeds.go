package rng

// DerivedSeeds are the four independent PRNG seeds the scheduler's
// determinism model requires, derived from one master seed so a CLI
// user can reproduce a run by passing a single -seed value instead of
// four.
type DerivedSeeds struct {
	SameTime    uint64
	Arbitration uint64
	Preemption  uint64
	DeviceNoise uint64
}

// DeriveSeeds expands master into four independent-looking seeds via a
// splitmix64-style avalanche mix keyed by a fixed per-purpose constant,
// so the four streams never collide even when master is small or
// round (e.g. 0, 1, 0xDEADBEEF).
func DeriveSeeds(master uint64) DerivedSeeds {
	return DerivedSeeds{
		SameTime:    mix(master, 1),
		Arbitration: mix(master, 2),
		Preemption:  mix(master, 3),
		DeviceNoise: mix(master, 4),
	}
}

func mix(master uint64, purpose uint64) uint64 {
	x := master ^ (purpose * 0x9E3779B97F4A7C15)
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}
