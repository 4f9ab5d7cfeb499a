package sched

import "sort"

// SameTimeKind selects how components whose clock dividers both fire on
// the same base cycle are ordered within that cycle.
type SameTimeKind uint8

const (
	SameTimeDeterministic SameTimeKind = iota
	SameTimePriority
	SameTimeRandomized
)

// SameTimePolicy orders an active set for one base cycle.
type SameTimePolicy struct {
	Kind     SameTimeKind
	Priority []ComponentID // consulted when Kind == SameTimePriority, highest first
}

// order sorts active in place according to p, consuming rng only when
// Kind == SameTimeRandomized (a Fisher-Yates shuffle drawing
// len(active)-1 values from the policy's own PRNG per same-time
// resolution, independent of the bus-arbitration and preemption PRNGs per
// the isolation rule).
func (p SameTimePolicy) order(active []Component, rng randSource) {
	switch p.Kind {
	case SameTimeDeterministic:
		sort.Slice(active, func(i, j int) bool { return active[i].ID() < active[j].ID() })

	case SameTimePriority:
		rank := make(map[ComponentID]int, len(p.Priority))
		for i, id := range p.Priority {
			rank[id] = i
		}
		sort.SliceStable(active, func(i, j int) bool {
			ri, rj := rankOf(rank, active[i].ID()), rankOf(rank, active[j].ID())
			if ri != rj {
				return ri < rj
			}
			return active[i].ID() < active[j].ID()
		})

	case SameTimeRandomized:
		sort.Slice(active, func(i, j int) bool { return active[i].ID() < active[j].ID() })
		if rng == nil {
			return
		}
		for i := len(active) - 1; i > 0; i-- {
			j := rng.Intn(i + 1)
			active[i], active[j] = active[j], active[i]
		}
	}
}

// randSource is the narrow surface SameTimePolicy.order needs from a
// *rand.Rand, kept as an interface so tests can supply a deterministic
// stub without constructing a real PRNG.
type randSource interface {
	Intn(n int) int
}

// PreemptionKind selects the strategy the scheduler uses to decide,
// at each instruction or micro-op boundary, whether to suspend the
// running core, raise a pending interrupt, or continue.
type PreemptionKind uint8

const (
	PreemptNever PreemptionKind = iota
	PreemptSystematic
	PreemptRandomized
	PreemptTargeted
)

// PreemptionDecision is the scheduler's answer at one boundary.
type PreemptionDecision uint8

const (
	PreemptNone PreemptionDecision = iota
	PreemptSuspend
	PreemptInterrupt
)

// PreemptionPolicy configures one of the three non-trivial strategies.
type PreemptionPolicy struct {
	Kind PreemptionKind

	// PreemptRandomized: Bernoulli trial probability per boundary.
	Probability float64

	// PreemptTargeted: trigger when the boundary's PC is in this set.
	TargetPCs map[uint64]bool
}

// decide evaluates the policy at one instruction/micro-op boundary.
// boundaryIndex is a monotonically increasing counter per component
// (systematic walks it from 0 upward across the whole run); pc is the
// boundary's program counter (only consulted by PreemptTargeted).
func (p PreemptionPolicy) decide(boundaryIndex uint64, pc uint64, rng randSource) PreemptionDecision {
	switch p.Kind {
	case PreemptSystematic:
		if boundaryIndex%2 == 1 {
			return PreemptSuspend
		}
		return PreemptNone

	case PreemptRandomized:
		if rng == nil {
			return PreemptNone
		}
		if rng.Intn(1_000_000) < int(p.Probability*1_000_000) {
			return PreemptSuspend
		}
		return PreemptNone

	case PreemptTargeted:
		if p.TargetPCs != nil && p.TargetPCs[pc] {
			return PreemptInterrupt
		}
		return PreemptNone

	default:
		return PreemptNone
	}
}
