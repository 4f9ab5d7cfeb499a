package sched

import (
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// HookKind names one of the five installable hook points.
type HookKind uint8

const (
	HookInstruction HookKind = iota
	HookMicroOp
	HookMemRequest
	HookMemResponse
	HookBranch
)

// HookFunc receives (now, ids, payload) for an installed hook point. A
// hook must not mutate simulation state beyond its own scratch area.
type HookFunc func(now uint64, ids []uint64, payload any)

// Seeds bundles the four independent PRNG seeds the determinism model
// requires: same-time ordering, bus arbitration, preemption, and
// per-device noise.
type Seeds struct {
	SameTime    uint64
	Arbitration uint64
	Preemption  uint64
	DeviceNoise uint64
}

// Config is a Scheduler's build-time configuration: its same-time and
// preemption policies plus the four PRNG seeds.
type Config struct {
	SameTime   SameTimePolicy
	Preemption PreemptionPolicy
	Seeds      Seeds
}

// Scheduler owns the simulation's logical timeline: component
// registration, bus ownership, PRNG isolation, interrupt delivery, and
// the cycle-box/discrete-event drivers. Component Tick calls are always
// serialized; only same-time-set construction runs goroutines
// concurrently, and those goroutines write disjoint slice indices so no
// partial simulation state is ever observed across them (§5).
type Scheduler struct {
	components map[ComponentID]Component
	order      []ComponentID

	buses map[int]*Bus

	cfg  Config
	rngs *rngBank

	interrupts    *interruptController
	boundaryIndex map[ComponentID]uint64

	hooks map[HookKind][]HookFunc

	now       uint64
	cancelled atomic.Bool
}

// NewScheduler returns an empty Scheduler configured with cfg.
func NewScheduler(cfg Config) *Scheduler {
	return &Scheduler{
		components:    make(map[ComponentID]Component),
		buses:         make(map[int]*Bus),
		cfg:           cfg,
		rngs:          newRNGBank(cfg.Seeds.SameTime, cfg.Seeds.Arbitration, cfg.Seeds.Preemption, cfg.Seeds.DeviceNoise),
		interrupts:    newInterruptController(),
		boundaryIndex: make(map[ComponentID]uint64),
		hooks:         make(map[HookKind][]HookFunc),
	}
}

// AddComponent registers c. Components must be added before Run*.
func (s *Scheduler) AddComponent(c Component) {
	s.components[c.ID()] = c
	s.order = append(s.order, c.ID())
}

// AddBus registers b under its own ID for components to address via
// Bus(id).
func (s *Scheduler) AddBus(b *Bus) {
	s.buses[b.ID] = b
}

// Bus returns the registered bus with the given id, or nil.
func (s *Scheduler) Bus(id int) *Bus {
	return s.buses[id]
}

// Now returns the scheduler's current simulated time.
func (s *Scheduler) Now() uint64 { return s.now }

// InstallHook appends fn to kind's callback list.
func (s *Scheduler) InstallHook(kind HookKind, fn HookFunc) {
	s.hooks[kind] = append(s.hooks[kind], fn)
}

func (s *Scheduler) fireHook(kind HookKind, ids []uint64, payload any) {
	for _, fn := range s.hooks[kind] {
		fn(s.now, ids, payload)
	}
}

// Fire lets a Component report an event on one of the five hook
// channels from within its own Tick — a core firing HookInstruction
// after it executes, or HookBranch when a semantic block wrote pc
// directly — through the same dispatch the scheduler's own
// starvation/mem-response firing uses.
func (s *Scheduler) Fire(kind HookKind, ids []uint64, payload any) {
	s.fireHook(kind, ids, payload)
}

// RaiseInterrupt queues i for delivery once its RaiseAt cycle arrives.
func (s *Scheduler) RaiseInterrupt(i Interrupt) {
	s.interrupts.raise(i)
}

// ConsumeInterrupt returns and removes the highest-priority interrupt
// ready for core at the current time, if any — called by a core's Tick
// at an instruction boundary.
func (s *Scheduler) ConsumeInterrupt(core ComponentID) (Interrupt, bool) {
	return s.interrupts.deliverable(core, s.now)
}

// DeviceRNG returns the seeded per-device PRNG stream for id.
func (s *Scheduler) DeviceRNG(id ComponentID) randSource {
	return s.rngs.DeviceRNG(id)
}

// PreemptionDecision evaluates the configured preemption strategy at
// one instruction/micro-op boundary for core, advancing that core's own
// boundary counter (systematic preemption walks this from 0 upward
// across the whole run).
func (s *Scheduler) PreemptionDecision(core ComponentID, pc uint64) PreemptionDecision {
	idx := s.boundaryIndex[core]
	s.boundaryIndex[core] = idx + 1
	return s.cfg.Preemption.decide(idx, pc, s.rngs.preemption)
}

// Cancel requests cooperative cancellation; in-flight Run* calls stop
// at the next cycle/event boundary.
func (s *Scheduler) Cancel() { s.cancelled.Store(true) }

// ShouldYield reports whether id should yield at its next suspension
// point (memory wait, instruction boundary, micro-op boundary).
// Cancellation is the only global yield source the scheduler itself
// tracks; component-local yield reasons are the component's own
// concern.
func (s *Scheduler) ShouldYield(id ComponentID) bool {
	return s.cancelled.Load()
}

// activeSet builds the cycle-box active set for base cycle c: every
// component whose clock divider evenly divides c. Membership is
// computed concurrently (one goroutine per component, each writing
// only its own slice index, per the teacher's ProgramExecutor-style
// fan-out) but the resulting active list is always compiled in
// registration order, so concurrent construction never leaks into
// observable non-determinism of the returned order.
func (s *Scheduler) activeSet(c uint64) []Component {
	flags := make([]bool, len(s.order))
	g := new(errgroup.Group)
	for i, id := range s.order {
		i, id := i, id
		g.Go(func() error {
			comp := s.components[id]
			d := uint64(comp.ClockDivider())
			if d == 0 {
				d = 1
			}
			flags[i] = c%d == 0
			return nil
		})
	}
	_ = g.Wait()

	active := make([]Component, 0, len(s.order))
	for i, id := range s.order {
		if flags[i] {
			active = append(active, s.components[id])
		}
	}
	return active
}

// StepCycle advances the simulation through exactly one base cycle c:
// the active set ticks in same-time order, then every bus drains and
// arbitrates. Exposed separately from RunCycleBox so a caller that needs
// to inspect state between cycles (isacore.System.Run's PC/predicate
// stopping conditions) can drive the timeline one cycle at a time
// instead of only through RunCycleBox's fixed 0..limit sweep.
func (s *Scheduler) StepCycle(c uint64) error {
	s.now = c

	active := s.activeSet(c)
	s.cfg.SameTime.order(active, s.rngs.sameTime)

	for _, comp := range active {
		next, err := comp.Tick(c, s)
		if err != nil {
			return err
		}
		if next < c {
			return ErrBackwardsTime
		}
		if next == c {
			s.fireHook(HookInstruction, []uint64{uint64(comp.ID())}, ErrStarvedComponent)
		}
	}

	for _, id := range sortedBusIDs(s.buses) {
		responses := s.buses[id].Tick(c, s.rngs.arbitration)
		for _, r := range responses {
			s.fireHook(HookMemResponse, []uint64{uint64(r.OriginatorID), r.Tag}, r)
		}
	}

	return nil
}

// RunCycleBox drives the simulation one base cycle at a time from 0
// through limit inclusive.
func (s *Scheduler) RunCycleBox(limit uint64) error {
	for c := uint64(0); c <= limit; c++ {
		if err := s.StepCycle(c); err != nil {
			return err
		}
		if s.cancelled.Load() {
			break
		}
	}
	return nil
}

// RunDiscreteEvent drives the simulation by repeatedly popping the
// smallest (tick, id) event, stopping once the popped tick exceeds
// limit.
func (s *Scheduler) RunDiscreteEvent(limit uint64) error {
	eq := NewEventQueue()
	for _, id := range s.order {
		eq.Schedule(s.components[id].NextTick(), id)
	}

	for eq.Len() > 0 {
		tick, id := eq.Pop()
		if tick > limit {
			break
		}
		if tick < s.now {
			return ErrBackwardsTime
		}
		s.now = tick

		for _, busID := range sortedBusIDs(s.buses) {
			responses := s.buses[busID].Tick(tick, s.rngs.arbitration)
			for _, r := range responses {
				s.fireHook(HookMemResponse, []uint64{uint64(r.OriginatorID), r.Tag}, r)
			}
		}

		comp, ok := s.components[id]
		if !ok {
			continue
		}
		next, err := comp.Tick(tick, s)
		if err != nil {
			return err
		}
		if next < tick {
			return ErrBackwardsTime
		}
		if next == tick {
			s.fireHook(HookInstruction, []uint64{uint64(id)}, ErrStarvedComponent)
		}
		eq.Schedule(next, id)

		if s.cancelled.Load() {
			break
		}
	}
	return nil
}

func sortedBusIDs(buses map[int]*Bus) []int {
	ids := make([]int, 0, len(buses))
	for id := range buses {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
