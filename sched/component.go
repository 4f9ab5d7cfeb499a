// Package sched implements the dual-mode (cycle-box, discrete-event)
// scheduler, bus arbitration, preemption, and interrupt delivery that
// advance a simulation's components deterministically or under seeded
// randomization. A single Scheduler owns the simulation's logical
// timeline; component Tick calls are always serialized, mirroring the
// teacher's single-goroutine MachineBus read/write dispatch rather than
// a per-component goroutine model.
package sched

// ComponentID identifies one schedulable entity (core, bus, memory,
// device) within a Scheduler.
type ComponentID uint32

// ComponentKind tags which of the four schedulable shapes a Component
// is, kept as a small enum (rather than open-ended interface dispatch)
// so the scheduler's hot loop stays monomorphic and predictable.
type ComponentKind uint8

const (
	KindCore ComponentKind = iota
	KindBus
	KindMemory
	KindDevice
)

// Component is the capability set every schedulable entity implements.
// Tick advances the component from base cycle now and returns the base
// cycle at which it should next be considered due (discrete-event mode)
// or is ignored (cycle-box mode builds its active set from ClockDivider
// alone). Tick receives the owning Scheduler so a core can issue bus
// requests, check preemption, or raise/consume interrupts during its
// own turn.
type Component interface {
	ID() ComponentID
	Kind() ComponentKind
	ClockDivider() uint32
	NextTick() uint64
	Tick(now uint64, s *Scheduler) (newNextTick uint64, err error)
}
