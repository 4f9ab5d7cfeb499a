// Package isacore is the root facade over arena, machdesc, corestate,
// decode, exec, sched, and trace: build a System from one
// machdesc.MachineDescription, map its memory, attach one Core per
// simulated processor, and Run it to a stopping condition — the same
// build-then-run shape as the teacher's NewMachine/Run pairing in
// machine.go, one level above the per-chip components sched.Component
// generalizes.
package isacore

import (
	"fmt"

	"github.com/intuitionamiga/isacore/corestate"
	"github.com/intuitionamiga/isacore/decode"
	"github.com/intuitionamiga/isacore/exec"
	"github.com/intuitionamiga/isacore/hostfn"
	"github.com/intuitionamiga/isacore/machdesc"
	"github.com/intuitionamiga/isacore/sched"
)

// Core is one running instance of a MachineDescription: its own
// register file and executor, fetching against a shared bus. Core
// implements sched.Component so the scheduler ticks it exactly like any
// other component in the active set.
type Core struct {
	id      sched.ComponentID
	divider uint32
	width   uint8
	endian  corestate.Endian

	desc  *machdesc.MachineDescription
	state *corestate.CoreState
	ex    *exec.Executor
	bus   *sched.Bus

	pc      uint64
	halted  bool
	haltErr error
}

// NewCore allocates a zeroed register file for desc and returns a Core
// that fetches instruction words of width bits, in endian byte order,
// from bus, ticking once every divider base cycles.
func NewCore(id sched.ComponentID, desc *machdesc.MachineDescription, hosts *hostfn.Registry, bus *sched.Bus, divider uint32, width uint8, endian corestate.Endian) (*Core, error) {
	spec, err := corestate.BuildCoreSpec(desc)
	if err != nil {
		return nil, err
	}
	if divider == 0 {
		divider = 1
	}
	spec.ClockDivider = divider
	spec.Endian = endian

	state := corestate.NewCoreState(spec)
	return &Core{
		id:      id,
		divider: divider,
		width:   width,
		endian:  endian,
		desc:    desc,
		state:   state,
		ex:      exec.NewExecutor(desc, state, hosts),
		bus:     bus,
	}, nil
}

func (c *Core) ID() sched.ComponentID     { return c.id }
func (c *Core) Kind() sched.ComponentKind { return sched.KindCore }
func (c *Core) ClockDivider() uint32      { return c.divider }

// NextTick always reports 0: Core only ever runs under RunCycleBox's
// divider-gated active set, never under the discrete-event queue, so
// the value is never consulted.
func (c *Core) NextTick() uint64 { return 0 }

// PC returns the core's current program counter.
func (c *Core) PC() uint64 { return c.pc }

// SetPC seeds the core's program counter directly — a system's entry
// point before Run, or a redirect out of a halted state.
func (c *Core) SetPC(pc uint64) {
	c.pc = pc
	c.halted = false
	c.haltErr = nil
}

// Halted reports whether the core stopped fetching after an
// UnknownInstruction or FetchFault, and the error that stopped it.
func (c *Core) Halted() (bool, error) { return c.halted, c.haltErr }

// ReadRegister and WriteRegister expose the core's register file to
// System.ReadReg/WriteReg and to host functions sharing this core's
// Context.
func (c *Core) ReadRegister(name, path string) (uint64, error) {
	return c.state.ReadRegister(name, path)
}

func (c *Core) WriteRegister(name, path string, value uint64) error {
	return c.state.WriteRegister(name, path, value)
}

// Tick fetches, decodes, and executes exactly one instruction at the
// core's current PC, entirely before returning. PC advances by the
// decoded form's size unless the semantic block wrote pc directly. A
// decode failure (UnknownInstruction or FetchFault) halts this core —
// it returns now unchanged so the scheduler's own starvation signal
// (next == c) surfaces the halt through HookInstruction — but never
// propagates as a Tick error, so sibling cores and buses keep running.
func (c *Core) Tick(now uint64, s *sched.Scheduler) (uint64, error) {
	if c.halted {
		return now + uint64(c.divider), nil
	}

	if in, ok := s.ConsumeInterrupt(c.id); ok {
		c.pc = in.Vector
	}

	dec, err := decode.DecodeEndian(c.desc, c.bus, c.pc, c.width, c.endian)
	if err != nil {
		c.halted = true
		c.haltErr = err
		return now, nil
	}

	operands := make(map[string]int64, len(dec.Operands))
	for name, v := range dec.Operands {
		operands[name] = int64(v.Value)
	}

	res, err := c.ex.ExecuteForm(dec.Form, operands, c.pc)
	if err != nil {
		c.halted = true
		c.haltErr = err
		return now, nil
	}

	s.Fire(sched.HookInstruction, []uint64{uint64(c.id), c.pc}, InstructionEvent{
		Core: c.id, Mnemonic: dec.Mnemonic, PC: c.pc, Size: dec.Size,
	})

	if res.PCWritten {
		s.Fire(sched.HookBranch, []uint64{uint64(c.id)}, BranchEvent{Core: c.id, From: c.pc, To: res.PC})
		c.pc = res.PC
	} else {
		c.pc += uint64(dec.Size)
	}

	return now + uint64(c.divider), nil
}

// InstructionEvent is the HookInstruction payload a Core fires after
// successfully executing one instruction.
type InstructionEvent struct {
	Core     sched.ComponentID
	Mnemonic string
	PC       uint64
	Size     uint32
}

// BranchEvent is the HookBranch payload a Core fires whenever a
// semantic block writes pc directly rather than falling through to
// PC+Size.
type BranchEvent struct {
	Core     sched.ComponentID
	From, To uint64
}

// UntilKind distinguishes the three ways System.Run can be bounded.
type UntilKind uint8

const (
	UntilCycles UntilKind = iota
	UntilPC
	UntilPredicate
)

// Until is a Run stopping condition, built via RunCycles, RunUntilPC,
// or RunUntilPredicate rather than constructed directly.
type Until struct {
	kind      UntilKind
	cycles    uint64
	core      sched.ComponentID
	pc        uint64
	predicate func() bool
}

// RunCycles stops after n+1 further base cycles have run (cycles 0..n
// inclusive, counted from the cycle the run starts at).
func RunCycles(n uint64) Until { return Until{kind: UntilCycles, cycles: n} }

// RunUntilPC stops once core's program counter equals pc, checked after
// every cycle that core ticks in.
func RunUntilPC(core sched.ComponentID, pc uint64) Until {
	return Until{kind: UntilPC, core: core, pc: pc}
}

// RunUntilPredicate stops once pred returns true, checked after every
// cycle.
func RunUntilPredicate(pred func() bool) Until {
	return Until{kind: UntilPredicate, predicate: pred}
}

// System wires one MachineDescription, its host function registry, a
// scheduler, and any number of buses and cores into a runnable
// simulation.
type System struct {
	Desc  *machdesc.MachineDescription
	Hosts *hostfn.Registry

	sched     *sched.Scheduler
	buses     map[int]*sched.Bus
	cores     map[sched.ComponentID]*Core
	nextCycle uint64
}

// maxRunCycles bounds an open-ended RunUntilPC/RunUntilPredicate Run
// call so a stopping condition that can never become true (a typo'd PC,
// a predicate closed over the wrong variable) halts instead of spinning
// forever.
const maxRunCycles = 1 << 40

// NewSystem builds an empty System around desc and hosts, ready for
// MapMemory/AddCore calls before Run.
func NewSystem(desc *machdesc.MachineDescription, hosts *hostfn.Registry, cfg sched.Config) *System {
	return &System{
		Desc:  desc,
		Hosts: hosts,
		sched: sched.NewScheduler(cfg),
		buses: make(map[int]*sched.Bus),
		cores: make(map[sched.ComponentID]*Core),
	}
}

// AddBus registers bus under id for AddCore and LoadBytes to address.
func (sys *System) AddBus(id int, bus *sched.Bus) {
	sys.buses[id] = bus
	sys.sched.AddBus(bus)
}

// MapMemory adds region to the bus registered under busID.
func (sys *System) MapMemory(busID int, region sched.MemRegion) error {
	bus, ok := sys.buses[busID]
	if !ok {
		return sched.ErrUnknownRegion
	}
	bus.MapRegion(region)
	return nil
}

// LoadBytes seeds bus busID's backing store at addr, bypassing
// request/response latency — used to load program/firmware images
// before Run.
func (sys *System) LoadBytes(busID int, addr uint64, data []byte) error {
	bus, ok := sys.buses[busID]
	if !ok {
		return sched.ErrUnknownRegion
	}
	bus.LoadBytes(addr, data)
	return nil
}

// AddCore builds and registers a Core fetching width-bit instruction
// words in endian order from the bus registered under busID, ticking
// once per divider base cycles.
func (sys *System) AddCore(id sched.ComponentID, busID int, divider uint32, width uint8, endian corestate.Endian) (*Core, error) {
	bus, ok := sys.buses[busID]
	if !ok {
		return nil, sched.ErrUnknownRegion
	}
	core, err := NewCore(id, sys.Desc, sys.Hosts, bus, divider, width, endian)
	if err != nil {
		return nil, err
	}
	sys.cores[id] = core
	sys.sched.AddComponent(core)
	return core, nil
}

// Core returns the registered core with the given id, or nil.
func (sys *System) Core(id sched.ComponentID) *Core { return sys.cores[id] }

// ReadReg reads register name (optionally narrowed by a dotted
// bit-path) on core.
func (sys *System) ReadReg(core sched.ComponentID, name, path string) (uint64, error) {
	c, ok := sys.cores[core]
	if !ok {
		return 0, fmt.Errorf("isacore: %w: core %d", sched.ErrUnknownComponent, core)
	}
	return c.ReadRegister(name, path)
}

// WriteReg writes value into register name (optionally narrowed by a
// dotted bit-path) on core.
func (sys *System) WriteReg(core sched.ComponentID, name, path string, value uint64) error {
	c, ok := sys.cores[core]
	if !ok {
		return fmt.Errorf("isacore: %w: core %d", sched.ErrUnknownComponent, core)
	}
	return c.WriteRegister(name, path, value)
}

// InstallHook forwards to the underlying scheduler's hook table.
func (sys *System) InstallHook(kind sched.HookKind, fn sched.HookFunc) {
	sys.sched.InstallHook(kind, fn)
}

// RaiseInterrupt queues i for delivery at its configured cycle; the
// target core consumes it at its next instruction boundary.
func (sys *System) RaiseInterrupt(i sched.Interrupt) {
	sys.sched.RaiseInterrupt(i)
}

// Now returns the scheduler's current simulated cycle.
func (sys *System) Now() uint64 { return sys.sched.Now() }

// Step advances the simulation by exactly one base cycle beyond
// wherever it last left off — the primitive cmd/isacoreup's
// interactive console steps on one keypress at a time, and the one Run
// itself is built from.
func (sys *System) Step() error {
	if err := sys.sched.StepCycle(sys.nextCycle); err != nil {
		return err
	}
	sys.nextCycle++
	return nil
}

// runCycles advances the simulation by up to n further base cycles (or
// until stop returns true, when stop is non-nil), continuing from
// sys.nextCycle rather than always restarting at base cycle 0 — so Run
// and Step calls compose across a System's lifetime instead of each Run
// call re-sweeping the whole timeline from the beginning.
func (sys *System) runCycles(n uint64, stop func() bool) error {
	for i := uint64(0); i < n; i++ {
		if err := sys.Step(); err != nil {
			return err
		}
		if stop != nil && stop() {
			return nil
		}
	}
	return nil
}

// Run drives the simulation under until, in cycle-box mode (every core
// ticks on its own clock divider, buses drain and arbitrate every base
// cycle). RunCycles(n) advances exactly n+1 further cycles; RunUntilPC
// and RunUntilPredicate advance one cycle at a time, re-checking their
// condition after each, bounded by maxRunCycles against a condition
// that never triggers.
func (sys *System) Run(until Until) error {
	switch until.kind {
	case UntilCycles:
		return sys.runCycles(until.cycles+1, nil)

	case UntilPC:
		core, ok := sys.cores[until.core]
		if !ok {
			return fmt.Errorf("isacore: %w: core %d", sched.ErrUnknownComponent, until.core)
		}
		return sys.runCycles(maxRunCycles, func() bool {
			halted, _ := core.Halted()
			return halted || core.PC() == until.pc
		})

	case UntilPredicate:
		return sys.runCycles(maxRunCycles, until.predicate)

	default:
		return nil
	}
}
