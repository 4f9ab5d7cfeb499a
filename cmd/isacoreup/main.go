// Command isacoreup drives an isacore.System from the command line:
// load a built-in machine description and a raw instruction image, then
// either run a fixed number of cycles or step it interactively one
// cycle at a time.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/intuitionamiga/isacore"
	"github.com/intuitionamiga/isacore/corestate"
	"github.com/intuitionamiga/isacore/hostfn"
	"github.com/intuitionamiga/isacore/internal/rng"
	"github.com/intuitionamiga/isacore/sched"
	"golang.org/x/term"
)

func main() {
	archName := flag.String("arch", "demo8", "built-in machine description to run")
	program := flag.String("program", "", "path to a raw instruction-stream image to load (optional)")
	base := flag.Uint64("base", 0, "address the image is loaded at; also the initial PC")
	width := flag.Uint("width", 8, "instruction word width in bits (8, 16, 32, or 64)")
	endianName := flag.String("endian", "little", "instruction fetch byte order: little or big")
	memSize := flag.Uint64("mem-size", 1<<16, "bus backing store size in bytes")
	cycles := flag.Uint64("cycles", 0, "run exactly this many base cycles then exit (0 runs the interactive step console)")
	seed := flag.Uint64("seed", 1, "master seed, expanded into the scheduler's four independent PRNG streams")
	pinCPU := flag.Int("pin-cpu", -1, "pin this process to the given logical CPU before running (-1 disables)")
	sameTimeName := flag.String("same-time", "deterministic", "same-cycle ordering policy: deterministic, priority, or randomized")
	preemptName := flag.String("preempt", "never", "preemption strategy: never, systematic, or randomized")
	flag.Parse()

	if *pinCPU >= 0 {
		if !rng.Supported() {
			log.Printf("isacoreup: -pin-cpu requested but CPU affinity is not supported on this platform")
		} else if err := rng.PinCurrentThread(*pinCPU); err != nil {
			log.Printf("isacoreup: PinCurrentThread(%d): %v", *pinCPU, err)
		}
	}

	desc, err := loadArch(*archName)
	if err != nil {
		log.Fatalf("isacoreup: %v", err)
	}

	endian := corestate.LittleEndian
	if *endianName == "big" {
		endian = corestate.BigEndian
	}

	derived := rng.DeriveSeeds(*seed)
	cfg := sched.Config{
		SameTime:   parseSameTime(*sameTimeName),
		Preemption: parsePreemption(*preemptName),
		Seeds: sched.Seeds{
			SameTime:    derived.SameTime,
			Arbitration: derived.Arbitration,
			Preemption:  derived.Preemption,
			DeviceNoise: derived.DeviceNoise,
		},
	}

	sys := isacore.NewSystem(desc, hostfn.NewRegistry(), cfg)
	bus := sched.NewBus(0, *memSize, 1, sched.ArbitratePriority)
	sys.AddBus(0, bus)
	if err := sys.MapMemory(0, sched.MemRegion{
		Base: 0, Size: *memSize,
		ReadLatency:  1,
		WriteLatency: 1,
		Permissions:  sched.PermRead | sched.PermWrite,
	}); err != nil {
		log.Fatalf("isacoreup: %v", err)
	}

	if *program != "" {
		data, err := os.ReadFile(*program)
		if err != nil {
			log.Fatalf("isacoreup: reading %s: %v", *program, err)
		}
		if err := sys.LoadBytes(0, *base, data); err != nil {
			log.Fatalf("isacoreup: loading image: %v", err)
		}
	}

	core, err := sys.AddCore(0, 0, 1, uint8(*width), endian)
	if err != nil {
		log.Fatalf("isacoreup: %v", err)
	}
	core.SetPC(*base)

	sys.InstallHook(sched.HookInstruction, func(now uint64, ids []uint64, payload any) {
		if ev, ok := payload.(isacore.InstructionEvent); ok {
			log.Printf("cycle %d: core %d executed %s @ 0x%x", now, ev.Core, ev.Mnemonic, ev.PC)
		}
	})
	sys.InstallHook(sched.HookBranch, func(now uint64, ids []uint64, payload any) {
		if ev, ok := payload.(isacore.BranchEvent); ok {
			log.Printf("cycle %d: core %d branched 0x%x -> 0x%x", now, ev.Core, ev.From, ev.To)
		}
	})

	if *cycles > 0 {
		if err := sys.Run(isacore.RunCycles(*cycles - 1)); err != nil {
			log.Fatalf("isacoreup: %v", err)
		}
		reportHalt(core)
		return
	}

	if err := stepConsole(sys, core); err != nil {
		log.Fatalf("isacoreup: %v", err)
	}
}

func parseSameTime(name string) sched.SameTimePolicy {
	switch name {
	case "priority":
		return sched.SameTimePolicy{Kind: sched.SameTimePriority, Priority: []sched.ComponentID{0}}
	case "randomized":
		return sched.SameTimePolicy{Kind: sched.SameTimeRandomized}
	default:
		return sched.SameTimePolicy{Kind: sched.SameTimeDeterministic}
	}
}

func parsePreemption(name string) sched.PreemptionPolicy {
	switch name {
	case "systematic":
		return sched.PreemptionPolicy{Kind: sched.PreemptSystematic}
	case "randomized":
		return sched.PreemptionPolicy{Kind: sched.PreemptRandomized, Probability: 0.01}
	default:
		return sched.PreemptionPolicy{Kind: sched.PreemptNever}
	}
}

func reportHalt(core *isacore.Core) {
	if halted, err := core.Halted(); halted {
		fmt.Fprintf(os.Stderr, "core halted at pc=0x%x: %v\n", core.PC(), err)
		os.Exit(1)
	}
	fmt.Printf("stopped at pc=0x%x\n", core.PC())
}

// stepConsole drives sys one base cycle per keypress (or per line, when
// stdin is not a terminal), mirroring the teacher's terminal_host.go
// raw-mode single-key handling but for single-stepping instead of
// keyboard-to-MMIO input.
func stepConsole(sys *isacore.System, core *isacore.Core) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return lineStepConsole(sys, core)
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("isacoreup: MakeRaw: %w", err)
	}
	defer term.Restore(fd, state)

	fmt.Print("isacoreup interactive console: space to step, q to quit\r\n")
	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			return nil
		}
		switch buf[0] {
		case 'q', 'Q', 3: // 3 == Ctrl-C
			return nil
		default:
			if err := sys.Step(); err != nil {
				return err
			}
			printStatus(core)
			if halted, _ := core.Halted(); halted {
				return nil
			}
		}
	}
}

// lineStepConsole is the non-TTY fallback: one cycle per newline read
// from stdin, "q" to quit — used when stdin is piped rather than an
// interactive terminal, where raw mode cannot be entered.
func lineStepConsole(sys *isacore.System, core *isacore.Core) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("isacoreup step console (no tty): press Enter to step, 'q' to quit")
	for scanner.Scan() {
		if scanner.Text() == "q" {
			return nil
		}
		if err := sys.Step(); err != nil {
			return err
		}
		printStatus(core)
		if halted, _ := core.Halted(); halted {
			return nil
		}
	}
	return scanner.Err()
}

func printStatus(core *isacore.Core) {
	halted, err := core.Halted()
	if halted {
		fmt.Printf("\r\nhalted at pc=0x%x: %v\r\n", core.PC(), err)
		return
	}
	fmt.Printf("\r\npc=0x%x\r\n", core.PC())
}
