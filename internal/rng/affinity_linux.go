//go:build linux

// Package rng provides the scheduler's affinity helper: pinning the
// process driving a cycle-box run to a single CPU reduces scheduling
// jitter in wall-clock timing measurements of an otherwise
// logically-deterministic run. It is an optional, explicitly-opted-in
// capability (cmd/isacoreup's -pin-cpu flag), never required for
// correctness — the simulation's determinism comes from its PRNG
// isolation (sched.Seeds), not from OS scheduling.
package rng

import "golang.org/x/sys/unix"

// PinCurrentThread restricts the calling OS thread's CPU affinity mask
// to exactly cpu. Callers that want this to stick must also have
// called runtime.LockOSThread, since Go otherwise freely migrates a
// goroutine across OS threads between calls.
func PinCurrentThread(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}

// Supported reports whether CPU pinning is available on this platform.
func Supported() bool { return true }
