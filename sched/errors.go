package sched

import "errors"

var (
	// ErrBackwardsTime is fatal: now must never decrease.
	ErrBackwardsTime = errors.New("sched: time moved backwards")

	// ErrStarvedComponent is a warning-only condition (the next tick a
	// component's Tick returns equals now) surfaced through the
	// hook channel, never returned from Run.
	ErrStarvedComponent = errors.New("sched: component starved")

	ErrUnknownComponent = errors.New("sched: unknown component id")
	ErrUnknownRegion    = errors.New("sched: address not covered by any region")
	ErrNoFreePort       = errors.New("sched: bus has no ports configured")
)
