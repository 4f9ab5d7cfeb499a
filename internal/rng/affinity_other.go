//go:build !linux

package rng

import "errors"

// ErrUnsupported is returned by PinCurrentThread on platforms without a
// CPU-affinity syscall this package knows how to use.
var ErrUnsupported = errors.New("rng: cpu pinning unsupported on this platform")

// PinCurrentThread always fails on non-Linux platforms.
func PinCurrentThread(cpu int) error { return ErrUnsupported }

// Supported reports whether CPU pinning is available on this platform.
func Supported() bool { return false }
