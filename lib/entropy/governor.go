// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package entropy

import (
	"sync/atomic"

	"github.com/axiomhive/bark/lib/config"
)

// EventKind classifies gated events by how much non-determinism they
// introduce.
type EventKind int

const (
	// KindUnclassified covers events with no specific category.
	KindUnclassified EventKind = iota

	// KindProcessCreation is a fork/clone of a new task.
	KindProcessCreation

	// KindNetworkIO is network send or receive activity.
	KindNetworkIO

	// KindDiskIO is file read or write activity.
	KindDiskIO

	// KindTimer is timer or other periodic activity.
	KindTimer
)

// String returns the event category name used in audit output.
func (k EventKind) String() string {
	switch k {
	case KindProcessCreation:
		return "process-creation"
	case KindNetworkIO:
		return "network-io"
	case KindDiskIO:
		return "disk-io"
	case KindTimer:
		return "timer"
	default:
		return "unclassified"
	}
}

// Delta returns the entropy contribution of one event of this kind.
// Process creation dominates because a new task is the largest single
// source of scheduling non-determinism the gate observes.
func (k EventKind) Delta() uint64 {
	switch k {
	case KindProcessCreation:
		return 10
	case KindNetworkIO:
		return 5
	case KindDiskIO:
		return 3
	case KindTimer:
		return 1
	default:
		return 1
	}
}

// Check is the result of a ceiling comparison. Level and Ceiling are
// the values observed by the comparison, so callers can report them
// without racing against concurrent updates.
type Check struct {
	Level    uint64
	Ceiling  uint64
	Exceeded bool
}

// Governor maintains the process-wide entropy counter. The zero value
// is not usable; construct with New.
//
// The Governor never touches statistics. Whether a ceiling breach
// counts as a blocked event is the orchestrator's call — the check may
// equally be consulted for diagnostics.
type Governor struct {
	counter  atomic.Int64
	settings *config.Runtime
}

// New returns a Governor reading its ceiling from settings. The
// counter starts at zero.
func New(settings *config.Runtime) *Governor {
	return &Governor{settings: settings}
}

// Level returns the current counter value. Lock-free read; never
// mutates.
func (g *Governor) Level() uint64 {
	return uint64(g.counter.Load())
}

// CheckCeiling compares the current level against the configured
// ceiling. The ceiling is re-read atomically on every call so control
// surface changes take effect immediately.
func (g *Governor) CheckCeiling() Check {
	level := g.Level()
	ceiling := g.settings.Ceiling()
	return Check{
		Level:    level,
		Ceiling:  ceiling,
		Exceeded: level > ceiling,
	}
}

// Update adds delta to the counter, then applies one unit of decay if
// the post-add value is positive. Both steps happen in a single
// compare-and-swap so concurrent updates never lose the decay and the
// counter never dips below zero.
func (g *Governor) Update(delta uint64) {
	for {
		old := g.counter.Load()
		next := old + int64(delta)
		if next > 0 {
			next--
		}
		if g.counter.CompareAndSwap(old, next) {
			return
		}
	}
}

// RecordEvent classifies an event and applies its delta.
func (g *Governor) RecordEvent(kind EventKind) {
	g.Update(kind.Delta())
}

// Reset zeroes the counter. Administrative and test use only — not
// part of the per-event path.
func (g *Governor) Reset() {
	g.counter.Store(0)
}
