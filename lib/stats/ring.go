// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package stats

import "sync"

// RingSink retains the most recent audit events in a fixed-size
// circular buffer so the control surface can serve "what just
// happened" without any persistent audit storage (persistence is the
// external sink's concern).
//
// The sink tracks a monotonically increasing sequence number so
// readers can tell how many events they missed. All methods are safe
// for concurrent use.
type RingSink struct {
	mutex    sync.Mutex
	events   []Event
	capacity int
	// writePosition is the next slot to write (0 to capacity-1).
	writePosition int
	// totalEmitted is the total number of events ever emitted. The
	// buffer holds the last min(totalEmitted, capacity) of them.
	totalEmitted uint64
}

// NewRingSink creates a ring retaining the last capacity events.
// Panics if capacity is not positive.
func NewRingSink(capacity int) *RingSink {
	if capacity <= 0 {
		panic("stats.NewRingSink: capacity must be positive")
	}
	return &RingSink{
		events:   make([]Event, capacity),
		capacity: capacity,
	}
}

// Emit stores the event, overwriting the oldest when full.
func (ring *RingSink) Emit(event Event) {
	ring.mutex.Lock()
	defer ring.mutex.Unlock()

	ring.events[ring.writePosition] = event
	ring.writePosition = (ring.writePosition + 1) % ring.capacity
	ring.totalEmitted++
}

// Recent returns up to n of the most recent events, oldest first.
// n <= 0 returns everything retained.
func (ring *RingSink) Recent(n int) []Event {
	ring.mutex.Lock()
	defer ring.mutex.Unlock()

	stored := ring.totalEmitted
	if stored > uint64(ring.capacity) {
		stored = uint64(ring.capacity)
	}
	count := int(stored)
	if n > 0 && n < count {
		count = n
	}
	if count == 0 {
		return nil
	}

	result := make([]Event, count)
	// The newest event sits just before writePosition; walk back
	// count slots from there.
	start := (ring.writePosition - count + ring.capacity*2) % ring.capacity
	for i := 0; i < count; i++ {
		result[i] = ring.events[(start+i)%ring.capacity]
	}
	return result
}

// TotalEmitted returns the number of events ever emitted, including
// those already overwritten.
func (ring *RingSink) TotalEmitted() uint64 {
	ring.mutex.Lock()
	defer ring.mutex.Unlock()
	return ring.totalEmitted
}
