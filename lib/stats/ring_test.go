// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package stats

import "testing"

func TestRingSinkEmpty(t *testing.T) {
	ring := NewRingSink(4)
	if events := ring.Recent(0); events != nil {
		t.Errorf("Recent on empty ring = %v, want nil", events)
	}
	if total := ring.TotalEmitted(); total != 0 {
		t.Errorf("TotalEmitted = %d, want 0", total)
	}
}

func TestRingSinkPartialFill(t *testing.T) {
	ring := NewRingSink(4)
	ring.Emit(Event{Task: 1})
	ring.Emit(Event{Task: 2})

	events := ring.Recent(0)
	if len(events) != 2 {
		t.Fatalf("Recent returned %d events, want 2", len(events))
	}
	if events[0].Task != 1 || events[1].Task != 2 {
		t.Errorf("Recent order = [%d %d], want oldest first [1 2]", events[0].Task, events[1].Task)
	}
}

func TestRingSinkWraparound(t *testing.T) {
	ring := NewRingSink(3)
	for task := uint64(1); task <= 7; task++ {
		ring.Emit(Event{Task: task})
	}

	events := ring.Recent(0)
	if len(events) != 3 {
		t.Fatalf("Recent returned %d events, want 3", len(events))
	}
	for i, want := range []uint64{5, 6, 7} {
		if events[i].Task != want {
			t.Errorf("Recent[%d].Task = %d, want %d", i, events[i].Task, want)
		}
	}
	if total := ring.TotalEmitted(); total != 7 {
		t.Errorf("TotalEmitted = %d, want 7", total)
	}
}

func TestRingSinkRecentLimit(t *testing.T) {
	ring := NewRingSink(8)
	for task := uint64(1); task <= 5; task++ {
		ring.Emit(Event{Task: task})
	}

	events := ring.Recent(2)
	if len(events) != 2 {
		t.Fatalf("Recent(2) returned %d events, want 2", len(events))
	}
	if events[0].Task != 4 || events[1].Task != 5 {
		t.Errorf("Recent(2) = [%d %d], want [4 5]", events[0].Task, events[1].Task)
	}
}

func TestNewRingSinkRejectsZeroCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewRingSink(0) did not panic")
		}
	}()
	NewRingSink(0)
}
