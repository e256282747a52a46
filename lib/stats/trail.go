// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/axiomhive/bark/lib/clock"
	"github.com/axiomhive/bark/lib/config"
)

// Trail formats audit events and hands them to the sink. Emission is
// fire-and-forget from the caller's perspective: events enter a
// bounded queue drained by one goroutine, and a full queue drops the
// event rather than blocking the authorization path.
//
// The verbose flag gates output — when off, emitters return without
// queueing anything. Verbosity never changes counters; those belong
// to Counters and the orchestrator.
type Trail struct {
	sink     Sink
	settings *config.Runtime
	clock    clock.Clock

	queue   chan Event
	dropped atomic.Uint64

	closeOnce sync.Once
	quit      chan struct{}
	done      chan struct{}
}

// NewTrail starts a trail delivering to sink with the given queue
// depth. Call Close to flush and stop the drain goroutine.
func NewTrail(sink Sink, settings *config.Runtime, clk clock.Clock, queueDepth int) *Trail {
	t := &Trail{
		sink:     sink,
		settings: settings,
		clock:    clk,
		queue:    make(chan Event, queueDepth),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go t.drain()
	return t
}

// drain delivers queued events until Close. The queue channel is
// never closed — emitters may race with Close, and a send on a
// closed channel would panic — so shutdown flushes whatever is
// buffered and exits.
func (t *Trail) drain() {
	defer close(t.done)
	for {
		select {
		case event := <-t.queue:
			t.sink.Emit(event)
		case <-t.quit:
			for {
				select {
				case event := <-t.queue:
					t.sink.Emit(event)
				default:
					return
				}
			}
		}
	}
}

// Authorization records an allowed task creation: subject identity
// plus the entropy level observed at decision time.
func (t *Trail) Authorization(task uint64, entropyLevel uint64) {
	t.emit(Event{
		Kind:  EventAuthorization,
		Task:  task,
		Level: entropyLevel,
	})
}

// Violation records a denial with its stable reason string and a
// timestamp.
func (t *Trail) Violation(task uint64, file string, reason string) {
	t.emit(Event{
		Kind:   EventViolation,
		Task:   task,
		File:   file,
		Reason: reason,
	})
}

// EntropyExceeded records a ceiling breach: the observed level and
// the ceiling it crossed.
func (t *Trail) EntropyExceeded(level, ceiling uint64) {
	t.emit(Event{
		Kind:    EventEntropyExceeded,
		Level:   level,
		Ceiling: ceiling,
	})
}

func (t *Trail) emit(event Event) {
	if !t.settings.Verbose() {
		return
	}
	event.Time = t.clock.Now()
	select {
	case t.queue <- event:
	default:
		t.dropped.Add(1)
	}
}

// Dropped returns the number of events discarded because the queue
// was full.
func (t *Trail) Dropped() uint64 {
	return t.dropped.Load()
}

// Close flushes buffered events and stops the drain goroutine.
// Events emitted after Close sit in the queue unread (or are dropped
// when it fills); they never block the caller.
func (t *Trail) Close() {
	t.closeOnce.Do(func() {
		close(t.quit)
		<-t.done
	})
}

// Flush blocks until every event queued before the call has been
// handed to the sink, or the timeout elapses. Test helper — the
// production path never waits on the trail.
func (t *Trail) Flush(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for len(t.queue) > 0 {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}
