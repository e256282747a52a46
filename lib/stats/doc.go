// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

// Package stats records every gate decision: four process-wide
// counters and a structured audit trail.
//
// The counters (authorizations, denials, entropy blocks, signature
// failures) are individual atomics — one atomic per counter, no
// guarded aggregate — because they are incremented from the
// authorization hot path under unbounded concurrency and must never
// take a lock there.
//
// Audit events flow through a Trail to a pluggable Sink. Delivery is
// decoupled from the decision path by a bounded queue drained by a
// single goroutine: when the queue is full the event is dropped and
// counted, never blocked on. Sink backpressure is the sink's problem,
// not the gate's.
package stats
