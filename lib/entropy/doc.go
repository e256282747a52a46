// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

// Package entropy tracks the system's accumulated non-determinism
// score and enforces a configurable ceiling on it.
//
// "Entropy" here is not information-theoretic entropy: it is an
// abstract counter of how much non-deterministic activity (process
// creation, network and disk I/O, timers) the gated system has seen.
// Each gated event adds a fixed per-category delta, and every update
// also removes one unit of decay, so the counter trends back toward
// zero only while the system is active. An idle system's entropy is
// frozen, not decayed — decay is coupled to activity, not wall-clock
// time.
//
// The counter is a single process-wide atomic. It is mutated by any
// goroutine handling any gated event, and callers may be on paths
// where blocking is unacceptable (the host's process-creation path),
// so the Governor never takes a lock.
package entropy
