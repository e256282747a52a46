// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package config

import "sync/atomic"

// Runtime holds the tunable gate parameters. All fields are read on
// the authorization hot path from arbitrary host threads, so each is
// a single atomic rather than a mutex-guarded aggregate. Writes come
// only from the control surface.
type Runtime struct {
	enforce atomic.Bool
	ceiling atomic.Uint64
	verbose atomic.Bool
}

// NewRuntime seeds the tunables from the static configuration.
func NewRuntime(cfg Config) *Runtime {
	r := &Runtime{}
	r.enforce.Store(cfg.Enforce)
	r.ceiling.Store(cfg.MaxEntropy)
	r.verbose.Store(cfg.Verbose)
	return r
}

// Enforcing reports whether the gate is in enforcement mode. When
// false, every authorization request short-circuits to allow.
func (r *Runtime) Enforcing() bool { return r.enforce.Load() }

// SetEnforcing flips enforcement mode.
func (r *Runtime) SetEnforcing(on bool) { r.enforce.Store(on) }

// Ceiling returns the current entropy ceiling.
func (r *Runtime) Ceiling() uint64 { return r.ceiling.Load() }

// SetCeiling replaces the entropy ceiling.
func (r *Runtime) SetCeiling(limit uint64) { r.ceiling.Store(limit) }

// Verbose reports whether audit emitters produce output.
func (r *Runtime) Verbose() bool { return r.verbose.Load() }

// SetVerbose flips verbose audit logging.
func (r *Runtime) SetVerbose(on bool) { r.verbose.Store(on) }
