// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package stats

import "sync/atomic"

// Counters are the four monotonic decision counters. Lifecycle is the
// gate's active period; they reset only with full reinitialization.
type Counters struct {
	authorizations    atomic.Uint64
	denials           atomic.Uint64
	entropyBlocks     atomic.Uint64
	signatureFailures atomic.Uint64
}

// RecordAuthorization counts one allowed task creation.
func (c *Counters) RecordAuthorization() { c.authorizations.Add(1) }

// RecordDenial counts one denied task creation attributable to a
// failed signature check.
func (c *Counters) RecordDenial() { c.denials.Add(1) }

// RecordEntropyBlock counts one denied event attributable to a
// ceiling breach. Incremented by the orchestrator, never by the
// entropy governor — the governor's ceiling check is also consulted
// for diagnostics, and counting there would double-count.
func (c *Counters) RecordEntropyBlock() { c.entropyBlocks.Add(1) }

// RecordSignatureFailure counts one denied binary execution.
func (c *Counters) RecordSignatureFailure() { c.signatureFailures.Add(1) }

// Authorizations returns the allowed task creation count.
func (c *Counters) Authorizations() uint64 { return c.authorizations.Load() }

// Denials returns the signature-denied task creation count.
func (c *Counters) Denials() uint64 { return c.denials.Load() }

// EntropyBlocks returns the ceiling-denied event count.
func (c *Counters) EntropyBlocks() uint64 { return c.entropyBlocks.Load() }

// SignatureFailures returns the denied binary execution count.
func (c *Counters) SignatureFailures() uint64 { return c.signatureFailures.Load() }

// Snapshot is a point-in-time copy of all four counters, used by the
// control surface's read-only stats exposure.
type Snapshot struct {
	Authorizations    uint64 `cbor:"1,keyasint"`
	Denials           uint64 `cbor:"2,keyasint"`
	EntropyBlocks     uint64 `cbor:"3,keyasint"`
	SignatureFailures uint64 `cbor:"4,keyasint"`
}

// Snapshot reads all four counters. The reads are individually atomic
// but not mutually consistent; the exposure is diagnostic, not
// transactional.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Authorizations:    c.Authorizations(),
		Denials:           c.Denials(),
		EntropyBlocks:     c.EntropyBlocks(),
		SignatureFailures: c.SignatureFailures(),
	}
}
