// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"github.com/axiomhive/bark/lib/stats"
)

// Actions accepted by the control socket. The authorize actions are
// the host event dispatcher's entry points; the rest are the
// administrative surface.
const (
	ActionAuthorizeTask       = "authorize-task"
	ActionAuthorizeExec       = "authorize-exec"
	ActionAuthorizeCredChange = "authorize-cred-change"
	ActionAuthorizeFileAccess = "authorize-file-access"
	ActionEntropyEvent        = "entropy-event"
	ActionEntropyLevel        = "entropy-level"
	ActionEntropyReset        = "entropy-reset"
	ActionEnforce             = "enforce"
	ActionCeiling             = "ceiling"
	ActionVerbose             = "verbose"
	ActionStats               = "stats"
	ActionEvents              = "events"
	ActionVersion             = "version"
)

// Request is the envelope for every control socket request. Only the
// fields relevant to the action are set.
type Request struct {
	// Action selects the handler.
	Action string `cbor:"action"`

	// Task is the subject task handle for task-scoped actions.
	Task uint64 `cbor:"task,omitempty"`

	// File is the subject file handle for file-scoped actions.
	File string `cbor:"file,omitempty"`

	// Mask is the access mask for authorize-file-access.
	Mask uint32 `cbor:"mask,omitempty"`

	// Kind is the event category name for entropy-event.
	Kind string `cbor:"kind,omitempty"`

	// Set indicates a write on the tunable actions (enforce,
	// ceiling, verbose); when false the current value is returned.
	Set bool `cbor:"set,omitempty"`

	// Enabled is the new flag value for enforce and verbose writes.
	Enabled bool `cbor:"enabled,omitempty"`

	// Value is the new ceiling for ceiling writes, and the maximum
	// event count for events reads.
	Value uint64 `cbor:"value,omitempty"`
}

// Verdict is the response payload for the authorize actions.
type Verdict struct {
	Authorized   bool   `cbor:"1,keyasint"`
	State        string `cbor:"2,keyasint"`
	EntropyLevel uint64 `cbor:"3,keyasint"`
	Reason       string `cbor:"4,keyasint,omitempty"`
}

// Entropy is the response payload for entropy-level.
type Entropy struct {
	Level   uint64 `cbor:"1,keyasint"`
	Ceiling uint64 `cbor:"2,keyasint"`
}

// Flag is the response payload for enforce and verbose.
type Flag struct {
	Enabled bool `cbor:"1,keyasint"`
}

// Ceiling is the response payload for ceiling.
type Ceiling struct {
	Value uint64 `cbor:"1,keyasint"`
}

// Stats is the response payload for stats.
type Stats struct {
	Counters stats.Snapshot `cbor:"1,keyasint"`

	// AuditDropped is the number of audit events discarded because
	// the delivery queue was full.
	AuditDropped uint64 `cbor:"2,keyasint"`
}

// Events is the response payload for events: recent audit records,
// oldest first.
type Events struct {
	Events []stats.Event `cbor:"1,keyasint"`

	// TotalEmitted counts every event ever emitted, including those
	// no longer retained.
	TotalEmitted uint64 `cbor:"2,keyasint"`
}

// Version is the response payload for version.
type Version struct {
	Version string `cbor:"1,keyasint"`

	// Authority is the static identity string of the signing
	// authority.
	Authority string `cbor:"2,keyasint"`
}
