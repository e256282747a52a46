// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"errors"
	"fmt"

	"github.com/axiomhive/bark/lib/config"
	"github.com/axiomhive/bark/lib/entropy"
	"github.com/axiomhive/bark/lib/signature"
	"github.com/axiomhive/bark/lib/stats"
)

// Denial verdicts. Policy denials and operational faults both resolve
// to a deny — the gate fails closed — but callers and audit records
// can tell them apart.
var (
	// ErrInvalidArgument means a zero or absent subject handle. The
	// call never reaches entropy or signature logic.
	ErrInvalidArgument = errors.New("gate: invalid subject handle")

	// ErrEntropyCeilingExceeded is a policy denial: the system's
	// entropy level is above the configured ceiling.
	ErrEntropyCeilingExceeded = errors.New("gate: entropy ceiling exceeded")

	// ErrNotAuthorized is the task-creation and credential-change
	// denial verdict.
	ErrNotAuthorized = errors.New("gate: not authorized")

	// ErrSignatureInvalid is the binary-execution denial verdict.
	ErrSignatureInvalid = errors.New("gate: signature invalid")
)

// Stable reason strings carried on denial results and audit records.
const (
	ReasonEntropyCeiling   = "entropy ceiling exceeded"
	ReasonSignatureInvalid = "signature verification failed"
	ReasonSignatureMissing = "no signature present"
	ReasonUnresolvable     = "executable could not be resolved"
	ReasonVerifierFailure  = "verifier failure"
	ReasonInvalidArgument  = "invalid subject handle"
)

// Result reports what an authorization check observed. Ephemeral:
// consumed by the caller and the audit trail, never persisted.
type Result struct {
	// State is the subject's signature state as seen by this check.
	State signature.State

	// EntropyLevel is the entropy counter at decision time.
	EntropyLevel uint64

	// Authorized is the verdict.
	Authorized bool

	// Reason is the stable denial reason, empty on allow.
	Reason string
}

// Gate composes the entropy governor and the signature cache into
// per-event allow/deny decisions, and records every decision in the
// statistics counters and audit trail.
//
// All entry points are called synchronously from arbitrary host
// threads with no serialization between calls; nothing in the gate
// blocks.
type Gate struct {
	settings *config.Runtime
	governor *entropy.Governor
	cache    *signature.Cache
	counters *stats.Counters
	trail    *stats.Trail
}

// New wires a gate from its collaborators.
func New(settings *config.Runtime, governor *entropy.Governor, cache *signature.Cache, counters *stats.Counters, trail *stats.Trail) *Gate {
	return &Gate{
		settings: settings,
		governor: governor,
		cache:    cache,
		counters: counters,
		trail:    trail,
	}
}

// AuthorizeTaskCreation is the broad policy gate consulted when the
// host creates a new task. Entropy is checked before the signature:
// ceiling exhaustion is the cheaper check and short-circuits the
// verification path entirely.
func (g *Gate) AuthorizeTaskCreation(task signature.TaskID) (Result, error) {
	// Enforcement off is the fast path: no statistics, no audit.
	if !g.settings.Enforcing() {
		return Result{Authorized: true}, nil
	}

	if task == 0 {
		return Result{Reason: ReasonInvalidArgument}, ErrInvalidArgument
	}

	check := g.governor.CheckCeiling()
	if check.Exceeded {
		g.counters.RecordEntropyBlock()
		g.trail.EntropyExceeded(check.Level, check.Ceiling)
		return Result{
			EntropyLevel: check.Level,
			Reason:       ReasonEntropyCeiling,
		}, ErrEntropyCeilingExceeded
	}

	if err := g.cache.VerifyTask(task); err != nil {
		reason := denialReason(err)
		g.counters.RecordDenial()
		g.trail.Violation(uint64(task), "", reason)
		return Result{
			State:        stateForError(err),
			EntropyLevel: check.Level,
			Reason:       reason,
		}, fmt.Errorf("%w: %s", ErrNotAuthorized, reason)
	}

	// A created task is itself a non-determinism source: accrue its
	// entropy contribution. Denied attempts do not accrue — decay is
	// activity-coupled, so charging denied events would pin a
	// breached system above the ceiling forever.
	g.governor.RecordEvent(entropy.KindProcessCreation)

	level := g.governor.Level()
	g.counters.RecordAuthorization()
	g.trail.Authorization(uint64(task), level)
	return Result{
		State:        signature.StateValid,
		EntropyLevel: level,
		Authorized:   true,
	}, nil
}

// AuthorizeFileExecution is the narrow signature-only gate consulted
// before a binary executes. It does not consult the entropy governor:
// execution authorization is a stricter, cheaper check than the broad
// task-creation policy.
func (g *Gate) AuthorizeFileExecution(file signature.FileID) (Result, error) {
	if !g.settings.Enforcing() {
		return Result{Authorized: true}, nil
	}

	if file == "" {
		return Result{Reason: ReasonInvalidArgument}, ErrInvalidArgument
	}

	state, err := g.cache.VerifyFile(file)
	if err != nil {
		reason := denialReason(err)
		g.counters.RecordSignatureFailure()
		g.trail.Violation(0, string(file), reason)
		return Result{
			State:  state,
			Reason: reason,
		}, fmt.Errorf("%w: %s", ErrSignatureInvalid, reason)
	}

	return Result{State: state, Authorized: true}, nil
}

// AuthorizeCredentialChange gates a task changing its credentials.
// The task's current cached signature state is authoritative — no
// cache bypass, no entropy check, and no statistics increment on this
// path (it mirrors the narrow scope of execution authorization).
func (g *Gate) AuthorizeCredentialChange(task signature.TaskID) (Result, error) {
	if !g.settings.Enforcing() {
		return Result{Authorized: true}, nil
	}

	if task == 0 {
		return Result{Reason: ReasonInvalidArgument}, ErrInvalidArgument
	}

	if err := g.cache.VerifyTask(task); err != nil {
		reason := denialReason(err)
		g.trail.Violation(uint64(task), "", reason)
		return Result{
			State:  stateForError(err),
			Reason: reason,
		}, fmt.Errorf("%w: %s", ErrNotAuthorized, reason)
	}

	return Result{State: signature.StateValid, Authorized: true}, nil
}

// AuthorizeFileAccess gates ordinary file access. Access is always
// allowed once the other hooks have done their work; the event still
// accrues disk-I/O entropy so heavy file churn counts against the
// ceiling.
func (g *Gate) AuthorizeFileAccess(file signature.FileID, mask uint32) (Result, error) {
	if !g.settings.Enforcing() {
		return Result{Authorized: true}, nil
	}

	if file == "" {
		return Result{Reason: ReasonInvalidArgument}, ErrInvalidArgument
	}

	g.governor.RecordEvent(entropy.KindDiskIO)
	return Result{
		EntropyLevel: g.governor.Level(),
		Authorized:   true,
	}, nil
}

// RecordEvent feeds the entropy governor from host dispatch points
// that carry no authorization decision (network activity, timers).
func (g *Gate) RecordEvent(kind entropy.EventKind) {
	if !g.settings.Enforcing() {
		return
	}
	g.governor.RecordEvent(kind)
}

// denialReason maps a verification failure to its stable audit
// reason. Missing is distinguishable from Invalid; operational faults
// are distinguishable from both.
func denialReason(err error) string {
	switch {
	case errors.Is(err, signature.ErrSignatureMissing):
		return ReasonSignatureMissing
	case errors.Is(err, signature.ErrSignatureInvalid):
		return ReasonSignatureInvalid
	case errors.Is(err, signature.ErrSubjectUnresolvable):
		return ReasonUnresolvable
	case errors.Is(err, signature.ErrInvalidSubject):
		return ReasonInvalidArgument
	default:
		return ReasonVerifierFailure
	}
}

// stateForError reports the signature state a failed verification
// observed. Operational faults leave the subject Unknown (nothing was
// cached).
func stateForError(err error) signature.State {
	switch {
	case errors.Is(err, signature.ErrSignatureMissing):
		return signature.StateMissing
	case errors.Is(err, signature.ErrSignatureInvalid):
		return signature.StateInvalid
	default:
		return signature.StateUnknown
	}
}
