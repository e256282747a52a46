// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package signature

import "errors"

// State is a subject's cached signature verification state.
type State int32

const (
	// StateUnknown means the subject has not been verified yet. This
	// is the only state from which a transition is permitted.
	StateUnknown State = iota

	// StateValid means the binary's signature verified under the
	// authority key. Terminal.
	StateValid

	// StateInvalid means a signature was present but did not verify.
	// Terminal.
	StateInvalid

	// StateMissing means no signature was present at all. Terminal.
	// Treated like Invalid for authorization, but logged with a
	// distinguishable reason.
	StateMissing
)

// String returns the state name used in audit output.
func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateInvalid:
		return "invalid"
	case StateMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state permits no further transitions.
func (s State) Terminal() bool {
	return s == StateValid || s == StateInvalid || s == StateMissing
}

// Trust failures and operational failures are distinct error
// families: the former are cached verdicts about the subject, the
// latter are transient faults that are safe to retry on the next
// gated event.
var (
	// ErrSignatureInvalid means the binary's signature did not verify
	// under the authority key.
	ErrSignatureInvalid = errors.New("signature: binary signature invalid")

	// ErrSignatureMissing means the binary carries no signature.
	ErrSignatureMissing = errors.New("signature: binary signature missing")

	// ErrSubjectUnresolvable means the task's executable could not be
	// located. Not cached; the next event retries.
	ErrSubjectUnresolvable = errors.New("signature: subject executable unresolvable")

	// ErrInvalidSubject means a zero or empty subject handle.
	ErrInvalidSubject = errors.New("signature: invalid subject handle")
)
