// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

// Package signature decides whether a binary carries a valid authority
// signature, and caches that decision per subject.
//
// A subject is either a task (a running process, identified by its
// host pid) or a file (an executable image, identified by canonical
// path). The gate never owns subject lifetime — it attaches a security
// record to each subject it sees and drops the record when the host
// reports the subject destroyed.
//
// Per-subject state follows a one-way machine: Unknown is the only
// state that permits a transition, and the transition target (Valid,
// Invalid, or Missing) is terminal for the subject's lifetime. The
// Unknown→terminal edge is a compare-and-swap, so concurrent
// verifications racing on the same subject converge without locking;
// the external verifier is deterministic for given file content, so
// racers compute the same state.
//
// The expensive work — hashing the binary, checking the Ed25519
// signature — happens at most once per file. Every task executing the
// same binary shares the file record, so verification cost is
// amortized across them. Operational failures (I/O errors, hash
// failures, unresolvable executables) are never cached: a transient
// fault must not permanently brand a subject as untrusted.
package signature
