// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

// Package gate is the authorization orchestrator: the decision
// function the host consults on every gated OS event.
//
// Two independent trust signals combine into each verdict. The
// entropy governor bounds how much non-determinism the running system
// may accumulate; the signature cache answers whether the subject's
// binary carries a valid authority signature. Entropy is always
// checked first where both apply — it is the cheaper check and
// short-circuits before the verification path runs.
//
// The gate fails closed: every operational fault (unresolvable
// subject, verifier I/O error) resolves to a deny verdict, never a
// process abort, and never a cached trust verdict. Every verdict the
// gate issues is matched by exactly one statistics increment — except
// the enforcement-disabled fast path, which touches nothing by
// design.
package gate
