// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for BARK packages.
//
// [TempBinary] writes a fixture "binary" to a temporary directory so
// signature and gate tests can exercise real hashing and detached
// signature files without shipping binary testdata.
//
// [StubVerifier] and [StaticResolver] are canned implementations of
// the external capabilities the signature cache depends on. The stub
// verifier counts invocations — the cache-coherency properties are
// all phrased as "the external verifier is called at most once".
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
