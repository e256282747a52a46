// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec wraps the CBOR encoder and decoder used for all BARK
// wire formats: control-socket requests and responses, and detached
// signature files. Encoding is Core Deterministic Encoding (RFC 8949
// §4.2) so the same logical data always produces identical bytes —
// signature files in particular must be byte-stable. Consumers import
// only this package, never fxamacker/cbor directly.
package codec
