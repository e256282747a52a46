// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

// Package control provides the Unix-socket request/response transport
// for the barkd control surface.
//
// The protocol is one CBOR request per connection: the client writes
// a request, the server processes it and writes a CBOR response, then
// the connection closes. CBOR is self-delimiting so no framing is
// needed. Action handlers are registered by name before the server
// starts; unknown actions receive an error response.
//
// This transport carries only control traffic — tunables, statistics,
// and host dispatcher probes. The gate core never waits on it: a slow
// or absent control client cannot affect authorization latency.
package control
