// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

// Package ipc defines the CBOR message types for the barkd control
// socket. Both cmd/barkd and cmd/bark import this package so the wire
// types are defined once rather than mirrored.
package ipc
