// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for testability.
//
// Production code accepts a Clock parameter instead of calling
// time.Now directly. Real() provides standard library behavior;
// Fake() provides a deterministic clock that advances only when
// Advance is called. Audit timestamps and task authorization records
// are the main consumers: with a FakeClock, tests assert exact
// timestamps instead of windowing around wall-clock reads.
package clock
