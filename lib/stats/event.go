// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"log/slog"
	"time"
)

// EventKind distinguishes the three audit message shapes.
type EventKind int

const (
	// EventAuthorization is an allowed task creation.
	EventAuthorization EventKind = iota

	// EventViolation is a denied event with a reason.
	EventViolation

	// EventEntropyExceeded is an entropy ceiling breach.
	EventEntropyExceeded
)

// String returns the audit event kind name.
func (k EventKind) String() string {
	switch k {
	case EventAuthorization:
		return "authorization"
	case EventViolation:
		return "violation"
	case EventEntropyExceeded:
		return "entropy-exceeded"
	default:
		return "unknown"
	}
}

// Event is one fully-formed audit record. Fields not relevant to the
// event's kind are zero.
type Event struct {
	Kind EventKind `cbor:"1,keyasint"`

	// Task is the subject task handle, zero when the subject is a
	// file.
	Task uint64 `cbor:"2,keyasint,omitempty"`

	// File is the subject file handle, empty when the subject is a
	// task.
	File string `cbor:"3,keyasint,omitempty"`

	// Reason is the stable denial reason for violations.
	Reason string `cbor:"4,keyasint,omitempty"`

	// Level is the observed entropy level.
	Level uint64 `cbor:"5,keyasint,omitempty"`

	// Ceiling is the configured ceiling for entropy breaches.
	Ceiling uint64 `cbor:"6,keyasint,omitempty"`

	// Time is when the decision was made.
	Time time.Time `cbor:"7,keyasint"`
}

// Sink receives fully-formed audit events. Delivery is best-effort:
// implementations must not block — the Trail calls Emit from a single
// drain goroutine, but a stalled sink still delays later events.
type Sink interface {
	Emit(event Event)
}

// LogSink writes audit events as structured log records.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink builds a sink over the given logger. A nil logger uses
// slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Emit logs one event. Authorizations log at Debug (they are the
// common case), violations and breaches at Warn.
func (s *LogSink) Emit(event Event) {
	attrs := []any{"time", event.Time}
	if event.Task != 0 {
		attrs = append(attrs, "task", event.Task)
	}
	if event.File != "" {
		attrs = append(attrs, "file", event.File)
	}

	switch event.Kind {
	case EventAuthorization:
		attrs = append(attrs, "entropy", event.Level)
		s.logger.Debug("task authorized", attrs...)
	case EventViolation:
		attrs = append(attrs, "reason", event.Reason)
		s.logger.Warn("authorization violation", attrs...)
	case EventEntropyExceeded:
		attrs = append(attrs, "level", event.Level, "ceiling", event.Ceiling)
		s.logger.Warn("entropy ceiling exceeded", attrs...)
	}
}

// MultiSink fans one event out to several sinks in order.
type MultiSink []Sink

// Emit delivers the event to every sink.
func (m MultiSink) Emit(event Event) {
	for _, sink := range m {
		sink.Emit(event)
	}
}
