// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package signature

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/axiomhive/bark/lib/clock"
)

// Verifier is the external verification capability. Given a file
// subject, it produces a terminal signature state plus the content
// digest it computed along the way.
//
// A Verifier must be deterministic for given file content: concurrent
// calls for the same subject must compute the same state. It may be
// slow (it reads and hashes the whole binary); the Cache guarantees it
// is consulted at most once per file subject unless the subject is
// released and recreated.
//
// Operational faults (I/O error, hash failure, unsupported algorithm)
// are returned as errors and are never cached. A trust verdict —
// Valid, Invalid, or Missing — is returned as an Outcome with a nil
// error.
type Verifier interface {
	Verify(file FileID) (Outcome, error)
}

// Outcome is a verifier's trust verdict for one file.
type Outcome struct {
	// State is Valid, Invalid, or Missing. Never Unknown on a nil
	// error.
	State State

	// Digest is the BLAKE3 content digest of the binary. May be zero
	// for stub verifiers.
	Digest Digest
}

// ExeResolver resolves a task handle to its executable image. This is
// an external host lookup: the gate does not know how the host tracks
// process images.
type ExeResolver interface {
	// ExecutablePath returns the canonical path of the task's
	// executable. A "no such entity" condition must be reported as
	// an error wrapping fs.ErrNotExist.
	ExecutablePath(task TaskID) (string, error)
}

// ProcResolver resolves tasks via the /proc filesystem. This is the
// production resolver on Linux hosts.
type ProcResolver struct{}

// ExecutablePath reads /proc/<pid>/exe. A vanished process surfaces
// as fs.ErrNotExist, which the cache maps to ErrSubjectUnresolvable.
func (ProcResolver) ExecutablePath(task TaskID) (string, error) {
	path, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", task))
	if err != nil {
		return "", fmt.Errorf("resolving executable for task %d: %w", task, err)
	}
	return path, nil
}

// Cache is the per-subject verification cache. It owns the side
// tables mapping subject handles to security records and guarantees
// the at-most-one-verification property.
//
// All methods are safe for fully concurrent use. Lookups on the
// steady state (already-verified subjects) take no locks.
type Cache struct {
	verifier Verifier
	resolver ExeResolver
	clock    clock.Clock

	files sync.Map // FileID -> *fileRecord
	tasks sync.Map // TaskID -> *taskRecord
}

// NewCache builds a cache around the given external capabilities.
func NewCache(verifier Verifier, resolver ExeResolver, clk clock.Clock) *Cache {
	return &Cache{
		verifier: verifier,
		resolver: resolver,
		clock:    clk,
	}
}

// VerifyFile returns the file's signature state, consulting the
// external verifier only if the cached state is Unknown. The error is
// nil exactly when the state is Valid; a terminal Invalid or Missing
// state is reported via ErrSignatureInvalid or ErrSignatureMissing so
// callers can log distinguishable reasons.
func (c *Cache) VerifyFile(file FileID) (State, error) {
	if file == "" {
		return StateUnknown, ErrInvalidSubject
	}

	record := c.fileRecord(file)
	state := record.State()

	if state == StateUnknown {
		outcome, err := c.verifier.Verify(file)
		if err != nil {
			// Operational fault: leave the record Unknown so the
			// next event retries.
			return StateUnknown, fmt.Errorf("verifying %s: %w", file, err)
		}
		if !outcome.State.Terminal() {
			return StateUnknown, fmt.Errorf("verifying %s: verifier returned non-terminal state %v", file, outcome.State)
		}
		state = record.transition(outcome.State, outcome.Digest)
	}

	switch state {
	case StateValid:
		return state, nil
	case StateMissing:
		return state, ErrSignatureMissing
	default:
		return state, ErrSignatureInvalid
	}
}

// VerifyTask verifies the task's executable signature. A task whose
// record is already Valid returns immediately; otherwise the task's
// executable is resolved and verified through the file cache, and a
// success is cached into the task record.
//
// An unresolvable executable fails with ErrSubjectUnresolvable — a
// distinct, uncached failure mode, not a trust verdict.
func (c *Cache) VerifyTask(task TaskID) error {
	if task == 0 {
		return ErrInvalidSubject
	}

	record := c.taskRecord(task)
	if record.State() == StateValid {
		record.markAuthorized(c.clock.Now())
		return nil
	}

	path, err := c.resolver.ExecutablePath(task)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("task %d: %w", task, ErrSubjectUnresolvable)
		}
		return fmt.Errorf("task %d: %w", task, err)
	}

	if _, err := c.VerifyFile(FileID(path)); err != nil {
		return err
	}

	record.markAuthorized(c.clock.Now())
	return nil
}

// ReleaseTask destroys the task's security record. Called when the
// host reports task termination. A later task reusing the same handle
// starts from a fresh Unknown record.
func (c *Cache) ReleaseTask(task TaskID) {
	c.tasks.Delete(task)
}

// ReleaseFile destroys the file's security record. Called when the
// host reports the file object destroyed (or the binary replaced).
func (c *Cache) ReleaseFile(file FileID) {
	c.files.Delete(file)
}

// TaskInfo returns a snapshot of the task's record, or false if the
// task has never been seen.
func (c *Cache) TaskInfo(task TaskID) (TaskInfo, bool) {
	value, ok := c.tasks.Load(task)
	if !ok {
		return TaskInfo{}, false
	}
	record := value.(*taskRecord)
	info := TaskInfo{
		State:              record.State(),
		AuthorizationCount: record.authorizationCount.Load(),
		IsAuthorityProcess: record.isAuthorityProcess.Load(),
	}
	if nanos := record.authorizedAt.Load(); nanos != 0 {
		info.AuthorizedAt = timeFromNanos(nanos)
	}
	return info, true
}

// FileInfo returns a snapshot of the file's record, or false if the
// file has never been seen.
func (c *Cache) FileInfo(file FileID) (FileInfo, bool) {
	value, ok := c.files.Load(file)
	if !ok {
		return FileInfo{}, false
	}
	record := value.(*fileRecord)
	return FileInfo{
		State:       record.State(),
		ContentHash: record.digest(),
	}, true
}

func timeFromNanos(nanos int64) time.Time {
	return time.Unix(0, nanos)
}

func (c *Cache) fileRecord(file FileID) *fileRecord {
	if value, ok := c.files.Load(file); ok {
		return value.(*fileRecord)
	}
	value, _ := c.files.LoadOrStore(file, &fileRecord{})
	return value.(*fileRecord)
}

func (c *Cache) taskRecord(task TaskID) *taskRecord {
	if value, ok := c.tasks.Load(task); ok {
		return value.(*taskRecord)
	}
	value, _ := c.tasks.LoadOrStore(task, &taskRecord{})
	return value.(*taskRecord)
}
