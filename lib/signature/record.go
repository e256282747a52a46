// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package signature

import (
	"sync"
	"sync/atomic"
	"time"
)

// TaskID is the host's opaque handle for a running process. Zero is
// never a valid handle.
type TaskID uint64

// FileID is the host's opaque handle for an executable image: its
// canonical path. Empty is never a valid handle.
type FileID string

// Digest is a 32-byte BLAKE3 content digest of a binary.
type Digest [32]byte

// fileRecord is the security record attached to a file subject.
// Created lazily on first verification, shared by every task executing
// the file.
type fileRecord struct {
	state atomic.Int32

	// hashMu guards contentHash, written once when the record leaves
	// Unknown. Readers outside the transition see it only through
	// snapshots taken after a terminal-state load.
	hashMu      sync.Mutex
	contentHash Digest
}

func (r *fileRecord) State() State {
	return State(r.state.Load())
}

// transition moves the record out of Unknown. Returns the record's
// state after the call: the given state if this caller won the race,
// or the earlier winner's state otherwise.
func (r *fileRecord) transition(to State, hash Digest) State {
	if r.state.CompareAndSwap(int32(StateUnknown), int32(to)) {
		r.hashMu.Lock()
		r.contentHash = hash
		r.hashMu.Unlock()
		return to
	}
	return r.State()
}

func (r *fileRecord) digest() Digest {
	r.hashMu.Lock()
	defer r.hashMu.Unlock()
	return r.contentHash
}

// taskRecord is the security record attached to a task subject. Owned
// by the task's lifetime; destroyed when the host reports task
// termination.
type taskRecord struct {
	state atomic.Int32

	// authorizedAt is the Unix-nano timestamp of the most recent
	// successful verification of this task. Zero until first success.
	authorizedAt atomic.Int64

	// authorizationCount counts successful verifications, including
	// cached fast-path hits.
	authorizationCount atomic.Uint32

	// isAuthorityProcess is set once the task's binary is known to be
	// authority-signed.
	isAuthorityProcess atomic.Bool
}

func (r *taskRecord) State() State {
	return State(r.state.Load())
}

func (r *taskRecord) markAuthorized(now time.Time) {
	r.state.CompareAndSwap(int32(StateUnknown), int32(StateValid))
	r.authorizedAt.Store(now.UnixNano())
	r.authorizationCount.Add(1)
	r.isAuthorityProcess.Store(true)
}

// TaskInfo is a point-in-time snapshot of a task's security record.
type TaskInfo struct {
	State              State
	AuthorizedAt       time.Time
	AuthorizationCount uint32
	IsAuthorityProcess bool
}

// FileInfo is a point-in-time snapshot of a file's security record.
type FileInfo struct {
	State       State
	ContentHash Digest
}
