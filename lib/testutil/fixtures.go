// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/axiomhive/bark/lib/signature"
)

// TempBinary writes content to a file in a fresh temporary directory
// and returns its path. The directory is removed when the test
// completes.
func TempBinary(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0755); err != nil {
		t.Fatalf("writing fixture binary %s: %v", path, err)
	}
	return path
}

// StubVerifier returns a fixed outcome (or error) and counts calls.
// Safe for concurrent use.
type StubVerifier struct {
	// Outcome is returned when Err is nil.
	Outcome signature.Outcome

	// Err, if set, is returned as an operational failure.
	Err error

	calls atomic.Uint64
}

// Verify returns the canned result and increments the call count.
func (v *StubVerifier) Verify(file signature.FileID) (signature.Outcome, error) {
	v.calls.Add(1)
	if v.Err != nil {
		return signature.Outcome{}, v.Err
	}
	return v.Outcome, nil
}

// Calls returns the number of Verify invocations.
func (v *StubVerifier) Calls() uint64 {
	return v.calls.Load()
}

// StaticResolver maps task handles to executable paths from a fixed
// table. Tasks absent from the table resolve as not-exist, which the
// cache reports as an unresolvable subject.
type StaticResolver map[signature.TaskID]string

// ExecutablePath looks the task up in the table.
func (r StaticResolver) ExecutablePath(task signature.TaskID) (string, error) {
	path, ok := r[task]
	if !ok {
		return "", os.ErrNotExist
	}
	return path, nil
}
