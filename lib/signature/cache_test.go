// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package signature_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/axiomhive/bark/lib/clock"
	"github.com/axiomhive/bark/lib/signature"
	"github.com/axiomhive/bark/lib/testutil"
)

func validOutcome() signature.Outcome {
	var digest signature.Digest
	for i := range digest {
		digest[i] = byte(i)
	}
	return signature.Outcome{State: signature.StateValid, Digest: digest}
}

func TestVerifyFileCachesTerminalState(t *testing.T) {
	verifier := &testutil.StubVerifier{Outcome: validOutcome()}
	cache := signature.NewCache(verifier, testutil.StaticResolver{}, clock.Real())

	for i := 0; i < 5; i++ {
		state, err := cache.VerifyFile("/usr/bin/demo")
		if err != nil {
			t.Fatalf("VerifyFile call %d: %v", i, err)
		}
		if state != signature.StateValid {
			t.Fatalf("VerifyFile call %d = %v, want Valid", i, state)
		}
	}

	if calls := verifier.Calls(); calls != 1 {
		t.Errorf("verifier called %d times, want 1", calls)
	}
}

func TestVerifyFileMissingSignature(t *testing.T) {
	verifier := &testutil.StubVerifier{
		Outcome: signature.Outcome{State: signature.StateMissing},
	}
	cache := signature.NewCache(verifier, testutil.StaticResolver{}, clock.Real())

	state, err := cache.VerifyFile("/usr/bin/unsigned")
	if !errors.Is(err, signature.ErrSignatureMissing) {
		t.Errorf("VerifyFile error = %v, want ErrSignatureMissing", err)
	}
	if state != signature.StateMissing {
		t.Errorf("VerifyFile state = %v, want Missing", state)
	}

	// Missing is terminal: the verifier is not consulted again.
	cache.VerifyFile("/usr/bin/unsigned")
	if calls := verifier.Calls(); calls != 1 {
		t.Errorf("verifier called %d times, want 1", calls)
	}
}

func TestVerifyFileInvalidSignature(t *testing.T) {
	verifier := &testutil.StubVerifier{
		Outcome: signature.Outcome{State: signature.StateInvalid},
	}
	cache := signature.NewCache(verifier, testutil.StaticResolver{}, clock.Real())

	_, err := cache.VerifyFile("/usr/bin/tampered")
	if !errors.Is(err, signature.ErrSignatureInvalid) {
		t.Errorf("VerifyFile error = %v, want ErrSignatureInvalid", err)
	}
}

func TestVerifyFileEmptySubject(t *testing.T) {
	cache := signature.NewCache(&testutil.StubVerifier{}, testutil.StaticResolver{}, clock.Real())
	if _, err := cache.VerifyFile(""); !errors.Is(err, signature.ErrInvalidSubject) {
		t.Errorf("VerifyFile(\"\") error = %v, want ErrInvalidSubject", err)
	}
}

func TestVerifyFileOperationalErrorNotCached(t *testing.T) {
	verifier := &testutil.StubVerifier{Err: errors.New("disk on fire")}
	cache := signature.NewCache(verifier, testutil.StaticResolver{}, clock.Real())

	if _, err := cache.VerifyFile("/usr/bin/demo"); err == nil {
		t.Fatal("VerifyFile succeeded, want operational error")
	}
	if info, ok := cache.FileInfo("/usr/bin/demo"); !ok || info.State != signature.StateUnknown {
		t.Errorf("FileInfo after fault = %+v (ok=%v), want Unknown record", info, ok)
	}

	// Fault clears: the next event retries and succeeds.
	verifier.Err = nil
	verifier.Outcome = validOutcome()
	state, err := cache.VerifyFile("/usr/bin/demo")
	if err != nil || state != signature.StateValid {
		t.Errorf("VerifyFile after fault cleared = %v, %v; want Valid, nil", state, err)
	}
	if calls := verifier.Calls(); calls != 2 {
		t.Errorf("verifier called %d times, want 2", calls)
	}
}

func TestVerifyTaskCachesSuccess(t *testing.T) {
	verifier := &testutil.StubVerifier{Outcome: validOutcome()}
	resolver := testutil.StaticResolver{42: "/usr/bin/demo"}
	fake := clock.Fake(time.Unix(1000, 0))
	cache := signature.NewCache(verifier, resolver, fake)

	if err := cache.VerifyTask(42); err != nil {
		t.Fatalf("VerifyTask: %v", err)
	}
	fake.Advance(time.Minute)
	if err := cache.VerifyTask(42); err != nil {
		t.Fatalf("VerifyTask (cached): %v", err)
	}
	if calls := verifier.Calls(); calls != 1 {
		t.Errorf("verifier called %d times, want 1", calls)
	}

	info, ok := cache.TaskInfo(42)
	if !ok {
		t.Fatal("TaskInfo(42) missing after authorization")
	}
	if info.State != signature.StateValid {
		t.Errorf("TaskInfo.State = %v, want Valid", info.State)
	}
	if info.AuthorizationCount != 2 {
		t.Errorf("TaskInfo.AuthorizationCount = %d, want 2", info.AuthorizationCount)
	}
	if want := time.Unix(1000, 0).Add(time.Minute); !info.AuthorizedAt.Equal(want) {
		t.Errorf("TaskInfo.AuthorizedAt = %v, want %v", info.AuthorizedAt, want)
	}
}

func TestVerifyTaskUnresolvable(t *testing.T) {
	verifier := &testutil.StubVerifier{Outcome: validOutcome()}
	cache := signature.NewCache(verifier, testutil.StaticResolver{}, clock.Real())

	err := cache.VerifyTask(99)
	if !errors.Is(err, signature.ErrSubjectUnresolvable) {
		t.Errorf("VerifyTask error = %v, want ErrSubjectUnresolvable", err)
	}
	if calls := verifier.Calls(); calls != 0 {
		t.Errorf("verifier called %d times, want 0", calls)
	}
}

func TestVerifyTaskZeroHandle(t *testing.T) {
	cache := signature.NewCache(&testutil.StubVerifier{}, testutil.StaticResolver{}, clock.Real())
	if err := cache.VerifyTask(0); !errors.Is(err, signature.ErrInvalidSubject) {
		t.Errorf("VerifyTask(0) error = %v, want ErrInvalidSubject", err)
	}
}

func TestVerifyTaskSharedBinary(t *testing.T) {
	verifier := &testutil.StubVerifier{Outcome: validOutcome()}
	resolver := testutil.StaticResolver{
		1: "/usr/bin/shared",
		2: "/usr/bin/shared",
		3: "/usr/bin/shared",
		4: "/usr/bin/shared",
		5: "/usr/bin/shared",
	}
	cache := signature.NewCache(verifier, resolver, clock.Real())

	for task := signature.TaskID(1); task <= 5; task++ {
		if err := cache.VerifyTask(task); err != nil {
			t.Fatalf("VerifyTask(%d): %v", task, err)
		}
	}
	if calls := verifier.Calls(); calls != 1 {
		t.Errorf("verifier called %d times for shared binary, want 1", calls)
	}
}

func TestReleaseTaskForcesReverification(t *testing.T) {
	verifier := &testutil.StubVerifier{Outcome: validOutcome()}
	resolver := testutil.StaticResolver{7: "/usr/bin/demo"}
	cache := signature.NewCache(verifier, resolver, clock.Real())

	if err := cache.VerifyTask(7); err != nil {
		t.Fatalf("VerifyTask: %v", err)
	}
	cache.ReleaseTask(7)
	if _, ok := cache.TaskInfo(7); ok {
		t.Error("TaskInfo(7) still present after release")
	}

	// The file record survives, so a reused handle verifies against
	// the cached file state without another verifier call.
	if err := cache.VerifyTask(7); err != nil {
		t.Fatalf("VerifyTask after release: %v", err)
	}
	if calls := verifier.Calls(); calls != 1 {
		t.Errorf("verifier called %d times, want 1", calls)
	}
}

func TestReleaseFileForcesReverification(t *testing.T) {
	verifier := &testutil.StubVerifier{Outcome: validOutcome()}
	cache := signature.NewCache(verifier, testutil.StaticResolver{}, clock.Real())

	if _, err := cache.VerifyFile("/usr/bin/demo"); err != nil {
		t.Fatalf("VerifyFile: %v", err)
	}
	cache.ReleaseFile("/usr/bin/demo")
	if _, err := cache.VerifyFile("/usr/bin/demo"); err != nil {
		t.Fatalf("VerifyFile after release: %v", err)
	}
	if calls := verifier.Calls(); calls != 2 {
		t.Errorf("verifier called %d times, want 2", calls)
	}
}

func TestConcurrentVerifyConverges(t *testing.T) {
	verifier := &testutil.StubVerifier{Outcome: validOutcome()}
	cache := signature.NewCache(verifier, testutil.StaticResolver{}, clock.Real())

	const goroutines = 32
	var wg sync.WaitGroup
	states := make([]signature.State, goroutines)
	errs := make([]error, goroutines)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			states[g], errs[g] = cache.VerifyFile("/usr/bin/hot")
		}(g)
	}
	wg.Wait()

	for g := 0; g < goroutines; g++ {
		if errs[g] != nil {
			t.Fatalf("goroutine %d: %v", g, errs[g])
		}
		if states[g] != signature.StateValid {
			t.Fatalf("goroutine %d state = %v, want Valid", g, states[g])
		}
	}

	// Racing verifications may each consult the verifier, but the
	// record settles on exactly one terminal state.
	info, ok := cache.FileInfo("/usr/bin/hot")
	if !ok || info.State != signature.StateValid {
		t.Errorf("FileInfo = %+v (ok=%v), want Valid", info, ok)
	}
}
