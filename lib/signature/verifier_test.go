// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package signature

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/axiomhive/bark/lib/codec"
)

func testKeypair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	public, private, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("generating keypair: %v", err)
	}
	return public, private
}

func testBinary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo")
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("writing test binary: %v", err)
	}
	return path
}

func TestHashFileDeterministic(t *testing.T) {
	path := testBinary(t, "#!/bin/sh\necho hello\n")

	first, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	second, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile (repeat): %v", err)
	}
	if first != second {
		t.Errorf("digests differ across runs: %s vs %s", FormatDigest(first), FormatDigest(second))
	}
	if first == (Digest{}) {
		t.Error("digest is all zeros")
	}
}

func TestHashFileDistinguishesContent(t *testing.T) {
	a, err := HashFile(testBinary(t, "content a"))
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	b, err := HashFile(testBinary(t, "content b"))
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if a == b {
		t.Error("different content produced identical digests")
	}
}

func TestSignThenVerifyValid(t *testing.T) {
	public, private := testKeypair(t)
	path := testBinary(t, "trusted payload")

	if err := SignFile(private, path); err != nil {
		t.Fatalf("SignFile: %v", err)
	}

	verifier, err := NewAuthorityVerifier(public)
	if err != nil {
		t.Fatalf("NewAuthorityVerifier: %v", err)
	}
	outcome, err := verifier.Verify(FileID(path))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if outcome.State != StateValid {
		t.Errorf("Verify state = %v, want Valid", outcome.State)
	}

	want, _ := HashFile(path)
	if outcome.Digest != want {
		t.Errorf("Verify digest = %s, want %s", FormatDigest(outcome.Digest), FormatDigest(want))
	}
}

func TestVerifyMissingSignature(t *testing.T) {
	public, _ := testKeypair(t)
	path := testBinary(t, "unsigned payload")

	verifier, err := NewAuthorityVerifier(public)
	if err != nil {
		t.Fatalf("NewAuthorityVerifier: %v", err)
	}
	outcome, err := verifier.Verify(FileID(path))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if outcome.State != StateMissing {
		t.Errorf("Verify state = %v, want Missing", outcome.State)
	}
}

func TestVerifyTamperedBinary(t *testing.T) {
	public, private := testKeypair(t)
	path := testBinary(t, "original payload")

	if err := SignFile(private, path); err != nil {
		t.Fatalf("SignFile: %v", err)
	}
	if err := os.WriteFile(path, []byte("tampered payload"), 0755); err != nil {
		t.Fatalf("tampering with binary: %v", err)
	}

	verifier, _ := NewAuthorityVerifier(public)
	outcome, err := verifier.Verify(FileID(path))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if outcome.State != StateInvalid {
		t.Errorf("Verify state = %v, want Invalid", outcome.State)
	}
}

func TestVerifyWrongAuthority(t *testing.T) {
	_, private := testKeypair(t)
	otherPublic, _ := testKeypair(t)
	path := testBinary(t, "payload")

	if err := SignFile(private, path); err != nil {
		t.Fatalf("SignFile: %v", err)
	}

	verifier, _ := NewAuthorityVerifier(otherPublic)
	outcome, err := verifier.Verify(FileID(path))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if outcome.State != StateInvalid {
		t.Errorf("Verify state = %v, want Invalid", outcome.State)
	}
}

func TestVerifyUnsupportedAlgorithm(t *testing.T) {
	public, _ := testKeypair(t)
	path := testBinary(t, "payload")

	payload, err := codec.Marshal(SignatureFile{
		Algorithm: "rsa-sha256",
		Signature: make([]byte, 64),
	})
	if err != nil {
		t.Fatalf("encoding signature file: %v", err)
	}
	if err := os.WriteFile(SignaturePath(path), payload, 0644); err != nil {
		t.Fatalf("writing signature file: %v", err)
	}

	verifier, _ := NewAuthorityVerifier(public)
	_, err = verifier.Verify(FileID(path))
	if err == nil {
		t.Fatal("Verify succeeded, want unsupported-algorithm error")
	}
	if !strings.Contains(err.Error(), "unsupported algorithm") {
		t.Errorf("Verify error = %v, want unsupported algorithm", err)
	}
}

func TestVerifyCorruptSignatureFile(t *testing.T) {
	public, _ := testKeypair(t)
	path := testBinary(t, "payload")

	if err := os.WriteFile(SignaturePath(path), []byte("not cbor"), 0644); err != nil {
		t.Fatalf("writing signature file: %v", err)
	}

	verifier, _ := NewAuthorityVerifier(public)
	if _, err := verifier.Verify(FileID(path)); err == nil {
		t.Fatal("Verify succeeded on corrupt signature file, want decode error")
	}
}

func TestNewAuthorityVerifierRejectsShortKey(t *testing.T) {
	if _, err := NewAuthorityVerifier(make([]byte, 16)); err == nil {
		t.Fatal("NewAuthorityVerifier accepted a 16-byte key")
	}
}

func TestIsAuthoritySignedRejectsShortSignature(t *testing.T) {
	public, _ := testKeypair(t)
	if IsAuthoritySigned(public, Digest{}, []byte("short")) {
		t.Error("IsAuthoritySigned accepted a truncated signature")
	}
}

func TestKeypairRoundTrip(t *testing.T) {
	dir := t.TempDir()
	public, private := testKeypair(t)

	if err := SaveKeypair(dir, public, private); err != nil {
		t.Fatalf("SaveKeypair: %v", err)
	}

	loadedPublic, loadedPrivate, err := LoadKeypair(dir)
	if err != nil {
		t.Fatalf("LoadKeypair: %v", err)
	}
	if !public.Equal(loadedPublic) {
		t.Error("loaded public key differs from saved key")
	}
	if !private.Equal(loadedPrivate) {
		t.Error("loaded private key differs from saved key")
	}

	info, err := os.Stat(filepath.Join(dir, privateKeyFile))
	if err != nil {
		t.Fatalf("stat private key: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("private key permissions = %o, want 0600", perm)
	}

	// Signatures made with the loaded key verify under the loaded
	// public key.
	message := Digest{1, 2, 3}
	sig := ed25519.Sign(loadedPrivate, message[:])
	if !IsAuthoritySigned(loadedPublic, message, sig) {
		t.Error("signature by loaded private key failed verification")
	}
}

func TestLoadPublicKeyRejectsTruncated(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, publicKeyFile), []byte("short"), 0644); err != nil {
		t.Fatalf("writing truncated key: %v", err)
	}
	if _, err := LoadPublicKey(dir); err == nil {
		t.Fatal("LoadPublicKey accepted a truncated key")
	}
}
