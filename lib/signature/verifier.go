// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package signature

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/zeebo/blake3"

	"github.com/axiomhive/bark/lib/codec"
)

// Algorithm identifies the signing scheme: Ed25519 over a keyed
// BLAKE3-256 content digest.
const Algorithm = "ed25519-blake3"

// SignatureSuffix is appended to a binary's path to locate its
// detached signature file.
const SignatureSuffix = ".barksig"

// binaryDomainKey is the 32-byte BLAKE3 keyed-hash domain key for
// binary content digests. Fixed constant — changing it invalidates
// every existing signature. The bytes are the ASCII domain name,
// zero-padded, so the key is inspectable in hex dumps.
var binaryDomainKey = [32]byte{
	'b', 'a', 'r', 'k', '.', 'b', 'i', 'n', 'a', 'r', 'y',
}

// SignatureFile is the CBOR payload of a detached .barksig file.
type SignatureFile struct {
	// Algorithm names the signing scheme. Anything other than
	// [Algorithm] is an operational error (unsupported algorithm),
	// not an invalid signature.
	Algorithm string `cbor:"1,keyasint"`

	// Signature is the 64-byte Ed25519 signature over the binary's
	// content digest.
	Signature []byte `cbor:"2,keyasint"`
}

// HashFile computes the keyed BLAKE3 content digest of the file at
// path. The file is streamed through the hasher so memory usage is
// constant regardless of binary size.
func HashFile(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher, err := blake3.NewKeyed(binaryDomainKey[:])
	if err != nil {
		panic("signature: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	if _, err := io.Copy(hasher, file); err != nil {
		return Digest{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// FormatDigest returns the hex-encoded form of a content digest, the
// canonical format for audit output and CLI display.
func FormatDigest(digest Digest) string {
	return hex.EncodeToString(digest[:])
}

// IsAuthoritySigned reports whether sig is a valid authority
// signature over the given content digest. Pure predicate over the
// supplied key material; touches no cache.
func IsAuthoritySigned(publicKey ed25519.PublicKey, digest Digest, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(publicKey, digest[:], sig)
}

// SignaturePath returns the detached signature path for a binary.
func SignaturePath(binaryPath string) string {
	return binaryPath + SignatureSuffix
}

// SignFile computes the binary's content digest, signs it with the
// authority private key, and writes the detached signature next to
// the binary. Used by the signing workstation tooling, never by the
// gate itself.
func SignFile(privateKey ed25519.PrivateKey, binaryPath string) error {
	digest, err := HashFile(binaryPath)
	if err != nil {
		return err
	}

	payload, err := codec.Marshal(SignatureFile{
		Algorithm: Algorithm,
		Signature: ed25519.Sign(privateKey, digest[:]),
	})
	if err != nil {
		return fmt.Errorf("encoding signature for %s: %w", binaryPath, err)
	}

	if err := os.WriteFile(SignaturePath(binaryPath), payload, 0644); err != nil {
		return fmt.Errorf("writing signature for %s: %w", binaryPath, err)
	}
	return nil
}

// AuthorityVerifier is the production Verifier: keyed BLAKE3 content
// digest checked against a detached Ed25519 signature under the
// authority public key.
type AuthorityVerifier struct {
	publicKey ed25519.PublicKey
}

// NewAuthorityVerifier builds a verifier for the given authority
// public key.
func NewAuthorityVerifier(publicKey ed25519.PublicKey) (*AuthorityVerifier, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("authority public key has %d bytes, want %d", len(publicKey), ed25519.PublicKeySize)
	}
	return &AuthorityVerifier{publicKey: publicKey}, nil
}

// Verify hashes the binary and checks its detached signature. A
// missing signature file is the Missing trust verdict; a present but
// unverifiable signature is Invalid. Read and decode failures are
// operational errors.
func (v *AuthorityVerifier) Verify(file FileID) (Outcome, error) {
	digest, err := HashFile(string(file))
	if err != nil {
		return Outcome{}, err
	}

	payload, err := os.ReadFile(SignaturePath(string(file)))
	if errors.Is(err, fs.ErrNotExist) {
		return Outcome{State: StateMissing, Digest: digest}, nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("reading signature for %s: %w", file, err)
	}

	var sig SignatureFile
	if err := codec.Unmarshal(payload, &sig); err != nil {
		return Outcome{}, fmt.Errorf("decoding signature for %s: %w", file, err)
	}
	if sig.Algorithm != Algorithm {
		return Outcome{}, fmt.Errorf("signature for %s: unsupported algorithm %q", file, sig.Algorithm)
	}

	if !IsAuthoritySigned(v.publicKey, digest, sig.Signature) {
		return Outcome{State: StateInvalid, Digest: digest}, nil
	}
	return Outcome{State: StateValid, Digest: digest}, nil
}
