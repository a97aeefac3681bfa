// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/weavesync/weave/lib/canon"
	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/secret"
)

// SigningSecret holds an Ed25519 private key in guarded memory. The
// caller must call Close when the key is no longer needed.
type SigningSecret struct {
	key *secret.Buffer // ed25519.PrivateKey bytes (64: seed || pub)
}

// Close zeroes and releases the private key. Idempotent.
func (s *SigningSecret) Close() error {
	if s == nil || s.key == nil {
		return nil
	}
	return s.key.Close()
}

func (s *SigningSecret) privateKey() ed25519.PrivateKey {
	return ed25519.PrivateKey(s.key.Bytes())
}

// GenerateSigningKeypair generates a new Ed25519 signing identity. The
// returned SigningSecret must be closed by the caller.
func GenerateSigningKeypair() (*SigningSecret, coid.SignerID, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, "", fmt.Errorf("crypto: generating Ed25519 keypair: %w", err)
	}
	buffer, err := secret.NewFromBytes([]byte(priv))
	if err != nil {
		return nil, "", fmt.Errorf("crypto: guarding signing secret: %w", err)
	}

	var pubBytes [32]byte
	copy(pubBytes[:], pub)
	return &SigningSecret{key: buffer}, coid.NewSignerID(pubBytes), nil
}

// SignBytes signs a raw payload (already in its final wire form — no
// further canonicalization is applied) and returns the base58-encoded
// signature. Used by lib/session to sign a session entry's rolling
// after-hash, which is already a fixed-size hash digest.
func SignBytes(secret *SigningSecret, payload []byte) (coid.Signature, error) {
	signature := ed25519.Sign(secret.privateKey(), payload)
	return coid.NewSignature(signature), nil
}

// Sign canonicalizes value (per lib/canon) and signs the resulting
// bytes. Used for signing structured values directly, as opposed to
// pre-hashed payloads (see SignBytes).
func Sign(secret *SigningSecret, value any) (coid.Signature, error) {
	encoded, err := canon.Canonicalize(value)
	if err != nil {
		return "", fmt.Errorf("crypto: canonicalizing value to sign: %w", err)
	}
	return SignBytes(secret, encoded)
}

// VerifyBytes verifies sig over a raw payload against the signer's
// public ID. Returns false (never an error) for any verification
// failure — malformed signature, malformed ID, or a genuine mismatch —
// matching spec §7's rule that attacker-controllable verification
// failures are sentinel values, not errors.
func VerifyBytes(sig coid.Signature, payload []byte, id coid.SignerID) bool {
	sigBytes, err := sig.Bytes()
	if err != nil {
		return false
	}
	pubBytes, err := id.Bytes()
	if err != nil {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubBytes[:]), payload, sigBytes)
}

// Verify canonicalizes value and verifies sig against it.
func Verify(sig coid.Signature, value any, id coid.SignerID) bool {
	encoded, err := canon.Canonicalize(value)
	if err != nil {
		return false
	}
	return VerifyBytes(sig, encoded, id)
}
