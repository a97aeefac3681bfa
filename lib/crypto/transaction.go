// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/weavesync/weave/lib/secret"
)

// KeySecret is a 32-byte symmetric key held in guarded memory. It
// encrypts a covalue's private transactions (lib/content) and, when
// wrapped, is itself the payload rotated through the group's member
// list (lib/group) on membership change.
type KeySecret struct {
	buffer *secret.Buffer
}

// NewKeySecret generates a fresh random KeySecret.
func NewKeySecret() (KeySecret, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return KeySecret{}, fmt.Errorf("crypto: generating key secret: %w", err)
	}
	return NewKeySecretFromBytes(raw)
}

// NewKeySecretFromBytes guards an existing 32-byte key, e.g. one just
// unwrapped from another member's encrypted copy.
func NewKeySecretFromBytes(raw []byte) (KeySecret, error) {
	if len(raw) != 32 {
		return KeySecret{}, fmt.Errorf("crypto: key secret must be 32 bytes, got %d", len(raw))
	}
	buffer, err := secret.NewFromBytes(raw)
	if err != nil {
		return KeySecret{}, fmt.Errorf("crypto: guarding key secret: %w", err)
	}
	return KeySecret{buffer: buffer}, nil
}

// Close zeroes and releases the key. Idempotent.
func (k KeySecret) Close() error {
	if k.buffer == nil {
		return nil
	}
	return k.buffer.Close()
}

// IsZero reports whether k holds no key material.
func (k KeySecret) IsZero() bool {
	return k.buffer == nil
}

func (k KeySecret) bytes() *[32]byte {
	var out [32]byte
	copy(out[:], k.buffer.Bytes())
	return &out
}

// raw returns a copy of the key's bytes, for derivations that need to
// treat the key as input material (KeyID, HKDF wrapping) rather than
// as a secretbox key directly.
func (k KeySecret) raw() []byte {
	return append([]byte(nil), k.buffer.Bytes()...)
}

// Bytes returns a copy of the key's raw 32 bytes. Exported for
// callers outside this package that must treat a KeySecret as payload
// — notably lib/group sealing a read key to a new member, where the
// key secret itself (not a derivation of it) is the message being
// sealed.
func (k KeySecret) Bytes() []byte {
	return k.raw()
}

// EncryptForTransaction encrypts a transaction's change list under
// key, using XSalsa20-Poly1305 (NaCl secretbox). The nonce is derived
// from nonceMaterial exactly as Seal derives its box nonce, so that
// re-encrypting identical plaintext under identical material (as
// happens when a replica recomputes a transaction it already has) is
// reproducible rather than accumulating fresh randomness on disk.
func EncryptForTransaction(plaintext []byte, key KeySecret, nonceMaterial any) ([]byte, error) {
	if key.IsZero() {
		return nil, fmt.Errorf("crypto: cannot encrypt with a zero key secret")
	}
	nonce, err := nonceFromMaterial(nonceMaterial)
	if err != nil {
		return nil, err
	}
	return secretbox.Seal(nil, plaintext, nonce, key.bytes()), nil
}

// DecryptForTransaction reverses EncryptForTransaction. It returns
// ok=false — never an error — on any authentication failure, matching
// spec §7's rule that verification of attacker-controllable ciphertext
// yields a sentinel outcome rather than a Go error: a transaction from
// an untrusted peer that doesn't decrypt under the covalue's current
// key is simply not materialized, not a program fault.
func DecryptForTransaction(ciphertext []byte, key KeySecret, nonceMaterial any) (plaintext []byte, ok bool) {
	if key.IsZero() {
		return nil, false
	}
	nonce, err := nonceFromMaterial(nonceMaterial)
	if err != nil {
		return nil, false
	}
	return secretbox.Open(nil, ciphertext, nonce, key.bytes())
}
