// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/box"

	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/secret"
)

// ErrWrongTag is returned by Unseal when AEAD authentication fails —
// wrong key, tampered ciphertext, or mismatched nonce material.
// Mirrors the teacher's age.Decrypt failure mode but named to match
// spec §7/§8's explicit "Wrong tag" error.
var ErrWrongTag = errors.New("crypto: wrong tag (seal authentication failed)")

// SealingSecret holds an X25519 private key in guarded memory. The
// caller must call Close when the key is no longer needed.
type SealingSecret struct {
	key *secret.Buffer // 32 raw bytes
}

// Close zeroes and releases the private key. Idempotent.
func (s *SealingSecret) Close() error {
	if s == nil || s.key == nil {
		return nil
	}
	return s.key.Close()
}

func (s *SealingSecret) bytes() *[32]byte {
	var out [32]byte
	copy(out[:], s.key.Bytes())
	return &out
}

// GenerateSealingKeypair generates a new X25519 sealing identity. The
// returned SealingSecret must be closed by the caller.
func GenerateSealingKeypair() (*SealingSecret, coid.SealerID, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, "", fmt.Errorf("crypto: generating X25519 keypair: %w", err)
	}
	buffer, err := secret.NewFromBytes(priv[:])
	if err != nil {
		return nil, "", fmt.Errorf("crypto: guarding sealing secret: %w", err)
	}
	return &SealingSecret{key: buffer}, coid.NewSealerID(*pub), nil
}

// nonceFromMaterial derives a 24-byte NaCl box nonce as the first 24
// bytes of blake3(canonical(nonceMaterial)), per spec §4.1.
func nonceFromMaterial(nonceMaterial any) (*[24]byte, error) {
	digest, err := SecureHash(nonceMaterial)
	if err != nil {
		return nil, fmt.Errorf("crypto: hashing nonce material: %w", err)
	}
	var nonce [24]byte
	copy(nonce[:], digest[:24])
	return &nonce, nil
}

// Seal encrypts message to recipient `to` from sender `from`, using
// X25519 ECDH to derive a shared key and XSalsa20-Poly1305 (NaCl box)
// for authenticated encryption. The nonce is deterministically derived
// from nonceMaterial so that re-sealing the same logical message with
// the same material is reproducible — required by spec §4.1 and tested
// by §8's Seal/Unseal round-trip property.
func Seal(message []byte, from *SealingSecret, to coid.SealerID, nonceMaterial any) (coid.Sealed, error) {
	nonce, err := nonceFromMaterial(nonceMaterial)
	if err != nil {
		return "", err
	}
	toBytes, err := to.Bytes()
	if err != nil {
		return "", fmt.Errorf("crypto: parsing recipient sealer ID: %w", err)
	}

	fromKey := from.bytes()
	ciphertext := box.Seal(nil, message, nonce, &toBytes, fromKey)
	return coid.NewSealed(ciphertext), nil
}

// Unseal decrypts a Sealed value addressed to `to` from sender `from`.
// Returns ErrWrongTag if authentication fails — wrong recipient key,
// wrong sender ID, wrong nonce material, or tampered ciphertext are
// all indistinguishable to the caller, matching spec §7.
func Unseal(sealed coid.Sealed, to *SealingSecret, from coid.SealerID, nonceMaterial any) ([]byte, error) {
	ciphertext, err := sealed.Bytes()
	if err != nil {
		return nil, fmt.Errorf("crypto: parsing sealed value: %w", err)
	}
	nonce, err := nonceFromMaterial(nonceMaterial)
	if err != nil {
		return nil, err
	}
	fromBytes, err := from.Bytes()
	if err != nil {
		return nil, fmt.Errorf("crypto: parsing sender sealer ID: %w", err)
	}

	toKey := to.bytes()
	message, ok := box.Open(nil, ciphertext, nonce, &fromBytes, toKey)
	if !ok {
		return nil, ErrWrongTag
	}
	return message, nil
}
