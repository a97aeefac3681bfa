// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/weavesync/weave/lib/coid"
)

// keySecretWrapInfo domain-separates the HKDF output used to wrap one
// KeySecret under another from any other use of the wrapping key,
// following the deriveKey/buildAAD precedent in the teacher's
// artifact store encryption: never use a key for two different AEAD
// purposes without separating the derivation.
const keySecretWrapInfo = "weave-key-secret-wrap-v1"

// KeyID derives the public, non-reversible identifier for a KeySecret
// as key_z<shortHash(keyBytes)>, per spec §4.1. The hash reveals
// nothing about the key itself; it exists only so a group's member
// list can name "the key that was current as of generation N" without
// embedding the key itself.
func KeyID(key KeySecret) (coid.KeyID, error) {
	if key.IsZero() {
		return "", fmt.Errorf("crypto: cannot derive KeyID of a zero key secret")
	}
	short := ShortHashBytes(key.raw())
	return coid.NewKeyID(short), nil
}

// deriveWrapKey derives a one-time-use secretbox key from wrappingKey,
// domain-separated by keyID so that wrapping two different KeySecrets
// under the same wrappingKey never reuses key material.
func deriveWrapKey(wrappingKey KeySecret, keyID coid.KeyID) (*[32]byte, error) {
	reader := hkdf.New(sha256.New, wrappingKey.raw(), nil, []byte(keySecretWrapInfo+":"+string(keyID)))
	var derived [32]byte
	if _, err := io.ReadFull(reader, derived[:]); err != nil {
		return nil, fmt.Errorf("crypto: deriving key-secret wrap key: %w", err)
	}
	return &derived, nil
}

// EncryptKeySecret wraps toWrap under wrappingKey, producing the
// ciphertext a group stores as "member X's copy of generation N's key
// secret" (spec §4.7's key rotation). keyID must be toWrap's own
// KeyID — it both names the wrapped key and domain-separates the
// derived wrap key, so the same wrappingKey can safely wrap many
// different KeySecrets over a covalue's lifetime.
func EncryptKeySecret(toWrap KeySecret, wrappingKey KeySecret, keyID coid.KeyID) (coid.Sealed, error) {
	wrapKey, err := deriveWrapKey(wrappingKey, keyID)
	if err != nil {
		return "", err
	}
	nonce, err := nonceFromMaterial(string(keyID))
	if err != nil {
		return "", err
	}
	ciphertext := secretbox.Seal(nil, toWrap.raw(), nonce, wrapKey)
	return coid.NewSealed(ciphertext), nil
}

// DecryptKeySecret reverses EncryptKeySecret. As with Unseal and
// DecryptForTransaction, failure is reported as ok=false rather than
// an error: a member who no longer holds the current wrappingKey, or
// ciphertext addressed to a different keyID, produces the same
// observable outcome.
func DecryptKeySecret(wrapped coid.Sealed, wrappingKey KeySecret, keyID coid.KeyID) (KeySecret, bool) {
	ciphertext, err := wrapped.Bytes()
	if err != nil {
		return KeySecret{}, false
	}
	wrapKey, err := deriveWrapKey(wrappingKey, keyID)
	if err != nil {
		return KeySecret{}, false
	}
	nonce, err := nonceFromMaterial(string(keyID))
	if err != nil {
		return KeySecret{}, false
	}
	raw, ok := secretbox.Open(nil, ciphertext, nonce, wrapKey)
	if !ok {
		return KeySecret{}, false
	}
	key, err := NewKeySecretFromBytes(raw)
	if err != nil {
		return KeySecret{}, false
	}
	return key, true
}
