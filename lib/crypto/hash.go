// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"github.com/zeebo/blake3"

	"github.com/weavesync/weave/lib/canon"
)

// Hash is a 32-byte BLAKE3 digest of a canonicalized value.
type Hash [32]byte

// ShortHashValue is the first 16 bytes of a Hash, used for identifiers
// that don't need full collision resistance against a determined
// adversary who already knows the value they're trying to match (key
// IDs are public, but nobody benefits from forging one — see
// lib/coid.KeyID).
type ShortHashValue [16]byte

// SecureHash returns blake3(canonical(value)) as spec §4.1 defines it.
func SecureHash(value any) (Hash, error) {
	encoded, err := canon.Canonicalize(value)
	if err != nil {
		return Hash{}, err
	}
	digest := blake3.Sum256(encoded)
	return Hash(digest), nil
}

// ShortHash returns the first 16 bytes of SecureHash(value).
func ShortHash(value any) (ShortHashValue, error) {
	full, err := SecureHash(value)
	if err != nil {
		return ShortHashValue{}, err
	}
	var short ShortHashValue
	copy(short[:], full[:16])
	return short, nil
}

// HashBytes returns blake3(data) directly, without canonicalization.
// Used where the input is already a byte string rather than a
// structured value to be canonicalized first (e.g. hashing raw key
// material for a KeyID).
func HashBytes(data []byte) Hash {
	return Hash(blake3.Sum256(data))
}

// ShortHashBytes returns the first 16 bytes of HashBytes(data).
func ShortHashBytes(data []byte) ShortHashValue {
	full := HashBytes(data)
	var short ShortHashValue
	copy(short[:], full[:16])
	return short
}
