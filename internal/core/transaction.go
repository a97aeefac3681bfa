// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"github.com/weavesync/weave/lib/codec"
	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/content"
	"github.com/weavesync/weave/lib/crypto"
)

// TransactionKind tags which of the two transaction variants spec §3
// describes a wire Transaction is.
type TransactionKind string

const (
	// KindTrusting transactions carry their change list in the clear.
	KindTrusting TransactionKind = "trusting"
	// KindPrivate transactions carry EncryptForTransaction's ciphertext
	// of the same CBOR-encoded change list, plus the key it was
	// encrypted under.
	KindPrivate TransactionKind = "private"
)

// Transaction is one unit of mutation before it is handed to
// lib/session to be hash-chained and signed. Its CBOR encoding (via
// Encode) is exactly the byte string that becomes a session.Entry's
// Transaction field — the bytes the hash chain and signature cover.
type Transaction struct {
	Kind TransactionKind `cbor:"kind"`

	// Changes is CBOR-encoded []content.Change for a Trusting
	// transaction, or EncryptForTransaction's ciphertext of that same
	// encoding for a Private one.
	Changes []byte `cbor:"changes"`

	// KeyID names the key Changes was encrypted under. Only
	// meaningful when Kind is KindPrivate.
	KeyID coid.KeyID `cbor:"keyID,omitempty"`

	// MadeAt is milliseconds since epoch, clamped non-decreasing
	// within a session per spec invariant 5.
	MadeAt int64 `cbor:"madeAt"`
}

// Encode serializes tx to the bytes that get hash-chained and signed.
func (tx Transaction) Encode() ([]byte, error) {
	encoded, err := codec.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("core: encoding transaction: %w", err)
	}
	return encoded, nil
}

// DecodeTransaction reverses Encode.
func DecodeTransaction(data []byte) (Transaction, error) {
	var tx Transaction
	if err := codec.Unmarshal(data, &tx); err != nil {
		return Transaction{}, fmt.Errorf("core: decoding transaction: %w", err)
	}
	return tx, nil
}

// NewTrustingTransaction encodes changes in the clear.
func NewTrustingTransaction(changes []content.Change, madeAt int64) (Transaction, error) {
	encoded, err := codec.Marshal(changes)
	if err != nil {
		return Transaction{}, fmt.Errorf("core: encoding changes: %w", err)
	}
	return Transaction{Kind: KindTrusting, Changes: encoded, MadeAt: madeAt}, nil
}

// NewPrivateTransaction encrypts changes under key, keyed by keyID for
// the recipient side to look the key back up. nonceMaterial should
// uniquely identify this transaction (e.g. its session ID and
// within-session index) so that re-deriving the same plaintext under
// the same key reproduces the same ciphertext rather than depending on
// fresh randomness.
func NewPrivateTransaction(changes []content.Change, keyID coid.KeyID, key crypto.KeySecret, nonceMaterial any, madeAt int64) (Transaction, error) {
	encoded, err := codec.Marshal(changes)
	if err != nil {
		return Transaction{}, fmt.Errorf("core: encoding changes: %w", err)
	}
	ciphertext, err := crypto.EncryptForTransaction(encoded, key, nonceMaterial)
	if err != nil {
		return Transaction{}, fmt.Errorf("core: encrypting changes: %w", err)
	}
	return Transaction{Kind: KindPrivate, Changes: ciphertext, KeyID: keyID, MadeAt: madeAt}, nil
}

// decodeChanges returns tx's plaintext change list. For a private
// transaction, key must be the KeySecret tx.KeyID names; ok is false
// if decryption fails (spec §4.5's "undecryptable transaction", not an
// error — the transaction is retained and retried later).
func (tx Transaction) decodeChanges(key crypto.KeySecret, nonceMaterial any) (changes []content.Change, ok bool) {
	var plaintext []byte
	switch tx.Kind {
	case KindTrusting:
		plaintext = tx.Changes
	case KindPrivate:
		decrypted, decryptOK := crypto.DecryptForTransaction(tx.Changes, key, nonceMaterial)
		if !decryptOK {
			return nil, false
		}
		plaintext = decrypted
	default:
		return nil, false
	}
	if err := codec.Unmarshal(plaintext, &changes); err != nil {
		return nil, false
	}
	return changes, true
}
