// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/crypto"
)

// Entry is one (transaction, rolling after-hash, signature) triple.
// Transaction carries whatever bytes lib/content produced for this
// operation — already in its final wire form, since the after-hash
// covers exactly those bytes, not a re-canonicalized copy of them.
type Entry struct {
	Transaction []byte
	AfterHash   crypto.Hash
	Signature   coid.Signature
}

// Result reports the outcome of TryAdd.
type Result int

const (
	// Added means the entry was appended.
	Added Result = iota
	// Duplicate means this exact entry is already the log's last
	// entry — a harmless replay, not an error.
	Duplicate
	// InvalidHashChain means afterHash does not equal
	// H(previous afterHash ‖ transaction).
	InvalidHashChain
	// InvalidSignature means the signature does not verify under
	// the log's agent signing key.
	InvalidSignature
)

func (r Result) String() string {
	switch r {
	case Added:
		return "Added"
	case Duplicate:
		return "Duplicate"
	case InvalidHashChain:
		return "InvalidHashChain"
	case InvalidSignature:
		return "InvalidSignature"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// ErrVerifyFailed is returned by Verify when the chain does not
// reverify from scratch under agent's signing key.
var ErrVerifyFailed = errors.New("session: log failed full verification")

// Log is the append-only signed hash chain for one (covalue, session)
// pair. A Log is safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	agent   coid.SignerID
	entries []Entry
}

// NewLog returns an empty log for the given session owner.
func NewLog(agent coid.SignerID) *Log {
	return &Log{agent: agent}
}

// Agent returns the signing identity this log's entries are signed
// under.
func (l *Log) Agent() coid.SignerID {
	return l.agent
}

// Length returns the number of entries in the log.
func (l *Log) Length() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// LastHash returns the after-hash of the log's last entry, or the
// zero hash if the log is empty — the genesis previous-hash every
// session's first entry chains from.
func (l *Log) LastHash() crypto.Hash {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastHashLocked()
}

func (l *Log) lastHashLocked() crypto.Hash {
	if len(l.entries) == 0 {
		return crypto.Hash{}
	}
	return l.entries[len(l.entries)-1].AfterHash
}

// LastSignature returns the signature of the log's last entry, or the
// zero value if the log is empty.
func (l *Log) LastSignature() coid.Signature {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.entries) == 0 {
		return ""
	}
	return l.entries[len(l.entries)-1].Signature
}

// Slice returns a copy of the entries from fromIndex onward. Used by
// the sync manager to answer "load" requests for everything a peer
// doesn't yet have.
func (l *Log) Slice(fromIndex int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if fromIndex < 0 || fromIndex > len(l.entries) {
		return nil
	}
	out := make([]Entry, len(l.entries)-fromIndex)
	copy(out, l.entries[fromIndex:])
	return out
}

// chainHash computes H(previousAfterHash ‖ transaction).
func chainHash(previous crypto.Hash, transaction []byte) crypto.Hash {
	buf := make([]byte, 0, len(previous)+len(transaction))
	buf = append(buf, previous[:]...)
	buf = append(buf, transaction...)
	return crypto.HashBytes(buf)
}

// Sign grows the log by one entry: it computes the next after-hash
// and signs it under secret, which must correspond to the log's
// agent. Used when this node owns the session (spec §4.4's sign).
func (l *Log) Sign(transaction []byte, secret *crypto.SigningSecret) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	afterHash := chainHash(l.lastHashLocked(), transaction)
	signature, err := crypto.SignBytes(secret, afterHash[:])
	if err != nil {
		return Entry{}, fmt.Errorf("session: signing entry: %w", err)
	}
	entry := Entry{Transaction: transaction, AfterHash: afterHash, Signature: signature}
	l.entries = append(l.entries, entry)
	return entry, nil
}

// TryAdd accepts an entry minted elsewhere (by a peer, or by replaying
// storage). It recomputes the rolling hash from the log's current
// last entry and verifies the signature before appending. Replaying
// the log's current last entry verbatim is reported as Duplicate, not
// as an error — spec §4.4 requires this idempotence so that receiving
// the same gossip message twice is harmless.
func (l *Log) TryAdd(transaction []byte, afterHash crypto.Hash, signature coid.Signature) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) > 0 {
		last := l.entries[len(l.entries)-1]
		if last.AfterHash == afterHash && last.Signature == signature && bytes.Equal(last.Transaction, transaction) {
			return Duplicate
		}
	}

	expected := chainHash(l.lastHashLocked(), transaction)
	if expected != afterHash {
		return InvalidHashChain
	}
	if !crypto.VerifyBytes(signature, afterHash[:], l.agent) {
		return InvalidSignature
	}

	l.entries = append(l.entries, Entry{Transaction: transaction, AfterHash: afterHash, Signature: signature})
	return Added
}

// Verify re-derives the entire chain from scratch, re-checking every
// intermediate hash and the final signature. TryAdd already verifies
// each entry as it arrives; Verify exists for the case where a log
// was assembled by some other means (loaded from a storage journal
// verbatim, say) and needs a single full-chain check before it's
// trusted.
func (l *Log) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	previous := crypto.Hash{}
	for i, entry := range l.entries {
		expected := chainHash(previous, entry.Transaction)
		if expected != entry.AfterHash {
			return fmt.Errorf("session: %w: entry %d has wrong after-hash", ErrVerifyFailed, i)
		}
		if !crypto.VerifyBytes(entry.Signature, entry.AfterHash[:], l.agent) {
			return fmt.Errorf("session: %w: entry %d signature does not verify", ErrVerifyFailed, i)
		}
		previous = entry.AfterHash
	}
	return nil
}
