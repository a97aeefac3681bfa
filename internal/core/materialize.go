// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"sort"

	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/content"
	"github.com/weavesync/weave/lib/crypto"
)

// KeyResolver looks up the KeySecret for a key ID a private
// transaction names. The weave root package supplies this, backed by
// the local agent's unsealed group keys (lib/group.ResolveSealedKeyFor
// plus lib/crypto.Unseal, walking lib/group.ResolvePredecessorKey for
// keys rotated out before the local agent joined). Core never unseals
// anything itself — it has no sealing secret to do it with.
type KeyResolver func(keyID coid.KeyID) (crypto.KeySecret, bool)

// txNonceMaterial pins a transaction's encryption nonce to its
// position in its session log, so the same plaintext re-encrypted by
// a re-derivation (rather than a fresh random nonce) always produces
// the same ciphertext — see lib/crypto.EncryptForTransaction.
type txNonceMaterial struct {
	SessionID coid.SessionID `json:"sessionID"`
	Index     int            `json:"index"`
}

// NonceMaterialFor returns the deterministic nonce material for the
// entry sessionID's log would hold at index. Callers minting a new
// private transaction locally pass this to NewPrivateTransaction.
func NonceMaterialFor(sessionID coid.SessionID, index int) any {
	return txNonceMaterial{SessionID: sessionID, Index: index}
}

type orderedEntry struct {
	sessionID coid.SessionID
	index     int
	madeAt    int64
	tx        Transaction
}

// CurrentContent returns the covalue's materialized CRDT view, merging
// every session's verified transactions in spec §4.5's deterministic
// (madeAt, sessionID) order. The result is cached until the next
// successful TryAddTransactions or explicit InvalidateCache call.
func (c *Covalue) CurrentContent(resolveKey KeyResolver) (content.Content, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cacheContent != nil && c.cacheGen == c.generation {
		return c.cacheContent, nil
	}

	merged, err := c.materializeLocked(resolveKey)
	if err != nil {
		return nil, err
	}
	c.cacheContent = merged
	c.cacheGen = c.generation
	return merged, nil
}

// InvalidateCache forces the next CurrentContent call to recompute
// from scratch, even if no new transaction arrived — used when the
// caller obtains a read key for previously-undecryptable transactions
// (spec §4.5: "skipped during materialization and retried when new
// keys arrive").
func (c *Covalue) InvalidateCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheContent = nil
}

func newContentForType(typeTag content.TypeTag) (content.Content, error) {
	switch typeTag {
	case content.TypeMap:
		return content.NewMap(), nil
	case content.TypeList:
		return content.NewList(), nil
	case content.TypeStream:
		return content.NewStream(), nil
	case content.TypeBinaryStream:
		return content.NewBinaryStream(), nil
	default:
		return nil, fmt.Errorf("core: unknown content type %q", typeTag)
	}
}

func (c *Covalue) materializeLocked(resolveKey KeyResolver) (content.Content, error) {
	view, err := newContentForType(c.header.Type)
	if err != nil {
		return nil, err
	}

	var ordered []orderedEntry
	for sessionID, log := range c.sessions {
		for index, entry := range log.Slice(0) {
			tx, decodeErr := DecodeTransaction(entry.Transaction)
			if decodeErr != nil {
				continue
			}
			ordered = append(ordered, orderedEntry{sessionID: sessionID, index: index, madeAt: tx.MadeAt, tx: tx})
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].madeAt != ordered[j].madeAt {
			return ordered[i].madeAt < ordered[j].madeAt
		}
		return ordered[i].sessionID < ordered[j].sessionID
	})

	for _, oe := range ordered {
		agent, err := oe.sessionID.Agent()
		if err != nil {
			continue
		}

		var key crypto.KeySecret
		if oe.tx.Kind == KindPrivate {
			resolved, ok := resolveKeyOrZero(resolveKey, oe.tx.KeyID)
			if !ok {
				// Undecryptable: kept in the log, skipped here, retried
				// on the next materialization after a key arrives.
				continue
			}
			key = resolved
		}

		changes, ok := oe.tx.decodeChanges(key, NonceMaterialFor(oe.sessionID, oe.index))
		if !ok {
			continue
		}
		for _, change := range changes {
			view.Apply(content.AppliedChange{
				Change:    change,
				SessionID: oe.sessionID,
				Agent:     agent,
				MadeAt:    oe.madeAt,
			})
		}
	}

	return view, nil
}

func resolveKeyOrZero(resolveKey KeyResolver, keyID coid.KeyID) (crypto.KeySecret, bool) {
	if resolveKey == nil {
		return crypto.KeySecret{}, false
	}
	return resolveKey(keyID)
}
