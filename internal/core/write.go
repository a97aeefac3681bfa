// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/content"
	"github.com/weavesync/weave/lib/crypto"
	"github.com/weavesync/weave/lib/group"
	"github.com/weavesync/weave/lib/session"
)

// LocalWrite mints, authorizes, and appends one new transaction to
// sessionID's log, on behalf of account, signed by secret (which must
// correspond to sessionID's agent). This is the only path a local
// writer uses to grow a covalue — spec §4.5's "not reentrant" append
// point, shared with TryAddTransactions for peer-sourced entries.
//
// When key is the zero KeySecret, changes are written as a Trusting
// transaction; otherwise a Private one encrypted under key (keyID
// must name it). wallClockMadeAt is the caller's current time; it is
// clamped to the session's previous madeAt + 1 if it would otherwise
// regress (spec invariant 5).
func (c *Covalue) LocalWrite(
	sessionID coid.SessionID,
	account coid.CovalueID,
	changes []content.Change,
	keyID coid.KeyID,
	key crypto.KeySecret,
	wallClockMadeAt int64,
	secret *crypto.SigningSecret,
) (session.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log, err := c.sessionLocked(sessionID)
	if err != nil {
		return session.Entry{}, err
	}

	madeAt := wallClockMadeAt
	if last, ok := c.lastMadeAtLocked(log); ok && madeAt <= last {
		madeAt = last + 1
	}

	auth := c.checkAuthorized(account, madeAt)
	if auth.Decision != group.Allow {
		return session.Entry{}, fmt.Errorf("core: %s: %w (%s)", account, ErrUnauthorized, auth.Reason)
	}

	var tx Transaction
	if key.IsZero() {
		tx, err = NewTrustingTransaction(changes, madeAt)
	} else {
		tx, err = NewPrivateTransaction(changes, keyID, key, NonceMaterialFor(sessionID, log.Length()), madeAt)
	}
	if err != nil {
		return session.Entry{}, err
	}

	encoded, err := tx.Encode()
	if err != nil {
		return session.Entry{}, err
	}

	entry, err := log.Sign(encoded, secret)
	if err != nil {
		return session.Entry{}, err
	}
	c.generation++
	return entry, nil
}

func (c *Covalue) lastMadeAtLocked(log *session.Log) (int64, bool) {
	entries := log.Slice(0)
	if len(entries) == 0 {
		return 0, false
	}
	tx, err := DecodeTransaction(entries[len(entries)-1].Transaction)
	if err != nil {
		return 0, false
	}
	return tx.MadeAt, true
}
