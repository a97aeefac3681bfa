// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/group"
	"github.com/weavesync/weave/lib/session"
)

// ErrOutOfOrderEntries is returned when entries don't start exactly
// where the named session's log currently ends — the caller (sync
// manager) should instead request a backfill for the gap.
var ErrOutOfOrderEntries = fmt.Errorf("core: entries do not start at the session's current length")

// TryAddTransactions is the single entry point for growing a covalue,
// whether the caller is the local writer or the sync manager relaying
// a peer's entries (spec §4.5/§7: "not reentrant", same path for both
// sources). account is the covalue ID of the account speaking for
// sessionID, resolved by the caller (weave root package) since core
// has no notion of account membership itself.
//
// Entries must start exactly at fromIndex == the session's current
// length; anything else returns ErrOutOfOrderEntries rather than
// silently reordering. Each entry is checked for write authorization
// against the ruleset in force at its own madeAt before being handed
// to the session log, so a role held at write time but later revoked
// doesn't retroactively invalidate an already-accepted entry, and a
// role granted after the fact doesn't retroactively authorize one.
func (c *Covalue) TryAddTransactions(sessionID coid.SessionID, account coid.CovalueID, fromIndex int, entries []session.Entry) ([]session.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log, err := c.sessionLocked(sessionID)
	if err != nil {
		return nil, err
	}
	if log.Length() != fromIndex {
		return nil, fmt.Errorf("core: %s: %w (have %d, entries start at %d)", sessionID, ErrOutOfOrderEntries, log.Length(), fromIndex)
	}

	results := make([]session.Result, 0, len(entries))
	accepted := 0
	for _, entry := range entries {
		tx, decodeErr := DecodeTransaction(entry.Transaction)
		if decodeErr != nil {
			// Malformed transaction bytes are attacker-reachable (a
			// peer can send anything); treat as an authorization-style
			// rejection rather than a Go error the whole call fails
			// with.
			results = append(results, session.InvalidSignature)
			break
		}

		auth := c.checkAuthorized(account, tx.MadeAt)
		if auth.Decision != group.Allow {
			results = append(results, session.InvalidSignature)
			break
		}

		result := log.TryAdd(entry.Transaction, entry.AfterHash, entry.Signature)
		results = append(results, result)
		if result != session.Added && result != session.Duplicate {
			break
		}
		if result == session.Added {
			accepted++
		}
	}

	if accepted > 0 {
		c.generation++
	}
	return results, nil
}
