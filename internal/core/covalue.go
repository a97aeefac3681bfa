// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"sync"

	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/content"
	"github.com/weavesync/weave/lib/group"
	"github.com/weavesync/weave/lib/session"
)

// AgentResolver maps the signer of a session to the account covalue ID
// that session speaks for, and the wall-clock time to evaluate write
// authorization at. The weave root package owns this mapping (an
// account covalue lists its agents); core never resolves it itself.
type AgentResolver interface {
	AccountFor(sessionID coid.SessionID) (coid.CovalueID, bool)
}

// Covalue aggregates every session log written to one object, the
// header that object was created with, and (for rulesets that need
// one) the group fold governing who may write to it.
type Covalue struct {
	mu     sync.RWMutex
	id     coid.CovalueID
	header Header

	sessions map[coid.SessionID]*session.Log

	// Group governs write authorization for RulesetGroup, RulesetAccount,
	// and RulesetOwnedByGroup headers. For RulesetGroup it is this
	// covalue's own fold (the caller replays this covalue's own
	// transactions into it); for RulesetOwnedByGroup it is the
	// referenced group covalue's fold, assigned by whoever loaded it.
	// Left nil for RulesetUnsafeAllowAll.
	Group *group.Group

	// generation increments on every successful TryAddTransactions
	// call, invalidating the materialization cache. It stands in for
	// "sum of session lengths" from spec §4.5: any append changes it,
	// and it is cheaper to compare than resumming every session.
	generation   uint64
	cacheGen     uint64
	cacheContent content.Content
}

// New assembles a new covalue from header, returning its content-
// addressed ID alongside it. The covalue starts with no session logs;
// NewWithSessions below is for loading a covalue that already has
// some.
func New(header Header) (*Covalue, error) {
	id, err := header.ID()
	if err != nil {
		return nil, err
	}
	return &Covalue{
		id:       id,
		header:   header,
		sessions: make(map[coid.SessionID]*session.Log),
	}, nil
}

// Load reconstructs a covalue from a header and its existing session
// logs (e.g. from a storage adapter), verifying the header hashes to
// id.
func Load(id coid.CovalueID, header Header, sessions map[coid.SessionID]*session.Log) (*Covalue, error) {
	computed, err := header.ID()
	if err != nil {
		return nil, err
	}
	if computed != id {
		return nil, fmt.Errorf("core: loading %s: %w", id, ErrInvalidHeader)
	}
	if sessions == nil {
		sessions = make(map[coid.SessionID]*session.Log)
	}
	return &Covalue{id: id, header: header, sessions: sessions}, nil
}

// ID returns the covalue's content-addressed identifier.
func (c *Covalue) ID() coid.CovalueID { return c.id }

// Header returns the covalue's immutable header.
func (c *Covalue) Header() Header { return c.header }

// sessionLocked returns (creating if needed) the log for sessionID,
// whose owning agent is derived from the session ID itself.
func (c *Covalue) sessionLocked(sessionID coid.SessionID) (*session.Log, error) {
	if log, ok := c.sessions[sessionID]; ok {
		return log, nil
	}
	agent, err := sessionID.Agent()
	if err != nil {
		return nil, fmt.Errorf("core: %s: %w", sessionID, err)
	}
	signer, _, err := agent.Split()
	if err != nil {
		return nil, fmt.Errorf("core: %s: %w", sessionID, err)
	}
	log := session.NewLog(signer)
	c.sessions[sessionID] = log
	return log, nil
}

// SessionLength returns how many entries sessionID's log currently
// holds, or 0 if it doesn't exist yet — the index a new locally-signed
// entry for that session would occupy.
func (c *Covalue) SessionLength(sessionID coid.SessionID) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	log, ok := c.sessions[sessionID]
	if !ok {
		return 0
	}
	return log.Length()
}
