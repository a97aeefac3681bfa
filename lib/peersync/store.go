// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package peersync

import (
	"fmt"
	"sync"

	"github.com/weavesync/weave/internal/core"
	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/session"
)

// Store is how a Manager reaches the covalues a node holds. The
// owning side (a storage adapter, or the weave root package) provides
// this so peersync never needs to know about accounts, sessions
// locks, or where covalues ultimately live — only how to read and
// grow them.
type Store interface {
	// Known reports id's current KnownState, or ok=false if the store
	// holds nothing for id.
	Known(id coid.CovalueID) (state core.KnownState, ok bool)

	// Header returns id's header, or ok=false if the store has never
	// seen id.
	Header(id coid.CovalueID) (header core.Header, ok bool)

	// Slice answers a peer's load request for one session of id.
	Slice(id coid.CovalueID, sessionID coid.SessionID, fromIndex int) (entries []session.Entry, ok bool)

	// Receive appends entries for sessionID into id, creating the
	// covalue from header first if the store has never seen id
	// (header is nil when the store already has it). account is left
	// for the store to resolve; peersync never inspects session
	// content to determine who is speaking.
	Receive(id coid.CovalueID, header *core.Header, sessionID coid.SessionID, fromIndex int, entries []session.Entry) (results []session.Result, err error)

	// IDs lists every covalue the store currently holds anything for,
	// used to answer a server-role peer's initial unsolicited sync.
	IDs() []coid.CovalueID
}

// MemoryStore is an in-process Store backed by internal/core.Covalue
// values held in memory, with every ruleset treated as
// RulesetUnsafeAllowAll. It grounds cmd/weave-bridge's local dev loop
// and peersync's own tests; it is not meant for production durability
// (see cmd/weave-relay's disk-backed Store for that).
type MemoryStore struct {
	mu       sync.RWMutex
	covalues map[coid.CovalueID]*core.Covalue
	account  coid.CovalueID
}

// NewMemoryStore returns an empty MemoryStore. account is the account
// covalue ID attributed to every session this store accepts writes
// under — fine for a single-user dev bridge where no real
// authorization is modeled.
func NewMemoryStore(account coid.CovalueID) *MemoryStore {
	return &MemoryStore{covalues: make(map[coid.CovalueID]*core.Covalue), account: account}
}

// Put registers an already-constructed covalue with the store, for a
// caller that created it directly (e.g. cmd/weave-bridge minting a
// fresh map covalue before connecting peers).
func (s *MemoryStore) Put(c *core.Covalue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.covalues[c.ID()] = c
}

// Get returns the covalue for id, if the store holds it.
func (s *MemoryStore) Get(id coid.CovalueID) (*core.Covalue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.covalues[id]
	return c, ok
}

func (s *MemoryStore) Known(id coid.CovalueID) (core.KnownState, bool) {
	c, ok := s.Get(id)
	if !ok {
		return core.KnownState{}, false
	}
	return c.KnownState(), true
}

func (s *MemoryStore) Header(id coid.CovalueID) (core.Header, bool) {
	c, ok := s.Get(id)
	if !ok {
		return core.Header{}, false
	}
	return c.Header(), true
}

func (s *MemoryStore) Slice(id coid.CovalueID, sessionID coid.SessionID, fromIndex int) ([]session.Entry, bool) {
	c, ok := s.Get(id)
	if !ok {
		return nil, false
	}
	return c.Slice(sessionID, fromIndex)
}

func (s *MemoryStore) Receive(id coid.CovalueID, header *core.Header, sessionID coid.SessionID, fromIndex int, entries []session.Entry) ([]session.Result, error) {
	c, ok := s.Get(id)
	if !ok {
		if header == nil {
			return nil, fmt.Errorf("peersync: %s: no header known and content message carried none", id)
		}
		created, err := core.New(*header)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.covalues[id] = created
		s.mu.Unlock()
		c = created
	}
	return c.TryAddTransactions(sessionID, s.account, fromIndex, entries)
}

func (s *MemoryStore) IDs() []coid.CovalueID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]coid.CovalueID, 0, len(s.covalues))
	for id := range s.covalues {
		ids = append(ids, id)
	}
	return ids
}
