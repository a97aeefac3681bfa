// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/session"
)

// KnownState is what a peer reports about a covalue it has, used by
// lib/peersync to decide which session slices to request or send
// (spec §4.8's "known" message: "here is what I have for id").
type KnownState struct {
	ID       coid.CovalueID
	Sessions map[coid.SessionID]int
}

// KnownState reports the covalue's ID and the current length of every
// session log it holds.
func (c *Covalue) KnownState() KnownState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sessions := make(map[coid.SessionID]int, len(c.sessions))
	for sessionID, log := range c.sessions {
		sessions[sessionID] = log.Length()
	}
	return KnownState{ID: c.id, Sessions: sessions}
}

// Slice returns sessionID's entries from fromIndex onward, for
// answering a peer's "load" request. ok is false if the covalue holds
// no log for sessionID at all.
func (c *Covalue) Slice(sessionID coid.SessionID, fromIndex int) (entries []session.Entry, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	log, found := c.sessions[sessionID]
	if !found {
		return nil, false
	}
	return log.Slice(fromIndex), true
}
