// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package content

import (
	"sort"
	"sync"

	"github.com/weavesync/weave/lib/coid"
)

// Stream is an unordered-across-sessions, ordered-within-session
// multiset: each session contributes its own linear push sequence,
// per spec §4.6.
type Stream struct {
	mu         sync.RWMutex
	perSession map[coid.SessionID][]AppliedChange
}

// NewStream returns an empty Stream.
func NewStream() *Stream {
	return &Stream{perSession: make(map[coid.SessionID][]AppliedChange)}
}

func (s *Stream) TypeTag() TypeTag { return TypeStream }

// Apply applies one Push change.
func (s *Stream) Apply(applied AppliedChange) {
	if applied.Change.Kind != KindPush {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perSession[applied.SessionID] = append(s.perSession[applied.SessionID], applied)
}

// PerSession returns the full push sequence for one session, in the
// order it was applied (which, within a single session, is always
// append order — a session log is linear).
func (s *Stream) PerSession(session coid.SessionID) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pushes := s.perSession[session]
	out := make([]any, len(pushes))
	for i, push := range pushes {
		out[i] = push.Change.Value
	}
	return out
}

// Me returns the most recently pushed value on the given session, and
// whether that session has pushed anything.
func (s *Stream) Me(session coid.SessionID) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pushes := s.perSession[session]
	if len(pushes) == 0 {
		return nil, false
	}
	return pushes[len(pushes)-1].Change.Value, true
}

// PerAccountFold merges the push sequences of the given sessions
// (expected to be every session ever opened by one account) into a
// single chronological sequence, ordered by (madeAt, sessionID) —
// the same tiebreak internal/core uses for transaction merge. The
// caller supplies the session set because Stream has no notion of
// which sessions belong to which account; that mapping lives in the
// account covalue, resolved by the weave package.
func (s *Stream) PerAccountFold(sessions []coid.SessionID) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []AppliedChange
	for _, session := range sessions {
		all = append(all, s.perSession[session]...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].MadeAt != all[j].MadeAt {
			return all[i].MadeAt < all[j].MadeAt
		}
		return all[i].SessionID < all[j].SessionID
	})

	out := make([]any, len(all))
	for i, push := range all {
		out[i] = push.Change.Value
	}
	return out
}

// PerAccountLast returns the most recent push across the given
// sessions, per PerAccountFold's ordering.
func (s *Stream) PerAccountLast(sessions []coid.SessionID) (any, bool) {
	folded := s.PerAccountFold(sessions)
	if len(folded) == 0 {
		return nil, false
	}
	return folded[len(folded)-1], true
}
