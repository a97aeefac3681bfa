// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package content

import (
	"sort"
	"sync"
)

// EditInfo records who last wrote a Map key and when, retained for UI
// per spec §4.6 ("per-key edit history ... for UI").
type EditInfo struct {
	By     AppliedChange
	Exists bool
}

// Map is a last-writer-wins map, where "last" means "last applied",
// i.e. latest in internal/core's deterministic (madeAt, sessionID)
// merge order — callers must Apply changes in that order. Delete is
// an explicit tombstone, not removal, so a later concurrent Set from
// before the delete was observed doesn't resurrect a stale value.
type Map struct {
	mu       sync.RWMutex
	values   map[string]any
	deleted  map[string]bool
	lastEdit map[string]AppliedChange
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{
		values:   make(map[string]any),
		deleted:  make(map[string]bool),
		lastEdit: make(map[string]AppliedChange),
	}
}

func (m *Map) TypeTag() TypeTag { return TypeMap }

// Apply applies one Set or Delete change. Changes must be applied in
// deterministic merge order; Map does not itself compare timestamps.
func (m *Map) Apply(applied AppliedChange) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch applied.Change.Kind {
	case KindSet:
		m.values[applied.Change.Key] = applied.Change.Value
		delete(m.deleted, applied.Change.Key)
		m.lastEdit[applied.Change.Key] = applied
	case KindDelete:
		delete(m.values, applied.Change.Key)
		m.deleted[applied.Change.Key] = true
		m.lastEdit[applied.Change.Key] = applied
	}
}

// Get returns the current value for key and whether it is present
// (false for a never-set or deleted key).
func (m *Map) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	return value, ok
}

// Keys returns the currently-present (non-deleted) keys, sorted for
// deterministic iteration.
func (m *Map) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for key := range m.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// LastEditAt returns the provenance of the most recent Set or Delete
// applied to key.
func (m *Map) LastEditAt(key string) (EditInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	edit, ok := m.lastEdit[key]
	if !ok {
		return EditInfo{}, false
	}
	return EditInfo{By: edit, Exists: true}, true
}
