// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/weavesync/weave/internal/core"
	"github.com/weavesync/weave/lib/codec"
	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/session"
)

// diskStore is the storage-adapter peersync.Store cmd/weave-relay
// exposes: one covalue per subdirectory of its root, a header.cbor
// file and one sessions/<encoded sessionID>.cbor file per session
// log, persisted with lib/codec's deterministic CBOR encoding (spec
// §6's "storage collaborator... authoritative for durability").
//
// account is the fixed covalue ID diskStore attributes every accepted
// write to, same simplification MemoryStore makes: this relay does
// not itself model account membership, only durability.
type diskStore struct {
	root    string
	account coid.CovalueID

	mu       sync.RWMutex
	covalues map[coid.CovalueID]*core.Covalue
}

func newDiskStore(root string, account coid.CovalueID) (*diskStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("weave-relay: creating state dir %s: %w", root, err)
	}
	s := &diskStore{root: root, account: account, covalues: make(map[coid.CovalueID]*core.Covalue)}
	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *diskStore) covalueDir(id coid.CovalueID) string {
	return filepath.Join(s.root, base64.RawURLEncoding.EncodeToString([]byte(id)))
}

func sessionFileName(sessionID coid.SessionID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(sessionID)) + ".cbor"
}

// loadAll scans root for previously persisted covalues and replays
// their session logs into memory, verifying the hash chain as it
// goes (session.Log.TryAdd re-verifies every entry).
func (s *diskStore) loadAll() error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("weave-relay: reading state dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		idBytes, err := base64.RawURLEncoding.DecodeString(entry.Name())
		if err != nil {
			continue
		}
		id := coid.CovalueID(idBytes)

		headerPath := filepath.Join(s.root, entry.Name(), "header.cbor")
		headerBytes, err := os.ReadFile(headerPath)
		if err != nil {
			return fmt.Errorf("weave-relay: reading header for %s: %w", id, err)
		}
		var header core.Header
		if err := codec.Unmarshal(headerBytes, &header); err != nil {
			return fmt.Errorf("weave-relay: decoding header for %s: %w", id, err)
		}

		sessions := make(map[coid.SessionID]*session.Log)
		sessionsDir := filepath.Join(s.root, entry.Name(), "sessions")
		sessionFiles, err := os.ReadDir(sessionsDir)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("weave-relay: reading sessions for %s: %w", id, err)
		}
		for _, sf := range sessionFiles {
			raw, err := base64.RawURLEncoding.DecodeString(sf.Name()[:len(sf.Name())-len(".cbor")])
			if err != nil {
				continue
			}
			sessionID := coid.SessionID(raw)
			agent, err := sessionID.Agent()
			if err != nil {
				return fmt.Errorf("weave-relay: %s: %w", sessionID, err)
			}
			signer, _, err := agent.Split()
			if err != nil {
				return fmt.Errorf("weave-relay: %s: %w", sessionID, err)
			}
			log := session.NewLog(signer)

			entryBytes, err := os.ReadFile(filepath.Join(sessionsDir, sf.Name()))
			if err != nil {
				return fmt.Errorf("weave-relay: reading session log %s: %w", sessionID, err)
			}
			var persisted []session.Entry
			if err := codec.Unmarshal(entryBytes, &persisted); err != nil {
				return fmt.Errorf("weave-relay: decoding session log %s: %w", sessionID, err)
			}
			for _, e := range persisted {
				if result := log.TryAdd(e.Transaction, e.AfterHash, e.Signature); result != session.Added {
					return fmt.Errorf("weave-relay: replaying %s from disk: %s", sessionID, result)
				}
			}
			sessions[sessionID] = log
		}

		covalue, err := core.Load(id, header, sessions)
		if err != nil {
			return fmt.Errorf("weave-relay: loading %s: %w", id, err)
		}
		s.covalues[id] = covalue
	}
	return nil
}

func (s *diskStore) persistHeader(id coid.CovalueID, header core.Header) error {
	dir := s.covalueDir(id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("weave-relay: creating covalue dir: %w", err)
	}
	encoded, err := codec.Marshal(header)
	if err != nil {
		return fmt.Errorf("weave-relay: encoding header: %w", err)
	}
	return writeFileAtomic(filepath.Join(dir, "header.cbor"), encoded)
}

func (s *diskStore) persistSession(id coid.CovalueID, sessionID coid.SessionID, entries []session.Entry) error {
	dir := filepath.Join(s.covalueDir(id), "sessions")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("weave-relay: creating sessions dir: %w", err)
	}
	encoded, err := codec.Marshal(entries)
	if err != nil {
		return fmt.Errorf("weave-relay: encoding session log: %w", err)
	}
	return writeFileAtomic(filepath.Join(dir, sessionFileName(sessionID)), encoded)
}

// writeFileAtomic writes data to a temporary file in path's directory,
// fsyncs it, then renames it into place — the write-temp/fsync/rename
// sequence lib/watchdog uses for its own state file, so a crash never
// leaves a partially written journal entry.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("weave-relay: creating temp file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("weave-relay: writing temp file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("weave-relay: syncing temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("weave-relay: closing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("weave-relay: renaming temp file into place: %w", err)
	}
	return nil
}

func (s *diskStore) get(id coid.CovalueID) (*core.Covalue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.covalues[id]
	return c, ok
}

func (s *diskStore) Known(id coid.CovalueID) (core.KnownState, bool) {
	c, ok := s.get(id)
	if !ok {
		return core.KnownState{}, false
	}
	return c.KnownState(), true
}

func (s *diskStore) Header(id coid.CovalueID) (core.Header, bool) {
	c, ok := s.get(id)
	if !ok {
		return core.Header{}, false
	}
	return c.Header(), true
}

func (s *diskStore) Slice(id coid.CovalueID, sessionID coid.SessionID, fromIndex int) ([]session.Entry, bool) {
	c, ok := s.get(id)
	if !ok {
		return nil, false
	}
	return c.Slice(sessionID, fromIndex)
}

func (s *diskStore) Receive(id coid.CovalueID, header *core.Header, sessionID coid.SessionID, fromIndex int, entries []session.Entry) ([]session.Result, error) {
	c, ok := s.get(id)
	if !ok {
		if header == nil {
			return nil, fmt.Errorf("weave-relay: %s: no header known and content message carried none", id)
		}
		created, err := core.New(*header)
		if err != nil {
			return nil, err
		}
		if err := s.persistHeader(id, *header); err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.covalues[id] = created
		s.mu.Unlock()
		c = created
	}

	results, err := c.TryAddTransactions(sessionID, s.account, fromIndex, entries)
	if err != nil {
		return nil, err
	}

	accepted := false
	for _, r := range results {
		if r == session.Added {
			accepted = true
			break
		}
	}
	if accepted {
		full, ok := c.Slice(sessionID, 0)
		if ok {
			if err := s.persistSession(id, sessionID, full); err != nil {
				return nil, err
			}
		}
	}
	return results, nil
}

func (s *diskStore) IDs() []coid.CovalueID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]coid.CovalueID, 0, len(s.covalues))
	for id := range s.covalues {
		ids = append(ids, id)
	}
	return ids
}
