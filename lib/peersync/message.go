// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package peersync

import (
	"encoding/base64"
	"fmt"

	"github.com/weavesync/weave/internal/core"
	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/session"
)

// Type names one of the five sync record kinds exchanged over a
// peer's duplex channel.
type Type string

const (
	// TypeKnown announces "here is what I have for id": every
	// sessionID this end's replica holds, and its length.
	TypeKnown Type = "known"
	// TypeLoad asks the peer to send entries starting at the given
	// per-session indices.
	TypeLoad Type = "load"
	// TypeContent carries entries the peer lacked, optionally with
	// the covalue's header when the peer has never seen id before.
	TypeContent Type = "content"
	// TypeDone is an optional acknowledgement sent after a backfill
	// completes.
	TypeDone Type = "done"
	// TypePing is the periodic idle-timer reset record; it carries no
	// covalue payload.
	TypePing Type = "ping"
)

// Message is the wire shape of every record exchanged between peers:
// a single flat JSON object discriminated by Type, matching spec
// §4.8's "JSON records" wording (not a tagged union of distinct Go
// types, since a peer implementation in another language needs the
// same flat shape).
type Message struct {
	Type Type `json:"type"`

	// ID names the covalue this record concerns. Unset (empty) for
	// ping.
	ID coid.CovalueID `json:"id,omitempty"`

	// Header is attached to a content message the first time a peer
	// sends entries for a covalue the receiver has never seen.
	Header *core.Header `json:"header,omitempty"`

	// Sessions carries per-session log lengths for known, or
	// requested start indices for load.
	Sessions map[coid.SessionID]int `json:"sessions,omitempty"`

	// New carries the entries a content message is delivering, keyed
	// by session.
	New map[coid.SessionID][]wireEntry `json:"new,omitempty"`

	// Time and DC are ping's payload: a sender timestamp (Unix
	// milliseconds) and an opaque data-channel tag, per spec §6's
	// `{type:"ping", time, dc}`.
	Time int64  `json:"time,omitempty"`
	DC   string `json:"dc,omitempty"`
}

// wireEntry is session.Entry's JSON form. Transaction already
// marshals as a base64 string (encoding/json's default for []byte);
// AfterHash needs an explicit conversion since crypto.Hash is a
// [32]byte array, which encoding/json would otherwise render as 32
// small integers. Large transactions (binary-stream chunk data, in
// practice — map/list edits rarely cross the threshold) are zstd-
// compressed before that base64 encoding; Compressed records whether
// Transaction needs decompressing on the receiving end.
type wireEntry struct {
	Transaction []byte         `json:"transaction"`
	Compressed  bool           `json:"compressed,omitempty"`
	AfterHash   string         `json:"afterHash"`
	Signature   coid.Signature `json:"signature"`
}

func toWireEntry(e session.Entry) wireEntry {
	transaction, compressed := compressTransaction(e.Transaction)
	return wireEntry{
		Transaction: transaction,
		Compressed:  compressed,
		AfterHash:   base64.RawURLEncoding.EncodeToString(e.AfterHash[:]),
		Signature:   e.Signature,
	}
}

func fromWireEntry(w wireEntry) (session.Entry, error) {
	raw, err := base64.RawURLEncoding.DecodeString(w.AfterHash)
	if err != nil {
		return session.Entry{}, fmt.Errorf("peersync: decoding afterHash: %w", err)
	}
	if len(raw) != 32 {
		return session.Entry{}, fmt.Errorf("peersync: afterHash has %d bytes, want 32", len(raw))
	}
	var hash [32]byte
	copy(hash[:], raw)
	transaction, err := decompressTransaction(w.Transaction, w.Compressed)
	if err != nil {
		return session.Entry{}, err
	}
	return session.Entry{
		Transaction: transaction,
		AfterHash:   hash,
		Signature:   w.Signature,
	}, nil
}

func toWireEntries(entries []session.Entry) []wireEntry {
	out := make([]wireEntry, len(entries))
	for i, e := range entries {
		out[i] = toWireEntry(e)
	}
	return out
}

func fromWireEntries(entries []wireEntry) ([]session.Entry, error) {
	out := make([]session.Entry, len(entries))
	for i, w := range entries {
		entry, err := fromWireEntry(w)
		if err != nil {
			return nil, err
		}
		out[i] = entry
	}
	return out, nil
}

func knownMessage(id coid.CovalueID, header *core.Header, sessions map[coid.SessionID]int) Message {
	return Message{Type: TypeKnown, ID: id, Header: header, Sessions: sessions}
}

func loadMessage(id coid.CovalueID, sessions map[coid.SessionID]int) Message {
	return Message{Type: TypeLoad, ID: id, Sessions: sessions}
}

func contentMessage(id coid.CovalueID, header *core.Header, new map[coid.SessionID][]session.Entry) Message {
	wireNew := make(map[coid.SessionID][]wireEntry, len(new))
	for sessionID, entries := range new {
		wireNew[sessionID] = toWireEntries(entries)
	}
	return Message{Type: TypeContent, ID: id, Header: header, New: wireNew}
}

func doneMessage(id coid.CovalueID) Message {
	return Message{Type: TypeDone, ID: id}
}
