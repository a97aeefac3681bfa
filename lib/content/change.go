// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package content

import "github.com/weavesync/weave/lib/coid"

// ChangeKind tags the shape of one Change.
type ChangeKind string

const (
	KindSet         ChangeKind = "set"
	KindDelete      ChangeKind = "delete"
	KindInsert      ChangeKind = "insert"
	KindListDelete  ChangeKind = "del"
	KindPush        ChangeKind = "push"
	KindStreamStart ChangeKind = "start"
	KindStreamChunk ChangeKind = "chunk"
	KindStreamEnd   ChangeKind = "end"
)

// Privacy marks whether a change's intended audience is the full
// ruleset-authorized writer set (Trusting) or only current group
// members (Private). The transaction carrying the change is the unit
// that's actually encrypted (internal/core); Privacy here records
// what the caller asked for, for UI/audit purposes.
type Privacy string

const (
	Private  Privacy = "private"
	Trusting Privacy = "trusting"
)

// Change is one CRDT operation: a Map set/delete, a List
// insert/del, a Stream push, or a BinaryStream start/chunk/end.
// Which fields are meaningful depends on Kind.
type Change struct {
	Kind ChangeKind `cbor:"kind"`

	// Map: the key being set or deleted.
	Key string `cbor:"key,omitempty"`

	// List: the position being inserted at (KindInsert) or tombstoned
	// (KindListDelete). After is the predecessor position a new
	// element is inserted immediately following.
	Position Position `cbor:"pos,omitempty"`
	After    Position `cbor:"after,omitempty"`

	// Map/List/Stream: the value being set, inserted, or pushed.
	// BinaryStream KindStreamChunk: raw chunk bytes.
	Value any `cbor:"value,omitempty"`

	// BinaryStream KindStreamStart metadata.
	Meta *BinaryStreamMeta `cbor:"meta,omitempty"`

	Privacy Privacy `cbor:"privacy,omitempty"`
}

// AppliedChange pairs a Change with the provenance internal/core
// attaches once it has decrypted and ordered the transaction the
// change came from: who wrote it, under which session, and when.
type AppliedChange struct {
	Change    Change
	SessionID coid.SessionID
	Agent     coid.AgentID
	MadeAt    int64
}

// TypeTag identifies which content type a covalue's header declares,
// mirroring spec §3's header `type` field.
type TypeTag string

const (
	TypeMap          TypeTag = "comap"
	TypeList         TypeTag = "colist"
	TypeStream       TypeTag = "costream"
	TypeBinaryStream TypeTag = "binary-costream"
)

// Content is the tagged-variant interface every materialized covalue
// view satisfies (spec §9's "Dynamic CRDT shape" note).
type Content interface {
	TypeTag() TypeTag
	Apply(AppliedChange)
}
