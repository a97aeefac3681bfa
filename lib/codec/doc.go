// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Weave's standard CBOR encoding configuration.
//
// Weave uses two serialization formats with a clear boundary:
//
//   - JSON for the peer sync wire protocol (lib/peersync) and CLI
//     output: known/load/content/done messages are JSON records per
//     the sync protocol, chosen so any duplex text channel (including
//     a human reading a log) can carry them.
//   - CBOR for everything that is hashed, signed, or persisted
//     locally: the change list inside a transaction, on-disk journal
//     records (cmd/weave-relay), and internal sync-manager snapshots.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every Weave package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes — required wherever CBOR output feeds a hash or signature.
//
// lib/canon, not this package, is used for the covalue header/transaction
// hashing and signing path (it targets the JSON-shaped canonical form
// the sync protocol and cross-implementation hashing require). This
// package is for internal-only CBOR: transaction change lists and
// on-disk journals that never cross the wire protocol boundary.
//
// For buffer-oriented operations (files, journal records):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (journal files):
//
//	encoder := codec.NewEncoder(file)
//	decoder := codec.NewDecoder(file)
//
// # Struct Tag Rules
//
// The struct tag on a type documents its serialization format:
//
//   - `cbor` tag: this type is ONLY ever serialized as CBOR. Examples:
//     lib/content.Change, the journal record types in cmd/weave-relay.
//   - `json` tag: this type may be serialized as BOTH JSON and CBOR.
//     fxamacker/cbor v2 reads `json` tags as fallback when `cbor`
//     tags are absent, so a single `json` tag controls field naming
//     and omitempty for both formats. Examples: lib/peersync's wire
//     message types, which are JSON on the wire but also get CBOR-
//     journaled by cmd/weave-relay.
//
// Never use both `cbor` and `json` tags on the same field. The tag
// choice documents the contract — doubling up is noise that obscures
// whether a type participates in JSON serialization.
package codec
