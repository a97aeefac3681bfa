// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

// Package content implements the four CRDT content types a covalue's
// materialization can produce — Map, List, Stream, and BinaryStream —
// plus the Change union that a transaction's plaintext is a list of.
//
// None of these types know about sessions, signatures, or encryption;
// internal/core decrypts and orders transactions and feeds the
// resulting Change values to a content value's Apply method one at a
// time, in the deterministic merge order spec §4.5 defines. A content
// value never reorders what it's given — ordering is internal/core's
// job, last-writer-wins-by-application-order is this package's.
package content
