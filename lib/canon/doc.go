// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

// Package canon provides Weave's canonical, order-independent byte
// encoding for values that are hashed, signed, or used as AEAD nonce
// material.
//
// A covalue's ID is the hash of its header; a session entry's
// after-hash chains in the hash of each transaction; a sealed
// message's nonce is derived from the hash of its nonce material. All
// three require that logically equal values — regardless of which
// field was set first, or which Go struct tag order a type declares —
// produce byte-identical encodings on every replica, including
// replicas written in a different language. JSON object key order is
// not part of JSON's data model, so two encoders that both produce
// valid JSON for the same map can disagree on byte order; this package
// removes that degree of freedom.
//
// Canonicalize walks v (structs, maps, slicesraw, and JSON primitives)
// and produces the canonical encoding: object keys sorted
// lexicographically at every depth, arrays left in insertion order,
// numbers in their shortest round-trip decimal form, strings as UTF-8.
// Go's encoding/json already sorts map[string]any keys when marshaling,
// so Canonicalize's job is mostly to get every input into that shape
// first — structs are re-marshaled through a generic map so their
// field order (which json.Marshal otherwise preserves verbatim) is
// normalized too.
package canon
