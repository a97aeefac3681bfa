// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

// Package core implements the covalue: the content-addressed,
// append-only, session-grouped transaction log that every shared
// object in weave is built from. A Covalue aggregates one or more
// session logs (lib/session), authorizes writes against a ruleset
// (lib/group), and materializes a deterministically merged CRDT view
// (lib/content) from the verified transactions it holds.
//
// Covalue itself never performs network I/O or decides which peer to
// talk to — that's lib/peersync's job, driven by the weave root
// package. Covalue's surface is exactly what spec'd sync and the
// local API need: accept transactions from any source (local write or
// peer gossip) through one authorizing, cache-invalidating entry
// point, and answer "what do you currently have" for both a
// materialized view and a sync handshake.
package core
