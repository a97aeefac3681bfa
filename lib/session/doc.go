// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

// Package session implements the append-only signed hash chain that
// backs one (covalue, session) pair. A session log belongs to exactly
// one agent writing under exactly one nonce; it knows nothing about
// peers, covalues, or content types — it is purely a local structure
// for appending and verifying (transaction, afterHash, signature)
// triples.
//
// The verification discipline mirrors lib/servicetoken's Mint/Verify
// split: Sign is used by the log's own owner to grow the chain,
// TryAdd is used when accepting entries minted elsewhere (a peer, or
// a log loaded fresh from storage), and Verify re-derives the entire
// chain from scratch for the "just loaded from a peer, trust nothing
// yet" case, matching VerifyAt's full-reverification counterpart to
// incremental trust.
package session
