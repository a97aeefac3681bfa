// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

// Package crypto provides Weave's cryptographic primitives: signing,
// sealing, transaction encryption, key-secret wrapping, and hashing.
//
// All algorithms are fixed and versioned by the coid ID prefix they
// produce (signature_z, sealed_U, key_z), following the convention
// lib/servicetoken and lib/artifactstore/encrypt.go establish in the
// teacher codebase: the scheme is not negotiated per call, it is
// chosen once and multiplexed on the prefix, so a future algorithm
// change introduces a new prefix rather than an ambiguous old one.
//
//   - Sign/Verify: Ed25519, via the stdlib crypto/ed25519 package
//     (lib/servicetoken's own convention — no third-party Ed25519
//     implementation anywhere in the corpus).
//   - Seal/Unseal: X25519 ECDH + XSalsa20-Poly1305 AEAD, i.e. exactly
//     the NaCl "box" construction, via golang.org/x/crypto/nacl/box.
//   - Transaction encryption: XSalsa20-Poly1305 under a shared
//     KeySecret, via golang.org/x/crypto/nacl/secretbox — the
//     symmetric sibling of box, so the two share key size and AEAD
//     family.
//   - Key-secret wrapping: an HKDF-derived wrap key (domain-separated
//     per lib/artifactstore/encrypt.go's precedent) sealed with
//     secretbox, never the raw newer key used directly as an AEAD key.
//   - Hashing: BLAKE3, via github.com/zeebo/blake3, exactly as
//     lib/artifact/hash.go uses it for content addressing.
//
// Private key material (SigningSecret, SealingSecret, KeySecret) is
// carried in *secret.Buffer (lib/secret) wherever it is held for more
// than the duration of one call — mmap-backed, mlock'd, excluded from
// core dumps, zeroed on Close.
package crypto
