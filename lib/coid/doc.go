// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

// Package coid defines Weave's typed, self-describing string
// identifiers: covalue IDs, sealer/signer public and secret key IDs,
// key-secret IDs, sealed-message and signature encodings, and session
// IDs.
//
// Every identifier is a distinct Go string type with a fixed prefix
// that disambiguates the kind of binary material it carries
// (co_z, sealer_z, sealerSecret_z, signer_z, signerSecret_z, key_z,
// sealed_U, signature_z) so that a value's type can never be confused
// with another's at a call site, and a raw string found in a log or
// wire message is self-describing without additional context.
//
// Short, fixed-size binary material (public keys, key-secret IDs,
// hashes, signatures) uses the "_z" suffix convention and is base58
// encoded — compact and free of characters that need escaping in
// URLs or shells. Longer, variable-length material (sealed messages,
// ciphertext) uses the "_U" suffix and is base64url encoded, which is
// faster to encode/decode at the sizes involved and avoids base58's
// leading-zero ambiguity for data that isn't a fixed-width key.
//
// Construction follows lib/ref's pattern from the teacher codebase: an
// unexported base representation plus typed constructors (NewX,
// ParseX) that validate on the way in, so a value of type SignerID in
// hand is already known to be well-formed.
package coid
