// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package coid

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Prefixes identify the kind of binary material an identifier string
// carries. See package doc for the "_z" (base58) vs "_U" (base64url)
// suffix convention.
const (
	prefixCovalue       = "co_z"
	prefixSealerID       = "sealer_z"
	prefixSealerSecretID = "sealerSecret_z"
	prefixSignerID       = "signer_z"
	prefixSignerSecretID = "signerSecret_z"
	prefixKeyID          = "key_z"
	prefixSealed         = "sealed_U"
	prefixSignature      = "signature_z"
)

// CovalueID identifies a covalue: "co_z<base58 hash of the canonical header>".
type CovalueID string

// NewCovalueID constructs a CovalueID from a 32-byte header hash.
func NewCovalueID(headerHash [32]byte) CovalueID {
	return CovalueID(prefixCovalue + encodeBase58(headerHash[:]))
}

// String returns the identifier string.
func (id CovalueID) String() string { return string(id) }

// Validate checks that id has the co_z prefix and decodes as base58.
func (id CovalueID) Validate() error {
	return validatePrefixed(string(id), prefixCovalue)
}

// IsZero reports whether id is the empty string.
func (id CovalueID) IsZero() bool { return id == "" }

// Hash returns the decoded 32-byte header hash embedded in id.
func (id CovalueID) Hash() ([32]byte, error) {
	return decodeFixed32(string(id), prefixCovalue)
}

// SealerID is the public half of an agent's sealing (X25519
// key-exchange) identity: "sealer_z<base58 pubkey>".
type SealerID string

// NewSealerID constructs a SealerID from a 32-byte X25519 public key.
func NewSealerID(pub [32]byte) SealerID {
	return SealerID(prefixSealerID + encodeBase58(pub[:]))
}

func (id SealerID) String() string { return string(id) }
func (id SealerID) Validate() error {
	return validatePrefixed(string(id), prefixSealerID)
}

// Bytes returns the decoded 32-byte X25519 public key.
func (id SealerID) Bytes() ([32]byte, error) {
	return decodeFixed32(string(id), prefixSealerID)
}

// SealerSecretID is the base58 string form of the private half of a
// sealing identity, used only transiently (e.g. formatting for a
// secret.Buffer's String() at an API boundary); the bytes themselves
// are always carried in guarded memory, never a Go string, in
// long-lived state.
type SealerSecretID string

func (id SealerSecretID) Validate() error {
	return validatePrefixed(string(id), prefixSealerSecretID)
}

// SignerID is the public half of an agent's signing (Ed25519) identity:
// "signer_z<base58 pubkey>".
type SignerID string

// NewSignerID constructs a SignerID from a 32-byte Ed25519 public key.
func NewSignerID(pub [32]byte) SignerID {
	return SignerID(prefixSignerID + encodeBase58(pub[:]))
}

func (id SignerID) String() string { return string(id) }
func (id SignerID) Validate() error {
	return validatePrefixed(string(id), prefixSignerID)
}

// Bytes returns the decoded 32-byte Ed25519 public key.
func (id SignerID) Bytes() ([32]byte, error) {
	return decodeFixed32(string(id), prefixSignerID)
}

// SignerSecretID is the base58 string form of the private half of a
// signing identity. Same transient-use caveat as SealerSecretID.
type SignerSecretID string

func (id SignerSecretID) Validate() error {
	return validatePrefixed(string(id), prefixSignerSecretID)
}

// KeyID identifies a KeySecret: "key_z<base58 shortHash(pubMaterial)>".
// KeyID is 16 bytes of hash material (a ShortHash), not the key itself.
type KeyID string

// NewKeyID constructs a KeyID from a 16-byte short hash.
func NewKeyID(shortHash [16]byte) KeyID {
	return KeyID(prefixKeyID + encodeBase58(shortHash[:]))
}

func (id KeyID) String() string { return string(id) }
func (id KeyID) Validate() error {
	return validatePrefixed(string(id), prefixKeyID)
}

// Sealed is a sealed (encrypted-to-one-recipient) message:
// "sealed_U<base64url ciphertext>".
type Sealed string

// NewSealed constructs a Sealed value from raw ciphertext bytes.
func NewSealed(ciphertext []byte) Sealed {
	return Sealed(prefixSealed + base64.RawURLEncoding.EncodeToString(ciphertext))
}

func (s Sealed) String() string { return string(s) }
func (s Sealed) Validate() error {
	return validatePrefixedBase64(string(s), prefixSealed)
}

// Bytes returns the decoded ciphertext.
func (s Sealed) Bytes() ([]byte, error) {
	rest, ok := strings.CutPrefix(string(s), prefixSealed)
	if !ok {
		return nil, fmt.Errorf("coid: %q is not a sealed_U value", s)
	}
	return base64.RawURLEncoding.DecodeString(rest)
}

// Signature is an Ed25519 signature: "signature_z<base58 bytes>".
type Signature string

// NewSignature constructs a Signature from raw signature bytes
// (64 bytes for Ed25519).
func NewSignature(raw []byte) Signature {
	return Signature(prefixSignature + encodeBase58(raw))
}

func (s Signature) String() string { return string(s) }
func (s Signature) Validate() error {
	return validatePrefixed(string(s), prefixSignature)
}

// Bytes returns the decoded signature bytes.
func (s Signature) Bytes() ([]byte, error) {
	rest, ok := strings.CutPrefix(string(s), prefixSignature)
	if !ok {
		return nil, fmt.Errorf("coid: %q is not a signature_z value", s)
	}
	return decodeBase58(rest)
}

// AgentID is the composite identity of an agent: its signer and
// sealer public IDs joined by a slash, e.g.
// "signer_z.../sealer_z...". AgentID is what a covalue's "account"
// content lists as a speaking identity.
type AgentID string

// NewAgentID joins a signer and sealer ID into a composite AgentID.
func NewAgentID(signer SignerID, sealer SealerID) AgentID {
	return AgentID(string(signer) + "/" + string(sealer))
}

func (id AgentID) String() string { return string(id) }

// Split decomposes an AgentID into its signer and sealer halves.
func (id AgentID) Split() (SignerID, SealerID, error) {
	parts := strings.SplitN(string(id), "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("coid: %q is not a valid agent ID (expected signer_z.../sealer_z...)", id)
	}
	signer := SignerID(parts[0])
	sealer := SealerID(parts[1])
	if err := signer.Validate(); err != nil {
		return "", "", err
	}
	if err := sealer.Validate(); err != nil {
		return "", "", err
	}
	return signer, sealer, nil
}

// SessionID identifies one (agent, nonce) writing context:
// "<agentID>_session_<nonce>".
type SessionID string

// NewSessionID constructs a SessionID for the given agent and nonce.
func NewSessionID(agent AgentID, nonce uint64) SessionID {
	return SessionID(string(agent) + "_session_" + strconv.FormatUint(nonce, 10))
}

func (id SessionID) String() string { return string(id) }

// Agent returns the AgentID embedded in the session ID.
func (id SessionID) Agent() (AgentID, error) {
	agent, _, err := id.split()
	return agent, err
}

// Nonce returns the numeric nonce embedded in the session ID.
func (id SessionID) Nonce() (uint64, error) {
	_, nonce, err := id.split()
	return nonce, err
}

func (id SessionID) split() (AgentID, uint64, error) {
	const marker = "_session_"
	index := strings.LastIndex(string(id), marker)
	if index < 0 {
		return "", 0, fmt.Errorf("coid: %q is not a valid session ID (missing %q)", id, marker)
	}
	agent := AgentID(id[:index])
	if _, _, err := agent.Split(); err != nil {
		return "", 0, err
	}
	nonce, err := strconv.ParseUint(string(id[index+len(marker):]), 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("coid: %q has a non-numeric session nonce: %w", id, err)
	}
	return agent, nonce, nil
}

// validatePrefixed checks that s has prefix and that the remainder
// decodes as base58.
func validatePrefixed(s, prefix string) error {
	rest, ok := strings.CutPrefix(s, prefix)
	if !ok {
		return fmt.Errorf("coid: %q does not have expected prefix %q", s, prefix)
	}
	if rest == "" {
		return fmt.Errorf("coid: %q has empty payload after prefix %q", s, prefix)
	}
	if _, err := decodeBase58(rest); err != nil {
		return fmt.Errorf("coid: %q: %w", s, err)
	}
	return nil
}

// validatePrefixedBase64 checks that s has prefix and that the
// remainder decodes as base64url (unpadded).
func validatePrefixedBase64(s, prefix string) error {
	rest, ok := strings.CutPrefix(s, prefix)
	if !ok {
		return fmt.Errorf("coid: %q does not have expected prefix %q", s, prefix)
	}
	if _, err := base64.RawURLEncoding.DecodeString(rest); err != nil {
		return fmt.Errorf("coid: %q: %w", s, err)
	}
	return nil
}

// decodeFixed32 validates the prefix and decodes the remainder as a
// fixed 32-byte base58 value.
func decodeFixed32(s, prefix string) ([32]byte, error) {
	var out [32]byte
	rest, ok := strings.CutPrefix(s, prefix)
	if !ok {
		return out, fmt.Errorf("coid: %q does not have expected prefix %q", s, prefix)
	}
	decoded, err := decodeBase58(rest)
	if err != nil {
		return out, fmt.Errorf("coid: %q: %w", s, err)
	}
	if len(decoded) != 32 {
		return out, fmt.Errorf("coid: %q decodes to %d bytes, want 32", s, len(decoded))
	}
	copy(out[:], decoded)
	return out, nil
}
