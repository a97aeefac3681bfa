// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package coid

import "testing"

func TestCovalueIDRoundTrip(t *testing.T) {
	var hash [32]byte
	for i := range hash {
		hash[i] = byte(i)
	}

	id := NewCovalueID(hash)
	if err := id.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	decoded, err := id.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if decoded != hash {
		t.Errorf("round-trip mismatch: got %x, want %x", decoded, hash)
	}
}

func TestCovalueIDRejectsWrongPrefix(t *testing.T) {
	id := CovalueID("sealer_zabc123")
	if err := id.Validate(); err == nil {
		t.Error("expected error for wrong prefix, got nil")
	}
}

func TestAgentIDSplit(t *testing.T) {
	var signerPub, sealerPub [32]byte
	signerPub[0] = 1
	sealerPub[0] = 2

	signer := NewSignerID(signerPub)
	sealer := NewSealerID(sealerPub)
	agent := NewAgentID(signer, sealer)

	gotSigner, gotSealer, err := agent.Split()
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if gotSigner != signer {
		t.Errorf("signer mismatch: got %s, want %s", gotSigner, signer)
	}
	if gotSealer != sealer {
		t.Errorf("sealer mismatch: got %s, want %s", gotSealer, sealer)
	}
}

func TestSessionIDRoundTrip(t *testing.T) {
	var signerPub, sealerPub [32]byte
	signerPub[0] = 9
	sealerPub[0] = 8
	agent := NewAgentID(NewSignerID(signerPub), NewSealerID(sealerPub))

	session := NewSessionID(agent, 42)

	gotAgent, err := session.Agent()
	if err != nil {
		t.Fatalf("Agent: %v", err)
	}
	if gotAgent != agent {
		t.Errorf("agent mismatch: got %s, want %s", gotAgent, agent)
	}

	gotNonce, err := session.Nonce()
	if err != nil {
		t.Fatalf("Nonce: %v", err)
	}
	if gotNonce != 42 {
		t.Errorf("nonce mismatch: got %d, want 42", gotNonce)
	}
}

func TestSealedRoundTrip(t *testing.T) {
	ciphertext := []byte("some ciphertext bytes, not necessarily printable \x00\xff")
	sealed := NewSealed(ciphertext)
	if err := sealed.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	decoded, err := sealed.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(decoded) != string(ciphertext) {
		t.Errorf("round-trip mismatch: got %q, want %q", decoded, ciphertext)
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	raw := make([]byte, 64)
	for i := range raw {
		raw[i] = byte(i * 3)
	}
	sig := NewSignature(raw)
	if err := sig.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	decoded, err := sig.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if len(decoded) != len(raw) {
		t.Fatalf("length mismatch: got %d, want %d", len(decoded), len(raw))
	}
	for i := range raw {
		if decoded[i] != raw[i] {
			t.Fatalf("byte %d mismatch: got %x, want %x", i, decoded[i], raw[i])
		}
	}
}

func TestBase58RoundTripWithLeadingZeros(t *testing.T) {
	data := []byte{0, 0, 1, 2, 3, 0, 4}
	encoded := encodeBase58(data)
	decoded, err := decodeBase58(encoded)
	if err != nil {
		t.Fatalf("decodeBase58: %v", err)
	}
	if string(decoded) != string(data) {
		t.Errorf("round-trip mismatch: got %x, want %x", decoded, data)
	}
}

func TestBase58RejectsInvalidCharacters(t *testing.T) {
	// '0', 'O', 'I', 'l' are excluded from the base58 alphabet.
	if _, err := decodeBase58("0invalid"); err == nil {
		t.Error("expected error for invalid base58 character '0', got nil")
	}
}

func TestInviteLinkRoundTripWithHint(t *testing.T) {
	var hash [32]byte
	hash[0] = 7
	link := InviteLink{
		ValueHint: "team-notes",
		ValueID:   NewCovalueID(hash),
		Secret:    NewInviteSecret([]byte("secret-material")),
	}

	parsed, err := ParseInviteLink(link.Format())
	if err != nil {
		t.Fatalf("ParseInviteLink: %v", err)
	}
	if parsed != link {
		t.Errorf("round-trip mismatch: got %+v, want %+v", parsed, link)
	}
}

func TestInviteLinkRoundTripWithoutHint(t *testing.T) {
	var hash [32]byte
	hash[0] = 3
	link := InviteLink{
		ValueID: NewCovalueID(hash),
		Secret:  NewInviteSecret([]byte("other-secret")),
	}

	parsed, err := ParseInviteLink(link.Format())
	if err != nil {
		t.Fatalf("ParseInviteLink: %v", err)
	}
	if parsed != link {
		t.Errorf("round-trip mismatch: got %+v, want %+v", parsed, link)
	}
}
