// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package crypto

import "testing"

func TestEncryptDecryptForTransactionRoundTrip(t *testing.T) {
	key, err := NewKeySecret()
	if err != nil {
		t.Fatalf("NewKeySecret: %v", err)
	}
	defer key.Close()

	plaintext := []byte(`[{"op":"set","key":"title","value":"hello"}]`)
	nonceMaterial := map[string]any{"coValueID": "co_zabc", "sessionID": "signer_zfoo_session_0", "txIndex": 3}

	ciphertext, err := EncryptForTransaction(plaintext, key, nonceMaterial)
	if err != nil {
		t.Fatalf("EncryptForTransaction: %v", err)
	}

	decrypted, ok := DecryptForTransaction(ciphertext, key, nonceMaterial)
	if !ok {
		t.Fatal("DecryptForTransaction: expected ok=true")
	}
	if string(decrypted) != string(plaintext) {
		t.Errorf("round-trip mismatch: got %q, want %q", decrypted, plaintext)
	}
}

func TestDecryptForTransactionWrongKeyFails(t *testing.T) {
	key, err := NewKeySecret()
	if err != nil {
		t.Fatalf("NewKeySecret: %v", err)
	}
	defer key.Close()

	wrongKey, err := NewKeySecret()
	if err != nil {
		t.Fatalf("NewKeySecret (wrong): %v", err)
	}
	defer wrongKey.Close()

	nonceMaterial := "fixed"
	ciphertext, err := EncryptForTransaction([]byte("secret content"), key, nonceMaterial)
	if err != nil {
		t.Fatalf("EncryptForTransaction: %v", err)
	}

	if _, ok := DecryptForTransaction(ciphertext, wrongKey, nonceMaterial); ok {
		t.Error("expected ok=false for wrong key")
	}
}

func TestDecryptForTransactionTamperedCiphertextFails(t *testing.T) {
	key, err := NewKeySecret()
	if err != nil {
		t.Fatalf("NewKeySecret: %v", err)
	}
	defer key.Close()

	nonceMaterial := "fixed"
	ciphertext, err := EncryptForTransaction([]byte("secret content"), key, nonceMaterial)
	if err != nil {
		t.Fatalf("EncryptForTransaction: %v", err)
	}
	ciphertext[len(ciphertext)-1] ^= 0xff

	if _, ok := DecryptForTransaction(ciphertext, key, nonceMaterial); ok {
		t.Error("expected ok=false for tampered ciphertext")
	}
}

func TestEncryptForTransactionDeterministic(t *testing.T) {
	key, err := NewKeySecret()
	if err != nil {
		t.Fatalf("NewKeySecret: %v", err)
	}
	defer key.Close()

	nonceMaterial := "same material every time"
	first, err := EncryptForTransaction([]byte("payload"), key, nonceMaterial)
	if err != nil {
		t.Fatalf("EncryptForTransaction (first): %v", err)
	}
	second, err := EncryptForTransaction([]byte("payload"), key, nonceMaterial)
	if err != nil {
		t.Fatalf("EncryptForTransaction (second): %v", err)
	}
	if string(first) != string(second) {
		t.Error("expected deterministic ciphertext for identical key, plaintext, and nonce material")
	}
}
