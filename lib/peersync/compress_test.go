// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package peersync

import (
	"bytes"
	"strings"
	"testing"

	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/crypto"
	"github.com/weavesync/weave/lib/session"
)

func TestCompressTransactionRoundTrip(t *testing.T) {
	large := []byte(strings.Repeat("weave-binary-stream-chunk-data-", 64))

	compressed, ok := compressTransaction(large)
	if !ok {
		t.Fatal("expected a large, compressible transaction to be compressed")
	}
	if len(compressed) >= len(large) {
		t.Errorf("compressed size %d not smaller than original %d", len(compressed), len(large))
	}

	restored, err := decompressTransaction(compressed, true)
	if err != nil {
		t.Fatalf("decompressTransaction: %v", err)
	}
	if !bytes.Equal(restored, large) {
		t.Error("decompressed transaction does not match original")
	}
}

func TestCompressTransactionBelowThreshold(t *testing.T) {
	small := []byte("short")
	out, ok := compressTransaction(small)
	if ok {
		t.Error("expected a transaction under the threshold to be left uncompressed")
	}
	if !bytes.Equal(out, small) {
		t.Error("uncompressed transaction was mutated")
	}
}

func TestWireEntryRoundTripsLargeTransaction(t *testing.T) {
	large := bytes.Repeat([]byte("chunk"), 512)
	entry := session.Entry{
		Transaction: large,
		AfterHash:   crypto.Hash{1, 2, 3},
		Signature:   coid.Signature("sig_test"),
	}

	wire := toWireEntry(entry)
	if !wire.Compressed {
		t.Fatal("expected a large transaction to be marked compressed on the wire")
	}

	restored, err := fromWireEntry(wire)
	if err != nil {
		t.Fatalf("fromWireEntry: %v", err)
	}
	if !bytes.Equal(restored.Transaction, large) {
		t.Error("round-tripped transaction does not match original")
	}
	if restored.AfterHash != entry.AfterHash {
		t.Error("round-tripped AfterHash does not match original")
	}
}
