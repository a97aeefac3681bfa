// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package content

import (
	"reflect"
	"testing"
)

func TestBinaryStreamNotStartedIsUnavailable(t *testing.T) {
	b := NewBinaryStream()
	if _, _, ok := b.Chunks(true); ok {
		t.Error("expected Chunks to report unavailable before Start")
	}
}

func TestBinaryStreamUnfinishedRequiresAllowUnfinished(t *testing.T) {
	session := sessionIDForTest("s")
	b := NewBinaryStream()
	b.Apply(AppliedChange{Change: Change{Kind: KindStreamStart, Meta: &BinaryStreamMeta{MimeType: "text/plain"}}, SessionID: session})
	b.Apply(AppliedChange{Change: Change{Kind: KindStreamChunk, Value: []byte("hello")}, SessionID: session})

	if _, _, ok := b.Chunks(false); ok {
		t.Error("expected Chunks(false) to report unavailable before End")
	}

	chunks, mimeType, ok := b.Chunks(true)
	if !ok {
		t.Fatal("expected Chunks(true) to succeed before End")
	}
	if mimeType != "text/plain" || !reflect.DeepEqual(chunks, [][]byte{[]byte("hello")}) {
		t.Errorf("Chunks(true): got (%v, %v)", chunks, mimeType)
	}
}

func TestBinaryStreamCompleteAfterEnd(t *testing.T) {
	session := sessionIDForTest("s")
	b := NewBinaryStream()
	b.Apply(AppliedChange{Change: Change{Kind: KindStreamStart, Meta: &BinaryStreamMeta{MimeType: "application/octet-stream"}}, SessionID: session})
	b.Apply(AppliedChange{Change: Change{Kind: KindStreamChunk, Value: []byte("abc")}, SessionID: session})
	b.Apply(AppliedChange{Change: Change{Kind: KindStreamChunk, Value: []byte("def")}, SessionID: session})
	b.Apply(AppliedChange{Change: Change{Kind: KindStreamEnd}, SessionID: session})

	chunks, mimeType, ok := b.Chunks(false)
	if !ok {
		t.Fatal("expected Chunks(false) to succeed after End")
	}
	want := [][]byte{[]byte("abc"), []byte("def")}
	if !reflect.DeepEqual(chunks, want) || mimeType != "application/octet-stream" {
		t.Errorf("Chunks(false): got (%v, %v), want (%v, application/octet-stream)", chunks, mimeType, want)
	}
}
