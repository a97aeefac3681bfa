// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package content

import "sync"

// MaxRecommendedTxSize bounds how many bytes of chunk payload a
// single transaction should carry when writing a binary stream.
// It's advisory — BinaryStream itself accepts chunks of any size —
// producers (the weave package, cmd/weave-bridge) split large blobs
// at this boundary so no single transaction dominates a sync message.
const MaxRecommendedTxSize = 100 * 1024

// BinaryStreamMeta describes a binary stream's opener, spec §4.6.
type BinaryStreamMeta struct {
	MimeType       string `cbor:"mimeType"`
	TotalSizeBytes int64  `cbor:"totalSizeBytes,omitempty"`
	FileName       string `cbor:"fileName,omitempty"`
}

// BinaryStream is a Stream specialization: a start opener, an ordered
// sequence of chunks, and an end marker.
type BinaryStream struct {
	mu     sync.RWMutex
	meta   *BinaryStreamMeta
	chunks [][]byte
	ended  bool
}

// NewBinaryStream returns an empty, not-yet-started BinaryStream.
func NewBinaryStream() *BinaryStream {
	return &BinaryStream{}
}

func (b *BinaryStream) TypeTag() TypeTag { return TypeBinaryStream }

// Apply applies one Start, Chunk, or End change.
func (b *BinaryStream) Apply(applied AppliedChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch applied.Change.Kind {
	case KindStreamStart:
		b.meta = applied.Change.Meta
		b.chunks = nil
		b.ended = false
	case KindStreamChunk:
		if chunk, ok := applied.Change.Value.([]byte); ok {
			b.chunks = append(b.chunks, chunk)
		}
	case KindStreamEnd:
		b.ended = true
	}
}

// Chunks returns the accumulated chunk bytes and the opener's MIME
// type. It returns ok=false if the stream hasn't been started yet, or
// if it has started but not ended and allowUnfinished is false — spec
// §4.6's "waits for end unless explicitly allowed".
func (b *BinaryStream) Chunks(allowUnfinished bool) (chunks [][]byte, mimeType string, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.meta == nil {
		return nil, "", false
	}
	if !b.ended && !allowUnfinished {
		return nil, "", false
	}
	out := make([][]byte, len(b.chunks))
	copy(out, b.chunks)
	return out, b.meta.MimeType, true
}
