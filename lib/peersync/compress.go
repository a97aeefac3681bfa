// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package peersync

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// wireCompressThreshold is the minimum transaction size worth paying
// zstd's framing overhead for. Transactions below it are sent as-is.
const wireCompressThreshold = 256

// zstdEncoder and zstdDecoder are reused across calls; both are safe
// for concurrent use, per klauspost/compress's own documentation.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("peersync: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("peersync: zstd decoder initialization failed: " + err.Error())
	}
}

// compressTransaction zstd-compresses data if it is large enough and
// the compression actually shrinks it, reporting whether it did.
// Transactions below the byte compression are mostly map/list edits
// (small); binary-stream chunk transactions are the ones this pays
// off for.
func compressTransaction(data []byte) ([]byte, bool) {
	if len(data) < wireCompressThreshold {
		return data, false
	}
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return data, false
	}
	return compressed, true
}

func decompressTransaction(data []byte, compressed bool) ([]byte, error) {
	if !compressed {
		return data, nil
	}
	result, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("peersync: zstd decompress: %w", err)
	}
	return result, nil
}
