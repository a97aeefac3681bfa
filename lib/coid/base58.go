// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package coid

import (
	"fmt"
	"math/big"
)

// base58Alphabet is the Bitcoin/IPFS base58 alphabet: the 62
// alphanumeric characters with the visually ambiguous '0', 'O', 'I',
// and 'l' removed. No example repo in the retrieved corpus vendors a
// base58 library (see DESIGN.md), so this is a small, directly-tested
// implementation following the same fixed, well-known alphabet every
// base58 user in the wild uses.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var base58DecodeMap = func() map[byte]int64 {
	m := make(map[byte]int64, len(base58Alphabet))
	for i := 0; i < len(base58Alphabet); i++ {
		m[base58Alphabet[i]] = int64(i)
	}
	return m
}()

// encodeBase58 encodes data as a base58 string. Leading zero bytes in
// data are preserved as leading '1' characters (the base58 convention
// for zero, since '1' is index 0 in the alphabet), so fixed-width
// binary material round-trips at a predictable length.
func encodeBase58(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	leadingZeros := 0
	for leadingZeros < len(data) && data[leadingZeros] == 0 {
		leadingZeros++
	}

	number := new(big.Int).SetBytes(data)
	base := big.NewInt(58)
	zero := big.NewInt(0)
	mod := new(big.Int)

	// A base58 digit never exceeds 1 log58(256) ~= 1.37x the input
	// byte length; size the buffer generously and trim.
	encoded := make([]byte, 0, len(data)*2)
	for number.Cmp(zero) > 0 {
		number.DivMod(number, base, mod)
		encoded = append(encoded, base58Alphabet[mod.Int64()])
	}

	for i := 0; i < leadingZeros; i++ {
		encoded = append(encoded, base58Alphabet[0])
	}

	// The digits were appended least-significant first; reverse.
	for i, j := 0, len(encoded)-1; i < j; i, j = i+1, j-1 {
		encoded[i], encoded[j] = encoded[j], encoded[i]
	}

	return string(encoded)
}

// decodeBase58 decodes a base58 string produced by encodeBase58 (or
// any standard base58 encoder using the same alphabet) back to bytes.
func decodeBase58(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}

	leadingZeros := 0
	for leadingZeros < len(s) && s[leadingZeros] == base58Alphabet[0] {
		leadingZeros++
	}

	number := big.NewInt(0)
	base := big.NewInt(58)
	for i := 0; i < len(s); i++ {
		digit, ok := base58DecodeMap[s[i]]
		if !ok {
			return nil, fmt.Errorf("coid: invalid base58 character %q at position %d", s[i], i)
		}
		number.Mul(number, base)
		number.Add(number, big.NewInt(digit))
	}

	decoded := number.Bytes()
	result := make([]byte, leadingZeros+len(decoded))
	copy(result[leadingZeros:], decoded)
	return result, nil
}
