// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package canon

import (
	"bytes"
	"testing"
)

func TestCanonicalizeKeyOrderIndependent(t *testing.T) {
	a := map[string]any{"a": 1, "b": 2}
	b := map[string]any{"b": 2, "a": 1}

	encodedA, err := Canonicalize(a)
	if err != nil {
		t.Fatalf("Canonicalize(a): %v", err)
	}
	encodedB, err := Canonicalize(b)
	if err != nil {
		t.Fatalf("Canonicalize(b): %v", err)
	}

	if !bytes.Equal(encodedA, encodedB) {
		t.Errorf("canonical encodings differ: %s vs %s", encodedA, encodedB)
	}
}

func TestCanonicalizeNestedKeyOrder(t *testing.T) {
	a := map[string]any{
		"outer": map[string]any{"z": 1, "y": 2},
		"list":  []any{1, 2, 3},
	}
	b := map[string]any{
		"list":  []any{1, 2, 3},
		"outer": map[string]any{"y": 2, "z": 1},
	}

	encodedA := MustCanonicalize(a)
	encodedB := MustCanonicalize(b)
	if !bytes.Equal(encodedA, encodedB) {
		t.Errorf("nested canonical encodings differ: %s vs %s", encodedA, encodedB)
	}
}

func TestCanonicalizeStructFieldOrderIndependent(t *testing.T) {
	type pointA struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	type pointB struct {
		Y int `json:"y"`
		X int `json:"x"`
	}

	a := pointA{X: 1, Y: 2}
	b := pointB{Y: 2, X: 1}

	encodedA := MustCanonicalize(a)
	encodedB := MustCanonicalize(b)
	if !bytes.Equal(encodedA, encodedB) {
		t.Errorf("struct canonical encodings differ: %s vs %s", encodedA, encodedB)
	}
}

func TestCanonicalizeArrayOrderPreserved(t *testing.T) {
	a := []any{3, 1, 2}
	b := []any{1, 2, 3}

	encodedA := MustCanonicalize(a)
	encodedB := MustCanonicalize(b)
	if bytes.Equal(encodedA, encodedB) {
		t.Error("array order should be preserved, but differently-ordered arrays canonicalized identically")
	}
}

func TestCanonicalizeDeterministicRepeat(t *testing.T) {
	value := map[string]any{"foo": "bar", "n": 42, "nested": map[string]any{"k": "v"}}

	first := MustCanonicalize(value)
	for i := 0; i < 5; i++ {
		again := MustCanonicalize(value)
		if !bytes.Equal(first, again) {
			t.Fatalf("iteration %d: canonical encoding not stable across repeat calls", i)
		}
	}
}

func TestCanonicalizeStringEscaping(t *testing.T) {
	value := map[string]any{"text": "hello \"world\"\n"}
	encoded := MustCanonicalize(value)
	if !bytes.Contains(encoded, []byte(`\"world\"`)) {
		t.Errorf("expected escaped quotes in output, got %s", encoded)
	}
}
