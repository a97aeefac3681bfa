// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"strings"
	"testing"

	"github.com/weavesync/weave/lib/content"
)

func TestHeaderIDMatchesHashOfCanonicalHeader(t *testing.T) {
	header := Header{
		Type:           content.TypeMap,
		Ruleset:        Ruleset{Kind: RulesetUnsafeAllowAll},
		CreatedAt:      1000,
		UniquenessSalt: "salt-one",
	}
	id, err := header.ID()
	if err != nil {
		t.Fatalf("ID: %v", err)
	}
	if !strings.HasPrefix(string(id), "co_z") {
		t.Errorf("ID %q missing co_z prefix", id)
	}

	covalue, err := New(header)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if covalue.ID() != id {
		t.Errorf("New's ID %s does not match header.ID() %s", covalue.ID(), id)
	}
}

func TestHeaderIDDeterministicAcrossFieldOrderAndReplica(t *testing.T) {
	header := Header{
		Type:           content.TypeList,
		Ruleset:        Ruleset{Kind: RulesetGroup},
		CreatedAt:      42,
		UniquenessSalt: "abc",
	}
	idA, err := header.ID()
	if err != nil {
		t.Fatalf("ID (A): %v", err)
	}
	idB, err := header.ID()
	if err != nil {
		t.Fatalf("ID (B): %v", err)
	}
	if idA != idB {
		t.Errorf("ID is not deterministic: %s != %s", idA, idB)
	}
}

func TestLoadRejectsMismatchedHeader(t *testing.T) {
	header := Header{Type: content.TypeMap, Ruleset: Ruleset{Kind: RulesetUnsafeAllowAll}, CreatedAt: 1, UniquenessSalt: "x"}
	realID, err := header.ID()
	if err != nil {
		t.Fatalf("ID: %v", err)
	}

	wrongHeader := header
	wrongHeader.CreatedAt = 2
	if _, err := Load(realID, wrongHeader, nil); err == nil {
		t.Error("Load: expected an error for a header that doesn't hash to the given ID")
	}

	if _, err := Load(realID, header, nil); err != nil {
		t.Errorf("Load with the matching header: unexpected error %v", err)
	}
}
