// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"testing"

	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/content"
	"github.com/weavesync/weave/lib/crypto"
	"github.com/weavesync/weave/lib/group"
)

func newTestSession(t *testing.T, label string) (coid.SessionID, *crypto.SigningSecret) {
	t.Helper()
	signingSecret, signerID, err := crypto.GenerateSigningKeypair()
	if err != nil {
		t.Fatalf("GenerateSigningKeypair: %v", err)
	}
	var pub [32]byte
	copy(pub[:], label)
	sealerID := coid.NewSealerID(pub)
	agent := coid.NewAgentID(signerID, sealerID)
	return coid.NewSessionID(agent, 0), signingSecret
}

func testAccountID(label string) coid.CovalueID {
	var hash [32]byte
	copy(hash[:], label)
	return coid.NewCovalueID(hash)
}

func TestLocalWriteThenMaterializeMap(t *testing.T) {
	header := Header{Type: content.TypeMap, Ruleset: Ruleset{Kind: RulesetUnsafeAllowAll}, CreatedAt: 1, UniquenessSalt: "map-test"}
	covalue, err := New(header)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sessionID, secret := newTestSession(t, "writer")
	defer secret.Close()
	account := testAccountID("writer-account")

	changes := []content.Change{{Kind: content.KindSet, Key: "foo", Value: "bar", Privacy: content.Trusting}}
	if _, err := covalue.LocalWrite(sessionID, account, changes, "", crypto.KeySecret{}, 100, secret); err != nil {
		t.Fatalf("LocalWrite: %v", err)
	}

	view, err := covalue.CurrentContent(nil)
	if err != nil {
		t.Fatalf("CurrentContent: %v", err)
	}
	m, ok := view.(*content.Map)
	if !ok {
		t.Fatalf("CurrentContent returned %T, want *content.Map", view)
	}
	value, ok := m.Get("foo")
	if !ok || value != "bar" {
		t.Errorf("Get(foo): got %v/%v, want bar/true", value, ok)
	}
}

func TestLocalWriteClampsNonDecreasingMadeAt(t *testing.T) {
	header := Header{Type: content.TypeMap, Ruleset: Ruleset{Kind: RulesetUnsafeAllowAll}, CreatedAt: 1, UniquenessSalt: "clamp-test"}
	covalue, err := New(header)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sessionID, secret := newTestSession(t, "writer")
	defer secret.Close()
	account := testAccountID("writer-account")

	first := []content.Change{{Kind: content.KindSet, Key: "a", Value: 1, Privacy: content.Trusting}}
	if _, err := covalue.LocalWrite(sessionID, account, first, "", crypto.KeySecret{}, 100, secret); err != nil {
		t.Fatalf("LocalWrite (first): %v", err)
	}

	second := []content.Change{{Kind: content.KindSet, Key: "b", Value: 2, Privacy: content.Trusting}}
	entry, err := covalue.LocalWrite(sessionID, account, second, "", crypto.KeySecret{}, 50, secret)
	if err != nil {
		t.Fatalf("LocalWrite (second, regressing madeAt): %v", err)
	}
	tx, err := DecodeTransaction(entry.Transaction)
	if err != nil {
		t.Fatalf("DecodeTransaction: %v", err)
	}
	if tx.MadeAt != 101 {
		t.Errorf("clamped madeAt: got %d, want 101", tx.MadeAt)
	}
}

func TestTryAddTransactionsReplicatesToASecondCovalue(t *testing.T) {
	header := Header{Type: content.TypeMap, Ruleset: Ruleset{Kind: RulesetUnsafeAllowAll}, CreatedAt: 1, UniquenessSalt: "replica-test"}
	source, err := New(header)
	if err != nil {
		t.Fatalf("New (source): %v", err)
	}
	replica, err := New(header)
	if err != nil {
		t.Fatalf("New (replica): %v", err)
	}

	sessionID, secret := newTestSession(t, "writer")
	defer secret.Close()
	account := testAccountID("writer-account")

	for i, value := range []string{"one", "two", "three"} {
		changes := []content.Change{{Kind: content.KindSet, Key: "k", Value: value, Privacy: content.Trusting}}
		if _, err := source.LocalWrite(sessionID, account, changes, "", crypto.KeySecret{}, int64(100+i), secret); err != nil {
			t.Fatalf("LocalWrite %d: %v", i, err)
		}
	}

	entries, ok := source.Slice(sessionID, 0)
	if !ok {
		t.Fatal("Slice: expected entries")
	}
	results, err := replica.TryAddTransactions(sessionID, account, 0, entries)
	if err != nil {
		t.Fatalf("TryAddTransactions: %v", err)
	}
	for i, result := range results {
		if result.String() != "Added" {
			t.Errorf("result %d: got %s, want Added", i, result)
		}
	}

	sourceView, err := source.CurrentContent(nil)
	if err != nil {
		t.Fatalf("CurrentContent (source): %v", err)
	}
	replicaView, err := replica.CurrentContent(nil)
	if err != nil {
		t.Fatalf("CurrentContent (replica): %v", err)
	}
	sourceMap := sourceView.(*content.Map)
	replicaMap := replicaView.(*content.Map)
	sourceValue, _ := sourceMap.Get("k")
	replicaValue, _ := replicaMap.Get("k")
	if sourceValue != replicaValue {
		t.Errorf("replicas diverged: source=%v replica=%v", sourceValue, replicaValue)
	}
	if sourceValue != "three" {
		t.Errorf("merged value: got %v, want three", sourceValue)
	}
}

func TestTryAddTransactionsRejectsOutOfOrderEntries(t *testing.T) {
	header := Header{Type: content.TypeMap, Ruleset: Ruleset{Kind: RulesetUnsafeAllowAll}, CreatedAt: 1, UniquenessSalt: "gap-test"}
	covalue, err := New(header)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sessionID, _ := newTestSession(t, "writer")
	account := testAccountID("writer-account")

	if _, err := covalue.TryAddTransactions(sessionID, account, 1, nil); err == nil {
		t.Error("TryAddTransactions: expected an error for fromIndex past the log's current length")
	}
}

func TestPrivateTransactionRoundTripsUnderGroupRuleset(t *testing.T) {
	header := Header{Type: content.TypeMap, Ruleset: Ruleset{Kind: RulesetOwnedByGroup, Group: testAccountID("governing-group")}, CreatedAt: 1, UniquenessSalt: "private-test"}
	covalue, err := New(header)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sessionID, secret := newTestSession(t, "writer")
	defer secret.Close()
	account := testAccountID("writer-account")

	g := group.New()
	g.Apply(content.AppliedChange{
		Change: content.Change{Kind: content.KindSet, Key: "role_" + string(account), Value: string(group.RoleWriter)},
		MadeAt: 0,
	})
	covalue.Group = g

	key, err := crypto.NewKeySecret()
	if err != nil {
		t.Fatalf("NewKeySecret: %v", err)
	}
	defer key.Close()
	keyID, err := crypto.KeyID(key)
	if err != nil {
		t.Fatalf("KeyID: %v", err)
	}

	changes := []content.Change{{Kind: content.KindSet, Key: "secret", Value: "hidden", Privacy: content.Private}}
	if _, err := covalue.LocalWrite(sessionID, account, changes, keyID, key, 100, secret); err != nil {
		t.Fatalf("LocalWrite: %v", err)
	}

	withoutKey, err := covalue.CurrentContent(nil)
	if err != nil {
		t.Fatalf("CurrentContent (no resolver): %v", err)
	}
	if _, ok := withoutKey.(*content.Map).Get("secret"); ok {
		t.Error("CurrentContent with no key resolver should not have decrypted the private transaction")
	}

	covalue.InvalidateCache()
	resolver := func(id coid.KeyID) (crypto.KeySecret, bool) {
		if id == keyID {
			return key, true
		}
		return crypto.KeySecret{}, false
	}
	withKey, err := covalue.CurrentContent(resolver)
	if err != nil {
		t.Fatalf("CurrentContent (with resolver): %v", err)
	}
	value, ok := withKey.(*content.Map).Get("secret")
	if !ok || value != "hidden" {
		t.Errorf("Get(secret): got %v/%v, want hidden/true", value, ok)
	}
}

func TestLocalWriteDeniesUnauthorizedAccount(t *testing.T) {
	header := Header{Type: content.TypeMap, Ruleset: Ruleset{Kind: RulesetOwnedByGroup, Group: testAccountID("governing-group")}, CreatedAt: 1, UniquenessSalt: "deny-test"}
	covalue, err := New(header)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	covalue.Group = group.New() // no roles assigned at all

	sessionID, secret := newTestSession(t, "writer")
	defer secret.Close()
	account := testAccountID("stranger")

	changes := []content.Change{{Kind: content.KindSet, Key: "x", Value: 1, Privacy: content.Trusting}}
	if _, err := covalue.LocalWrite(sessionID, account, changes, "", crypto.KeySecret{}, 100, secret); err == nil {
		t.Error("LocalWrite: expected an authorization error for an account with no role")
	}
}

func TestKnownStateReportsSessionLengths(t *testing.T) {
	header := Header{Type: content.TypeMap, Ruleset: Ruleset{Kind: RulesetUnsafeAllowAll}, CreatedAt: 1, UniquenessSalt: "known-test"}
	covalue, err := New(header)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sessionID, secret := newTestSession(t, "writer")
	defer secret.Close()
	account := testAccountID("writer-account")

	changes := []content.Change{{Kind: content.KindSet, Key: "a", Value: 1, Privacy: content.Trusting}}
	if _, err := covalue.LocalWrite(sessionID, account, changes, "", crypto.KeySecret{}, 100, secret); err != nil {
		t.Fatalf("LocalWrite: %v", err)
	}

	known := covalue.KnownState()
	if known.ID != covalue.ID() {
		t.Errorf("KnownState.ID: got %s, want %s", known.ID, covalue.ID())
	}
	if known.Sessions[sessionID] != 1 {
		t.Errorf("KnownState.Sessions[sessionID]: got %d, want 1", known.Sessions[sessionID])
	}
}
