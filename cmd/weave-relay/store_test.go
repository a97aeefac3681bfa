// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/weavesync/weave/internal/core"
	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/content"
	"github.com/weavesync/weave/lib/crypto"
)

func relayTestAccountID(label string) coid.CovalueID {
	var hash [32]byte
	copy(hash[:], label)
	return coid.NewCovalueID(hash)
}

func relayTestSession(t *testing.T, label string) (coid.SessionID, *crypto.SigningSecret) {
	t.Helper()
	secret, signerID, err := crypto.GenerateSigningKeypair()
	if err != nil {
		t.Fatalf("GenerateSigningKeypair: %v", err)
	}
	var pub [32]byte
	copy(pub[:], label)
	sealerID := coid.NewSealerID(pub)
	agent := coid.NewAgentID(signerID, sealerID)
	return coid.NewSessionID(agent, 0), secret
}

func TestDiskStorePersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	account := relayTestAccountID("relay-account")

	store, err := newDiskStore(dir, account)
	if err != nil {
		t.Fatalf("newDiskStore: %v", err)
	}

	header := core.Header{Type: content.TypeMap, Ruleset: core.Ruleset{Kind: core.RulesetUnsafeAllowAll}, CreatedAt: 1, UniquenessSalt: "relay-test"}
	id, err := header.ID()
	if err != nil {
		t.Fatalf("header.ID: %v", err)
	}

	sessionID, secret := relayTestSession(t, "writer")
	defer secret.Close()

	covalue, err := core.New(header)
	if err != nil {
		t.Fatalf("core.New: %v", err)
	}
	changes := []content.Change{{Kind: content.KindSet, Key: "foo", Value: "bar", Privacy: content.Trusting}}
	if _, err := covalue.LocalWrite(sessionID, account, changes, "", crypto.KeySecret{}, 100, secret); err != nil {
		t.Fatalf("LocalWrite: %v", err)
	}
	entries, ok := covalue.Slice(sessionID, 0)
	if !ok {
		t.Fatal("Slice: expected entries")
	}

	if _, err := store.Receive(id, &header, sessionID, 0, entries); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	reopened, err := newDiskStore(dir, account)
	if err != nil {
		t.Fatalf("newDiskStore (reopen): %v", err)
	}
	reloaded, ok := reopened.get(id)
	if !ok {
		t.Fatal("reopened store did not reload the covalue")
	}
	view, err := reloaded.CurrentContent(nil)
	if err != nil {
		t.Fatalf("CurrentContent: %v", err)
	}
	value, ok := view.(*content.Map).Get("foo")
	if !ok || value != "bar" {
		t.Errorf("Get(foo) after reload: got %v/%v, want bar/true", value, ok)
	}
}

func TestDiskStoreReceiveCreatesFromHeader(t *testing.T) {
	dir := t.TempDir()
	account := relayTestAccountID("relay-account")
	store, err := newDiskStore(dir, account)
	if err != nil {
		t.Fatalf("newDiskStore: %v", err)
	}

	header := core.Header{Type: content.TypeMap, Ruleset: core.Ruleset{Kind: core.RulesetUnsafeAllowAll}, CreatedAt: 1, UniquenessSalt: "relay-create-test"}
	id, err := header.ID()
	if err != nil {
		t.Fatalf("header.ID: %v", err)
	}

	if _, ok := store.Known(id); ok {
		t.Fatal("expected store to have no knowledge of id before Receive")
	}

	if _, err := store.Receive(id, &header, coid.SessionID("bogus"), 0, nil); err == nil {
		t.Error("expected an error for a malformed session ID even on covalue creation")
	}
}
