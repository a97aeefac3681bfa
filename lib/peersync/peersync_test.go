// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package peersync

import (
	"net"
	"testing"
	"time"

	"github.com/weavesync/weave/internal/core"
	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/content"
	"github.com/weavesync/weave/lib/crypto"
)

func newPeerSyncSession(t *testing.T, label string) (coid.SessionID, *crypto.SigningSecret) {
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

func peerSyncAccountID(label string) coid.CovalueID {
	var hash [32]byte
	copy(hash[:], label)
	return coid.NewCovalueID(hash)
}

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !condition() {
		t.Fatal("condition not met before timeout")
	}
}

// TestManagerSyncsNewCovalueAcrossPeers exercises spec §8 scenario 2
// (cross-node sync) directly at the peersync layer: a covalue written
// on one side of an in-memory duplex channel converges to an
// identical materialized value on the other side.
func TestManagerSyncsNewCovalueAcrossPeers(t *testing.T) {
	header := core.Header{Type: content.TypeMap, Ruleset: core.Ruleset{Kind: core.RulesetUnsafeAllowAll}, CreatedAt: 1, UniquenessSalt: "peersync-test"}
	covalue, err := core.New(header)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sessionID, secret := newPeerSyncSession(t, "writer")
	defer secret.Close()
	account := peerSyncAccountID("writer-account")

	changes := []content.Change{{Kind: content.KindSet, Key: "foo", Value: "bar", Privacy: content.Trusting}}
	if _, err := covalue.LocalWrite(sessionID, account, changes, "", crypto.KeySecret{}, 100, secret); err != nil {
		t.Fatalf("LocalWrite: %v", err)
	}

	storeA := NewMemoryStore(account)
	storeA.Put(covalue)
	storeB := NewMemoryStore(account)

	connA, connB := net.Pipe()

	mgrA := NewManager(storeA, WithIdleTimeout(time.Second), WithPingInterval(200*time.Millisecond))
	mgrB := NewManager(storeB, WithIdleTimeout(time.Second), WithPingInterval(200*time.Millisecond))
	defer mgrA.Close()
	defer mgrB.Close()

	// B's store is empty, so adding it first never blocks on a send;
	// its read loop is then ready before A's AddPeer pushes its known.
	go func() {
		if _, err := mgrB.AddPeer("a", RoleServer, connB); err != nil {
			t.Errorf("mgrB.AddPeer: %v", err)
		}
	}()
	if _, err := mgrA.AddPeer("b", RoleServer, connA); err != nil {
		t.Fatalf("mgrA.AddPeer: %v", err)
	}

	waitFor(t, 5*time.Second, func() bool {
		_, ok := storeB.Get(covalue.ID())
		return ok
	})

	replica, ok := storeB.Get(covalue.ID())
	if !ok {
		t.Fatal("replica covalue never arrived")
	}

	view, err := replica.CurrentContent(nil)
	if err != nil {
		t.Fatalf("CurrentContent: %v", err)
	}
	value, ok := view.(*content.Map).Get("foo")
	if !ok || value != "bar" {
		t.Errorf("replica Get(foo): got %v/%v, want bar/true", value, ok)
	}
}

// TestManagerPropagatesLaterLocalWrites verifies that a write made
// after the peers are already connected also fans out, driven purely
// by an explicit Announce call (the hook an external Node or storage
// adapter calls after every local append).
func TestManagerPropagatesLaterLocalWrites(t *testing.T) {
	header := core.Header{Type: content.TypeMap, Ruleset: core.Ruleset{Kind: core.RulesetUnsafeAllowAll}, CreatedAt: 1, UniquenessSalt: "peersync-later-test"}
	covalue, err := core.New(header)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sessionID, secret := newPeerSyncSession(t, "writer")
	defer secret.Close()
	account := peerSyncAccountID("writer-account")

	storeA := NewMemoryStore(account)
	storeA.Put(covalue)
	storeB := NewMemoryStore(account)

	connA, connB := net.Pipe()
	mgrA := NewManager(storeA, WithIdleTimeout(time.Second), WithPingInterval(200*time.Millisecond))
	mgrB := NewManager(storeB, WithIdleTimeout(time.Second), WithPingInterval(200*time.Millisecond))
	defer mgrA.Close()
	defer mgrB.Close()

	go func() {
		if _, err := mgrB.AddPeer("a", RoleServer, connB); err != nil {
			t.Errorf("mgrB.AddPeer: %v", err)
		}
	}()
	if _, err := mgrA.AddPeer("b", RoleServer, connA); err != nil {
		t.Fatalf("mgrA.AddPeer: %v", err)
	}

	waitFor(t, 5*time.Second, func() bool {
		_, ok := storeB.Get(covalue.ID())
		return ok
	})

	changes := []content.Change{{Kind: content.KindSet, Key: "later", Value: "value", Privacy: content.Trusting}}
	if _, err := covalue.LocalWrite(sessionID, account, changes, "", crypto.KeySecret{}, 200, secret); err != nil {
		t.Fatalf("LocalWrite: %v", err)
	}
	mgrA.Announce(covalue.ID())

	waitFor(t, 5*time.Second, func() bool {
		replica, ok := storeB.Get(covalue.ID())
		if !ok {
			return false
		}
		view, err := replica.CurrentContent(nil)
		if err != nil {
			return false
		}
		value, ok := view.(*content.Map).Get("later")
		return ok && value == "value"
	})
}

func TestReconnectorDoublesUpToCap(t *testing.T) {
	r := NewReconnector(1*time.Millisecond, 10*time.Millisecond)

	if got := r.Delay(); got != 1*time.Millisecond {
		t.Errorf("initial Delay: got %v, want 1ms", got)
	}
	r.Wait()
	if got := r.Delay(); got != 2*time.Millisecond {
		t.Errorf("after first Wait: got %v, want 2ms", got)
	}
	r.Wait()
	r.Wait()
	r.Wait()
	if got := r.Delay(); got != 10*time.Millisecond {
		t.Errorf("after growing past cap: got %v, want capped at 10ms", got)
	}
	r.Reset()
	if got := r.Delay(); got != 1*time.Millisecond {
		t.Errorf("after Reset: got %v, want 1ms", got)
	}
}
