// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

// weave-bridge is an in-process duplex bridge for local development:
// it mints two in-memory nodes joined by a net.Pipe() duplex channel
// (no sockets, no relay), seeds one side with a demo map covalue, and
// watches it converge to the other — spec §8 scenario 2 (cross-node
// sync) without any real networking. With --headless it prints the
// converged state once and exits; otherwise it runs an interactive
// TUI showing live knownState per node.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/weavesync/weave/internal/core"
	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/content"
	"github.com/weavesync/weave/lib/crypto"
	"github.com/weavesync/weave/lib/peersync"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		headless     bool
		idleTimeout  time.Duration
		pingInterval time.Duration
		key          string
		value        string
	)
	flag.BoolVar(&headless, "headless", false, "seed, sync, print the converged state once, and exit (no TUI)")
	flag.DurationVar(&idleTimeout, "idle-timeout", peersync.DefaultIdleTimeout, "idle timeout for the bridged channel")
	flag.DurationVar(&pingInterval, "ping-interval", peersync.DefaultPingInterval, "ping interval for the bridged channel")
	flag.StringVar(&key, "key", "hello", "map key written on node A before bridging")
	flag.StringVar(&value, "value", "world", "map value written on node A before bridging")
	flag.Parse()

	bridge, err := newBridge(idleTimeout, pingInterval, key, value)
	if err != nil {
		return fmt.Errorf("weave-bridge: %w", err)
	}
	defer bridge.close()

	if headless {
		bridge.waitConverged(5 * time.Second)
		fmt.Println(bridge.summary())
		return nil
	}

	program := tea.NewProgram(newModel(bridge))
	_, err = program.Run()
	return err
}

// bridge owns the two in-memory nodes and the covalue they converge
// on. nodeA starts as the sole holder of the covalue's content; nodeB
// starts empty and learns it entirely through peersync.
type bridge struct {
	covalueID coid.CovalueID
	demoKey   string

	storeA *peersync.MemoryStore
	storeB *peersync.MemoryStore

	managerA *peersync.Manager
	managerB *peersync.Manager
}

func newBridge(idleTimeout, pingInterval time.Duration, key, value string) (*bridge, error) {
	secret, signerID, err := crypto.GenerateSigningKeypair()
	if err != nil {
		return nil, fmt.Errorf("generating signing key: %w", err)
	}
	defer secret.Close()

	var sealerPub [32]byte
	copy(sealerPub[:], "weave-bridge-node-a")
	agent := coid.NewAgentID(signerID, coid.NewSealerID(sealerPub))
	sessionID := coid.NewSessionID(agent, 0)

	var accountHash [32]byte
	copy(accountHash[:], "weave-bridge-account")
	account := coid.NewCovalueID(accountHash)

	header := core.Header{
		Type:           content.TypeMap,
		Ruleset:        core.Ruleset{Kind: core.RulesetUnsafeAllowAll},
		CreatedAt:      time.Now().UnixMilli(),
		UniquenessSalt: "weave-bridge-demo",
	}
	covalue, err := core.New(header)
	if err != nil {
		return nil, fmt.Errorf("creating demo covalue: %w", err)
	}

	changes := []content.Change{{Kind: content.KindSet, Key: key, Value: value, Privacy: content.Trusting}}
	if _, err := covalue.LocalWrite(sessionID, account, changes, "", crypto.KeySecret{}, header.CreatedAt+1, secret); err != nil {
		return nil, fmt.Errorf("seeding demo covalue: %w", err)
	}

	storeA := peersync.NewMemoryStore(account)
	storeA.Put(covalue)
	storeB := peersync.NewMemoryStore(account)

	connA, connB := net.Pipe()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	managerA := peersync.NewManager(storeA, peersync.WithLogger(logger), peersync.WithIdleTimeout(idleTimeout), peersync.WithPingInterval(pingInterval))
	managerB := peersync.NewManager(storeB, peersync.WithLogger(logger), peersync.WithIdleTimeout(idleTimeout), peersync.WithPingInterval(pingInterval))

	// B's store is empty, so its AddPeer never blocks on a send; start
	// it first so its read loop is ready before A's AddPeer pushes its
	// known state across the pipe.
	addErr := make(chan error, 1)
	go func() {
		_, err := managerB.AddPeer("node-a", peersync.RolePeer, connB)
		addErr <- err
	}()
	if _, err := managerA.AddPeer("node-b", peersync.RolePeer, connA); err != nil {
		managerB.Close()
		return nil, fmt.Errorf("connecting node A: %w", err)
	}
	if err := <-addErr; err != nil {
		managerA.Close()
		return nil, fmt.Errorf("connecting node B: %w", err)
	}

	return &bridge{
		covalueID: covalue.ID(),
		demoKey:   key,
		storeA:    storeA,
		storeB:    storeB,
		managerA:  managerA,
		managerB:  managerB,
	}, nil
}

func (b *bridge) close() {
	b.managerA.Close()
	b.managerB.Close()
}

// converged reports whether node B has learned everything node A
// knows about the demo covalue.
func (b *bridge) converged() bool {
	knownA, ok := b.storeA.Known(b.covalueID)
	if !ok {
		return false
	}
	knownB, ok := b.storeB.Known(b.covalueID)
	if !ok {
		return false
	}
	for sessionID, length := range knownA.Sessions {
		if knownB.Sessions[sessionID] < length {
			return false
		}
	}
	return true
}

func (b *bridge) waitConverged(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if b.converged() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (b *bridge) summary() string {
	covalueA, _ := b.storeA.Get(b.covalueID)
	covalueB, _ := b.storeB.Get(b.covalueID)
	if covalueA == nil || covalueB == nil {
		return fmt.Sprintf("covalue %s: node A present=%v, node B present=%v", b.covalueID, covalueA != nil, covalueB != nil)
	}

	viewA, errA := covalueA.CurrentContent(nil)
	viewB, errB := covalueB.CurrentContent(nil)
	if errA != nil || errB != nil {
		return fmt.Sprintf("covalue %s: materializing failed (A: %v, B: %v)", b.covalueID, errA, errB)
	}
	valueA, _ := viewA.(*content.Map).Get(b.demoKey)
	valueB, _ := viewB.(*content.Map).Get(b.demoKey)
	return fmt.Sprintf("covalue %s converged=%v\n  node A: %s=%v\n  node B: %s=%v", b.covalueID, b.converged(), b.demoKey, valueA, b.demoKey, valueB)
}
