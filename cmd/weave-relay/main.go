// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

// weave-relay is the storage-adapter peer binary spec §6 describes as
// a "storage collaborator": it holds covalue session logs durably on
// disk, serves them to any connecting peer over TCP, and accepts
// and persists every transaction pushed to it. It dials any configured
// remote relays on startup and reconnects them with capped exponential
// backoff, per spec §4.8.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/peersync"
	"github.com/weavesync/weave/lib/weaveconfig"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		listenAddr  string
		stateDir    string
		accountName string
	)

	flag.StringVar(&configPath, "config", os.Getenv("WEAVE_CONFIG"), "path to weave.yaml config file")
	flag.StringVar(&listenAddr, "listen", "", "TCP address to accept peer connections on (overrides config)")
	flag.StringVar(&stateDir, "state-dir", "", "directory for per-covalue CBOR journals (overrides config)")
	flag.StringVar(&accountName, "account", "weave-relay", "identity attributed to transactions this relay originates or accepts (durability only, not a real account)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := weaveconfig.Default()
	if configPath != "" {
		loaded, err := weaveconfig.LoadFile(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}
	if stateDir != "" {
		cfg.StateDir = stateDir
	}

	idleTimeout, err := cfg.Sync.IdleTimeoutDuration()
	if err != nil {
		return fmt.Errorf("parsing sync.idle_timeout: %w", err)
	}
	pingInterval, err := cfg.Sync.PingIntervalDuration()
	if err != nil {
		return fmt.Errorf("parsing sync.ping_interval: %w", err)
	}

	var accountHash [32]byte
	copy(accountHash[:], accountName)
	account := coid.NewCovalueID(accountHash)

	store, err := newDiskStore(cfg.StateDir, account)
	if err != nil {
		return fmt.Errorf("opening state dir: %w", err)
	}
	logger.Info("state loaded", "state_dir", cfg.StateDir, "covalues", len(store.IDs()))

	manager := peersync.NewManager(store,
		peersync.WithLogger(logger),
		peersync.WithIdleTimeout(idleTimeout),
		peersync.WithPingInterval(pingInterval),
	)
	defer manager.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Listen != "" {
		listener, err := net.Listen("tcp", cfg.Listen)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", cfg.Listen, err)
		}
		defer listener.Close()
		logger.Info("listening", "addr", listener.Addr().String())
		go acceptLoop(ctx, listener, manager, logger)
	}

	for _, peerAddr := range cfg.Peers {
		go dialLoop(ctx, peerAddr, manager, logger)
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// acceptLoop accepts inbound peer connections until ctx is done or
// the listener errors, handing each one to the manager as a
// server-role peer (eligible for unsolicited fan-out of everything
// this relay holds).
func acceptLoop(ctx context.Context, listener net.Listener, manager *peersync.Manager, logger *slog.Logger) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("accept failed", "error", err)
			continue
		}
		peerID := conn.RemoteAddr().String()
		logger.Info("peer connected", "peer", peerID)
		if _, err := manager.AddPeer(peerID, peersync.RoleServer, conn); err != nil {
			logger.Warn("adding inbound peer failed", "peer", peerID, "error", err)
			conn.Close()
		}
	}
}

// dialLoop maintains an outbound connection to addr, reconnecting
// with capped exponential backoff (spec §4.8's "responsible for
// reconnecting") whenever the channel closes.
func dialLoop(ctx context.Context, addr string, manager *peersync.Manager, logger *slog.Logger) {
	reconnect := peersync.NewReconnector(time.Second, 30*time.Second)

	var dialer net.Dialer
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("dial failed, backing off", "peer", addr, "delay", reconnect.Delay(), "error", err)
			reconnect.Wait()
			continue
		}

		logger.Info("dialed peer", "peer", addr)
		reconnect.Reset()

		peer, err := manager.AddPeer(addr, peersync.RoleServer, conn)
		if err != nil {
			logger.Warn("adding outbound peer failed", "peer", addr, "error", err)
			conn.Close()
			reconnect.Wait()
			continue
		}

		waitForPeerClose(ctx, manager, peer)
	}
}

// waitForPeerClose blocks until peer is no longer in manager's
// connected set (its read loop exited) or ctx is done.
func waitForPeerClose(ctx context.Context, manager *peersync.Manager, peer *peersync.Peer) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !stillConnected(manager, peer) {
				return
			}
		}
	}
}

func stillConnected(manager *peersync.Manager, peer *peersync.Peer) bool {
	for _, p := range manager.Peers() {
		if p == peer {
			return true
		}
	}
	return false
}
