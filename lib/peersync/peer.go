// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package peersync

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/weavesync/weave/lib/clock"
	"github.com/weavesync/weave/lib/coid"
)

// Role names how a peer participates in gossip fan-out, per spec
// §4.8: server peers receive unsolicited sync of everything the
// local store knows; client peers only learn about covalues they
// have themselves asked for; storage peers are the durability
// collaborator described in spec §6.
type Role string

const (
	RoleServer  Role = "server"
	RoleClient  Role = "client"
	RolePeer    Role = "peer"
	RoleStorage Role = "storage"
)

// ErrChannelClosed is returned by operations on a Peer whose
// underlying channel has already closed or timed out, and is the
// error logged when the read loop exits — matching spec §7's
// ChannelClosed error kind.
var ErrChannelClosed = errors.New("peersync: peer channel closed")

// Peer is one connected duplex channel, tracked by a Manager. A Peer
// is only ever constructed by Manager.AddPeer.
type Peer struct {
	id   string
	role Role
	conn io.ReadWriteCloser

	manager *Manager

	encMu sync.Mutex
	enc   *json.Encoder
	dec   *json.Decoder

	idleTimer *clock.Timer
	pinger    *clock.Ticker

	mu        sync.Mutex
	requested map[coid.CovalueID]bool
	closed    bool
	done      chan struct{}
}

// ID returns the identifier the peer was added under (an address,
// connection label, or anything else the adapter finds convenient —
// peersync never interprets it).
func (p *Peer) ID() string { return p.id }

// Role returns the peer's gossip-fan-out role.
func (p *Peer) Role() Role { return p.role }

// Close closes the peer's underlying channel and stops its read and
// ping loops. Idempotent.
func (p *Peer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	p.mu.Unlock()

	if p.idleTimer != nil {
		p.idleTimer.Stop()
	}
	if p.pinger != nil {
		p.pinger.Stop()
	}
	return p.conn.Close()
}

func (p *Peer) markRequested(id coid.CovalueID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.requested == nil {
		p.requested = make(map[coid.CovalueID]bool)
	}
	p.requested[id] = true
}

func (p *Peer) hasRequested(id coid.CovalueID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requested[id]
}

// eligibleForUnsolicited reports whether id should be pushed to this
// peer without it having asked first.
func (p *Peer) eligibleForUnsolicited(id coid.CovalueID) bool {
	switch p.role {
	case RoleServer, RolePeer, RoleStorage:
		return true
	case RoleClient:
		return p.hasRequested(id)
	default:
		return false
	}
}

func (p *Peer) send(msg Message) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return fmt.Errorf("peersync: peer %s: %w", p.id, ErrChannelClosed)
	}

	p.encMu.Lock()
	defer p.encMu.Unlock()
	if err := p.enc.Encode(msg); err != nil {
		return fmt.Errorf("peersync: sending %s to peer %s: %w", msg.Type, p.id, err)
	}
	return nil
}

// readLoop decodes messages until the channel errors or closes,
// dispatching each to the Manager and resetting the idle timer on
// every message (including ping, which carries no covalue payload).
func (p *Peer) readLoop() {
	defer p.manager.removePeer(p)
	defer p.Close()

	for {
		var msg Message
		if err := p.dec.Decode(&msg); err != nil {
			if !errors.Is(err, io.EOF) {
				p.manager.logger().Warn("peersync: peer read failed", "peer", p.id, "error", err)
			}
			return
		}
		p.manager.resetIdle(p)
		if msg.Type == TypePing {
			continue
		}
		p.manager.handle(p, msg)
	}
}

func roleValid(r Role) bool {
	switch r {
	case RoleServer, RoleClient, RolePeer, RoleStorage:
		return true
	default:
		return false
	}
}
