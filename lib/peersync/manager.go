// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package peersync

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/weavesync/weave/internal/core"
	"github.com/weavesync/weave/lib/clock"
	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/session"
)

// DefaultIdleTimeout is the duration a peer's read loop waits for any
// inbound message (including ping) before treating the channel as
// dead, per spec §6.
const DefaultIdleTimeout = 2500 * time.Millisecond

// DefaultPingInterval is how often Manager sends an idle-timer-reset
// ping to peers that haven't otherwise had anything to say. Well
// under DefaultIdleTimeout so a quiet channel never times out on its
// own account.
const DefaultPingInterval = 1000 * time.Millisecond

// Option configures a Manager constructed by NewManager.
type Option func(*Manager)

// WithClock overrides the Manager's time source (idle timers, ping
// ticker); tests inject clock.Fake.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithLogger overrides the Manager's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.log = logger }
}

// WithIdleTimeout overrides DefaultIdleTimeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) { m.idleTimeout = d }
}

// WithPingInterval overrides DefaultPingInterval.
func WithPingInterval(d time.Duration) Option {
	return func(m *Manager) { m.pingInterval = d }
}

// Manager drives the sync protocol across every connected peer for
// one Store. It is connection-agnostic: callers open channels and
// hand them to AddPeer; Manager never dials or listens itself (spec
// §4.8's "Reconnection").
type Manager struct {
	store Store
	clock clock.Clock
	log   *slog.Logger

	idleTimeout  time.Duration
	pingInterval time.Duration

	mu    sync.Mutex
	peers map[string]*Peer
}

// NewManager returns a Manager backed by store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:        store,
		clock:        clock.Real(),
		log:          slog.Default(),
		idleTimeout:  DefaultIdleTimeout,
		pingInterval: DefaultPingInterval,
		peers:        make(map[string]*Peer),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) logger() *slog.Logger { return m.log }

// AddPeer registers conn as a peer identified by id with the given
// role, starting its read loop and ping loop. The caller retains
// ownership of reconnecting if the channel later closes (see
// Reconnector).
func (m *Manager) AddPeer(id string, role Role, conn io.ReadWriteCloser) (*Peer, error) {
	if !roleValid(role) {
		return nil, fmt.Errorf("peersync: %q is not a valid peer role", role)
	}

	peer := &Peer{
		id:   id,
		role: role,
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
		done: make(chan struct{}),
	}
	peer.manager = m

	m.mu.Lock()
	if existing, ok := m.peers[id]; ok {
		m.mu.Unlock()
		existing.Close()
		m.mu.Lock()
	}
	m.peers[id] = peer
	m.mu.Unlock()

	peer.idleTimer = m.clock.AfterFunc(m.idleTimeout, func() {
		m.log.Warn("peersync: peer idle timeout", "peer", peer.id)
		peer.Close()
	})
	peer.pinger = m.clock.NewTicker(m.pingInterval)
	go m.pingLoop(peer)
	go peer.readLoop()

	// Announce everything the store already knows so a freshly
	// connected peer converges immediately rather than waiting for
	// the next local write (spec §4.8 step 1, generalized to every
	// already-held covalue rather than just newly created ones).
	for _, existingID := range m.store.IDs() {
		m.announceTo(peer, existingID)
	}

	return peer, nil
}

func (m *Manager) pingLoop(peer *Peer) {
	defer peer.pinger.Stop()
	for {
		select {
		case <-peer.done:
			return
		case t := <-peer.pinger.C:
			if err := peer.send(Message{Type: TypePing, Time: t.UnixMilli(), DC: peer.id}); err != nil {
				return
			}
		}
	}
}

func (m *Manager) resetIdle(peer *Peer) {
	if peer.idleTimer != nil {
		peer.idleTimer.Reset(m.idleTimeout)
	}
}

func (m *Manager) removePeer(peer *Peer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.peers[peer.id]; ok && current == peer {
		delete(m.peers, peer.id)
	}
}

// Peers returns every currently connected peer.
func (m *Manager) Peers() []*Peer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Peer, 0, len(m.peers))
	for _, p := range m.peers {
		out = append(out, p)
	}
	return out
}

// Close closes every connected peer.
func (m *Manager) Close() error {
	for _, p := range m.Peers() {
		p.Close()
	}
	return nil
}

// Announce sends a known record for id to every peer eligible for
// unsolicited sync of it (spec §4.8 step 1; also the "broadcast known
// to them" step 3 fan-out after absorbing new content). Callers
// invoke this after any local write and after creating or loading a
// covalue.
func (m *Manager) Announce(id coid.CovalueID) {
	for _, peer := range m.Peers() {
		m.announceTo(peer, id)
	}
}

func (m *Manager) announceTo(peer *Peer, id coid.CovalueID) {
	if !peer.eligibleForUnsolicited(id) {
		return
	}
	known, ok := m.store.Known(id)
	if !ok {
		return
	}
	var header *core.Header
	if h, ok := m.store.Header(id); ok {
		header = &h
	}
	if err := peer.send(knownMessage(id, header, known.Sessions)); err != nil {
		m.log.Warn("peersync: sending known failed", "peer", peer.id, "covalue", id.String(), "error", err)
	}
}

// handle dispatches one decoded message from peer (spec §4.8's four
// protocol steps).
func (m *Manager) handle(peer *Peer, msg Message) {
	switch msg.Type {
	case TypeKnown:
		m.handleKnown(peer, msg)
	case TypeLoad:
		peer.markRequested(msg.ID)
		m.handleLoad(peer, msg)
	case TypeContent:
		m.handleContent(peer, msg)
	case TypeDone:
		// Purely informational; nothing to do beyond having reset
		// the idle timer already.
	default:
		m.log.Warn("peersync: unrecognized message type", "peer", peer.id, "type", msg.Type)
	}
}

// handleKnown implements spec §4.8 step 2: for every session where
// the peer is behind us, queue a content push; for every session
// where we're behind the peer (or we don't have the covalue at all),
// request a load.
func (m *Manager) handleKnown(peer *Peer, msg Message) {
	peer.markRequested(msg.ID)

	ours, haveOurs := m.store.Known(msg.ID)
	if !haveOurs {
		// We've never seen this covalue; ask for everything the peer
		// reported, starting from index 0 in every session.
		fromZero := make(map[coid.SessionID]int, len(msg.Sessions))
		for sessionID := range msg.Sessions {
			fromZero[sessionID] = 0
		}
		if err := peer.send(loadMessage(msg.ID, fromZero)); err != nil {
			m.log.Warn("peersync: sending load failed", "peer", peer.id, "covalue", msg.ID.String(), "error", err)
		}
		return
	}

	behindRequest := make(map[coid.SessionID]int)
	push := make(map[coid.SessionID][]session.Entry)
	for sessionID, peerLength := range msg.Sessions {
		ourLength := ours.Sessions[sessionID]
		if peerLength < ourLength {
			if entries, ok := m.store.Slice(msg.ID, sessionID, peerLength); ok {
				push[sessionID] = entries
			}
		} else if ourLength < peerLength {
			behindRequest[sessionID] = ourLength
		}
	}
	// Sessions we hold that the peer's known didn't mention at all are
	// sessions the peer has never heard of; push them in full.
	for sessionID, ourLength := range ours.Sessions {
		if _, mentioned := msg.Sessions[sessionID]; !mentioned {
			if entries, ok := m.store.Slice(msg.ID, sessionID, 0); ok && ourLength > 0 {
				push[sessionID] = entries
			}
		}
	}

	if len(push) > 0 {
		var header *core.Header
		if msg.Header == nil {
			if h, ok := m.store.Header(msg.ID); ok {
				header = &h
			}
		}
		if err := peer.send(contentMessage(msg.ID, header, push)); err != nil {
			m.log.Warn("peersync: sending content failed", "peer", peer.id, "covalue", msg.ID.String(), "error", err)
		}
	}
	if len(behindRequest) > 0 {
		if err := peer.send(loadMessage(msg.ID, behindRequest)); err != nil {
			m.log.Warn("peersync: sending load failed", "peer", peer.id, "covalue", msg.ID.String(), "error", err)
		}
	}
}

// handleLoad implements spec §4.8 step 4: reply with the requested
// slices.
func (m *Manager) handleLoad(peer *Peer, msg Message) {
	push := make(map[coid.SessionID][]session.Entry, len(msg.Sessions))
	for sessionID, fromIndex := range msg.Sessions {
		entries, ok := m.store.Slice(msg.ID, sessionID, fromIndex)
		if ok && len(entries) > 0 {
			push[sessionID] = entries
		}
	}
	if len(push) == 0 {
		return
	}
	var header *core.Header
	if h, ok := m.store.Header(msg.ID); ok {
		header = &h
	}
	if err := peer.send(contentMessage(msg.ID, header, push)); err != nil {
		m.log.Warn("peersync: sending content failed", "peer", peer.id, "covalue", msg.ID.String(), "error", err)
	}
}

// handleContent implements spec §4.8 step 3: absorb the entries,
// installing the attached header if we had none, then re-announce our
// (now larger) knownState to every other eligible peer so new content
// fans out across the mesh.
func (m *Manager) handleContent(peer *Peer, msg Message) {
	_, haveOurs := m.store.Header(msg.ID)
	var header *core.Header
	if !haveOurs {
		if msg.Header == nil {
			m.log.Warn("peersync: content for unknown covalue carried no header", "peer", peer.id, "covalue", msg.ID.String())
			return
		}
		header = msg.Header
	}

	for sessionID, wireEntries := range msg.New {
		entries, err := fromWireEntries(wireEntries)
		if err != nil {
			m.log.Warn("peersync: malformed content entries", "peer", peer.id, "covalue", msg.ID.String(), "session", sessionID.String(), "error", err)
			continue
		}
		known, _ := m.store.Known(msg.ID)
		fromIndex := known.Sessions[sessionID]
		if _, err := m.store.Receive(msg.ID, header, sessionID, fromIndex, entries); err != nil {
			m.log.Warn("peersync: rejecting content", "peer", peer.id, "covalue", msg.ID.String(), "session", sessionID.String(), "error", err)
			continue
		}
		header = nil // only the first successful Receive needs it
	}

	if err := peer.send(doneMessage(msg.ID)); err != nil {
		m.log.Warn("peersync: sending done failed", "peer", peer.id, "covalue", msg.ID.String(), "error", err)
	}

	for _, other := range m.Peers() {
		if other == peer {
			continue
		}
		m.announceTo(other, msg.ID)
	}
}
