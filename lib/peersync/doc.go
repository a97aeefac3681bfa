// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

// Package peersync implements the covalue sync state machine: a
// per-peer knownState/requestedState exchange of JSON records over an
// abstract duplex channel (an io.ReadWriteCloser), gossiping
// transactions between replicas until they converge.
//
// peersync never decides how a channel is obtained or reconnected —
// that is the job of an external adapter (cmd/weave-relay's TCP
// dialer, cmd/weave-bridge's net.Pipe()), which calls Manager.AddPeer
// once a channel exists and uses Reconnector to retry after it closes.
// peersync also never resolves which account a session speaks for or
// whether a write is authorized; it delegates every append to the
// Store it was constructed with, which wraps internal/core's own
// authorization and hash-chain checks.
package peersync
