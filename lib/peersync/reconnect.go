// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package peersync

import (
	"time"

	"github.com/weavesync/weave/lib/clock"
)

// Reconnector implements the exponential-backoff-capped-at-30s policy
// spec §4.8 assigns to external adapters ("responsible for
// reconnecting with exponential backoff capped at 30s, resetting to
// the initial delay on a network-up signal"). peersync itself stays
// connection-agnostic; an adapter like cmd/weave-relay's TCP dialer
// owns one Reconnector per remote peer.
type Reconnector struct {
	clock   clock.Clock
	initial time.Duration
	max     time.Duration
	current time.Duration
}

// NewReconnector returns a Reconnector starting at initial and
// doubling on every failure up to max.
func NewReconnector(initial, max time.Duration) *Reconnector {
	return &Reconnector{clock: clock.Real(), initial: initial, max: max, current: initial}
}

// WithClock overrides the Reconnector's time source for deterministic
// tests.
func (r *Reconnector) WithClock(c clock.Clock) *Reconnector {
	r.clock = c
	return r
}

// Wait blocks for the current backoff duration, then doubles it
// (capped at max) for next time. Call Reset after a successful
// connection.
func (r *Reconnector) Wait() {
	r.clock.Sleep(r.current)
	next := r.current * 2
	if next > r.max || next <= 0 {
		next = r.max
	}
	r.current = next
}

// Reset restores the backoff to its initial delay, called once a
// connection attempt succeeds (spec's "network-up signal").
func (r *Reconnector) Reset() {
	r.current = r.initial
}

// Delay reports the backoff duration the next Wait call will sleep
// for, without sleeping.
func (r *Reconnector) Delay() time.Duration {
	return r.current
}
