// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/content"
	"github.com/weavesync/weave/lib/crypto"
)

// RulesetKind names one of the four write-authorization regimes a
// covalue's header can declare.
type RulesetKind string

const (
	// RulesetGroup marks a covalue as itself a group ruleset object:
	// only admins may write to it.
	RulesetGroup RulesetKind = "group"
	// RulesetOwnedByGroup marks a covalue whose writers are governed
	// by a separate group covalue: writer role or above may write.
	RulesetOwnedByGroup RulesetKind = "ownedByGroup"
	// RulesetUnsafeAllowAll marks a covalue with no write gate at
	// all — any signature from any agent is accepted.
	RulesetUnsafeAllowAll RulesetKind = "unsafeAllowAll"
	// RulesetAccount marks an account's own covalue: only the
	// account's own agent(s), folded the same way a group's admins
	// are, may write.
	RulesetAccount RulesetKind = "account"
)

// Ruleset is a header's write-authorization declaration. Group is
// only meaningful when Kind is RulesetOwnedByGroup, naming the
// governing group covalue.
type Ruleset struct {
	Kind  RulesetKind    `json:"kind"`
	Group coid.CovalueID `json:"group,omitempty"`
}

// Header is a covalue's immutable identity: everything that
// determines its content-addressed ID. Two headers that canonicalize
// to the same bytes are the same covalue.
type Header struct {
	Type           content.TypeTag `json:"type"`
	Ruleset        Ruleset         `json:"ruleset"`
	Meta           any             `json:"meta,omitempty"`
	CreatedAt      int64           `json:"createdAt"`
	UniquenessSalt string          `json:"uniquenessSalt"`
}

// ID computes the covalue ID for header: co_z<hash of its canonical
// encoding>.
func (h Header) ID() (coid.CovalueID, error) {
	hash, err := crypto.SecureHash(h)
	if err != nil {
		return "", fmt.Errorf("core: hashing header: %w", err)
	}
	return coid.NewCovalueID(hash), nil
}

// ErrInvalidHeader is returned when a covalue's declared ID does not
// match the hash of its header, or a header fails a structural check.
var ErrInvalidHeader = fmt.Errorf("core: header does not hash to the declared covalue ID")
