// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package group

import "github.com/weavesync/weave/lib/coid"

// Decision is the outcome of a write-authorization check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// DenyReason explains why a write-authorization check denied.
type DenyReason int

const (
	// ReasonNoRole means the signing account has no role entry at all
	// as of the transaction's madeAt.
	ReasonNoRole DenyReason = iota
	// ReasonInsufficientRole means the account has a role, but it
	// doesn't meet the action's required minimum (e.g. reader trying
	// to write, or non-admin trying to modify the group).
	ReasonInsufficientRole
	// ReasonRevoked means the account's role was revoked as of
	// madeAt.
	ReasonRevoked
)

func (r DenyReason) String() string {
	switch r {
	case ReasonNoRole:
		return "no role assigned"
	case ReasonInsufficientRole:
		return "role does not meet required minimum"
	case ReasonRevoked:
		return "role was revoked"
	default:
		return "unknown"
	}
}

// Result is the evaluation trace for one write-authorization check,
// shaped after lib/authorization.Result: a decision plus enough
// detail to audit or debug it, without leaking implementation guts to
// the caller via a plain bool.
type Result struct {
	Decision Decision
	Reason   DenyReason
	Account  coid.CovalueID
	Role     Role
}

// CheckWrite evaluates whether account may sign a write at time madeAt,
// given the roles in force at that time. requireAdmin is true when
// checking a write to the group covalue itself (spec §4.7: "only
// admins may modify the group"); false for an ordinary
// ownedByGroup{group} covalue, which only requires writer or above.
func CheckWrite(roles map[coid.CovalueID]Role, account coid.CovalueID, requireAdmin bool) Result {
	role, ok := roles[account]
	if !ok {
		return Result{Decision: Deny, Reason: ReasonNoRole, Account: account}
	}
	if role == RoleRevoked {
		return Result{Decision: Deny, Reason: ReasonRevoked, Account: account, Role: role}
	}
	if requireAdmin {
		if !role.CanAdmin() {
			return Result{Decision: Deny, Reason: ReasonInsufficientRole, Account: account, Role: role}
		}
		return Result{Decision: Allow, Account: account, Role: role}
	}
	if !role.CanWrite() {
		return Result{Decision: Deny, Reason: ReasonInsufficientRole, Account: account, Role: role}
	}
	return Result{Decision: Allow, Account: account, Role: role}
}
