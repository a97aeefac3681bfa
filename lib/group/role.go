// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package group

// Role is a member's standing within a group, spec §4.7.
type Role string

const (
	RoleReader  Role = "reader"
	RoleWriter  Role = "writer"
	RoleAdmin   Role = "admin"
	RoleRevoked Role = "revoked"
)

// CanWrite reports whether r may sign transactions in a covalue owned
// by this group (ruleset ownedByGroup), per spec §4.7: role ≥ writer.
func (r Role) CanWrite() bool {
	return r == RoleWriter || r == RoleAdmin
}

// CanAdmin reports whether r may modify the group covalue itself.
func (r Role) CanAdmin() bool {
	return r == RoleAdmin
}
