// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

// Package group implements the permission/group engine: role
// assignment, read-key rotation and wrapping, invites, and the
// time-travel RolesAt/ReadKeyAt queries internal/core consults before
// accepting a write to a group-owned covalue.
//
// A Group holds no signing or storage capability of its own — like
// lib/content, it is a pure fold over an ordered change history that
// internal/core feeds it one AppliedChange at a time, and its mutating
// operations (AddMember, RemoveMember, CreateInvite) return the
// content.Change values a caller must sign and commit through the
// owning covalue's session log, mirroring the layered
// Decision/Result evaluation shape of lib/authorization/eval.go.
package group
