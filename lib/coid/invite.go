// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package coid

import (
	"fmt"
	"strings"
)

// InviteSecret is the one-time secret encoded in an invite link,
// distinct from any KeyID or SealerSecretID — it authenticates a call
// to Group.AcceptInvite, nothing more.
type InviteSecret string

// NewInviteSecret constructs an InviteSecret from raw random bytes.
func NewInviteSecret(raw []byte) InviteSecret {
	return InviteSecret("inviteSecret_z" + encodeBase58(raw))
}

func (s InviteSecret) String() string { return string(s) }

// Bytes returns the decoded random material backing the secret.
func (s InviteSecret) Bytes() ([]byte, error) {
	rest, ok := strings.CutPrefix(string(s), "inviteSecret_z")
	if !ok {
		return nil, fmt.Errorf("coid: %q is not an inviteSecret_z value", s)
	}
	return decodeBase58(rest)
}

// InviteLink is the decomposed form of a "#/invite/..." URL fragment
// from spec §6. The UI that builds and parses the actual URL is out
// of scope (spec §1 Non-goals); this type and its Format/Parse
// functions are the pure, testable piece the UI would call into.
type InviteLink struct {
	// ValueHint is an optional, human-readable hint about the target
	// covalue (e.g. a display name), present or absent per spec §6.
	ValueHint string

	// ValueID is the covalue the invite grants access to.
	ValueID CovalueID

	// Secret is the one-time invite secret.
	Secret InviteSecret
}

// Format renders the invite link as a "#/invite/..." URL fragment.
func (l InviteLink) Format() string {
	if l.ValueHint != "" {
		return fmt.Sprintf("#/invite/%s/%s/%s", l.ValueHint, l.ValueID, l.Secret)
	}
	return fmt.Sprintf("#/invite/%s/%s", l.ValueID, l.Secret)
}

// ParseInviteLink parses a "#/invite/[<valueHint>/]<valueID>/<inviteSecret>"
// fragment, tolerating the presence or absence of valueHint per spec §6.
func ParseInviteLink(fragment string) (InviteLink, error) {
	const requiredPrefix = "#/invite/"
	rest, ok := strings.CutPrefix(fragment, requiredPrefix)
	if !ok {
		return InviteLink{}, fmt.Errorf("coid: invite link %q missing %q prefix", fragment, requiredPrefix)
	}

	parts := strings.Split(rest, "/")
	switch len(parts) {
	case 2:
		valueID := CovalueID(parts[0])
		if err := valueID.Validate(); err != nil {
			return InviteLink{}, fmt.Errorf("coid: invite link value ID: %w", err)
		}
		return InviteLink{ValueID: valueID, Secret: InviteSecret(parts[1])}, nil
	case 3:
		valueID := CovalueID(parts[1])
		if err := valueID.Validate(); err != nil {
			return InviteLink{}, fmt.Errorf("coid: invite link value ID: %w", err)
		}
		return InviteLink{ValueHint: parts[0], ValueID: valueID, Secret: InviteSecret(parts[2])}, nil
	default:
		return InviteLink{}, fmt.Errorf("coid: invite link %q has %d path segments, want 2 or 3", fragment, len(parts))
	}
}
