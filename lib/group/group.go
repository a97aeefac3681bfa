// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package group

import (
	cryptorand "crypto/rand"
	"fmt"
	"sync"

	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/content"
	"github.com/weavesync/weave/lib/crypto"
)

const (
	rolePrefix   = "role_"
	readKeyKey   = "readKey"
	invitePrefix = "invite_"
)

func keyForAccountEntry(keyID coid.KeyID, account coid.CovalueID) string {
	return string(keyID) + "_for_" + string(account)
}

func wrappedInEntry(oldKeyID, newKeyID coid.KeyID) string {
	return string(oldKeyID) + "_wrapped_in_" + string(newKeyID)
}

type wrapLink struct {
	oldKeyID coid.KeyID
	wrapped  coid.Sealed
}

// Group is a fold over a group-ruleset covalue's change history: role
// assignments, sealed per-member key copies, the old-under-new key
// wrap chain, and open invites. It is rebuilt entirely from replaying
// AppliedChange values in merge order — it holds no cryptographic
// secrets of its own.
type Group struct {
	mu sync.RWMutex

	// roleHistory is every (account, role, madeAt) assignment in
	// application order, so RolesAt can fold up to any point in time.
	roleHistory []roleAssignment

	// readKeyHistory is every readKey map write in application order,
	// so ReadKeyAt can fold up to any point in time the same way
	// RolesAt does for roles.
	readKeyHistory []readKeyAssignment
	sealedForMe    map[string]coid.Sealed // keyForAccountEntry -> sealed key secret
	wrapChain      map[coid.KeyID]wrapLink // newKeyID -> link to its predecessor
	invites        map[string]Role         // invitePrefix+inviteID -> granted role
}

type roleAssignment struct {
	account coid.CovalueID
	role    Role
	madeAt  int64
}

type readKeyAssignment struct {
	keyID  coid.KeyID
	madeAt int64
}

// New returns an empty Group fold.
func New() *Group {
	return &Group{
		sealedForMe: make(map[string]coid.Sealed),
		wrapChain:   make(map[coid.KeyID]wrapLink),
		invites:     make(map[string]Role),
	}
}

// Apply folds one more AppliedChange into the group's state. Changes
// must arrive in internal/core's deterministic merge order.
func (g *Group) Apply(applied content.AppliedChange) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if applied.Change.Kind != content.KindSet {
		return
	}
	key := applied.Change.Key

	switch {
	case len(key) > len(rolePrefix) && key[:len(rolePrefix)] == rolePrefix:
		account := coid.CovalueID(key[len(rolePrefix):])
		role, _ := applied.Change.Value.(string)
		g.roleHistory = append(g.roleHistory, roleAssignment{
			account: account,
			role:    Role(role),
			madeAt:  applied.MadeAt,
		})
	case key == readKeyKey:
		keyID, _ := applied.Change.Value.(string)
		g.readKeyHistory = append(g.readKeyHistory, readKeyAssignment{
			keyID:  coid.KeyID(keyID),
			madeAt: applied.MadeAt,
		})
	case len(key) > len(invitePrefix) && key[:len(invitePrefix)] == invitePrefix:
		role, _ := applied.Change.Value.(string)
		g.invites[key] = Role(role)
	default:
		g.applyKeyDistributionEntry(key, applied.Change.Value)
	}
}

func (g *Group) applyKeyDistributionEntry(key string, value any) {
	sealedStr, ok := value.(string)
	if !ok {
		return
	}
	sealed := coid.Sealed(sealedStr)

	if oldKeyID, newKeyID, ok := parseWrappedInKey(key); ok {
		g.wrapChain[newKeyID] = wrapLink{oldKeyID: oldKeyID, wrapped: sealed}
		return
	}
	// Otherwise assume "<keyID>_for_<accountID>"; store verbatim keyed
	// by the full map key since resolving it only ever happens by
	// reconstructing the same key string from (keyID, accountID).
	g.sealedForMe[key] = sealed
}

func parseWrappedInKey(key string) (oldKeyID, newKeyID coid.KeyID, ok bool) {
	const marker = "_wrapped_in_"
	for i := 0; i+len(marker) <= len(key); i++ {
		if key[i:i+len(marker)] == marker {
			return coid.KeyID(key[:i]), coid.KeyID(key[i+len(marker):]), true
		}
	}
	return "", "", false
}

// RolesAt folds the role assignment history up to and including time
// at, returning the role in force for every account that has one.
func (g *Group) RolesAt(at int64) map[coid.CovalueID]Role {
	g.mu.RLock()
	defer g.mu.RUnlock()

	roles := make(map[coid.CovalueID]Role)
	for _, assignment := range g.roleHistory {
		if assignment.madeAt > at {
			continue
		}
		roles[assignment.account] = assignment.role
	}
	return roles
}

// ReadKeyAt folds the read-key rotation history up to and including
// time at, returning the key ID in force at that point. Every
// transaction's private content is encrypted under whichever key was
// current at the transaction's own madeAt, so materializing historical
// content requires this time-travel form rather than just "the
// current key".
func (g *Group) ReadKeyAt(at int64) (coid.KeyID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var current coid.KeyID
	found := false
	for _, assignment := range g.readKeyHistory {
		if assignment.madeAt > at {
			continue
		}
		current = assignment.keyID
		found = true
	}
	return current, found
}

// CurrentReadKeyID returns the most recently assigned read-key ID,
// regardless of its madeAt — the key new writes should be sealed
// under.
func (g *Group) CurrentReadKeyID() coid.KeyID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.readKeyHistory) == 0 {
		return ""
	}
	return g.readKeyHistory[len(g.readKeyHistory)-1].keyID
}

// ResolveSealedKeyFor returns the sealed key-secret entry addressed to
// account under keyID, if the group has one on record — i.e. account
// was a member in good standing at the time keyID became current.
func (g *Group) ResolveSealedKeyFor(keyID coid.KeyID, account coid.CovalueID) (coid.Sealed, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	sealed, ok := g.sealedForMe[keyForAccountEntry(keyID, account)]
	return sealed, ok
}

// ResolvePredecessorKey derives the key secret for oldKeyID from a
// currently-held key, by decrypting the wrap-chain entry one hop at a
// time. It returns ok=false if oldKeyID is not wrapChain's immediate
// predecessor of a key the caller can decrypt — callers walk this
// repeatedly, hop by hop, from their current key backward to whatever
// generation they need to read historical content under.
func (g *Group) ResolvePredecessorKey(currentKeyID coid.KeyID, currentKey crypto.KeySecret) (oldKeyID coid.KeyID, oldKey crypto.KeySecret, ok bool) {
	g.mu.RLock()
	link, found := g.wrapChain[currentKeyID]
	g.mu.RUnlock()
	if !found {
		return "", crypto.KeySecret{}, false
	}
	key, decrypted := crypto.DecryptKeySecret(link.wrapped, currentKey, link.oldKeyID)
	if !decrypted {
		return "", crypto.KeySecret{}, false
	}
	return link.oldKeyID, key, true
}

// MemberSealer is an (account, sealer public ID) pair the caller
// resolves externally (from the account covalue's agent list) before
// calling AddMember/RemoveMember, which need to seal a key secret to
// every affected member.
type MemberSealer struct {
	Account coid.CovalueID
	Sealer  coid.SealerID
}

// AddMember returns the Change values that grant account the given
// role and seal the group's current read key to it. The caller must
// already hold the current read key (e.g. via its own membership) and
// a sealing secret to seal from — ordinarily the account performing
// the add, acting as itself.
func AddMember(
	account coid.CovalueID,
	role Role,
	memberSealer coid.SealerID,
	currentKeyID coid.KeyID,
	currentKey crypto.KeySecret,
	from *crypto.SealingSecret,
	now int64,
) ([]content.Change, error) {
	if role == RoleRevoked {
		return nil, fmt.Errorf("group: AddMember cannot assign RoleRevoked directly")
	}
	sealed, err := crypto.Seal(currentKey.Bytes(), from, memberSealer, keyForAccountEntry(currentKeyID, account))
	if err != nil {
		return nil, fmt.Errorf("group: sealing read key to new member: %w", err)
	}
	return []content.Change{
		{Kind: content.KindSet, Key: rolePrefix + string(account), Value: string(role), Privacy: content.Trusting},
		{Kind: content.KindSet, Key: keyForAccountEntry(currentKeyID, account), Value: string(sealed), Privacy: content.Trusting},
	}, nil
}

// RemoveMember returns the Change values that revoke account's role,
// mint a fresh read key, wrap the old key under it, and reseal the
// new key to every remaining non-revoked member — spec §4.7's
// invariant that key rotation follows revocation, never precedes it.
func RemoveMember(
	account coid.CovalueID,
	oldKeyID coid.KeyID,
	oldKey crypto.KeySecret,
	remainingMembers []MemberSealer,
	from *crypto.SealingSecret,
	now int64,
) ([]content.Change, crypto.KeySecret, error) {
	newKey, err := crypto.NewKeySecret()
	if err != nil {
		return nil, crypto.KeySecret{}, fmt.Errorf("group: generating rotated read key: %w", err)
	}
	newKeyID, err := crypto.KeyID(newKey)
	if err != nil {
		return nil, crypto.KeySecret{}, fmt.Errorf("group: deriving rotated key ID: %w", err)
	}

	changes := []content.Change{
		{Kind: content.KindSet, Key: rolePrefix + string(account), Value: string(RoleRevoked), Privacy: content.Trusting},
		{Kind: content.KindSet, Key: readKeyKey, Value: string(newKeyID), Privacy: content.Trusting},
	}

	wrapped, err := crypto.EncryptKeySecret(oldKey, newKey, oldKeyID)
	if err != nil {
		return nil, crypto.KeySecret{}, fmt.Errorf("group: wrapping old read key under new one: %w", err)
	}
	changes = append(changes, content.Change{
		Kind: content.KindSet, Key: wrappedInEntry(oldKeyID, newKeyID), Value: string(wrapped), Privacy: content.Trusting,
	})

	for _, member := range remainingMembers {
		if member.Account == account {
			continue
		}
		sealed, err := crypto.Seal(newKey.Bytes(), from, member.Sealer, keyForAccountEntry(newKeyID, member.Account))
		if err != nil {
			return nil, crypto.KeySecret{}, fmt.Errorf("group: resealing new key to %s: %w", member.Account, err)
		}
		changes = append(changes, content.Change{
			Kind: content.KindSet, Key: keyForAccountEntry(newKeyID, member.Account), Value: string(sealed), Privacy: content.Trusting,
		})
	}

	return changes, newKey, nil
}

// CreateInvite returns the Change that publishes an open invite for
// role, plus the secret the invitee must present to AcceptInvite. The
// invite's map key is derived from a hash of the secret, not a
// separately-transmitted ID — see DESIGN.md's Open Question decision
// on invite-link shape: knowledge of the secret is the only thing
// that makes the entry findable, and the role it grants is not
// sensitive enough to need sealing on top of that.
func CreateInvite(role Role) (content.Change, coid.InviteSecret, error) {
	raw := make([]byte, 32)
	if _, err := cryptorand.Read(raw); err != nil {
		return content.Change{}, "", fmt.Errorf("group: generating invite secret: %w", err)
	}
	inviteSecret := coid.NewInviteSecret(raw)
	inviteID := crypto.ShortHashBytes(raw)

	change := content.Change{
		Kind:    content.KindSet,
		Key:     invitePrefix + coid.NewKeyID(inviteID).String(),
		Value:   string(role),
		Privacy: content.Trusting,
	}
	return change, inviteSecret, nil
}

// AcceptInvite looks up the role an invite secret was minted for. The
// caller is responsible for then performing the equivalent of
// AddMember for its own account at the returned role.
func (g *Group) AcceptInvite(secret coid.InviteSecret) (Role, bool) {
	raw, err := secret.Bytes()
	if err != nil {
		return "", false
	}
	inviteID := crypto.ShortHashBytes(raw)
	key := invitePrefix + coid.NewKeyID(inviteID).String()

	g.mu.RLock()
	defer g.mu.RUnlock()
	role, ok := g.invites[key]
	return role, ok
}
