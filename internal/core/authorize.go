// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"github.com/weavesync/weave/lib/coid"
	"github.com/weavesync/weave/lib/group"
)

// ErrUnauthorized is returned by TryAddTransactions when the signing
// account did not hold the required role at the transaction's madeAt.
var ErrUnauthorized = fmt.Errorf("core: signer not authorized to write")

// checkAuthorized evaluates whether account may sign a transaction at
// madeAt, per the covalue's ruleset. requireAdmin mirrors group's own
// rule ("only admins may modify the group itself"): true for
// RulesetGroup and RulesetAccount, false for RulesetOwnedByGroup.
func (c *Covalue) checkAuthorized(account coid.CovalueID, madeAt int64) group.Result {
	switch c.header.Ruleset.Kind {
	case RulesetUnsafeAllowAll:
		return group.Result{Decision: group.Allow, Account: account}

	case RulesetGroup, RulesetAccount:
		if c.Group == nil {
			return group.Result{Decision: group.Deny, Reason: group.ReasonNoRole, Account: account}
		}
		roles := c.Group.RolesAt(madeAt)
		return group.CheckWrite(roles, account, true)

	case RulesetOwnedByGroup:
		if c.Group == nil {
			return group.Result{Decision: group.Deny, Reason: group.ReasonNoRole, Account: account}
		}
		roles := c.Group.RolesAt(madeAt)
		return group.CheckWrite(roles, account, false)

	default:
		return group.Result{Decision: group.Deny, Reason: group.ReasonNoRole, Account: account}
	}
}
