// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package content

import "github.com/weavesync/weave/lib/coid"

// positionBase bounds one path segment's digit space. Leaving room on
// both sides of any existing digit lets Between find a midpoint
// without renumbering anything already inserted.
const positionBase = 1 << 16

// PathSegment is one level of a Position's path: a digit, broken ties
// on by the session that chose it. Generalizes the "position
// identifier interpolated between predecessor and successor" idea
// (Logoot) into a form that also totally orders concurrent inserts at
// the same predecessor by (digit tie, sessionID).
type PathSegment struct {
	Digit     uint32        `cbor:"digit"`
	SessionID coid.SessionID `cbor:"sessionID"`
}

// Position is a dense, totally ordered list-element identifier. A nil
// Position used as a "before" bound means "before every element"; a
// nil Position used as an "after" bound means "after every element".
type Position []PathSegment

// Compare returns -1, 0, or 1 as p sorts before, equal to, or after
// other.
func (p Position) Compare(other Position) int {
	for i := 0; i < len(p) && i < len(other); i++ {
		if p[i].Digit != other[i].Digit {
			if p[i].Digit < other[i].Digit {
				return -1
			}
			return 1
		}
		if p[i].SessionID != other[i].SessionID {
			if p[i].SessionID < other[i].SessionID {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(p) < len(other):
		return -1
	case len(p) > len(other):
		return 1
	default:
		return 0
	}
}

// Between generates a new Position that sorts strictly between before
// and after (nil on either side meaning "no bound"), tie-broken by
// sessionID at the depth where the new digit is chosen. Concurrent
// inserts at the same predecessor therefore sort by
// (digit, sessionID), matching spec §4.6's List merge rule.
func Between(before, after Position, sessionID coid.SessionID) Position {
	var result Position
	for depth := 0; ; depth++ {
		low := uint32(0)
		hasLow := depth < len(before)
		if hasLow {
			low = before[depth].Digit
		}
		high := uint32(positionBase)
		hasHigh := depth < len(after)
		if hasHigh {
			high = after[depth].Digit
		}

		if high-low > 1 {
			mid := low + (high-low)/2
			result = append(result, PathSegment{Digit: mid, SessionID: sessionID})
			return result
		}

		// No room at this depth: carry the lower bound's segment
		// forward (keeping result's prefix equal to before's) and
		// look for room one level deeper.
		if hasLow {
			result = append(result, before[depth])
		} else {
			result = append(result, PathSegment{Digit: 0, SessionID: sessionID})
		}
	}
}
