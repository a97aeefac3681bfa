// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package content

import "github.com/weavesync/weave/lib/coid"

// sessionIDForTest builds a syntactically valid-looking SessionID from
// a short label, for tests that only need distinct, comparable
// session identities rather than real agent keys.
func sessionIDForTest(label string) coid.SessionID {
	var pub [32]byte
	copy(pub[:], label)
	signer := coid.NewSignerID(pub)
	sealer := coid.NewSealerID(pub)
	agent := coid.NewAgentID(signer, sealer)
	return coid.NewSessionID(agent, 0)
}
