// Copyright 2025 The argent-contracts Authors
// This file is part of the argent-contracts library.
//
// Call authorization. A proposed outgoing call is allowed if its
// target is a confirmed trusted recipient, or if a registry active for
// the wallet carries an authorization entry for the target and the
// entry's filter (if any) accepts the call.

package registry

import (
	"errors"

	"github.com/blogkid/argent-contracts/core/state"
	"github.com/blogkid/argent-contracts/core/types"
)

var (
	ErrCallNotAuthorized = errors.New("call target not authorized")
	ErrFilterRejected    = errors.New("call rejected by authorization filter")
)

// AuthorizeCall renders the allow/deny decision for one call. Entries
// are not merged across registries: the first matching entry, in the
// fixed default-then-ascending-custom order, decides alone. A nil
// filter on the matched entry is an unconditional allow.
func (r *Registries) AuthorizeCall(w *state.Wallet, call types.Call) error {
	if w.IsTrustedRecipient(call.To) {
		return nil
	}
	spender := call.Spender()
	for _, id := range r.activeIDs(w.Address()) {
		filter, ok := r.authorizations[id][call.To]
		if !ok {
			continue
		}
		if filter == nil {
			return nil
		}
		if filter.Valid(w.Address(), spender, call.To, call.Value, call.Data) {
			return nil
		}
		return ErrFilterRejected
	}
	return ErrCallNotAuthorized
}
