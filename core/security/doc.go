// Copyright 2025 The argent-contracts Authors
// This file is part of the argent-contracts library.

/*
Package security implements the time-locked protocols protecting
sensitive wallet state.

Guardians are secondary approvers of a wallet: plain signers, or
contracts whose controlling signer is resolved through a bounded-gas
owner probe. Changes to the guardian set, and additions to the trusted
recipient allow-list, follow the same two-phase protocol:

	owner requests change
	    → pending record stored with readyAt = now + security period
	        → anyone confirms inside [readyAt, readyAt + window]
	            → change applied, record cleared

Requests and cancellations are owner judgment calls; confirmation is a
mechanical, time-gated action open to anyone so an uncooperative owner
cannot strand a request. A pending record whose window expired without
confirmation is stale and freely replaceable by a new request.

The very first guardian is added immediately, with no time lock, so a
fresh wallet can bootstrap its protection.

Guardians can lock the wallet for a fixed period, freezing the
owner-gated request paths, typically in response to a suspected key
compromise. Guardian revocation requests deliberately ignore the lock
so a rogue guardian cannot lock itself in.

The passage of time comes from an injected clock; pending records are
durable state consulted on later calls, never goroutines waiting on
timers. One types.Event is emitted per state transition.
*/
package security
