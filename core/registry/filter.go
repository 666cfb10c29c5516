// Copyright 2025 The argent-contracts Authors
// This file is part of the argent-contracts library.

package registry

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Filter is the per-call validator attached to an authorization entry.
// Implementations are independent policy objects; the authorization
// core only invokes the interface and trusts the boolean result.
//
// spender is the identity being granted power by the call: the call
// target itself, or for approve-then-spend payloads the address packed
// into the calldata.
type Filter interface {
	Valid(wallet, spender, to common.Address, value *uint256.Int, data []byte) bool
}
