// Copyright 2025 The argent-contracts Authors
// This file is part of the argent-contracts library.
//
// Call types for outgoing account transactions. A Call is the unit of
// authorization: the gateway admits or rejects whole batches of them.

package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Call is a single outgoing call proposed on behalf of a wallet.
type Call struct {
	To    common.Address `json:"to"`
	Value *uint256.Int   `json:"value"`
	Data  []byte         `json:"data"`

	// SpenderInData marks approve-then-spend payloads: the party being
	// granted an allowance is packed into Data rather than being the
	// call target, and filters must validate that party instead.
	SpenderInData bool `json:"spenderInData"`
}

// Spender returns the identity a filter should validate for this call.
// For approve-style payloads the spender is the first ABI-encoded
// argument after the 4-byte selector; the address occupies the last 20
// bytes of that 32-byte word. Malformed payloads fall back to the call
// target, which is the conservative choice for authorization.
func (c *Call) Spender() common.Address {
	if !c.SpenderInData || len(c.Data) < 36 {
		return c.To
	}
	return common.BytesToAddress(c.Data[16:36])
}

// Copy returns a deep copy of the call.
func (c *Call) Copy() Call {
	cpy := Call{
		To:            c.To,
		Data:          common.CopyBytes(c.Data),
		SpenderInData: c.SpenderInData,
	}
	if c.Value != nil {
		cpy.Value = new(uint256.Int).Set(c.Value)
	}
	return cpy
}

// hashCalls computes a digest binding every field of every call, in
// order. Variable-length payloads are hashed before packing so that no
// two batches can collide by shifting bytes between calls.
func hashCalls(calls []Call) common.Hash {
	packed := make([]byte, 0, 128*len(calls))
	for _, c := range calls {
		packed = append(packed, c.To.Bytes()...)
		packed = append(packed, common.BigToHash(valueOrZero(c.Value).ToBig()).Bytes()...)
		packed = append(packed, crypto.Keccak256(c.Data)...)
		if c.SpenderInData {
			packed = append(packed, 0x01)
		} else {
			packed = append(packed, 0x00)
		}
	}
	return common.BytesToHash(crypto.Keccak256(packed))
}

func valueOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}
