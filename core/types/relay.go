// Copyright 2025 The argent-contracts Authors
// This file is part of the argent-contracts library.
//
// Relayed meta-transaction type. A third party submits a signed batch
// on the wallet's behalf, compensated by a tip, gated by nonce and
// signature-threshold checks in the gateway.

package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// SignatureLength is the length of one recoverable signature.
const SignatureLength = 65

// relayDomainTag separates relayed-exec hashes from any other signed
// payload the owner or guardians might produce.
var relayDomainTag = []byte("argent/relayed-exec/v1")

// RelayedExec bundles an ordered batch of calls with the replay nonce,
// the relayer tip, and the concatenated approval signatures.
type RelayedExec struct {
	Wallet common.Address `json:"wallet"`
	Calls  []Call         `json:"calls"`
	Nonce  uint64         `json:"nonce"`

	// Tip paid to the relaying party. A zero TipToken means the native
	// asset.
	TipToken  common.Address `json:"tipToken"`
	TipAmount *uint256.Int   `json:"tipAmount"`

	// Signatures holds zero or more concatenated 65-byte recoverable
	// signatures over Hash().
	Signatures []byte `json:"signatures"`
}

// SignatureCount returns the number of whole signatures present, and
// whether the signature blob has a valid length.
func (e *RelayedExec) SignatureCount() (int, bool) {
	if len(e.Signatures)%SignatureLength != 0 {
		return 0, false
	}
	return len(e.Signatures) / SignatureLength, true
}

// SignatureAt returns the i-th signature. The caller is responsible
// for bounds via SignatureCount.
func (e *RelayedExec) SignatureAt(i int) []byte {
	return e.Signatures[i*SignatureLength : (i+1)*SignatureLength]
}

// Hash computes the digest the approval signatures must cover. It
// binds the wallet, the nonce, every call field, and the tip, under a
// fixed domain tag.
func (e *RelayedExec) Hash() common.Hash {
	packed := make([]byte, 0, 192)
	packed = append(packed, relayDomainTag...)
	packed = append(packed, e.Wallet.Bytes()...)
	packed = append(packed, common.BigToHash(new(big.Int).SetUint64(e.Nonce)).Bytes()...)
	packed = append(packed, hashCalls(e.Calls).Bytes()...)
	packed = append(packed, e.TipToken.Bytes()...)
	packed = append(packed, common.BigToHash(valueOrZero(e.TipAmount).ToBig()).Bytes()...)
	return common.BytesToHash(crypto.Keccak256(packed))
}

// HasTip reports whether the exec carries a non-zero relayer tip.
func (e *RelayedExec) HasTip() bool {
	return e.TipAmount != nil && !e.TipAmount.IsZero()
}

// BatchReceipt records the outcome of one executed (or admitted but
// rejected) batch.
type BatchReceipt struct {
	Wallet  common.Address `json:"wallet"`
	Hash    common.Hash    `json:"hash"`
	Nonce   uint64         `json:"nonce"`
	Relayed bool           `json:"relayed"`
	Success bool           `json:"success"`
	Reason  string         `json:"reason,omitempty"`
	Returns [][]byte       `json:"returns,omitempty"`
}
