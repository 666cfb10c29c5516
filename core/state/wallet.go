// Copyright 2025 The argent-contracts Authors
// This file is part of the argent-contracts library.
//
// Per-wallet security state. All mutations happen through the manager
// packages, which take an explicit *Wallet; there is no ambient state.

package state

import "github.com/ethereum/go-ethereum/common"

// Wallet holds the security state of one protected account. The host
// environment linearizes all state-changing operations per account, so
// Wallet carries no locking of its own.
type Wallet struct {
	address common.Address
	owner   common.Address

	// Guardian arena plus index map. Removal swaps the tail into the
	// freed slot, so positions are not stable and carry no meaning.
	guardians     []common.Address
	guardianIndex map[common.Address]int

	// Pending time-locked operations: operation id -> ready-at unix
	// timestamp. Zero means no pending entry.
	pending map[common.Hash]uint64

	// Confirmed trusted recipients.
	recipients map[common.Address]struct{}

	// Lock release timestamp, zero when unlocked.
	lockedUntil uint64

	// Replay nonce for relayed execution.
	nonce uint64
}

func newWallet(address, owner common.Address) *Wallet {
	return &Wallet{
		address:       address,
		owner:         owner,
		guardianIndex: make(map[common.Address]int),
		pending:       make(map[common.Hash]uint64),
		recipients:    make(map[common.Address]struct{}),
	}
}

// Address returns the wallet's account address.
func (w *Wallet) Address() common.Address { return w.address }

// Owner returns the wallet owner.
func (w *Wallet) Owner() common.Address { return w.owner }

// IsGuardian reports whether addr is currently a guardian.
func (w *Wallet) IsGuardian(addr common.Address) bool {
	_, ok := w.guardianIndex[addr]
	return ok
}

// GuardianCount returns the number of active guardians.
func (w *Wallet) GuardianCount() int { return len(w.guardians) }

// Guardians returns a copy of the guardian set. Order is not
// semantically meaningful.
func (w *Wallet) Guardians() []common.Address {
	out := make([]common.Address, len(w.guardians))
	copy(out, w.guardians)
	return out
}

// AddGuardian appends addr to the guardian arena. The caller is
// responsible for duplicate and validity checks.
func (w *Wallet) AddGuardian(addr common.Address) {
	w.guardianIndex[addr] = len(w.guardians)
	w.guardians = append(w.guardians, addr)
}

// RemoveGuardian deletes addr by swapping the tail guardian into its
// slot and truncating, updating the moved guardian's index. Returns
// false if addr is not a guardian.
func (w *Wallet) RemoveGuardian(addr common.Address) bool {
	idx, ok := w.guardianIndex[addr]
	if !ok {
		return false
	}
	last := len(w.guardians) - 1
	if idx != last {
		moved := w.guardians[last]
		w.guardians[idx] = moved
		w.guardianIndex[moved] = idx
	}
	w.guardians = w.guardians[:last]
	delete(w.guardianIndex, addr)
	return true
}

// PendingReadyAt returns the ready-at timestamp for an operation id,
// zero if nothing is pending.
func (w *Wallet) PendingReadyAt(id common.Hash) uint64 {
	return w.pending[id]
}

// SetPending records (or replaces) a pending operation.
func (w *Wallet) SetPending(id common.Hash, readyAt uint64) {
	w.pending[id] = readyAt
}

// ClearPending removes a pending operation record.
func (w *Wallet) ClearPending(id common.Hash) {
	delete(w.pending, id)
}

// IsTrustedRecipient reports whether addr is a confirmed trusted
// recipient.
func (w *Wallet) IsTrustedRecipient(addr common.Address) bool {
	_, ok := w.recipients[addr]
	return ok
}

// AddTrustedRecipient marks addr as a confirmed trusted recipient.
func (w *Wallet) AddTrustedRecipient(addr common.Address) {
	w.recipients[addr] = struct{}{}
}

// RemoveTrustedRecipient clears addr from the trusted recipients.
// Returns false if addr was not trusted.
func (w *Wallet) RemoveTrustedRecipient(addr common.Address) bool {
	if _, ok := w.recipients[addr]; !ok {
		return false
	}
	delete(w.recipients, addr)
	return true
}

// LockedUntil returns the lock release timestamp, zero when unlocked.
func (w *Wallet) LockedUntil() uint64 { return w.lockedUntil }

// SetLockedUntil sets the lock release timestamp. Zero unlocks.
func (w *Wallet) SetLockedUntil(ts uint64) { w.lockedUntil = ts }

// Nonce returns the current replay nonce.
func (w *Wallet) Nonce() uint64 { return w.nonce }

// IncrementNonce consumes the current nonce. It is never decremented.
func (w *Wallet) IncrementNonce() { w.nonce++ }
