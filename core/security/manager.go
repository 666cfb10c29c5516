// Copyright 2025 The argent-contracts Authors
// This file is part of the argent-contracts library.
//
// SecurityManager owns the time-locked protocols that mutate sensitive
// wallet state: guardian membership, trusted recipients, and the
// guardian-initiated wallet lock. Requests and cancellations are owner
// judgment calls; confirmations are mechanical, time-gated, and open
// to anyone.

package security

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
	"github.com/jonboulle/clockwork"

	"github.com/blogkid/argent-contracts/config"
	"github.com/blogkid/argent-contracts/core/state"
	"github.com/blogkid/argent-contracts/core/types"
)

var (
	ErrNotOwner          = errors.New("sender is not the wallet owner")
	ErrNotGuardianCaller = errors.New("sender is not a guardian")
	ErrWalletLocked      = errors.New("wallet is locked")
	ErrWalletNotLocked   = errors.New("wallet is not locked")

	ErrOwnerAsGuardian     = errors.New("guardian candidate is the wallet owner")
	ErrDuplicateGuardian   = errors.New("candidate is already a guardian")
	ErrUnusableGuardian    = errors.New("candidate cannot be used as a guardian")
	ErrAdditionPending     = errors.New("guardian addition already pending")
	ErrNoPendingAddition   = errors.New("no pending guardian addition")
	ErrNotGuardian         = errors.New("target is not a guardian")
	ErrRevocationPending   = errors.New("guardian revocation already pending")
	ErrNoPendingRevocation = errors.New("no pending guardian revocation")

	ErrAlreadyTrusted     = errors.New("target is already a trusted recipient")
	ErrNotTrusted         = errors.New("target is not a trusted recipient")
	ErrRecipientPending   = errors.New("trusted recipient addition already pending")
	ErrNoPendingRecipient = errors.New("no pending trusted recipient addition")

	ErrConfirmTooEarly = errors.New("security period has not elapsed")
	ErrConfirmTooLate  = errors.New("confirmation window has expired")
)

// ownerProbeGas is the fixed stipend for the read-only owner probe on
// contract guardians. Small enough that a malicious contract cannot do
// meaningful work inside the probe.
const ownerProbeGas = 25000

// ChainReader is the minimal view of host chain state the manager
// needs to vet guardian candidates: a plain signer has no code, and a
// contract guardian must answer an owner probe.
type ChainReader interface {
	// GetCode returns the code deployed at addr, empty for plain
	// signers.
	GetCode(addr common.Address) []byte

	// CallOwner performs a read-only owner() probe against a contract
	// under a fixed gas stipend. Any failure is reported as an error,
	// never a panic.
	CallOwner(addr common.Address, gas uint64) (common.Address, error)
}

// Manager drives the time-locked security protocols for all wallets in
// a store.
type Manager struct {
	store  *state.Store
	chain  ChainReader
	params config.Params
	clock  clockwork.Clock

	feed event.Feed
}

// NewManager creates a security manager. The parameters are fixed for
// the manager's lifetime.
func NewManager(store *state.Store, chain ChainReader, params config.Params, clock clockwork.Clock) *Manager {
	return &Manager{
		store:  store,
		chain:  chain,
		params: params,
		clock:  clock,
	}
}

// SubscribeEvents delivers one types.Event per state transition.
func (m *Manager) SubscribeEvents(ch chan<- types.Event) event.Subscription {
	return m.feed.Subscribe(ch)
}

func (m *Manager) emit(ev types.Event) {
	m.feed.Send(ev)
}

func (m *Manager) now() uint64 {
	return uint64(m.clock.Now().Unix())
}

func (m *Manager) securityPeriod() uint64 {
	return uint64(m.params.SecurityPeriod.Seconds())
}

func (m *Manager) securityWindow() uint64 {
	return uint64(m.params.SecurityWindow.Seconds())
}

// pendingBlocks reports whether an existing pending entry still blocks
// a new request. Stale entries, whose confirmation window has expired
// without confirmation, are freely replaceable.
func (m *Manager) pendingBlocks(readyAt uint64) bool {
	return readyAt != 0 && m.now() <= readyAt+m.securityWindow()
}

// checkWindow validates a confirmation attempt against a pending
// entry's window: [readyAt, readyAt+window], both bounds inclusive.
func (m *Manager) checkWindow(readyAt uint64) error {
	now := m.now()
	if now < readyAt {
		return ErrConfirmTooEarly
	}
	if now > readyAt+m.securityWindow() {
		return ErrConfirmTooLate
	}
	return nil
}

// opID derives the deterministic pending-operation key for a
// (wallet, target, kind) triple.
func opID(kind string, wallet, target common.Address) common.Hash {
	return common.BytesToHash(crypto.Keccak256([]byte(kind), wallet.Bytes(), target.Bytes()))
}

const (
	opGuardianAddition   = "guardian-addition"
	opGuardianRevocation = "guardian-revocation"
	opRecipientAddition  = "recipient-addition"
)

// IsLocked reports whether the wallet is currently locked. An expired
// lock counts as unlocked without needing an explicit release.
func (m *Manager) IsLocked(w *state.Wallet) bool {
	until := w.LockedUntil()
	return until != 0 && m.now() < until
}
