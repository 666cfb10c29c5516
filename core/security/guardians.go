// Copyright 2025 The argent-contracts Authors
// This file is part of the argent-contracts library.
//
// Guardian lifecycle: time-locked addition and revocation, candidate
// vetting, and guardian-or-signer resolution.

package security

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/blogkid/argent-contracts/core/types"
)

// AddGuardian requests the addition of a guardian. The very first
// guardian is added immediately to bootstrap protection; every later
// addition creates a pending record that must be confirmed inside the
// security window.
func (m *Manager) AddGuardian(wallet, caller, guardian common.Address) error {
	w, err := m.store.Get(wallet)
	if err != nil {
		return err
	}
	if caller != w.Owner() {
		return ErrNotOwner
	}
	if m.IsLocked(w) {
		return ErrWalletLocked
	}
	if err := m.checkGuardianCandidate(w.Owner(), guardian, w.IsGuardian(guardian)); err != nil {
		return err
	}

	if w.GuardianCount() == 0 {
		w.AddGuardian(guardian)
		log.Info("First guardian added", "wallet", wallet, "guardian", guardian)
		m.emit(types.Event{Kind: types.GuardianAdded, Wallet: wallet, Target: guardian})
		return nil
	}

	id := opID(opGuardianAddition, wallet, guardian)
	if m.pendingBlocks(w.PendingReadyAt(id)) {
		return ErrAdditionPending
	}
	readyAt := m.now() + m.securityPeriod()
	w.SetPending(id, readyAt)
	log.Info("Guardian addition requested", "wallet", wallet, "guardian", guardian, "readyAt", readyAt)
	m.emit(types.Event{Kind: types.GuardianAdditionRequested, Wallet: wallet, Target: guardian})
	return nil
}

// ConfirmGuardianAddition finalizes a pending addition. It is callable
// by anyone so that an uncooperative owner cannot strand the request,
// but only succeeds inside the confirmation window.
func (m *Manager) ConfirmGuardianAddition(wallet, guardian common.Address) error {
	w, err := m.store.Get(wallet)
	if err != nil {
		return err
	}
	id := opID(opGuardianAddition, wallet, guardian)
	readyAt := w.PendingReadyAt(id)
	if readyAt == 0 {
		return ErrNoPendingAddition
	}
	if err := m.checkWindow(readyAt); err != nil {
		return fmt.Errorf("guardian addition: %w", err)
	}
	w.ClearPending(id)
	w.AddGuardian(guardian)
	log.Info("Guardian added", "wallet", wallet, "guardian", guardian)
	m.emit(types.Event{Kind: types.GuardianAdded, Wallet: wallet, Target: guardian})
	return nil
}

// CancelGuardianAddition clears a pending addition. Owner only, always
// allowed while a request is pending, regardless of timing.
func (m *Manager) CancelGuardianAddition(wallet, caller, guardian common.Address) error {
	w, err := m.store.Get(wallet)
	if err != nil {
		return err
	}
	if caller != w.Owner() {
		return ErrNotOwner
	}
	if m.IsLocked(w) {
		return ErrWalletLocked
	}
	id := opID(opGuardianAddition, wallet, guardian)
	if w.PendingReadyAt(id) == 0 {
		return ErrNoPendingAddition
	}
	w.ClearPending(id)
	log.Info("Guardian addition cancelled", "wallet", wallet, "guardian", guardian)
	m.emit(types.Event{Kind: types.GuardianAdditionCancelled, Wallet: wallet, Target: guardian})
	return nil
}

// RevokeGuardian requests the revocation of an existing guardian under
// the same security period. The request is deliberately not gated on
// the wallet lock, so a rogue guardian cannot lock the wallet to block
// its own removal. A stale unconfirmed revocation is replaceable by a
// new request, mirroring the addition path.
func (m *Manager) RevokeGuardian(wallet, caller, guardian common.Address) error {
	w, err := m.store.Get(wallet)
	if err != nil {
		return err
	}
	if caller != w.Owner() {
		return ErrNotOwner
	}
	if !w.IsGuardian(guardian) {
		return ErrNotGuardian
	}
	id := opID(opGuardianRevocation, wallet, guardian)
	if m.pendingBlocks(w.PendingReadyAt(id)) {
		return ErrRevocationPending
	}
	readyAt := m.now() + m.securityPeriod()
	w.SetPending(id, readyAt)
	log.Info("Guardian revocation requested", "wallet", wallet, "guardian", guardian, "readyAt", readyAt)
	m.emit(types.Event{Kind: types.GuardianRevocationRequested, Wallet: wallet, Target: guardian})
	return nil
}

// ConfirmGuardianRevocation finalizes a pending revocation, removing
// the guardian by swap-and-pop.
func (m *Manager) ConfirmGuardianRevocation(wallet, guardian common.Address) error {
	w, err := m.store.Get(wallet)
	if err != nil {
		return err
	}
	id := opID(opGuardianRevocation, wallet, guardian)
	readyAt := w.PendingReadyAt(id)
	if readyAt == 0 {
		return ErrNoPendingRevocation
	}
	if err := m.checkWindow(readyAt); err != nil {
		return fmt.Errorf("guardian revocation: %w", err)
	}
	w.ClearPending(id)
	if !w.RemoveGuardian(guardian) {
		return ErrNotGuardian
	}
	log.Info("Guardian revoked", "wallet", wallet, "guardian", guardian)
	m.emit(types.Event{Kind: types.GuardianRevoked, Wallet: wallet, Target: guardian})
	return nil
}

// CancelGuardianRevocation clears a pending revocation. Owner only,
// while unlocked.
func (m *Manager) CancelGuardianRevocation(wallet, caller, guardian common.Address) error {
	w, err := m.store.Get(wallet)
	if err != nil {
		return err
	}
	if caller != w.Owner() {
		return ErrNotOwner
	}
	if m.IsLocked(w) {
		return ErrWalletLocked
	}
	id := opID(opGuardianRevocation, wallet, guardian)
	if w.PendingReadyAt(id) == 0 {
		return ErrNoPendingRevocation
	}
	w.ClearPending(id)
	log.Info("Guardian revocation cancelled", "wallet", wallet, "guardian", guardian)
	m.emit(types.Event{Kind: types.GuardianRevocationCancelled, Wallet: wallet, Target: guardian})
	return nil
}

// checkGuardianCandidate vets an addition candidate: not the owner,
// not already a guardian, and usable as a signer. Contracts must
// answer a bounded-gas owner probe. The probe is a heuristic that
// filters out contracts nobody controls; an adversarial contract can
// satisfy it, so it is not a security guarantee.
func (m *Manager) checkGuardianCandidate(owner, guardian common.Address, isGuardian bool) error {
	if guardian == owner {
		return ErrOwnerAsGuardian
	}
	if isGuardian {
		return ErrDuplicateGuardian
	}
	if len(m.chain.GetCode(guardian)) == 0 {
		return nil // plain signer
	}
	ctrl, err := m.chain.CallOwner(guardian, ownerProbeGas)
	if err != nil || ctrl == (common.Address{}) {
		return ErrUnusableGuardian
	}
	return nil
}

// IsGuardianOrSigner reports whether identity is a guardian of the
// wallet, directly or as the controlling signer of a contract
// guardian.
func (m *Manager) IsGuardianOrSigner(wallet, identity common.Address) bool {
	w, err := m.store.Get(wallet)
	if err != nil {
		return false
	}
	ok, _ := m.MatchSigner(w.Guardians(), identity)
	return ok
}

// MatchSigner reports whether signer matches one of guardians, either
// directly or as the recovered controlling signer of a contract
// guardian, and returns the list with the matched entry removed so a
// single guardian can never back two signatures.
func (m *Manager) MatchSigner(guardians []common.Address, signer common.Address) (bool, []common.Address) {
	if signer == (common.Address{}) {
		return false, guardians
	}
	for i, g := range guardians {
		if g == signer || m.contractSigner(g) == signer {
			remaining := make([]common.Address, 0, len(guardians)-1)
			remaining = append(remaining, guardians[:i]...)
			remaining = append(remaining, guardians[i+1:]...)
			return true, remaining
		}
	}
	return false, guardians
}

// contractSigner resolves the controlling signer of a contract
// guardian via the bounded-gas probe. Probe failure resolves to the
// zero address, which never matches.
func (m *Manager) contractSigner(guardian common.Address) common.Address {
	if len(m.chain.GetCode(guardian)) == 0 {
		return common.Address{}
	}
	ctrl, err := m.chain.CallOwner(guardian, ownerProbeGas)
	if err != nil {
		return common.Address{}
	}
	return ctrl
}

// Guardians returns the wallet's guardian set. Order carries no
// meaning.
func (m *Manager) Guardians(wallet common.Address) ([]common.Address, error) {
	w, err := m.store.Get(wallet)
	if err != nil {
		return nil, err
	}
	return w.Guardians(), nil
}

// GuardianCount returns the number of active guardians.
func (m *Manager) GuardianCount(wallet common.Address) (int, error) {
	w, err := m.store.Get(wallet)
	if err != nil {
		return 0, err
	}
	return w.GuardianCount(), nil
}
