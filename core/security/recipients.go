// Copyright 2025 The argent-contracts Authors
// This file is part of the argent-contracts library.
//
// Trusted recipients: a per-wallet allow-list granting unconditional
// call authorization, gated by the same time-lock protocol as guardian
// changes.

package security

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/blogkid/argent-contracts/core/types"
)

// AddTrustedRecipient requests adding target to the wallet's trusted
// recipients. Owner only, while unlocked.
func (m *Manager) AddTrustedRecipient(wallet, caller, target common.Address) error {
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
	if w.IsTrustedRecipient(target) {
		return ErrAlreadyTrusted
	}
	id := opID(opRecipientAddition, wallet, target)
	if m.pendingBlocks(w.PendingReadyAt(id)) {
		return ErrRecipientPending
	}
	readyAt := m.now() + m.securityPeriod()
	w.SetPending(id, readyAt)
	log.Info("Trusted recipient requested", "wallet", wallet, "target", target, "readyAt", readyAt)
	m.emit(types.Event{Kind: types.RecipientAdditionRequested, Wallet: wallet, Target: target})
	return nil
}

// ConfirmTrustedRecipient finalizes a pending recipient addition.
// Callable by anyone inside the confirmation window.
func (m *Manager) ConfirmTrustedRecipient(wallet, target common.Address) error {
	w, err := m.store.Get(wallet)
	if err != nil {
		return err
	}
	id := opID(opRecipientAddition, wallet, target)
	readyAt := w.PendingReadyAt(id)
	if readyAt == 0 {
		return ErrNoPendingRecipient
	}
	if err := m.checkWindow(readyAt); err != nil {
		return fmt.Errorf("trusted recipient: %w", err)
	}
	w.ClearPending(id)
	w.AddTrustedRecipient(target)
	log.Info("Trusted recipient added", "wallet", wallet, "target", target)
	m.emit(types.Event{Kind: types.RecipientAdded, Wallet: wallet, Target: target})
	return nil
}

// CancelTrustedRecipient clears a pending recipient addition. Owner
// only, while unlocked.
func (m *Manager) CancelTrustedRecipient(wallet, caller, target common.Address) error {
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
	id := opID(opRecipientAddition, wallet, target)
	if w.PendingReadyAt(id) == 0 {
		return ErrNoPendingRecipient
	}
	w.ClearPending(id)
	log.Info("Trusted recipient cancelled", "wallet", wallet, "target", target)
	m.emit(types.Event{Kind: types.RecipientAdditionCancelled, Wallet: wallet, Target: target})
	return nil
}

// RemoveTrustedRecipient drops a confirmed trusted recipient. Removal
// only narrows what the wallet may do, so it takes effect immediately
// with no time lock.
func (m *Manager) RemoveTrustedRecipient(wallet, caller, target common.Address) error {
	w, err := m.store.Get(wallet)
	if err != nil {
		return err
	}
	if caller != w.Owner() {
		return ErrNotOwner
	}
	if !w.RemoveTrustedRecipient(target) {
		return ErrNotTrusted
	}
	log.Info("Trusted recipient removed", "wallet", wallet, "target", target)
	m.emit(types.Event{Kind: types.RecipientRemoved, Wallet: wallet, Target: target})
	return nil
}

// IsTrustedRecipient reports whether target is a confirmed trusted
// recipient of the wallet.
func (m *Manager) IsTrustedRecipient(wallet, target common.Address) bool {
	w, err := m.store.Get(wallet)
	if err != nil {
		return false
	}
	return w.IsTrustedRecipient(target)
}
