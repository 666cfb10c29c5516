// Copyright 2026 The argent-contracts Authors
// This file is part of the argent-contracts library.

package security

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/blogkid/argent-contracts/core/types"
)

// Lock freezes the wallet's owner-gated security operations for the
// configured lock period. Callable by a guardian or a guardian's
// controlling signer, typically in response to a suspected owner-key
// compromise. The lock expires on its own; it never needs an explicit
// release.
func (m *Manager) Lock(wallet, caller common.Address) error {
	w, err := m.store.Get(wallet)
	if err != nil {
		return err
	}
	if !m.IsGuardianOrSigner(wallet, caller) {
		return ErrNotGuardianCaller
	}
	if m.IsLocked(w) {
		return ErrWalletLocked
	}
	until := m.now() + uint64(m.params.LockPeriod.Seconds())
	w.SetLockedUntil(until)
	log.Warn("Wallet locked", "wallet", wallet, "by", caller, "until", until)
	m.emit(types.Event{Kind: types.WalletLocked, Wallet: wallet, Target: caller})
	return nil
}

// Unlock releases an active lock before it expires. Guardian-gated
// like Lock.
func (m *Manager) Unlock(wallet, caller common.Address) error {
	w, err := m.store.Get(wallet)
	if err != nil {
		return err
	}
	if !m.IsGuardianOrSigner(wallet, caller) {
		return ErrNotGuardianCaller
	}
	if !m.IsLocked(w) {
		return ErrWalletNotLocked
	}
	w.SetLockedUntil(0)
	log.Info("Wallet unlocked", "wallet", wallet, "by", caller)
	m.emit(types.Event{Kind: types.WalletUnlocked, Wallet: wallet, Target: caller})
	return nil
}
