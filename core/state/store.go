// Copyright 2025 The argent-contracts Authors
// This file is part of the argent-contracts library.

package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrWalletExists  = errors.New("wallet already registered")
	ErrUnknownWallet = errors.New("unknown wallet")
	ErrZeroOwner     = errors.New("wallet owner cannot be the zero address")
)

// Store is the single authoritative collection of wallet security
// state, keyed by account address.
type Store struct {
	wallets map[common.Address]*Wallet
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{wallets: make(map[common.Address]*Wallet)}
}

// Create registers a wallet with its owner and a zero replay nonce.
func (s *Store) Create(address, owner common.Address) (*Wallet, error) {
	if owner == (common.Address{}) {
		return nil, ErrZeroOwner
	}
	if _, ok := s.wallets[address]; ok {
		return nil, fmt.Errorf("%w: %s", ErrWalletExists, address)
	}
	w := newWallet(address, owner)
	s.wallets[address] = w
	return w, nil
}

// Get returns the wallet registered at address.
func (s *Store) Get(address common.Address) (*Wallet, error) {
	w, ok := s.wallets[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWallet, address)
	}
	return w, nil
}
