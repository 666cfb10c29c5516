// Copyright 2025 The argent-contracts Authors
// This file is part of the argent-contracts library.

package types

import "github.com/ethereum/go-ethereum/common"

// EventKind identifies one observable state transition.
type EventKind uint8

const (
	GuardianAdditionRequested EventKind = iota
	GuardianAdded
	GuardianAdditionCancelled
	GuardianRevocationRequested
	GuardianRevoked
	GuardianRevocationCancelled
	RecipientAdditionRequested
	RecipientAdded
	RecipientAdditionCancelled
	RecipientRemoved
	WalletLocked
	WalletUnlocked
	RegistryCreated
	RegistryRemoved
	AuthorizationAdded
	RegistryToggled
	BatchExecuted
)

var eventKindNames = map[EventKind]string{
	GuardianAdditionRequested:   "GuardianAdditionRequested",
	GuardianAdded:               "GuardianAdded",
	GuardianAdditionCancelled:   "GuardianAdditionCancelled",
	GuardianRevocationRequested: "GuardianRevocationRequested",
	GuardianRevoked:             "GuardianRevoked",
	GuardianRevocationCancelled: "GuardianRevocationCancelled",
	RecipientAdditionRequested:  "RecipientAdditionRequested",
	RecipientAdded:              "RecipientAdded",
	RecipientAdditionCancelled:  "RecipientAdditionCancelled",
	RecipientRemoved:            "RecipientRemoved",
	WalletLocked:                "WalletLocked",
	WalletUnlocked:              "WalletUnlocked",
	RegistryCreated:             "RegistryCreated",
	RegistryRemoved:             "RegistryRemoved",
	AuthorizationAdded:          "AuthorizationAdded",
	RegistryToggled:             "RegistryToggled",
	BatchExecuted:               "BatchExecuted",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Event is delivered on the managers' feeds, one per state transition,
// for external consumers and indexers.
type Event struct {
	Kind   EventKind
	Wallet common.Address

	// Target is the guardian, recipient, registry manager or call
	// target the transition concerns, when applicable.
	Target common.Address

	// RegistryID is set for registry events.
	RegistryID uint8

	// Success and Reason are set for BatchExecuted.
	Success bool
	Reason  string
}
