// Copyright 2025 The argent-contracts Authors
// This file is part of the argent-contracts library.
//
// Authorization registries map call targets to optional validation
// filters. Registry 0 is the default registry: implicitly created,
// administered globally, always enabled for every wallet. Custom
// registries are created by the administrator, populated by their
// assigned manager, and toggled per wallet.

package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"

	"github.com/blogkid/argent-contracts/core/types"
)

// DefaultRegistryID identifies the implicit global registry.
const DefaultRegistryID uint8 = 0

var (
	ErrNotAdmin        = errors.New("sender is not the registry administrator")
	ErrNotManager      = errors.New("sender is not the registry manager")
	ErrUnknownRegistry = errors.New("unknown registry id")
	ErrRegistryExists  = errors.New("registry id already exists")
	ErrZeroManager     = errors.New("registry manager cannot be the zero address")
	ErrDefaultRecreate = errors.New("default registry cannot be recreated")
	ErrDefaultRemove   = errors.New("default registry cannot be removed")
	ErrDefaultToggle   = errors.New("default registry is always enabled")
	ErrToggleUnchanged = errors.New("registry already at requested enablement")
)

// Registries is the global collection of authorization registries and
// the per-wallet enablement state for the custom ones.
type Registries struct {
	admin common.Address

	// managers holds custom registries only; the default registry is
	// implicit and managed by the admin.
	managers       map[uint8]common.Address
	authorizations map[uint8]map[common.Address]Filter

	// enabled: registry id -> wallet -> enabled. Only custom ids ever
	// appear here.
	enabled map[uint8]map[common.Address]bool

	feed event.Feed
}

// NewRegistries creates the registry collection with its global
// administrator. The default registry exists from the start and is
// never in managers.
func NewRegistries(admin common.Address) *Registries {
	return &Registries{
		admin:          admin,
		managers:       make(map[uint8]common.Address),
		authorizations: map[uint8]map[common.Address]Filter{DefaultRegistryID: {}},
		enabled:        make(map[uint8]map[common.Address]bool),
	}
}

// SubscribeEvents delivers one types.Event per registry transition.
func (r *Registries) SubscribeEvents(ch chan<- types.Event) event.Subscription {
	return r.feed.Subscribe(ch)
}

// CreateRegistry adds a custom registry with its assigned manager.
// Administrator only. A previously removed id may be recreated.
func (r *Registries) CreateRegistry(caller common.Address, id uint8, manager common.Address) error {
	if caller != r.admin {
		return ErrNotAdmin
	}
	if id == DefaultRegistryID {
		return ErrDefaultRecreate
	}
	if _, ok := r.managers[id]; ok {
		return fmt.Errorf("%w: %d", ErrRegistryExists, id)
	}
	if manager == (common.Address{}) {
		return ErrZeroManager
	}
	r.managers[id] = manager
	r.authorizations[id] = make(map[common.Address]Filter)
	log.Info("Registry created", "id", id, "manager", manager)
	r.feed.Send(types.Event{Kind: types.RegistryCreated, RegistryID: id, Target: manager})
	return nil
}

// RemoveRegistry deletes a custom registry together with its
// authorizations and all per-wallet enablement. Administrator only.
func (r *Registries) RemoveRegistry(caller common.Address, id uint8) error {
	if caller != r.admin {
		return ErrNotAdmin
	}
	if id == DefaultRegistryID {
		return ErrDefaultRemove
	}
	if _, ok := r.managers[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRegistry, id)
	}
	delete(r.managers, id)
	delete(r.authorizations, id)
	delete(r.enabled, id)
	log.Info("Registry removed", "id", id)
	r.feed.Send(types.Event{Kind: types.RegistryRemoved, RegistryID: id})
	return nil
}

// AddAuthorization records (target -> filter) in a registry. Only the
// registry's manager may do this, enforced per call; the administrator
// manages the default registry. A nil filter authorizes the target
// unconditionally. Authorizations are append-only: re-adding a target
// replaces its filter, nothing ever deletes an entry.
func (r *Registries) AddAuthorization(caller common.Address, id uint8, target common.Address, filter Filter) error {
	auths, ok := r.authorizations[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRegistry, id)
	}
	if id == DefaultRegistryID {
		if caller != r.admin {
			return ErrNotAdmin
		}
	} else if caller != r.managers[id] {
		return ErrNotManager
	}
	auths[target] = filter
	log.Info("Authorization added", "registry", id, "target", target, "filtered", filter != nil)
	r.feed.Send(types.Event{Kind: types.AuthorizationAdded, RegistryID: id, Target: target})
	return nil
}

// Toggle sets a custom registry's enablement for one wallet. The new
// value must differ from the current one; redundant toggles fail so
// caller state-tracking bugs surface early.
func (r *Registries) Toggle(wallet common.Address, id uint8, enable bool) error {
	if id == DefaultRegistryID {
		return ErrDefaultToggle
	}
	if _, ok := r.managers[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRegistry, id)
	}
	if r.enabled[id][wallet] == enable {
		return ErrToggleUnchanged
	}
	if r.enabled[id] == nil {
		r.enabled[id] = make(map[common.Address]bool)
	}
	r.enabled[id][wallet] = enable
	log.Info("Registry toggled", "registry", id, "wallet", wallet, "enabled", enable)
	r.feed.Send(types.Event{Kind: types.RegistryToggled, RegistryID: id, Wallet: wallet, Success: enable})
	return nil
}

// IsEnabled reports whether a registry is active for the wallet. The
// default registry is always active.
func (r *Registries) IsEnabled(wallet common.Address, id uint8) bool {
	if id == DefaultRegistryID {
		return true
	}
	if _, ok := r.managers[id]; !ok {
		return false
	}
	return r.enabled[id][wallet]
}

// Manager returns the manager identity of a registry; the
// administrator for the default registry.
func (r *Registries) Manager(id uint8) (common.Address, error) {
	if id == DefaultRegistryID {
		return r.admin, nil
	}
	mgr, ok := r.managers[id]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %d", ErrUnknownRegistry, id)
	}
	return mgr, nil
}

// activeIDs returns the registries consulted for a wallet, default
// first, then enabled custom registries in ascending id order. The
// order is fixed so the same authorization entry always governs a
// given call.
func (r *Registries) activeIDs(wallet common.Address) []uint8 {
	ids := []uint8{DefaultRegistryID}
	custom := make([]uint8, 0, len(r.managers))
	for id := range r.managers {
		if r.enabled[id][wallet] {
			custom = append(custom, id)
		}
	}
	sort.Slice(custom, func(i, j int) bool { return custom[i] < custom[j] })
	return append(ids, custom...)
}
