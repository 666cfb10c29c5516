// Copyright 2025 The argent-contracts Authors

package security

import (
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jonboulle/clockwork"

	"github.com/blogkid/argent-contracts/config"
	"github.com/blogkid/argent-contracts/core/state"
	"github.com/blogkid/argent-contracts/core/types"
)

var (
	walletAddr = common.HexToAddress("0x1000000000000000000000000000000000000001")
	ownerAddr  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	guardian1  = common.HexToAddress("0x3000000000000000000000000000000000000003")
	guardian2  = common.HexToAddress("0x4000000000000000000000000000000000000004")
	guardian3  = common.HexToAddress("0x5000000000000000000000000000000000000005")
)

// mockChain implements ChainReader for testing. Addresses with code
// but no registered owner fail the probe.
type mockChain struct {
	codes  map[common.Address][]byte
	owners map[common.Address]common.Address
}

func newMockChain() *mockChain {
	return &mockChain{
		codes:  make(map[common.Address][]byte),
		owners: make(map[common.Address]common.Address),
	}
}

func (m *mockChain) GetCode(addr common.Address) []byte {
	return m.codes[addr]
}

func (m *mockChain) CallOwner(addr common.Address, gas uint64) (common.Address, error) {
	owner, ok := m.owners[addr]
	if !ok {
		return common.Address{}, errors.New("owner probe reverted")
	}
	return owner, nil
}

func newTestManager(t *testing.T) (*Manager, *state.Store, *mockChain, *clockwork.FakeClock) {
	t.Helper()
	store := state.NewStore()
	if _, err := store.Create(walletAddr, ownerAddr); err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	chain := newMockChain()
	params := config.Params{
		SecurityPeriod:    2 * time.Second,
		SecurityWindow:    2 * time.Second,
		LockPeriod:        10 * time.Second,
		RequiredApprovals: 1,
	}
	clock := clockwork.NewFakeClock()
	return NewManager(store, chain, params, clock), store, chain, clock
}

// addGuardians bootstraps n guardians directly (the first is immediate,
// the rest go through the time lock).
func addGuardians(t *testing.T, m *Manager, clock *clockwork.FakeClock, guardians ...common.Address) {
	t.Helper()
	for i, g := range guardians {
		if err := m.AddGuardian(walletAddr, ownerAddr, g); err != nil {
			t.Fatalf("add guardian %d: %v", i, err)
		}
		if i == 0 {
			continue
		}
		clock.Advance(2 * time.Second)
		if err := m.ConfirmGuardianAddition(walletAddr, g); err != nil {
			t.Fatalf("confirm guardian %d: %v", i, err)
		}
	}
}

func TestFirstGuardianAddedImmediately(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	if err := m.AddGuardian(walletAddr, ownerAddr, guardian1); err != nil {
		t.Fatalf("first addition should be immediate: %v", err)
	}
	if n, _ := m.GuardianCount(walletAddr); n != 1 {
		t.Fatalf("expected 1 guardian, got %d", n)
	}
	// No pending record was created.
	if err := m.ConfirmGuardianAddition(walletAddr, guardian1); !errors.Is(err, ErrNoPendingAddition) {
		t.Fatalf("expected ErrNoPendingAddition, got %v", err)
	}
}

func TestGuardianAdditionWindow(t *testing.T) {
	m, _, _, clock := newTestManager(t)
	addGuardians(t, m, clock, guardian1)

	if err := m.AddGuardian(walletAddr, ownerAddr, guardian2); err != nil {
		t.Fatalf("request: %v", err)
	}
	if n, _ := m.GuardianCount(walletAddr); n != 1 {
		t.Fatalf("addition should be pending, got %d guardians", n)
	}

	clock.Advance(1 * time.Second)
	if err := m.ConfirmGuardianAddition(walletAddr, guardian2); !errors.Is(err, ErrConfirmTooEarly) {
		t.Fatalf("expected ErrConfirmTooEarly at T+1, got %v", err)
	}

	clock.Advance(1 * time.Second)
	if err := m.ConfirmGuardianAddition(walletAddr, guardian2); err != nil {
		t.Fatalf("confirm at T+2 should succeed: %v", err)
	}
	if n, _ := m.GuardianCount(walletAddr); n != 2 {
		t.Fatalf("expected 2 guardians, got %d", n)
	}

	// The pending record was cleared: confirming again fails.
	if err := m.ConfirmGuardianAddition(walletAddr, guardian2); !errors.Is(err, ErrNoPendingAddition) {
		t.Fatalf("expected ErrNoPendingAddition, got %v", err)
	}
}

func TestGuardianAdditionExpires(t *testing.T) {
	m, _, _, clock := newTestManager(t)
	addGuardians(t, m, clock, guardian1)

	if err := m.AddGuardian(walletAddr, ownerAddr, guardian2); err != nil {
		t.Fatalf("request: %v", err)
	}
	clock.Advance(5 * time.Second) // past readyAt + window
	if err := m.ConfirmGuardianAddition(walletAddr, guardian2); !errors.Is(err, ErrConfirmTooLate) {
		t.Fatalf("expected ErrConfirmTooLate, got %v", err)
	}

	// A stale request is replaceable by a fresh one.
	if err := m.AddGuardian(walletAddr, ownerAddr, guardian2); err != nil {
		t.Fatalf("stale request should be replaceable: %v", err)
	}
	clock.Advance(2 * time.Second)
	if err := m.ConfirmGuardianAddition(walletAddr, guardian2); err != nil {
		t.Fatalf("confirm after re-request: %v", err)
	}
}

func TestGuardianAdditionAlreadyPending(t *testing.T) {
	m, _, _, clock := newTestManager(t)
	addGuardians(t, m, clock, guardian1)

	if err := m.AddGuardian(walletAddr, ownerAddr, guardian2); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := m.AddGuardian(walletAddr, ownerAddr, guardian2); !errors.Is(err, ErrAdditionPending) {
		t.Fatalf("expected ErrAdditionPending, got %v", err)
	}
}

func TestGuardianCandidateChecks(t *testing.T) {
	m, _, chain, _ := newTestManager(t)

	if err := m.AddGuardian(walletAddr, ownerAddr, ownerAddr); !errors.Is(err, ErrOwnerAsGuardian) {
		t.Fatalf("expected ErrOwnerAsGuardian, got %v", err)
	}

	if err := m.AddGuardian(walletAddr, ownerAddr, guardian1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.AddGuardian(walletAddr, ownerAddr, guardian1); !errors.Is(err, ErrDuplicateGuardian) {
		t.Fatalf("expected ErrDuplicateGuardian, got %v", err)
	}

	// A contract that fails the owner probe is unusable.
	dead := common.HexToAddress("0x6000000000000000000000000000000000000006")
	chain.codes[dead] = []byte{0x60, 0x00}
	if err := m.AddGuardian(walletAddr, ownerAddr, dead); !errors.Is(err, ErrUnusableGuardian) {
		t.Fatalf("expected ErrUnusableGuardian, got %v", err)
	}

	// A contract guardian with a resolvable owner is accepted.
	vault := common.HexToAddress("0x7000000000000000000000000000000000000007")
	chain.codes[vault] = []byte{0x60, 0x00}
	chain.owners[vault] = guardian2
	if err := m.AddGuardian(walletAddr, ownerAddr, vault); err != nil {
		t.Fatalf("contract guardian should be accepted: %v", err)
	}
}

func TestCancelGuardianAddition(t *testing.T) {
	m, _, _, clock := newTestManager(t)
	addGuardians(t, m, clock, guardian1)

	if err := m.AddGuardian(walletAddr, ownerAddr, guardian2); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := m.CancelGuardianAddition(walletAddr, guardian2, guardian2); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("cancel must be owner-gated, got %v", err)
	}
	if err := m.CancelGuardianAddition(walletAddr, ownerAddr, guardian2); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	clock.Advance(2 * time.Second)
	if err := m.ConfirmGuardianAddition(walletAddr, guardian2); !errors.Is(err, ErrNoPendingAddition) {
		t.Fatalf("expected ErrNoPendingAddition after cancel, got %v", err)
	}
}

func TestConfirmCallableByAnyone(t *testing.T) {
	m, _, _, clock := newTestManager(t)
	addGuardians(t, m, clock, guardian1)

	if err := m.AddGuardian(walletAddr, ownerAddr, guardian2); err != nil {
		t.Fatalf("request: %v", err)
	}
	clock.Advance(2 * time.Second)
	// Confirmation takes no caller at all: it is a mechanical,
	// time-gated action.
	if err := m.ConfirmGuardianAddition(walletAddr, guardian2); err != nil {
		t.Fatalf("confirm: %v", err)
	}
}

func TestRevokeAndReAddGuardian(t *testing.T) {
	m, _, _, clock := newTestManager(t)
	addGuardians(t, m, clock, guardian1, guardian2, guardian3)

	if err := m.RevokeGuardian(walletAddr, ownerAddr, guardian2); err != nil {
		t.Fatalf("revoke request: %v", err)
	}
	clock.Advance(1 * time.Second)
	if err := m.ConfirmGuardianRevocation(walletAddr, guardian2); !errors.Is(err, ErrConfirmTooEarly) {
		t.Fatalf("expected ErrConfirmTooEarly, got %v", err)
	}
	clock.Advance(1 * time.Second)
	if err := m.ConfirmGuardianRevocation(walletAddr, guardian2); err != nil {
		t.Fatalf("confirm revocation: %v", err)
	}

	if n, _ := m.GuardianCount(walletAddr); n != 2 {
		t.Fatalf("expected 2 guardians after revocation, got %d", n)
	}
	for _, g := range mustGuardians(t, m) {
		if g == guardian2 {
			t.Fatal("revoked guardian still present")
		}
	}

	// Re-addition is a fresh time-locked request, never blocked by
	// residual indexing.
	if err := m.AddGuardian(walletAddr, ownerAddr, guardian2); err != nil {
		t.Fatalf("re-add request: %v", err)
	}
	clock.Advance(2 * time.Second)
	if err := m.ConfirmGuardianAddition(walletAddr, guardian2); err != nil {
		t.Fatalf("re-add confirm: %v", err)
	}
	if n, _ := m.GuardianCount(walletAddr); n != 3 {
		t.Fatalf("expected 3 guardians after re-add, got %d", n)
	}
}

func TestRevokeNonGuardian(t *testing.T) {
	m, _, _, clock := newTestManager(t)
	addGuardians(t, m, clock, guardian1)

	if err := m.RevokeGuardian(walletAddr, ownerAddr, guardian2); !errors.Is(err, ErrNotGuardian) {
		t.Fatalf("expected ErrNotGuardian, got %v", err)
	}
}

func TestStaleRevocationReplaceable(t *testing.T) {
	m, _, _, clock := newTestManager(t)
	addGuardians(t, m, clock, guardian1, guardian2)

	if err := m.RevokeGuardian(walletAddr, ownerAddr, guardian2); err != nil {
		t.Fatalf("revoke request: %v", err)
	}
	if err := m.RevokeGuardian(walletAddr, ownerAddr, guardian2); !errors.Is(err, ErrRevocationPending) {
		t.Fatalf("expected ErrRevocationPending, got %v", err)
	}
	clock.Advance(5 * time.Second)
	if err := m.RevokeGuardian(walletAddr, ownerAddr, guardian2); err != nil {
		t.Fatalf("stale revocation should be replaceable: %v", err)
	}
}

func TestCancelGuardianRevocation(t *testing.T) {
	m, _, _, clock := newTestManager(t)
	addGuardians(t, m, clock, guardian1, guardian2)

	if err := m.RevokeGuardian(walletAddr, ownerAddr, guardian2); err != nil {
		t.Fatalf("revoke request: %v", err)
	}
	if err := m.CancelGuardianRevocation(walletAddr, ownerAddr, guardian2); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	clock.Advance(2 * time.Second)
	if err := m.ConfirmGuardianRevocation(walletAddr, guardian2); !errors.Is(err, ErrNoPendingRevocation) {
		t.Fatalf("expected ErrNoPendingRevocation, got %v", err)
	}
}

func TestTrustedRecipientFlow(t *testing.T) {
	m, _, _, clock := newTestManager(t)
	target := common.HexToAddress("0x8000000000000000000000000000000000000008")

	if err := m.AddTrustedRecipient(walletAddr, ownerAddr, target); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := m.ConfirmTrustedRecipient(walletAddr, target); !errors.Is(err, ErrConfirmTooEarly) {
		t.Fatalf("expected ErrConfirmTooEarly, got %v", err)
	}
	clock.Advance(2 * time.Second)
	if err := m.ConfirmTrustedRecipient(walletAddr, target); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !m.IsTrustedRecipient(walletAddr, target) {
		t.Fatal("target should be trusted")
	}
	if err := m.AddTrustedRecipient(walletAddr, ownerAddr, target); !errors.Is(err, ErrAlreadyTrusted) {
		t.Fatalf("expected ErrAlreadyTrusted, got %v", err)
	}

	if err := m.RemoveTrustedRecipient(walletAddr, ownerAddr, target); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if m.IsTrustedRecipient(walletAddr, target) {
		t.Fatal("target should no longer be trusted")
	}
	if err := m.RemoveTrustedRecipient(walletAddr, ownerAddr, target); !errors.Is(err, ErrNotTrusted) {
		t.Fatalf("expected ErrNotTrusted, got %v", err)
	}
}

func TestLockGating(t *testing.T) {
	m, store, _, clock := newTestManager(t)
	addGuardians(t, m, clock, guardian1)

	if err := m.Lock(walletAddr, ownerAddr); !errors.Is(err, ErrNotGuardianCaller) {
		t.Fatalf("owner must not be able to lock, got %v", err)
	}
	if err := m.Lock(walletAddr, guardian1); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := m.Lock(walletAddr, guardian1); !errors.Is(err, ErrWalletLocked) {
		t.Fatalf("expected ErrWalletLocked, got %v", err)
	}

	// Owner-gated requests are frozen while locked.
	if err := m.AddGuardian(walletAddr, ownerAddr, guardian2); !errors.Is(err, ErrWalletLocked) {
		t.Fatalf("expected ErrWalletLocked on addition, got %v", err)
	}
	if err := m.AddTrustedRecipient(walletAddr, ownerAddr, guardian2); !errors.Is(err, ErrWalletLocked) {
		t.Fatalf("expected ErrWalletLocked on recipient, got %v", err)
	}
	// Revocation requests stay available so a rogue guardian cannot
	// lock itself in.
	if err := m.RevokeGuardian(walletAddr, ownerAddr, guardian1); err != nil {
		t.Fatalf("revocation should not be lock-gated: %v", err)
	}

	if err := m.Unlock(walletAddr, guardian1); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	w, _ := store.Get(walletAddr)
	if m.IsLocked(w) {
		t.Fatal("wallet should be unlocked")
	}
	if err := m.Unlock(walletAddr, guardian1); !errors.Is(err, ErrWalletNotLocked) {
		t.Fatalf("expected ErrWalletNotLocked, got %v", err)
	}
}

func TestLockExpires(t *testing.T) {
	m, store, _, clock := newTestManager(t)
	addGuardians(t, m, clock, guardian1)

	if err := m.Lock(walletAddr, guardian1); err != nil {
		t.Fatalf("lock: %v", err)
	}
	clock.Advance(10 * time.Second)
	w, _ := store.Get(walletAddr)
	if m.IsLocked(w) {
		t.Fatal("lock should have expired")
	}
	if err := m.AddGuardian(walletAddr, ownerAddr, guardian2); err != nil {
		t.Fatalf("addition after lock expiry: %v", err)
	}
}

func TestIsGuardianOrSigner(t *testing.T) {
	m, _, chain, clock := newTestManager(t)

	vault := common.HexToAddress("0x7000000000000000000000000000000000000007")
	signer := common.HexToAddress("0x9000000000000000000000000000000000000009")
	chain.codes[vault] = []byte{0x60, 0x00}
	chain.owners[vault] = signer

	addGuardians(t, m, clock, guardian1, vault)

	if !m.IsGuardianOrSigner(walletAddr, guardian1) {
		t.Fatal("direct guardian not resolved")
	}
	if !m.IsGuardianOrSigner(walletAddr, vault) {
		t.Fatal("contract guardian not resolved")
	}
	if !m.IsGuardianOrSigner(walletAddr, signer) {
		t.Fatal("contract guardian's signer not resolved")
	}
	if m.IsGuardianOrSigner(walletAddr, guardian3) {
		t.Fatal("stranger resolved as guardian")
	}
}

func TestMatchSignerConsumesGuardian(t *testing.T) {
	m, _, _, clock := newTestManager(t)
	addGuardians(t, m, clock, guardian1, guardian2)

	guardians := mustGuardians(t, m)
	ok, remaining := m.MatchSigner(guardians, guardian1)
	if !ok || len(remaining) != 1 {
		t.Fatalf("first match failed: ok=%v remaining=%d", ok, len(remaining))
	}
	// The same signer cannot be matched against the remainder.
	ok, _ = m.MatchSigner(remaining, guardian1)
	if ok {
		t.Fatal("guardian matched twice")
	}
	ok, remaining = m.MatchSigner(remaining, guardian2)
	if !ok || len(remaining) != 0 {
		t.Fatalf("second match failed: ok=%v remaining=%d", ok, len(remaining))
	}
}

func TestEventsEmitted(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	ch := make(chan types.Event, 8)
	sub := m.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	if err := m.AddGuardian(walletAddr, ownerAddr, guardian1); err != nil {
		t.Fatalf("add: %v", err)
	}
	ev := <-ch
	if ev.Kind != types.GuardianAdded || ev.Wallet != walletAddr || ev.Target != guardian1 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func mustGuardians(t *testing.T, m *Manager) []common.Address {
	t.Helper()
	gs, err := m.Guardians(walletAddr)
	if err != nil {
		t.Fatalf("guardians: %v", err)
	}
	return gs
}
