// Copyright 2025 The argent-contracts Authors
// This file is part of the argent-contracts library.
//
// ExecutionGateway is the single path through which a wallet's
// outgoing calls happen. It accepts a batch directly from the owner or
// as a relayed meta-transaction, authorizes every call before any
// executes, and advances the replay nonce.

package gateway

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/jonboulle/clockwork"

	"github.com/blogkid/argent-contracts/config"
	"github.com/blogkid/argent-contracts/core/registry"
	"github.com/blogkid/argent-contracts/core/security"
	"github.com/blogkid/argent-contracts/core/state"
	"github.com/blogkid/argent-contracts/core/types"
)

var (
	ErrNotOwner              = errors.New("sender is not the wallet owner")
	ErrWalletLocked          = errors.New("wallet is locked")
	ErrEmptyBatch            = errors.New("empty call batch")
	ErrInvalidNonce          = errors.New("invalid relay nonce")
	ErrMalformedSignatures   = errors.New("malformed signature blob")
	ErrInvalidSignature      = errors.New("unrecoverable signature")
	ErrUnknownSigner         = errors.New("signature matches neither owner nor guardian")
	ErrInsufficientApprovals = errors.New("not enough approval signatures")
)

// Backend executes admitted calls and pays relayer tips on behalf of
// the gateway. The host environment guarantees that a failing batch
// leaves no partial effects.
type Backend interface {
	ExecuteCall(wallet common.Address, call types.Call) ([]byte, error)
	PayTip(wallet, relayer, token common.Address, amount *uint256.Int) error
}

// Gateway authorizes and executes call batches for every wallet in a
// store.
type Gateway struct {
	store      *state.Store
	security   *security.Manager
	registries *registry.Registries
	backend    Backend
	params     config.Params
	clock      clockwork.Clock

	feed event.Feed
}

// NewGateway wires the gateway to its collaborators.
func NewGateway(store *state.Store, sec *security.Manager, regs *registry.Registries, backend Backend, params config.Params, clock clockwork.Clock) *Gateway {
	return &Gateway{
		store:      store,
		security:   sec,
		registries: regs,
		backend:    backend,
		params:     params,
		clock:      clock,
	}
}

// SubscribeEvents delivers one BatchExecuted event per processed
// batch, success or failure.
func (g *Gateway) SubscribeEvents(ch chan<- types.Event) event.Subscription {
	return g.feed.Subscribe(ch)
}

// CurrentNonce returns the wallet's replay nonce.
func (g *Gateway) CurrentNonce(wallet common.Address) (uint64, error) {
	w, err := g.store.Get(wallet)
	if err != nil {
		return 0, err
	}
	return w.Nonce(), nil
}

// Execute runs a batch submitted directly by the owner. Every call is
// authorized before any executes; the first denial rejects the whole
// batch with no state change. The replay nonce is untouched on this
// path.
func (g *Gateway) Execute(wallet, caller common.Address, calls []types.Call) ([][]byte, error) {
	w, err := g.store.Get(wallet)
	if err != nil {
		return nil, err
	}
	if caller != w.Owner() {
		return nil, ErrNotOwner
	}
	if g.locked(w) {
		return nil, ErrWalletLocked
	}
	if len(calls) == 0 {
		return nil, ErrEmptyBatch
	}
	for i, c := range calls {
		if err := g.registries.AuthorizeCall(w, c); err != nil {
			return nil, fmt.Errorf("call %d: %w", i, err)
		}
	}
	returns, err := g.runCalls(w, calls)
	if err != nil {
		return nil, err
	}
	g.feed.Send(types.Event{Kind: types.BatchExecuted, Wallet: wallet, Success: true})
	return returns, nil
}

// ExecuteRelayed processes a relayed meta-transaction. Admission
// (nonce and signature threshold) happens first: an admission failure
// returns an error and leaves the nonce untouched. Once admitted, the
// nonce is consumed and the relayer tip is paid even when a call fails
// authorization, so a batch known to fail cannot be replayed to grief
// the relayer; the outcome is then reported through the receipt, not
// the error.
func (g *Gateway) ExecuteRelayed(relayer common.Address, exec *types.RelayedExec) (*types.BatchReceipt, error) {
	w, err := g.store.Get(exec.Wallet)
	if err != nil {
		return nil, err
	}
	if g.locked(w) {
		return nil, ErrWalletLocked
	}
	if len(exec.Calls) == 0 {
		return nil, ErrEmptyBatch
	}
	if exec.Nonce != w.Nonce() {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidNonce, w.Nonce(), exec.Nonce)
	}
	if err := g.checkApprovals(w, exec); err != nil {
		return nil, err
	}

	// Admitted: the nonce is consumed from here on, whatever happens.
	w.IncrementNonce()

	receipt := &types.BatchReceipt{
		Wallet:  exec.Wallet,
		Hash:    exec.Hash(),
		Nonce:   exec.Nonce,
		Relayed: true,
	}

	for i, c := range exec.Calls {
		if err := g.registries.AuthorizeCall(w, c); err != nil {
			receipt.Reason = fmt.Sprintf("call %d not authorized: %v", i, err)
			return g.settle(w, relayer, exec, receipt), nil
		}
	}

	returns, err := g.runCalls(w, exec.Calls)
	if err != nil {
		receipt.Reason = err.Error()
		return g.settle(w, relayer, exec, receipt), nil
	}
	receipt.Success = true
	receipt.Returns = returns
	return g.settle(w, relayer, exec, receipt), nil
}

// checkApprovals recovers every signature over the exec hash and
// matches it against the owner and the resolved guardian identities,
// each consumable at most once, requiring the configured threshold.
func (g *Gateway) checkApprovals(w *state.Wallet, exec *types.RelayedExec) error {
	count, ok := exec.SignatureCount()
	if !ok {
		return ErrMalformedSignatures
	}
	if count < g.params.RequiredApprovals {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientApprovals, count, g.params.RequiredApprovals)
	}
	hash := exec.Hash()
	ownerUsed := false
	remaining := w.Guardians()
	for i := 0; i < count; i++ {
		signer, err := recoverSigner(hash, exec.SignatureAt(i))
		if err != nil {
			return fmt.Errorf("%w: index %d: %v", ErrInvalidSignature, i, err)
		}
		if signer == w.Owner() && !ownerUsed {
			ownerUsed = true
			continue
		}
		matched, rest := g.security.MatchSigner(remaining, signer)
		if !matched {
			return fmt.Errorf("%w: %s", ErrUnknownSigner, signer)
		}
		remaining = rest
	}
	return nil
}

// runCalls executes an authorized batch in order.
func (g *Gateway) runCalls(w *state.Wallet, calls []types.Call) ([][]byte, error) {
	returns := make([][]byte, 0, len(calls))
	for i, c := range calls {
		ret, err := g.backend.ExecuteCall(w.Address(), c)
		if err != nil {
			return nil, fmt.Errorf("call %d execution failed: %w", i, err)
		}
		returns = append(returns, ret)
	}
	return returns, nil
}

// settle pays the relayer tip and emits the batch outcome. A tip
// payment failure is logged but never changes the batch outcome.
func (g *Gateway) settle(w *state.Wallet, relayer common.Address, exec *types.RelayedExec, receipt *types.BatchReceipt) *types.BatchReceipt {
	if exec.HasTip() {
		if err := g.backend.PayTip(w.Address(), relayer, exec.TipToken, exec.TipAmount); err != nil {
			log.Warn("Relayer tip payment failed", "wallet", w.Address(), "relayer", relayer, "err", err)
		}
	}
	if !receipt.Success {
		log.Warn("Relayed batch failed", "wallet", w.Address(), "nonce", receipt.Nonce, "reason", receipt.Reason)
	}
	g.feed.Send(types.Event{
		Kind:    types.BatchExecuted,
		Wallet:  w.Address(),
		Success: receipt.Success,
		Reason:  receipt.Reason,
	})
	return receipt
}

func (g *Gateway) locked(w *state.Wallet) bool {
	until := w.LockedUntil()
	return until != 0 && uint64(g.clock.Now().Unix()) < until
}

// recoverSigner derives the signing address from a 65-byte recoverable
// signature over hash.
func recoverSigner(hash common.Hash, sig []byte) (common.Address, error) {
	pub, err := crypto.Ecrecover(hash.Bytes(), sig)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(crypto.Keccak256(pub[1:])[12:]), nil
}
