// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridge is the ledger core of a lock-and-release cross-chain token
// bridge: the route registry, the per-route send quota, fee conversion, and
// the instruction surface that composes them under authorization checks.
//
// The core holds one singleton State guarded by a mutex; every instruction
// runs to completion under the lock, fully applies or fully fails, and emits
// exactly one event on success. Value movement and price lookup go through
// the custody and oracle collaborators.
package bridge

import (
	"fmt"
	"math"
	"sync"
	"time"

	luxcrypto "github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"

	"github.com/luxfi/tokenbridge/auth"
	"github.com/luxfi/tokenbridge/custody"
	"github.com/luxfi/tokenbridge/oracle"
	"github.com/luxfi/tokenbridge/routeid"
)

// tokenVaultSeed scopes the derived per-asset custody account addresses.
var tokenVaultSeed = []byte("bridge/token-vault")

// TokenVault returns the bridge's custody account for asset. The address is
// derived deterministically so both the core and the surrounding system can
// compute it without coordination.
func TokenVault(asset common.Address) common.Address {
	h := luxcrypto.Keccak256(tokenVaultSeed, asset.Bytes())
	return common.BytesToAddress(h[12:])
}

// Config wires the bridge's collaborators. Custody is required; everything
// else has a working default.
type Config struct {
	Custody  custody.Transferor
	Feed     oracle.Feed
	Fees     FeePolicy
	Verifier auth.Verifier
	Emitter  Emitter
	Store    Recorder
	Log      log.Logger
}

// Bridge is the instruction surface over the singleton bridge State.
type Bridge struct {
	mu    sync.RWMutex
	state *State

	custody  custody.Transferor
	feed     oracle.Feed
	fees     FeePolicy
	verifier auth.Verifier
	emitter  Emitter
	store    Recorder
	log      log.Logger
}

// New creates an uninitialized bridge. Call Initialize once, or Load to
// restore a persisted record.
func New(cfg Config) *Bridge {
	if cfg.Emitter == nil {
		cfg.Emitter = NopEmitter{}
	}
	if cfg.Log == nil {
		cfg.Log = log.NewTestLogger(log.InfoLevel)
	}
	if (cfg.Fees.Scaling == FeeScaling{}) {
		cfg.Fees.Scaling = DefaultFeeScaling()
	}
	return &Bridge{
		custody:  cfg.Custody,
		feed:     cfg.Feed,
		fees:     cfg.Fees,
		verifier: cfg.Verifier,
		emitter:  cfg.Emitter,
		store:    cfg.Store,
		log:      cfg.Log,
	}
}

// Initialize creates the singleton bridge record. One-time.
func (b *Bridge) Initialize(owner, vault common.Address, protocolFee, chainSelector uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != nil {
		return ErrAlreadyInitialized
	}
	if owner == (common.Address{}) {
		return ErrInvalidOwner
	}
	if protocolFee == 0 {
		return ErrInvalidProtocolFee
	}
	if chainSelector == 0 {
		return ErrInvalidChainSelector
	}

	b.state = &State{
		Owner:         owner,
		Vault:         vault,
		ProtocolFee:   protocolFee,
		ChainSelector: chainSelector,
	}
	if b.store != nil {
		if err := b.store.Save(b.state); err != nil {
			b.state = nil
			return fmt.Errorf("persist bridge record: %w", err)
		}
	}

	b.log.Info("bridge initialized", "owner", owner, "chainSelector", chainSelector, "protocolFee", protocolFee)
	return nil
}

// Load restores the bridge record from the configured store.
func (b *Bridge) Load() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != nil {
		return ErrAlreadyInitialized
	}
	if b.store == nil {
		return ErrNotInitialized
	}

	state, err := b.store.Load()
	if err != nil {
		return err
	}
	b.state = state
	return nil
}

// VerifyCaller resolves a signed request into a caller identity via the
// configured authorization collaborator.
func (b *Bridge) VerifyCaller(payload, sig []byte) (common.Address, error) {
	if b.verifier == nil {
		return common.Address{}, ErrNoVerifier
	}
	return b.verifier.Verify(payload, sig)
}

// SetProtocolFee updates the per-send protocol fee. Owner only; the fee
// must be non-zero.
func (b *Bridge) SetProtocolFee(caller common.Address, fee uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.requireOwner(caller); err != nil {
		return err
	}
	if fee == 0 {
		return ErrInvalidProtocolFee
	}

	prev := b.state.clone()
	b.state.ProtocolFee = fee
	return b.commit(prev)
}

// AddRoute registers a (local asset, remote chain, remote asset) mapping
// and returns the derived route identifier. Owner only.
func (b *Bridge) AddRoute(caller, localAsset common.Address, remoteChainSelector uint64, remoteAsset []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.requireOwner(caller); err != nil {
		return "", err
	}
	if remoteChainSelector == 0 {
		return "", ErrInvalidChainSelector
	}

	id, err := routeid.Derive(localAsset.Bytes(), b.state.ChainSelector, remoteAsset, remoteChainSelector)
	if err != nil {
		return "", err
	}

	for _, r := range b.state.Routes {
		if r.ID == id && r.RemoteChainSelector == remoteChainSelector {
			return "", ErrAlreadyRegistered
		}
	}

	prev := b.state.clone()
	b.state.Routes = append(b.state.Routes, &Route{
		ID:                  id,
		LocalAsset:          localAsset,
		RemoteChainSelector: remoteChainSelector,
		RemoteAsset:         append([]byte(nil), remoteAsset...),
	})
	if err := b.commit(prev); err != nil {
		return "", err
	}

	b.emitter.Emit(RouteAdded{
		RouteID:             id,
		LocalAsset:          localAsset,
		RemoteChainSelector: remoteChainSelector,
		RemoteAsset:         append([]byte(nil), remoteAsset...),
	})
	return id, nil
}

// RemoveRoute unregisters the route with the given identifier and remote
// chain selector. Owner only. Removal preserves the relative order of the
// remaining routes.
func (b *Bridge) RemoveRoute(caller common.Address, routeID string, remoteChainSelector uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.requireOwner(caller); err != nil {
		return err
	}

	idx := -1
	for i, r := range b.state.Routes {
		if r.ID == routeID && r.RemoteChainSelector == remoteChainSelector {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnsupportedToken
	}

	prev := b.state.clone()
	removed := b.state.Routes[idx]
	b.state.Routes = append(b.state.Routes[:idx], b.state.Routes[idx+1:]...)
	if err := b.commit(prev); err != nil {
		return err
	}

	b.emitter.Emit(RouteRemoved{RouteID: removed.ID, LocalAsset: removed.LocalAsset})
	return nil
}

// RemoveRouteByAssets re-derives the identifier from the raw descriptors
// and removes the matching route. Owner only.
func (b *Bridge) RemoveRouteByAssets(caller, localAsset common.Address, remoteChainSelector uint64, remoteAsset []byte) error {
	b.mu.RLock()
	if b.state == nil {
		b.mu.RUnlock()
		return ErrNotInitialized
	}
	localSelector := b.state.ChainSelector
	b.mu.RUnlock()

	id, err := routeid.Derive(localAsset.Bytes(), localSelector, remoteAsset, remoteChainSelector)
	if err != nil {
		return err
	}
	return b.RemoveRoute(caller, id, remoteChainSelector)
}

// LookupAsset returns the local asset registered for the route.
func (b *Bridge) LookupAsset(routeID string) (common.Address, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	route, err := b.lookupRoute(routeID)
	if err != nil {
		return common.Address{}, err
	}
	return route.LocalAsset, nil
}

// LookupBalance returns the route's target balance.
func (b *Bridge) LookupBalance(routeID string) (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	route, err := b.lookupRoute(routeID)
	if err != nil {
		return 0, err
	}
	return route.TargetBalance, nil
}

// Routes returns a copy of the registry in canonical (insertion) order.
func (b *Bridge) Routes() []Route {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.state == nil {
		return nil
	}
	out := make([]Route, len(b.state.Routes))
	for i, r := range b.state.Routes {
		out[i] = *r
		out[i].RemoteAsset = append([]byte(nil), r.RemoteAsset...)
	}
	return out
}

// Snapshot returns a deep copy of the current state, or nil before
// initialization.
func (b *Bridge) Snapshot() *State {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.state == nil {
		return nil
	}
	return b.state.clone()
}

// UpdateTokenBalance adjusts a route's target balance. Owner only. The
// arithmetic is checked: an adjustment that would wrap fails instead.
func (b *Bridge) UpdateTokenBalance(caller common.Address, routeID string, amount uint64, increase bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.requireOwner(caller); err != nil {
		return err
	}

	route, err := b.lookupRoute(routeID)
	if err != nil {
		return err
	}

	if increase {
		if route.TargetBalance > math.MaxUint64-amount {
			return ErrBalanceOverflow
		}
	} else if amount > route.TargetBalance {
		return ErrBalanceUnderflow
	}

	prev := b.state.clone()
	if increase {
		route.TargetBalance += amount
	} else {
		route.TargetBalance -= amount
	}
	if err := b.commit(prev); err != nil {
		return err
	}

	b.emitter.Emit(BalanceUpdated{RouteID: route.ID, TargetBalance: route.TargetBalance})
	return nil
}

// AddLiquidity deposits amount of the route's asset from the caller into
// bridge custody. The target balance is not touched; replenishing the send
// quota is a separate administrative action.
func (b *Bridge) AddLiquidity(caller common.Address, routeID string, asset common.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == nil {
		return ErrNotInitialized
	}

	route, err := b.lookupRoute(routeID)
	if err != nil {
		return err
	}
	if route.LocalAsset != asset {
		return ErrTokenMismatch
	}

	if err := b.custody.Transfer(asset, caller, TokenVault(asset), caller, amount); err != nil {
		return err
	}

	b.emitter.Emit(LiquidityAdded{RouteID: route.ID, LocalAsset: asset, Amount: amount})
	return nil
}

// Send locks amount of the route's asset into bridge custody for transfer
// to the remote chain and charges the protocol fee in native units to the
// vault. The route's target balance bounds the send: amount must be
// strictly below it, leaving a minimum operational buffer on the quota.
// The quota is a ceiling, not a budget; it is not debited here.
func (b *Bridge) Send(caller common.Address, routeID string, asset common.Address, amount uint64, remoteBridge string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == nil {
		return ErrNotInitialized
	}

	route, err := b.lookupRoute(routeID)
	if err != nil {
		return err
	}
	if route.LocalAsset != asset {
		return ErrTokenMismatch
	}
	if route.TargetBalance <= amount {
		return ErrInsufficientBalance
	}

	fee, err := b.computeFee(time.Now())
	if err != nil {
		return err
	}

	// The two custody legs are made jointly atomic by compensation: when
	// the fee leg fails, the token leg is refunded so a failed send moves
	// nothing. This holds for any Transferor, including when the route's
	// asset is the native currency and both legs draw on the same balance.
	vault := TokenVault(asset)
	if err := b.custody.Transfer(asset, caller, vault, caller, amount); err != nil {
		return err
	}
	if err := b.custody.Transfer(custody.Native, caller, b.state.Vault, caller, fee); err != nil {
		if rerr := b.custody.Transfer(asset, vault, caller, vault, amount); rerr != nil {
			b.log.Error("refund of failed send did not apply", "routeID", route.ID, "amount", amount, "err", rerr)
		}
		return err
	}

	b.log.Debug("send accepted", "routeID", route.ID, "amount", amount, "fee", fee)
	b.emitter.Emit(TokenSent{
		RouteID:             route.ID,
		LocalAsset:          asset,
		Amount:              amount,
		Fee:                 fee,
		RemoteBridge:        remoteBridge,
		RemoteChainSelector: route.RemoteChainSelector,
		RemoteAsset:         append([]byte(nil), route.RemoteAsset...),
	})
	return nil
}

// MessageReceive releases amount of the route's asset from bridge custody
// to recipient, on the strength of an inbound cross-chain message. Only the
// owner may attest inbound messages.
func (b *Bridge) MessageReceive(caller common.Address, routeID string, asset common.Address, sourceChainSelector uint64, recipient common.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.requireOwner(caller); err != nil {
		return err
	}

	route, err := b.lookupRoute(routeID)
	if err != nil {
		return err
	}
	if route.LocalAsset != asset {
		return ErrTokenMismatch
	}

	vault := TokenVault(asset)
	if b.custody.Balance(asset, vault) < amount {
		return ErrInsufficientBalance
	}
	if err := b.custody.Transfer(asset, vault, recipient, vault, amount); err != nil {
		return err
	}

	b.emitter.Emit(MessageReceived{
		RouteID:             route.ID,
		SourceChainSelector: sourceChainSelector,
		Recipient:           recipient,
		Amount:              amount,
	})
	return nil
}

// Withdraw moves native currency out of the vault to beneficiary. Owner
// only.
func (b *Bridge) Withdraw(caller, beneficiary common.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.requireOwner(caller); err != nil {
		return err
	}

	vault := b.state.Vault
	if b.custody.Balance(custody.Native, vault) < amount {
		return ErrInsufficientBalance
	}
	if err := b.custody.Transfer(custody.Native, vault, beneficiary, vault, amount); err != nil {
		return err
	}

	b.emitter.Emit(Withdrawn{Beneficiary: beneficiary, Amount: amount})
	return nil
}

// WithdrawToken moves amount of the route's asset out of bridge custody to
// beneficiary. Owner only.
func (b *Bridge) WithdrawToken(caller common.Address, routeID string, asset, beneficiary common.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.requireOwner(caller); err != nil {
		return err
	}

	route, err := b.lookupRoute(routeID)
	if err != nil {
		return err
	}
	if route.LocalAsset != asset {
		return ErrTokenMismatch
	}

	vault := TokenVault(asset)
	if b.custody.Balance(asset, vault) < amount {
		return ErrInsufficientBalance
	}
	if err := b.custody.Transfer(asset, vault, beneficiary, vault, amount); err != nil {
		return err
	}

	b.emitter.Emit(TokenWithdrawn{Asset: asset, Beneficiary: beneficiary, Amount: amount})
	return nil
}

// DeriveRouteID computes the identifier a route would get if registered,
// using this bridge's chain selector for the local side.
func (b *Bridge) DeriveRouteID(localAsset common.Address, remoteChainSelector uint64, remoteAsset []byte) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.state == nil {
		return "", ErrNotInitialized
	}
	return routeid.Derive(localAsset.Bytes(), b.state.ChainSelector, remoteAsset, remoteChainSelector)
}

func (b *Bridge) requireOwner(caller common.Address) error {
	if b.state == nil {
		return ErrNotInitialized
	}
	if b.state.Owner != caller {
		return ErrInvalidOwner
	}
	return nil
}

func (b *Bridge) lookupRoute(routeID string) (*Route, error) {
	if b.state == nil {
		return nil, ErrNotInitialized
	}
	// Linear scan; the registry is expected to stay small and the slice
	// order is the audit order.
	for _, r := range b.state.Routes {
		if r.ID == routeID {
			return r, nil
		}
	}
	return nil, ErrUnsupportedToken
}

// commit persists the mutated state and rolls back to prev when the write
// fails, so callers never observe a half-applied instruction.
func (b *Bridge) commit(prev *State) error {
	if b.store == nil {
		return nil
	}
	if err := b.store.Save(b.state); err != nil {
		b.state = prev
		return fmt.Errorf("persist bridge record: %w", err)
	}
	return nil
}
