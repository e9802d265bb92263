// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package custody moves fungible value between accounts on behalf of the
// bridge. The bridge core only depends on the Transferor contract; Ledger is
// the in-memory implementation used in tests and single-process deployments.
package custody

import (
	"errors"
	"math"
	"sync"

	"github.com/luxfi/geth/common"
)

// Native is the asset key for the chain's native currency (address(0)).
var Native = common.Address{}

// ErrTransferFailed is returned when a transfer cannot be applied: the
// source lacks sufficient balance, the authority does not control the
// source, or the destination balance would overflow. A failed transfer
// moves nothing.
var ErrTransferFailed = errors.New("transfer failed")

// Transferor moves amounts of a fungible asset between accounts.
// Transfers are all-or-nothing.
type Transferor interface {
	// Transfer moves amount of asset from source to dest. The authority must
	// control the source account.
	Transfer(asset, source, dest, authority common.Address, amount uint64) error

	// Balance returns the current holdings of holder in asset.
	Balance(asset, holder common.Address) uint64
}

// Ledger is an in-memory Transferor. Each account is its own authority.
type Ledger struct {
	mu       sync.RWMutex
	balances map[common.Address]map[common.Address]uint64 // asset -> holder -> amount
}

// NewLedger creates an empty custody ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[common.Address]map[common.Address]uint64),
	}
}

// Credit funds holder with amount of asset, creating the account if needed.
// Used to seed balances; a production deployment replaces this with the
// host chain's own issuance.
func (l *Ledger) Credit(asset, holder common.Address, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	accounts := l.balances[asset]
	if accounts == nil {
		accounts = make(map[common.Address]uint64)
		l.balances[asset] = accounts
	}
	accounts[holder] += amount
}

// Transfer implements Transferor.
func (l *Ledger) Transfer(asset, source, dest, authority common.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if authority != source {
		return ErrTransferFailed
	}

	accounts := l.balances[asset]
	if accounts == nil || accounts[source] < amount {
		return ErrTransferFailed
	}
	if accounts[dest] > math.MaxUint64-amount {
		return ErrTransferFailed
	}

	accounts[source] -= amount
	accounts[dest] += amount
	return nil
}

// Balance implements Transferor.
func (l *Ledger) Balance(asset, holder common.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	accounts := l.balances[asset]
	if accounts == nil {
		return 0
	}
	return accounts[holder]
}
