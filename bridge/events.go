// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"
)

// Events carry the key fields of each completed instruction for off-core
// auditing. Exactly one event is emitted per successful instruction, none
// on failure.

// RouteAdded is emitted when a route is registered.
type RouteAdded struct {
	RouteID             string
	LocalAsset          common.Address
	RemoteChainSelector uint64
	RemoteAsset         []byte
}

// RouteRemoved is emitted when a route is unregistered.
type RouteRemoved struct {
	RouteID    string
	LocalAsset common.Address
}

// BalanceUpdated is emitted when a route's target balance is adjusted.
type BalanceUpdated struct {
	RouteID       string
	TargetBalance uint64
}

// LiquidityAdded is emitted when value is deposited into bridge custody.
type LiquidityAdded struct {
	RouteID    string
	LocalAsset common.Address
	Amount     uint64
}

// TokenSent is emitted when an outbound transfer is accepted.
type TokenSent struct {
	RouteID             string
	LocalAsset          common.Address
	Amount              uint64
	Fee                 uint64
	RemoteBridge        string
	RemoteChainSelector uint64
	RemoteAsset         []byte
}

// MessageReceived is emitted when an attested inbound transfer is released.
type MessageReceived struct {
	RouteID             string
	SourceChainSelector uint64
	Recipient           common.Address
	Amount              uint64
}

// Withdrawn is emitted when native currency leaves the vault.
type Withdrawn struct {
	Beneficiary common.Address
	Amount      uint64
}

// TokenWithdrawn is emitted when a bridged asset leaves custody.
type TokenWithdrawn struct {
	Asset       common.Address
	Beneficiary common.Address
	Amount      uint64
}

// Emitter receives one event per completed instruction. Emission is
// fire-and-forget; implementations must not fail the instruction.
type Emitter interface {
	Emit(event any)
}

// NopEmitter discards all events.
type NopEmitter struct{}

// Emit implements Emitter.
func (NopEmitter) Emit(any) {}

// LogEmitter writes each event to a structured logger.
type LogEmitter struct {
	Log log.Logger
}

// Emit implements Emitter.
func (e LogEmitter) Emit(event any) {
	switch ev := event.(type) {
	case RouteAdded:
		e.Log.Info("route added", "routeID", ev.RouteID, "localAsset", ev.LocalAsset, "remoteChainSelector", ev.RemoteChainSelector)
	case RouteRemoved:
		e.Log.Info("route removed", "routeID", ev.RouteID, "localAsset", ev.LocalAsset)
	case BalanceUpdated:
		e.Log.Info("target balance updated", "routeID", ev.RouteID, "targetBalance", ev.TargetBalance)
	case LiquidityAdded:
		e.Log.Info("liquidity added", "routeID", ev.RouteID, "localAsset", ev.LocalAsset, "amount", ev.Amount)
	case TokenSent:
		e.Log.Info("token sent", "routeID", ev.RouteID, "amount", ev.Amount, "fee", ev.Fee, "remoteChainSelector", ev.RemoteChainSelector)
	case MessageReceived:
		e.Log.Info("message received", "routeID", ev.RouteID, "recipient", ev.Recipient, "amount", ev.Amount)
	case Withdrawn:
		e.Log.Info("withdrawn", "beneficiary", ev.Beneficiary, "amount", ev.Amount)
	case TokenWithdrawn:
		e.Log.Info("token withdrawn", "asset", ev.Asset, "beneficiary", ev.Beneficiary, "amount", ev.Amount)
	default:
		e.Log.Info("bridge event", "event", ev)
	}
}
