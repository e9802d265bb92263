// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"errors"

	"github.com/luxfi/geth/common"
)

// Route is one registered local-asset <-> remote-asset mapping. Routes are
// kept in insertion order; that order is the canonical registry order.
type Route struct {
	// ID is the hash-derived route identifier (see package routeid). Unique
	// across the registry.
	ID string `json:"id"`

	// LocalAsset is the asset on this chain.
	LocalAsset common.Address `json:"localAsset"`

	// RemoteChainSelector identifies the counterpart chain.
	RemoteChainSelector uint64 `json:"remoteChainSelector"`

	// RemoteAsset is the counterpart chain's asset descriptor, opaque to
	// this side (typically an address encoding on the remote chain).
	RemoteAsset []byte `json:"remoteAsset"`

	// TargetBalance is the administrator-set outbound send ceiling for this
	// route. It is a quota, not custody accounting: Send checks it but does
	// not consume it.
	TargetBalance uint64 `json:"targetBalance"`
}

// State is the singleton bridge record. It is created once by Initialize
// and persisted as a whole (see Store).
type State struct {
	Owner         common.Address `json:"owner"`
	Vault         common.Address `json:"vault"`
	ProtocolFee   uint64         `json:"protocolFee"`
	ChainSelector uint64         `json:"chainSelector"`
	Routes        []*Route       `json:"routes"`
}

func (s *State) clone() *State {
	cp := *s
	cp.Routes = make([]*Route, len(s.Routes))
	for i, r := range s.Routes {
		rc := *r
		rc.RemoteAsset = append([]byte(nil), r.RemoteAsset...)
		cp.Routes[i] = &rc
	}
	return &cp
}

// Bridge errors.
var (
	ErrNotInitialized       = errors.New("bridge not initialized")
	ErrAlreadyInitialized   = errors.New("bridge already initialized")
	ErrInvalidOwner         = errors.New("invalid owner")
	ErrInvalidChainSelector = errors.New("invalid chain selector")
	ErrInvalidProtocolFee   = errors.New("invalid protocol fee")
	ErrUnsupportedToken     = errors.New("unsupported token")
	ErrTokenMismatch        = errors.New("token address does not match route")
	ErrAlreadyRegistered    = errors.New("route already registered")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrBalanceOverflow      = errors.New("target balance overflow")
	ErrBalanceUnderflow     = errors.New("target balance underflow")
	ErrAmountOverflow       = errors.New("fee amount overflows native unit")
	ErrStalePrice           = errors.New("stale price quote")
	ErrInvalidPrice         = errors.New("non-positive price quote")
	ErrNoVerifier           = errors.New("no signature verifier configured")
	ErrCorruptRecord        = errors.New("corrupt bridge record")
)
