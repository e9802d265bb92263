// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package auth turns signed requests into caller identities. The bridge
// core never inspects signatures itself; it compares the verified identity
// against the configured owner.
package auth

import (
	"errors"

	luxcrypto "github.com/luxfi/crypto"
	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/geth/common"
)

// ErrInvalidSignature is returned for malformed or unrecoverable signatures.
var ErrInvalidSignature = errors.New("invalid signature")

// Verifier recovers the identity that signed payload.
type Verifier interface {
	Verify(payload, sig []byte) (common.Address, error)
}

// Secp256k1Verifier verifies 65-byte [R || S || V] secp256k1 signatures
// over the Keccak-256 digest of the payload.
type Secp256k1Verifier struct{}

// Verify implements Verifier.
func (Secp256k1Verifier) Verify(payload, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, ErrInvalidSignature
	}

	digest := luxcrypto.Keccak256(payload)
	pub, err := secp256k1.RecoverPubkey(digest, sig)
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}

	return pubkeyToAddress(pub), nil
}

// pubkeyToAddress derives an EVM address from an uncompressed secp256k1
// public key (65 bytes with 04 prefix).
func pubkeyToAddress(pub []byte) common.Address {
	hash := luxcrypto.Keccak256(pub[1:])
	return common.BytesToAddress(hash[12:])
}
