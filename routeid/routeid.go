// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package routeid derives the canonical identifier for a bridged token
// route. Both endpoints of a bridge derive the same identifier from their
// own perspective, so the identifier is order-independent in the two asset
// descriptors.
package routeid

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"

	"github.com/luxfi/crypto"
)

// ErrEmptyAsset is returned when an asset descriptor has zero length.
var ErrEmptyAsset = errors.New("empty asset descriptor")

// Derive computes the route identifier for the pair
// (localAsset on localSelector, remoteAsset on remoteSelector).
//
// Each descriptor is hashed with Keccak-256 and the two digests are compared
// as big-endian 256-bit integers. The side with the smaller digest is placed
// first in the preimage, so swapping the local and remote arguments yields
// the same identifier. Chain selectors are encoded little-endian, 8 bytes.
// The identifier is the lowercase hex encoding of the Keccak-256 digest of
// the preimage.
func Derive(localAsset []byte, localSelector uint64, remoteAsset []byte, remoteSelector uint64) (string, error) {
	if len(localAsset) == 0 || len(remoteAsset) == 0 {
		return "", ErrEmptyAsset
	}

	localDigest := crypto.Keccak256(localAsset)
	remoteDigest := crypto.Keccak256(remoteAsset)

	preimage := make([]byte, 0, 16+len(localAsset)+len(remoteAsset))
	if bytes.Compare(localDigest, remoteDigest) < 0 {
		preimage = appendSide(preimage, localSelector, localAsset)
		preimage = appendSide(preimage, remoteSelector, remoteAsset)
	} else {
		// Equal digests fall through here as well; with a 256-bit hash that
		// only happens when both descriptors are identical, and then the
		// ordering is irrelevant.
		preimage = appendSide(preimage, remoteSelector, remoteAsset)
		preimage = appendSide(preimage, localSelector, localAsset)
	}

	return hex.EncodeToString(crypto.Keccak256(preimage)), nil
}

func appendSide(dst []byte, selector uint64, asset []byte) []byte {
	var sel [8]byte
	binary.LittleEndian.PutUint64(sel[:], selector)
	dst = append(dst, sel[:]...)
	return append(dst, asset...)
}
