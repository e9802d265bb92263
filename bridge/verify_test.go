// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	luxcrypto "github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/tokenbridge/auth"
	"github.com/luxfi/tokenbridge/custody"
)

func TestVerifyCaller_SignedOwnerAuthorizesAdminOp(t *testing.T) {
	priv, err := ecdsa.GenerateKey(luxcrypto.S256(), rand.Reader)
	require.NoError(t, err)
	pub := elliptic.Marshal(luxcrypto.S256(), priv.PublicKey.X, priv.PublicKey.Y)
	ownerAddr := common.BytesToAddress(luxcrypto.Keccak256(pub[1:])[12:])

	b := New(Config{
		Custody:  custody.NewLedger(),
		Verifier: auth.Secp256k1Verifier{},
	})
	require.NoError(t, b.Initialize(ownerAddr, vaultAddr, protocolFee, localSelector))

	payload := []byte(`{"op":"set_protocol_fee","fee":31000}`)
	sig, err := luxcrypto.Sign(luxcrypto.Keccak256(payload), priv)
	require.NoError(t, err)

	caller, err := b.VerifyCaller(payload, sig)
	require.NoError(t, err)
	require.Equal(t, ownerAddr, caller)

	require.NoError(t, b.SetProtocolFee(caller, 31_000))
	require.Equal(t, uint64(31_000), b.Snapshot().ProtocolFee)
}

func TestVerifyCaller_ForeignKeyFailsOwnerCheck(t *testing.T) {
	ownerPriv, err := ecdsa.GenerateKey(luxcrypto.S256(), rand.Reader)
	require.NoError(t, err)
	ownerPub := elliptic.Marshal(luxcrypto.S256(), ownerPriv.PublicKey.X, ownerPriv.PublicKey.Y)
	ownerAddr := common.BytesToAddress(luxcrypto.Keccak256(ownerPub[1:])[12:])

	intruderPriv, err := ecdsa.GenerateKey(luxcrypto.S256(), rand.Reader)
	require.NoError(t, err)

	b := New(Config{
		Custody:  custody.NewLedger(),
		Verifier: auth.Secp256k1Verifier{},
	})
	require.NoError(t, b.Initialize(ownerAddr, vaultAddr, protocolFee, localSelector))

	payload := []byte(`{"op":"set_protocol_fee","fee":1}`)
	sig, err := luxcrypto.Sign(luxcrypto.Keccak256(payload), intruderPriv)
	require.NoError(t, err)

	caller, err := b.VerifyCaller(payload, sig)
	require.NoError(t, err)
	require.NotEqual(t, ownerAddr, caller)
	require.ErrorIs(t, b.SetProtocolFee(caller, 1), ErrInvalidOwner)
}
