// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/tokenbridge/oracle"
)

// FeeMode selects how the protocol fee is converted to the charged amount.
type FeeMode uint8

const (
	// FeeModeFixed charges the configured protocol fee verbatim.
	FeeModeFixed FeeMode = iota
	// FeeModeOracle converts the protocol fee through a price quote.
	FeeModeOracle
)

// FeeScaling holds the conversion exponents. The charged amount is
//
//	fee * 10^QuoteMulExp / price * 10^NativeMulExp / PostDivisor
//
// evaluated left to right with truncating division on a 256-bit
// accumulator. The exponents are policy: how many fiat-decimal digits the
// protocol fee is denominated in versus the feed's exponent.
type FeeScaling struct {
	QuoteMulExp  uint64
	NativeMulExp uint64
	PostDivisor  uint64
}

// DefaultFeeScaling matches a fee denominated against an expo -8 USD feed
// with a 9-decimal native unit.
func DefaultFeeScaling() FeeScaling {
	return FeeScaling{QuoteMulExp: 12, NativeMulExp: 9, PostDivisor: 1000}
}

// FeePolicy configures fee conversion for Send.
type FeePolicy struct {
	Mode    FeeMode
	FeedID  common.Hash
	MaxAge  time.Duration
	Scaling FeeScaling
}

// ConvertFee converts protocolFee through the quote. The quote must be
// fresh (age at now no greater than maxAge) and carry a positive price.
// Division truncates; intermediate products use 256-bit arithmetic so the
// multiply-before-divide order cannot overflow, and the final narrowing to
// uint64 is checked.
func ConvertFee(protocolFee uint64, q oracle.Quote, now time.Time, maxAge time.Duration, s FeeScaling) (uint64, error) {
	if q.Price <= 0 {
		return 0, ErrInvalidPrice
	}
	if q.Age(now) > maxAge {
		return 0, ErrStalePrice
	}
	if s.QuoteMulExp > maxPow10Exp || s.NativeMulExp > maxPow10Exp {
		return 0, ErrAmountOverflow
	}

	divisor := s.PostDivisor
	if divisor == 0 {
		divisor = 1
	}

	v := new(uint256.Int).SetUint64(protocolFee)
	if _, overflow := v.MulOverflow(v, pow10(s.QuoteMulExp)); overflow {
		return 0, ErrAmountOverflow
	}
	v.Div(v, new(uint256.Int).SetUint64(uint64(q.Price)))
	if _, overflow := v.MulOverflow(v, pow10(s.NativeMulExp)); overflow {
		return 0, ErrAmountOverflow
	}
	v.Div(v, new(uint256.Int).SetUint64(divisor))

	if !v.IsUint64() {
		return 0, ErrAmountOverflow
	}
	return v.Uint64(), nil
}

// maxPow10Exp is the largest power of ten below 2^256. uint256.Exp wraps
// beyond it, so larger scaling exponents are rejected rather than computed.
const maxPow10Exp = 77

func pow10(exp uint64) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(exp))
}

// computeFee resolves the amount actually charged for one send under the
// configured policy.
func (b *Bridge) computeFee(now time.Time) (uint64, error) {
	if b.fees.Mode == FeeModeFixed || b.feed == nil {
		return b.state.ProtocolFee, nil
	}

	q, err := b.feed.Latest(b.fees.FeedID)
	if err != nil {
		return 0, err
	}
	return ConvertFee(b.state.ProtocolFee, q, now, b.fees.MaxAge, b.fees.Scaling)
}
