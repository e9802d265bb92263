// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package oracle is the price-feed collaborator for fee conversion.
package oracle

import (
	"errors"
	"sync"
	"time"

	"github.com/luxfi/geth/common"
)

// ErrPriceUnavailable is returned when a feed has no quote for the
// requested identifier.
var ErrPriceUnavailable = errors.New("price unavailable")

// Quote is one price observation. Price is scaled by 10^Expo, so a BTC/USD
// price of 60000 with Expo -8 carries Price = 60000 * 10^8.
type Quote struct {
	Price       int64
	Expo        int32
	Conf        uint64
	PublishTime time.Time
}

// Age returns how old the quote is at now.
func (q Quote) Age(now time.Time) time.Duration {
	return now.Sub(q.PublishTime)
}

// Feed serves the latest quote for a feed identifier.
type Feed interface {
	Latest(id common.Hash) (Quote, error)
}

// StaticFeed is a map-backed Feed for tests and fixed-price deployments.
type StaticFeed struct {
	mu     sync.RWMutex
	quotes map[common.Hash]Quote
}

// NewStaticFeed creates an empty static feed.
func NewStaticFeed() *StaticFeed {
	return &StaticFeed{quotes: make(map[common.Hash]Quote)}
}

// Set stores the quote for id, replacing any previous one.
func (f *StaticFeed) Set(id common.Hash, q Quote) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes[id] = q
}

// Latest implements Feed.
func (f *StaticFeed) Latest(id common.Hash) (Quote, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	q, ok := f.quotes[id]
	if !ok {
		return Quote{}, ErrPriceUnavailable
	}
	return q, nil
}
