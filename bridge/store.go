// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/luxfi/database"
	"github.com/zeebo/blake3"
)

// Recorder persists the singleton bridge record. Store is the
// database-backed implementation.
type Recorder interface {
	Save(*State) error
	Load() (*State, error)
}

// recordVersion is the persisted-record format version.
const recordVersion = byte(1)

var stateKey = []byte("bridge/state")

// Store persists the bridge State as one versionable record:
// a version byte, a blake3 checksum of the body, then the JSON body.
// Route order survives the round trip, so the registry's canonical order
// is stable across restarts.
type Store struct {
	db database.Database
}

// NewStore wraps db as the bridge's record store.
func NewStore(db database.Database) *Store {
	return &Store{db: db}
}

// Save writes the whole state record.
func (s *Store) Save(state *State) error {
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode bridge record: %w", err)
	}

	sum := blake3.Sum256(body)
	rec := make([]byte, 0, 1+len(sum)+len(body))
	rec = append(rec, recordVersion)
	rec = append(rec, sum[:]...)
	rec = append(rec, body...)

	return s.db.Put(stateKey, rec)
}

// Load reads the state record. It returns database.ErrNotFound when no
// record exists and ErrCorruptRecord when the version or checksum does not
// match.
func (s *Store) Load() (*State, error) {
	rec, err := s.db.Get(stateKey)
	if err != nil {
		return nil, err
	}
	if len(rec) < 1+32 || rec[0] != recordVersion {
		return nil, ErrCorruptRecord
	}

	body := rec[1+32:]
	sum := blake3.Sum256(body)
	if !bytes.Equal(sum[:], rec[1:1+32]) {
		return nil, ErrCorruptRecord
	}

	state := new(State)
	if err := json.Unmarshal(body, state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return state, nil
}
