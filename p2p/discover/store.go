// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package discover

import "github.com/boltdb/bolt"

// ValueStore is the local key/value persistence the dispatcher delegates to
// for STORE and FIND_VALUE (component E, §2). First writer wins: Put is a
// no-op when the key is already present (§3, §9 "probably change" note
// treated as canonical).
type ValueStore interface {
	Has(key NodeID) bool
	Get(key NodeID) ([]byte, bool)
	Put(key NodeID, value []byte)
	Close() error
}

var valuesBucket = []byte("values")

// boltValueStore is the default ValueStore, backed by a single-file boltdb
// database. Besides the node identifier file, it is the only durable
// artifact the node produces (§6).
type boltValueStore struct {
	db *bolt.DB
}

// OpenValueStore opens (creating if necessary) a boltdb-backed value store
// at path.
func OpenValueStore(path string) (ValueStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(valuesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &boltValueStore{db: db}, nil
}

func (s *boltValueStore) Has(key NodeID) bool {
	_, ok := s.Get(key)
	return ok
}

func (s *boltValueStore) Get(key NodeID) (value []byte, ok bool) {
	s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(valuesBucket).Get(key.Bytes())
		if v != nil {
			value = append([]byte(nil), v...)
			ok = true
		}
		return nil
	})
	return value, ok
}

// Put stores value under key unless the key is already present; double
// STOREs of the same key leave the store unchanged (§3, invariant 8).
func (s *boltValueStore) Put(key NodeID, value []byte) {
	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(valuesBucket)
		if b.Get(key.Bytes()) != nil {
			return nil
		}
		return b.Put(key.Bytes(), value)
	})
}

func (s *boltValueStore) Close() error {
	return s.db.Close()
}

// memoryValueStore is a map-backed ValueStore for tests and for nodes that
// do not need persistence across restarts.
type memoryValueStore struct {
	data map[NodeID][]byte
}

// NewMemoryValueStore returns an in-process ValueStore with no durability.
func NewMemoryValueStore() ValueStore {
	return &memoryValueStore{data: make(map[NodeID][]byte)}
}

func (s *memoryValueStore) Has(key NodeID) bool {
	_, ok := s.data[key]
	return ok
}

func (s *memoryValueStore) Get(key NodeID) ([]byte, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *memoryValueStore) Put(key NodeID, value []byte) {
	if _, exists := s.data[key]; exists {
		return
	}
	s.data[key] = value
}

func (s *memoryValueStore) Close() error { return nil }
