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

// Package crypto collects the hashing and random-identifier primitives the
// overlay relies on. Identity in this network is not cryptographic: there is
// no signing or verification here, only the hash used to place an arbitrary
// byte string into the 160-bit identifier space and a uniform random source
// for generating fresh identifiers.
package crypto

import (
	"crypto/rand"
	"io"

	"github.com/kadnet/dht/common"
	"golang.org/x/crypto/sha3"
)

// Keccak256Hash calculates and returns the Keccak256 hash of the input data,
// truncated to the first common.HashLength bytes so it can address the
// overlay's identifier space.
func Keccak256Hash(data ...[]byte) common.Hash {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	var full [32]byte
	d.Sum(full[:0])
	return common.BytesToHash(full[:common.HashLength])
}

// NewRandomHash returns a uniformly random identifier over the full 160-bit
// space. It is used both to mint new node identities and to pick lookup
// targets during bucket refresh.
func NewRandomHash() (common.Hash, error) {
	var h common.Hash
	if _, err := io.ReadFull(rand.Reader, h[:]); err != nil {
		return common.Hash{}, err
	}
	return h, nil
}

// MustNewRandomHash is like NewRandomHash but panics on error. The only
// failure mode is the OS entropy source being unavailable, which is
// unrecoverable for a node that needs an identity to run at all.
func MustNewRandomHash() common.Hash {
	h, err := NewRandomHash()
	if err != nil {
		panic("crypto: failed to read random bytes: " + err.Error())
	}
	return h
}
