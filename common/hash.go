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

package common

import "encoding/hex"

// HashLength is the expected length of the overlay identifier space: 160 bits.
const HashLength = 20

// Hash represents an opaque 160-bit identifier. It is used both for node IDs
// and for the keys under which values are stored; the two namespaces share
// the same metric so that a node can be "close to" a key.
type Hash [HashLength]byte

// BytesToHash sets b as the Hash's underlying bytes, left-padded with zeros to
// HashLength. If b is longer than HashLength, it is cropped from the left.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// IsZero reports whether h is the all-zero identifier.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Xor returns the bitwise XOR distance between h and o, interpreted as the
// Kademlia metric over the 160-bit space.
func (h Hash) Xor(o Hash) Hash {
	var r Hash
	for i := range r {
		r[i] = h[i] ^ o[i]
	}
	return r
}

// Less reports whether h sorts before o under the lexicographic tie-break
// used when two identifiers are equidistant from a lookup target.
func (h Hash) Less(o Hash) bool {
	for i := range h {
		if h[i] != o[i] {
			return h[i] < o[i]
		}
	}
	return false
}
