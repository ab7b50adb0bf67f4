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

import (
	"math/big"

	"github.com/kadnet/dht/common"
	"github.com/kadnet/dht/crypto"
)

// NodeID is the 160-bit opaque identifier that addresses both nodes and
// stored values in the overlay. There is no cryptographic binding between an
// ID and the node that claims it; the protocol trusts the observed UDP
// source address, not the ID, when registering a contact (see
// Transport.registerSender).
type NodeID = common.Hash

// hashBits is the width of the identifier space in bits.
const hashBits = common.HashLength * 8

// RandomID returns a fresh, uniformly distributed identifier.
func RandomID() NodeID {
	return crypto.MustNewRandomHash()
}

// logdist returns the logarithmic distance between a and b, i.e. the bit
// length of (a XOR b). The routing table does not use it to pick buckets;
// Table locates the bucket for an ID by the idRange that contains it.
func logdist(a, b NodeID) int {
	x := a.Xor(b)
	lz := 0
	for _, v := range x {
		if v == 0 {
			lz += 8
			continue
		}
		lz += leadingZeros8(v)
		break
	}
	return len(x)*8 - lz
}

func leadingZeros8(b byte) int {
	n := 0
	for i := 7; i >= 0; i-- {
		if b&(1<<uint(i)) != 0 {
			break
		}
		n++
	}
	return n
}

// distcmp compares the distances of a and b to target. It returns -1 if a is
// closer, 1 if b is closer, and 0 if they are equidistant.
func distcmp(target, a, b NodeID) int {
	for i := range target {
		da := a[i] ^ target[i]
		db := b[i] ^ target[i]
		if da != db {
			if da < db {
				return -1
			}
			return 1
		}
	}
	return 0
}

// idRange is an inclusive range [Min, Max] over the 160-bit identifier
// space, represented as big.Int so that midpoint splitting and uniform
// sampling are exact regardless of where the boundary falls.
type idRange struct {
	Min, Max *big.Int
}

// fullRange returns the range spanning the entire identifier space,
// [0, 2^160).
func fullRange() idRange {
	max := new(big.Int).Lsh(big.NewInt(1), hashBits)
	max.Sub(max, big.NewInt(1))
	return idRange{Min: big.NewInt(0), Max: max}
}

// Contains reports whether id falls within the range, inclusive.
func (r idRange) Contains(id NodeID) bool {
	v := idToBig(id)
	return v.Cmp(r.Min) >= 0 && v.Cmp(r.Max) <= 0
}

// Split divides the range at its midpoint into two contiguous, disjoint
// halves whose union is the original range. It is only ever applied to the
// bucket that covers the local node's own ID.
func (r idRange) Split() (lower, upper idRange) {
	mid := new(big.Int).Add(r.Min, r.Max)
	mid.Rsh(mid, 1)
	lower = idRange{Min: r.Min, Max: mid}
	upper = idRange{Min: new(big.Int).Add(mid, big.NewInt(1)), Max: r.Max}
	return lower, upper
}

// RandomID returns a uniformly sampled identifier within the range.
func (r idRange) RandomID() NodeID {
	span := new(big.Int).Sub(r.Max, r.Min)
	span.Add(span, big.NewInt(1))
	var offset *big.Int
	if span.Sign() <= 0 {
		offset = big.NewInt(0)
	} else {
		// Rejection-free uniform sample via a random identifier reduced
		// modulo the span; the space is large enough that modulo bias is
		// not a practical concern for bucket-refresh targets.
		raw := idToBig(RandomID())
		offset = new(big.Int).Mod(raw, span)
	}
	v := new(big.Int).Add(r.Min, offset)
	return bigToID(v)
}

func idToBig(id NodeID) *big.Int {
	return new(big.Int).SetBytes(id.Bytes())
}

func bigToID(v *big.Int) NodeID {
	b := v.Bytes()
	return common.BytesToHash(b)
}
