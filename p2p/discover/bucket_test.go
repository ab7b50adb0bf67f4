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
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketFillsToCapacity(t *testing.T) {
	b := newBucket(fullRange())
	for i := 0; i < bucketSize; i++ {
		ip := net.IPv4(10, 0, byte(i), 1)
		require.Equal(t, touchInserted, b.touch(&Node{ID: RandomID(), IP: ip}))
	}
	assert.Len(t, b.entries, bucketSize)

	overflow := &Node{ID: RandomID(), IP: net.IPv4(10, 0, 99, 1)}
	assert.Equal(t, touchFull, b.touch(overflow))
}

func TestBucketTouchMovesEntryToTail(t *testing.T) {
	b := newBucket(fullRange())
	first := &Node{ID: RandomID(), IP: net.IPv4(10, 0, 0, 1)}
	second := &Node{ID: RandomID(), IP: net.IPv4(10, 0, 1, 1)}
	require.Equal(t, touchInserted, b.touch(first))
	require.Equal(t, touchInserted, b.touch(second))

	assert.Equal(t, touchPresent, b.touch(first))
	require.Len(t, b.entries, 2)
	assert.Equal(t, first.ID, b.entries[len(b.entries)-1].ID, "touched entry should move to the tail")
}

func TestBucketSubnetDiversityLimit(t *testing.T) {
	b := newBucket(fullRange())
	for i := 0; i < bucketSubnetLimit; i++ {
		n := &Node{ID: RandomID(), IP: net.IPv4(10, 0, 0, byte(i+1))}
		require.Equal(t, touchInserted, b.touch(n))
	}
	// A further contact on the same /24 must be refused even though the
	// bucket is far from its capacity limit.
	crowded := &Node{ID: RandomID(), IP: net.IPv4(10, 0, 0, 200)}
	assert.Equal(t, touchFull, b.touch(crowded))

	distinct := &Node{ID: RandomID(), IP: net.IPv4(10, 0, 1, 1)}
	assert.Equal(t, touchInserted, b.touch(distinct))
}

func TestBucketReplacementCacheBounded(t *testing.T) {
	b := newBucket(fullRange())
	for i := 0; i < maxReplacements+5; i++ {
		b.addReplacement(&Node{ID: RandomID()})
	}
	assert.LessOrEqual(t, len(b.replacements), maxReplacements)
}

func TestBucketRemoveFreesIPSlot(t *testing.T) {
	b := newBucket(fullRange())
	n := &Node{ID: RandomID(), IP: net.IPv4(10, 0, 0, 1)}
	require.Equal(t, touchInserted, b.touch(n))
	require.True(t, b.remove(n.ID))

	again := &Node{ID: RandomID(), IP: net.IPv4(10, 0, 0, 1)}
	assert.Equal(t, touchInserted, b.touch(again), "removing a contact should free its IP slot")
}
