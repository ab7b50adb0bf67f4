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
	"time"

	"github.com/kadnet/dht/p2p/distip"
)

const (
	// bucketSize is K, the canonical Kademlia bucket capacity.
	bucketSize = 8

	// maxReplacements bounds the per-bucket replacement cache.
	maxReplacements = 8

	// bucketSubnetLimit caps how many contacts in one bucket may share a
	// /24 network, so a single host cannot occupy an entire bucket with
	// Sybil identities differing only in NodeID.
	bucketSubnetLimit = 2

	// bucketIPLimit caps the same, but per individual IP address, catching
	// a single host claiming many NodeIDs behind one address.
	bucketIPLimit = 1
)

// touchResult is the tri-state outcome of Bucket.touch, used by the routing
// table to decide whether a split or a stale-eviction probe is needed.
type touchResult int

const (
	// touchPresent means the contact was already in the bucket; it has been
	// moved to the tail and its lastSeen refreshed.
	touchPresent touchResult = iota
	// touchInserted means the contact was new and the bucket had room.
	touchInserted
	// touchFull means the bucket had no room; the caller must decide
	// whether to probe the liveness of head().
	touchFull
)

// bucket is an ordered, bounded list of contacts covering one range of the
// identifier space. Entries are ordered least-recently-seen at the head,
// most-recently-seen at the tail, matching the Kademlia convention that the
// head is the first candidate for eviction.
type bucket struct {
	min, max     idRange
	entries      []*Node // least-recently-seen first
	replacements []*Node // recently seen nodes buffered for when entries has room
	lastAccessed time.Time
	ips          distip.DistinctNetSet // subnet diversity among entries
	singleIPs    distip.DistinctNetSet // per-address diversity among entries
}

func newBucket(r idRange) *bucket {
	return &bucket{
		min:          r,
		lastAccessed: time.Now(),
		ips:          distip.DistinctNetSet{Subnet: 24, Limit: bucketSubnetLimit},
		singleIPs:    distip.DistinctNetSet{Subnet: 32, Limit: bucketIPLimit},
	}
}

// touch inserts or refreshes c in the bucket. See touchResult for the
// three possible outcomes. A new contact whose address would violate the
// bucket's IP diversity limits is refused exactly like a full bucket, so a
// single host cannot crowd out a whole bucket with distinct NodeIDs.
func (b *bucket) touch(c *Node) touchResult {
	for i, e := range b.entries {
		if e.ID == c.ID {
			e.touch()
			b.entries = append(append(b.entries[:i], b.entries[i+1:]...), e)
			return touchPresent
		}
	}
	if len(b.entries) < bucketSize {
		if !b.singleIPs.Add(c.IP) {
			return touchFull
		}
		if !b.ips.Add(c.IP) {
			b.singleIPs.Remove(c.IP)
			return touchFull
		}
		c.touch()
		b.entries = append(b.entries, c)
		return touchInserted
	}
	return touchFull
}

// head returns the least-recently-seen contact, the one stale-eviction
// probes when the bucket is full. It is nil for an empty bucket.
func (b *bucket) head() *Node {
	if len(b.entries) == 0 {
		return nil
	}
	return b.entries[0]
}

// remove deletes id from the bucket's live entries, reporting whether it was
// present.
func (b *bucket) remove(id NodeID) bool {
	for i, e := range b.entries {
		if e.ID == id {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			b.ips.Remove(e.IP)
			b.singleIPs.Remove(e.IP)
			return true
		}
	}
	return false
}

// contains reports whether id is a live entry of the bucket.
func (b *bucket) contains(id NodeID) bool {
	for _, e := range b.entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// snapshot returns a shallow copy of the bucket's live entries, safe for the
// caller to range over without holding the table lock.
func (b *bucket) snapshot() []*Node {
	out := make([]*Node, len(b.entries))
	copy(out, b.entries)
	return out
}

// replaceHead evicts old (expected to be the current head) and inserts
// replacement at the tail, as the most-recently-seen entry.
func (b *bucket) replaceHead(old, replacement *Node) {
	b.remove(old.ID)
	replacement.touch()
	if len(b.entries) < bucketSize {
		b.singleIPs.Add(replacement.IP)
		b.ips.Add(replacement.IP)
		b.entries = append(b.entries, replacement)
	}
	b.removeReplacement(replacement.ID)
}

// addReplacement buffers c as a candidate to take over the head slot if it
// fails its next liveness probe. Duplicate IDs are ignored; the cache is
// bounded to maxReplacements, discarding the oldest entry.
func (b *bucket) addReplacement(c *Node) {
	for _, e := range b.replacements {
		if e.ID == c.ID {
			return
		}
	}
	b.replacements = append(b.replacements, c)
	if len(b.replacements) > maxReplacements {
		b.replacements = b.replacements[1:]
	}
}

func (b *bucket) removeReplacement(id NodeID) {
	for i, e := range b.replacements {
		if e.ID == id {
			b.replacements = append(b.replacements[:i], b.replacements[i+1:]...)
			return
		}
	}
}

// bestReplacement returns the most recently buffered replacement candidate,
// or nil if the cache is empty.
func (b *bucket) bestReplacement() *Node {
	if len(b.replacements) == 0 {
		return nil
	}
	return b.replacements[len(b.replacements)-1]
}

func (b *bucket) touchAccess() {
	b.lastAccessed = time.Now()
}
