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

// Package discover implements a Kademlia-style distributed hash table: a
// routing table keyed by XOR distance, an iterative lookup engine, and the
// four-operation RPC dispatcher that keeps the two in sync.
package discover

import (
	"sort"
	"sync"
	"time"

	"github.com/kadnet/dht/logger"
	"github.com/kadnet/dht/logger/glog"
	"github.com/kadnet/dht/metrics"
)

// maxSplitDepth bounds how many times the owning bucket may be split. Since
// every split halves the remaining range, hashBits splits exhaust the entire
// address space; in practice only a handful of splits ever occur because
// real node IDs are sparsely distributed.
const maxSplitDepth = hashBits

// Table is the routing table: an ordered, dynamically growing sequence of
// buckets that partitions the full identifier space. All mutation goes
// through a single mutex, matching the concurrency model of one logical
// owner per §5: routing-table critical sections never suspend.
type Table struct {
	mu      sync.Mutex
	self    NodeID
	buckets []*bucket // ordered by range, ascending; always covers [0, 2^160)

	nodeAddedHook func(*Node) // for testing
}

// NewTable creates a table for a node identified by self. The node's own ID
// is never stored as a contact (invariant 1, §8).
func NewTable(self NodeID) *Table {
	return &Table{
		self:    self,
		buckets: []*bucket{newBucket(fullRange())},
	}
}

// Self returns the local node's identifier.
func (tab *Table) Self() NodeID { return tab.self }

// Len returns the total number of live contacts across all buckets.
func (tab *Table) Len() int {
	tab.mu.Lock()
	defer tab.mu.Unlock()
	n := 0
	for _, b := range tab.buckets {
		n += len(b.entries)
	}
	metrics.TableSize.Update(int64(n))
	return n
}

// bucketIndexFor returns the index of the bucket whose range contains id.
// The caller must hold tab.mu.
func (tab *Table) bucketIndexFor(id NodeID) int {
	for i, b := range tab.buckets {
		if b.min.Contains(id) {
			return i
		}
	}
	// Ranges always partition the full space; this is unreachable unless an
	// invariant has been violated elsewhere.
	panic("discover: no bucket covers id; routing table invariant violated")
}

// spansSelf reports whether bucket i's range contains the local node's ID;
// that bucket is the only one ever eligible for splitting (§4.D, §9).
func (tab *Table) spansSelf(i int) bool {
	return tab.buckets[i].min.Contains(tab.self)
}

// Insert attempts to add or refresh c in the table. It reports whether c
// ended up live in a bucket. When the bucket covering c is full and does not
// span the owner's own ID, insertion is refused and the bucket's current
// head is returned so the caller (the RPC dispatcher's stale-eviction
// protocol, §4.G) can probe it for liveness.
func (tab *Table) Insert(c *Node) (inserted bool, probe *Node) {
	if c.ID == tab.self {
		return false, nil
	}
	tab.mu.Lock()
	defer tab.mu.Unlock()

	depth := 0
	for {
		i := tab.bucketIndexFor(c.ID)
		b := tab.buckets[i]
		switch b.touch(c) {
		case touchPresent, touchInserted:
			if tab.nodeAddedHook != nil {
				tab.nodeAddedHook(c)
			}
			return true, nil
		case touchFull:
			if tab.spansSelf(i) && depth < maxSplitDepth {
				tab.split(i)
				depth++
				continue // retry insertion into the freshly split halves
			}
			head := b.head()
			b.addReplacement(c)
			glog.V(logger.Detail).Infof("bucket full, surfacing %v for liveness probe", head)
			return false, head
		}
	}
}

// split divides the bucket at index i into two, preserving every contact it
// held (§3 invariant: "after a split the two halves preserve all their
// contacts"). Only the bucket spanning the owner's own ID is ever split.
// The caller must hold tab.mu.
func (tab *Table) split(i int) {
	old := tab.buckets[i]
	lower, upper := old.min.Split()
	lb, ub := newBucket(lower), newBucket(upper)
	for _, e := range old.entries {
		if lower.Contains(e.ID) {
			lb.entries = append(lb.entries, e)
			lb.singleIPs.Add(e.IP)
			lb.ips.Add(e.IP)
		} else {
			ub.entries = append(ub.entries, e)
			ub.singleIPs.Add(e.IP)
			ub.ips.Add(e.IP)
		}
	}
	for _, e := range old.replacements {
		if lower.Contains(e.ID) {
			lb.addReplacement(e)
		} else {
			ub.addReplacement(e)
		}
	}
	tab.buckets = append(tab.buckets[:i], append([]*bucket{lb, ub}, tab.buckets[i+1:]...)...)
	metrics.BucketSplits.Mark(1)
}

// ReplaceStaleHead atomically evicts old from its bucket and installs
// replacement at the tail, as the most-recently-seen entry. It is called by
// the stale-eviction protocol after old fails a liveness probe.
func (tab *Table) ReplaceStaleHead(old, replacement *Node) {
	tab.mu.Lock()
	defer tab.mu.Unlock()
	i := tab.bucketIndexFor(old.ID)
	tab.buckets[i].replaceHead(old, replacement)
	metrics.StaleEvictions.Mark(1)
	if tab.nodeAddedHook != nil {
		tab.nodeAddedHook(replacement)
	}
}

// RevalidateHead moves old back to the tail (it answered its liveness
// probe) and discards the contact that displaced it from consideration; the
// caller may still buffer that contact as a replacement.
func (tab *Table) RevalidateHead(old *Node) {
	tab.mu.Lock()
	defer tab.mu.Unlock()
	i := tab.bucketIndexFor(old.ID)
	tab.buckets[i].touch(old)
}

// Remove deletes id from the table. The lookup engine does not call it: a
// peer that fails during a lookup is not evicted (§4.H, step 3).
func (tab *Table) Remove(id NodeID) {
	tab.mu.Lock()
	defer tab.mu.Unlock()
	i := tab.bucketIndexFor(id)
	tab.buckets[i].remove(id)
}

// closest is an insertion-sorted accumulator of the contacts seen so far,
// ordered by ascending XOR distance to Target with lexicographic tie-break.
// It is shared between FindClosest and the lookup engine's shortlist.
type closest struct {
	Target NodeID
	Nodes  []*Node
}

func (c *closest) Add(n *Node) {
	for _, e := range c.Nodes {
		if e.ID == n.ID {
			return
		}
	}
	i := sort.Search(len(c.Nodes), func(i int) bool {
		d := distcmp(c.Target, c.Nodes[i].ID, n.ID)
		return d > 0 || (d == 0 && n.ID.Less(c.Nodes[i].ID))
	})
	c.Nodes = append(c.Nodes, nil)
	copy(c.Nodes[i+1:], c.Nodes[i:])
	c.Nodes[i] = n
}

func (c *closest) Slice(count int) []*Node {
	if count > len(c.Nodes) {
		count = len(c.Nodes)
	}
	out := make([]*Node, count)
	copy(out, c.Nodes[:count])
	return out
}

// FindClosest returns up to count contacts, across every bucket, ordered by
// ascending XOR distance to target (invariant 5, §8). It deliberately scans
// every bucket rather than only the one covering target: during transient
// states (mid-split, sparse buckets) closer contacts can live in adjacent
// ranges (§4.D invariant note).
func (tab *Table) FindClosest(target NodeID, count int) []*Node {
	tab.mu.Lock()
	defer tab.mu.Unlock()
	c := &closest{Target: target}
	for _, b := range tab.buckets {
		b.touchAccess()
		for _, e := range b.entries {
			c.Add(e)
		}
	}
	return c.Slice(count)
}

// AllBuckets returns a snapshot of every bucket for maintenance sweeps
// (§4.I). Bucket pointers are live; callers must not mutate entries
// directly, only read min/max/lastAccessed and call back into Table for
// mutation.
func (tab *Table) AllBuckets() []*bucket {
	tab.mu.Lock()
	defer tab.mu.Unlock()
	out := make([]*bucket, len(tab.buckets))
	copy(out, tab.buckets)
	return out
}

// BucketRange exposes a bucket's covered range, used by maintenance to pick
// a random refresh target within it.
func (b *bucket) Range() idRange { return b.min }

// IdleSince reports how long it has been since the bucket was last read via
// FindClosest or refreshed by maintenance.
func (b *bucket) IdleSince() time.Duration { return time.Since(b.lastAccessed) }
