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
	"time"

	"github.com/kadnet/dht/logger"
	"github.com/kadnet/dht/logger/glog"
	"github.com/kadnet/dht/metrics"
	set "gopkg.in/fatih/set.v0"
)

// alpha is the lookup parallelism: the maximum number of outstanding
// FIND_NODE/FIND_VALUE requests per lookup (§4.H, §9 — unspecified in the
// source, fixed here to the canonical Kademlia default of 3).
const alpha = 3

// lookupDeadline bounds the overall wall-clock time a single lookup may run
// before it gives up and returns its current best-K (§5).
const lookupDeadline = 30 * time.Second

// failureThreshold is not referenced by the lookup engine: failures are not
// counted across lookups, and a contact whose FIND_NODE fails is only marked
// dead for the current lookup; it stays in the routing table (§4.F).
const failureThreshold = 3

type lookupResponse struct {
	id      NodeID
	nodes   []*Node
	contact *Node
	value   []byte
	found   bool
	err     error
}

// lookup drives the iterative α-parallel traversal described in §4.H. It
// serves both kinds: when findValue is true, it terminates early with a
// value the moment any peer returns one; otherwise it runs to convergence
// and returns the K closest live contacts it found.
func (t *Transport) lookup(target NodeID, findValue bool) (value []byte, found bool, nodes []*Node) {
	metrics.LookupStarted.Mark(1)
	start := time.Now()
	rounds := 0
	defer func() {
		metrics.LookupFinished.Mark(1)
		metrics.LookupRounds.Update(time.Since(start))
		if findValue {
			if found {
				metrics.LookupValueHits.Mark(1)
			} else {
				metrics.LookupValueMisses.Mark(1)
			}
		}
		mlog.Sendf(1, mlogLookupFinish.SetDetailValues(target.Hex(), rounds, len(nodes), found).String())
	}()

	shortlist := &closest{Target: target}
	for _, n := range t.table.FindClosest(target, bucketSize) {
		shortlist.Add(n)
	}

	queried := set.New()
	dead := set.New()
	results := make(chan lookupResponse, alpha)
	deadline := time.Now().Add(lookupDeadline)
	finalWave := false

	for {
		rounds++
		if time.Now().After(deadline) {
			glog.V(logger.Detail).Infof("lookup %x: deadline exceeded after %d rounds", target[:4], rounds)
			break
		}

		candidates := unqueried(shortlist, queried, dead, bucketSize)
		if len(candidates) == 0 {
			break // nothing left in the frontier to contact, at any wave
		}
		batch := candidates
		if !finalWave && len(batch) > alpha {
			batch = batch[:alpha]
		}

		before := closestDistance(shortlist, target)
		for _, n := range batch {
			queried.Add(n.ID)
			go t.dispatchLookupRequest(n, target, findValue, results)
		}
		for range batch {
			res := <-results
			if res.err != nil {
				dead.Add(res.id)
				continue
			}
			if res.contact != nil {
				t.table.Insert(res.contact)
			}
			if findValue && res.found {
				return res.value, true, nil
			}
			for _, cn := range res.nodes {
				if cn.ID == t.self.ID {
					continue
				}
				shortlist.Add(cn)
				t.table.Insert(cn)
			}
		}
		after := closestDistance(shortlist, target)

		if finalWave {
			break // the completion wave has been sent and fully drained
		}
		if after.Cmp(before) >= 0 {
			// No improvement across this α-batch: one more wave to every
			// remaining unqueried top-K contact guarantees liveness of the
			// returned set before we stop (§4.H "Progress rule").
			finalWave = true
		}
	}

	return nil, false, liveTopK(shortlist, dead, bucketSize)
}

// dispatchLookupRequest issues a single FIND_NODE or FIND_VALUE RPC and
// reports its outcome. Per the client contract (client.go's findNode/
// findValue doc comments), the caller owns inserting both the responder and
// any returned contacts into the routing table; lookupResponse carries the
// responder through so the caller (lookup's results loop) can do so.
func (t *Transport) dispatchLookupRequest(n *Node, target NodeID, findValue bool, results chan<- lookupResponse) {
	if findValue {
		value, nodes, contact, err := t.findValue(n, target)
		if err == nil && value != nil {
			results <- lookupResponse{id: n.ID, value: value, found: true, contact: contact}
			return
		}
		results <- lookupResponse{id: n.ID, nodes: nodes, err: err, contact: contact}
		return
	}
	nodes, contact, err := t.findNode(n, target)
	results <- lookupResponse{id: n.ID, nodes: nodes, err: err, contact: contact}
}

// unqueried returns up to count contacts from the shortlist's closest
// entries that have neither been queried nor marked dead this lookup.
func unqueried(shortlist *closest, queried, dead *set.Set, count int) []*Node {
	var out []*Node
	for _, n := range shortlist.Nodes {
		if len(out) >= count {
			break
		}
		if queried.Has(n.ID) || dead.Has(n.ID) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// liveTopK returns up to count contacts from the shortlist, skipping any
// marked dead during the lookup.
func liveTopK(shortlist *closest, dead *set.Set, count int) []*Node {
	var out []*Node
	for _, n := range shortlist.Nodes {
		if len(out) >= count {
			break
		}
		if dead.Has(n.ID) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// closestDistance returns the XOR distance of the shortlist's nearest
// contact to target, or the maximum possible distance if the shortlist is
// empty.
func closestDistance(shortlist *closest, target NodeID) *big.Int {
	if len(shortlist.Nodes) == 0 {
		return fullRange().Max
	}
	return idToBig(target.Xor(shortlist.Nodes[0].ID))
}
