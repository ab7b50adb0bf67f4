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

	"github.com/kadnet/dht/logger"
	"github.com/kadnet/dht/logger/glog"
)

// refreshInterval is the bucket idle age past which maintenance issues a
// FIND_NODE for a random id in that bucket's range (§4.I).
const refreshInterval = time.Hour

// refreshTick is how often maintenance sweeps the table for idle buckets.
const refreshTick = time.Minute

// bootstrap pings every seed contact and, once at least one has replied,
// issues a FIND_NODE for self.id XOR 1 — the neighbor at minimal nonzero
// distance — which forces the network to reveal every bucket up to full
// depth (§4.I).
func (t *Transport) bootstrap(seeds []*Node) {
	live := 0
	for _, seed := range seeds {
		contact, err := t.ping(seed)
		if err != nil {
			glog.V(logger.Debug).Infof("bootstrap: seed %v unreachable: %v", seed, err)
			continue
		}
		t.table.Insert(contact)
		live++
	}
	if live == 0 {
		glog.V(logger.Warn).Infof("bootstrap: no seed contacts responded")
		return
	}
	warmupTarget := t.self.ID
	warmupTarget[len(warmupTarget)-1] ^= 1
	_, _, nodes := t.lookup(warmupTarget, false)
	glog.V(logger.Debug).Infof("bootstrap: self-neighborhood warm-up surfaced %d contacts", len(nodes))
}

// runMaintenance periodically refreshes any bucket that has gone idle
// longer than refreshInterval, keeping cold regions of the table populated
// (§4.I). It runs until stop is closed.
func (t *Transport) runMaintenance(stop <-chan struct{}) {
	ticker := time.NewTicker(refreshTick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.refreshIdleBuckets()
		case <-stop:
			return
		}
	}
}

func (t *Transport) refreshIdleBuckets() {
	for _, b := range t.table.AllBuckets() {
		if b.IdleSince() < refreshInterval {
			continue
		}
		target := b.Range().RandomID()
		go func(target NodeID) {
			_, _, nodes := t.lookup(target, false)
			glog.V(logger.Detail).Infof("refresh %x: surfaced %d contacts", target[:4], len(nodes))
		}(target)
	}
}
