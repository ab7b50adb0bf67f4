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
	"time"

	"github.com/kadnet/dht/logger"
	"github.com/kadnet/dht/logger/glog"
	"github.com/kadnet/dht/metrics"
)

// maxPingInterval is the liveness threshold past which a full bucket's head
// is probed before a fresh contact is allowed to displace it (§4.G).
const maxPingInterval = 15 * time.Minute

// serve decodes an inbound request packet, side-effects the routing table
// with its sender, invokes the matching handler, and replies. Every handler
// begins by registering the sender via the observed source address,
// regardless of what the envelope itself claims (§4.G, §9).
func (t *Transport) serve(typ packetType, data []byte, from *net.UDPAddr) {
	switch typ {
	case pingPacket:
		req := new(pingPayload)
		if _, err := decodePacket(data, req); err != nil {
			glog.V(logger.Debug).Infof("discover: malformed PING from %v: %v", from, err)
			return
		}
		t.onPing(req, from)

	case findNodePacket:
		req := new(findNodePayload)
		if _, err := decodePacket(data, req); err != nil {
			glog.V(logger.Debug).Infof("discover: malformed FIND_NODE from %v: %v", from, err)
			return
		}
		t.onFindNode(req, from)

	case storePacket:
		req := new(storePayload)
		if _, err := decodePacket(data, req); err != nil {
			glog.V(logger.Debug).Infof("discover: malformed STORE from %v: %v", from, err)
			return
		}
		t.onStore(req, from)

	case findValuePacket:
		req := new(findValuePayload)
		if _, err := decodePacket(data, req); err != nil {
			glog.V(logger.Debug).Infof("discover: malformed FIND_VALUE from %v: %v", from, err)
			return
		}
		t.onFindValue(req, from)
	}
}

// registerSender builds a contact from the sender envelope and the packet's
// observed source address, then inserts it into the routing table, running
// the stale-eviction protocol if the owning bucket is full.
func (t *Transport) registerSender(env wireEnvelope, from *net.UDPAddr) {
	contact := contactFromEnvelope(env.envelope(), from)
	inserted, probe := t.table.Insert(contact)
	if inserted || probe == nil {
		return
	}
	if time.Since(probe.lastSeen) < maxPingInterval {
		return
	}
	go t.staleEvictionProbe(probe, contact)
}

// staleEvictionProbe pings the head of a full bucket; a reply keeps it in
// place (§4.G), a timeout or identity mismatch lets replacement take over.
// It runs on its own goroutine so inbound dispatch is never blocked on it.
func (t *Transport) staleEvictionProbe(old, replacement *Node) {
	_, err := t.ping(old)
	if err != nil {
		glog.V(logger.Detail).Infof("stale-eviction: %v unresponsive, replacing with %v", old, replacement)
		t.table.ReplaceStaleHead(old, replacement)
		return
	}
	t.table.RevalidateHead(old)
}

func (t *Transport) onPing(req *pingPayload, from *net.UDPAddr) {
	mlog.Sendf(1, mlogPingHandleFrom.SetDetailValues(from.String(), req.Sender.ID.Hex(), false).String())
	t.registerSender(req.Sender, from)
	reply := &pongPayload{Sender: toWireEnvelope(t.self.SelfEnvelope())}
	if err := t.send(from, pongPacket, reply); err != nil {
		glog.V(logger.Debug).Infof("discover: PONG to %v: %v", from, err)
		return
	}
	mlog.Sendf(1, mlogPongSendTo.SetDetailValues(from.String(), t.self.ID.Hex()).String())
}

func (t *Transport) onFindNode(req *findNodePayload, from *net.UDPAddr) {
	mlog.Sendf(1, mlogFindNodeHandleFrom.SetDetailValues(from.String(), req.Sender.ID.Hex(), false).String())
	t.registerSender(req.Sender, from)
	closest := t.table.FindClosest(req.Target, bucketSize)
	t.sendNodes(from, closest)
}

// sendNodes chunks up to bucketSize contacts across one or more NODES
// packets so a reply never exceeds a conservative datagram size.
func (t *Transport) sendNodes(from *net.UDPAddr, nodes []*Node) {
	chunks := (len(nodes) + maxNeighbors - 1) / maxNeighbors
	if chunks == 0 {
		chunks = 1
	}
	for i := 0; i < chunks; i++ {
		start := i * maxNeighbors
		end := start + maxNeighbors
		if end > len(nodes) {
			end = len(nodes)
		}
		wire := make([]wireNode, 0, end-start)
		for _, n := range nodes[start:end] {
			wire = append(wire, toWireNode(n))
		}
		reply := &nodesPayload{
			Chunk:  uint16(i + 1),
			Chunks: uint16(chunks),
			Nodes:  wire,
			Sender: toWireEnvelope(t.self.SelfEnvelope()),
		}
		if err := t.send(from, nodesPacket, reply); err != nil {
			glog.V(logger.Debug).Infof("discover: NODES to %v: %v", from, err)
			return
		}
		mlog.Sendf(1, mlogFindNodeSendNodes.SetDetailValues(from.String(), t.self.ID.Hex(), i+1, chunks, len(wire)).String())
	}
}

func (t *Transport) onStore(req *storePayload, from *net.UDPAddr) {
	mlog.Sendf(1, mlogStoreHandleFrom.SetDetailValues(from.String(), req.Sender.ID.Hex(), req.Key.Hex(), len(req.Value)).String())
	t.registerSender(req.Sender, from)
	if t.store != nil {
		if !t.store.Has(req.Key) {
			t.store.Put(req.Key, req.Value)
			metrics.StoreAccepted()
		} else {
			metrics.StoreDuplicate()
		}
	}
	reply := &storeReplyPayload{Sender: toWireEnvelope(t.self.SelfEnvelope())}
	if err := t.send(from, storeReplyPacket, reply); err != nil {
		glog.V(logger.Debug).Infof("discover: STORE_REPLY to %v: %v", from, err)
	}
}

func (t *Transport) onFindValue(req *findValuePayload, from *net.UDPAddr) {
	t.registerSender(req.Sender, from)
	value, ok := t.store.Get(req.Key)
	mlog.Sendf(1, mlogFindValueHandleFrom.SetDetailValues(from.String(), req.Sender.ID.Hex(), req.Key.Hex(), ok).String())
	reply := &valuePayload{Sender: toWireEnvelope(t.self.SelfEnvelope())}
	if ok {
		reply.Found = true
		reply.Value = value
	} else {
		closest := t.table.FindClosest(req.Key, bucketSize)
		wire := make([]wireNode, 0, len(closest))
		for _, n := range closest {
			wire = append(wire, toWireNode(n))
		}
		reply.Nodes = wire
	}
	if err := t.send(from, valuePacket, reply); err != nil {
		glog.V(logger.Debug).Infof("discover: VALUE to %v: %v", from, err)
	}
}
