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
	"fmt"
	"net"
)

// LocalNode is the assembled DHT participant: a routing table, a UDP
// transport carrying the four RPCs, a value store, and a maintenance loop,
// wired together behind the local API described in §6.
type LocalNode struct {
	transport *Transport
	table     *Table
	store     ValueStore
	stop      chan struct{}
}

// Listen brings up a DHT node at addr, identified by id, persisting values
// in store. Maintenance (bucket refresh) starts immediately; Bootstrap
// should be called once seed contacts are known.
func Listen(id NodeID, addr string, store ValueStore) (*LocalNode, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	self := NewNode(id, udpAddr.IP, uint16(udpAddr.Port), uint16(udpAddr.Port))
	table := NewTable(id)
	transport, err := ListenUDP(self, addr, table, store)
	if err != nil {
		return nil, err
	}
	n := &LocalNode{transport: transport, table: table, store: store, stop: make(chan struct{})}
	go transport.runMaintenance(n.stop)
	return n, nil
}

// Close shuts down the node's socket and maintenance loop. The value store
// is left open; callers that opened it themselves are responsible for it.
func (n *LocalNode) Close() {
	close(n.stop)
	n.transport.Close()
}

// Self returns the node's own identifier.
func (n *LocalNode) Self() NodeID { return n.table.Self() }

// LocalAddr reports the bound UDP address.
func (n *LocalNode) LocalAddr() net.Addr { return n.transport.LocalAddr() }

// AddContact pings (host, port) and, on reply, inserts it into the routing
// table (§6 local API).
func (n *LocalNode) AddContact(host string, port uint16) error {
	ip := net.ParseIP(host)
	if ip == nil {
		addrs, err := net.LookupIP(host)
		if err != nil || len(addrs) == 0 {
			return fmt.Errorf("discover: cannot resolve %q: %w", host, err)
		}
		ip = addrs[0]
	}
	seed := &Node{IP: ip, UDPPort: port}
	contact, err := n.transport.ping(seed)
	if err != nil {
		return err
	}
	n.table.Insert(contact)
	return nil
}

// Bootstrap pings every seed in seeds and, once the network has responded
// to at least one, runs the self-neighborhood warm-up lookup (§4.I).
func (n *LocalNode) Bootstrap(seeds []*Node) {
	n.transport.bootstrap(seeds)
}

// FindNode returns the K contacts closest to id, converging via the
// iterative lookup engine (§6, §4.H).
func (n *LocalNode) FindNode(id NodeID) []*Node {
	_, _, nodes := n.transport.lookup(id, false)
	return nodes
}

// ValueForKey retrieves the value stored under key, if any, via a
// FIND_VALUE lookup (§6 GET pipeline). The bool reports whether a value was
// found; a normal negative result is not an error (§7).
func (n *LocalNode) ValueForKey(key NodeID) ([]byte, bool) {
	value, found, _ := n.transport.lookup(key, true)
	return value, found
}

// StoreValueForKey runs a FIND_NODE lookup for key and issues STORE to
// every node in the resulting K-closest set other than self (§6, §4.H STORE
// pipeline). It returns as soon as the FIND_NODE completes; individual
// STORE RPCs happen in the background with no ack aggregation.
func (n *LocalNode) StoreValueForKey(key NodeID, value []byte) {
	_, _, nodes := n.transport.lookup(key, false)
	if n.store != nil {
		if !n.store.Has(key) {
			n.store.Put(key, value)
		}
	}
	for _, target := range nodes {
		if target.ID == n.Self() {
			continue
		}
		go n.transport.store(target, key, value)
	}
}
