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
	"errors"
	"fmt"
	"net"
	"time"
)

// Node is a remote peer descriptor: an identifier, a reachable UDP endpoint,
// and the wall-clock time it was last observed to be alive. Equality between
// two nodes is by ID alone; two Node values with the same ID but different
// addresses still refer to "the same" contact as far as the routing table is
// concerned; the address is simply refreshed.
type Node struct {
	ID       NodeID
	IP       net.IP
	UDPPort  uint16
	TCPPort  uint16
	lastSeen time.Time
	addedAt  time.Time
}

// NewNode creates a Node, stamping its lastSeen to now.
func NewNode(id NodeID, ip net.IP, udpPort, tcpPort uint16) *Node {
	return &Node{
		ID:       id,
		IP:       ip,
		UDPPort:  udpPort,
		TCPPort:  tcpPort,
		lastSeen: time.Now(),
	}
}

// addr returns the UDP endpoint used to reach n.
func (n *Node) addr() *net.UDPAddr {
	return &net.UDPAddr{IP: n.IP, Port: int(n.UDPPort)}
}

// touch stamps the node as observed just now.
func (n *Node) touch() {
	n.lastSeen = time.Now()
}

// validateComplete reports whether n carries everything required to be
// dialed: a nonzero ID and a usable IP/port.
func (n *Node) validateComplete() error {
	if n.IP == nil {
		return errors.New("missing IP address")
	}
	if n.IP.IsMulticast() || n.IP.IsUnspecified() {
		return errors.New("invalid IP address")
	}
	if n.UDPPort == 0 {
		return errors.New("missing UDP port")
	}
	if n.ID.IsZero() {
		return errors.New("missing identifier")
	}
	return nil
}

func (n *Node) String() string {
	return fmt.Sprintf("Node{%x @ %v:%d}", n.ID[:4], n.IP, n.UDPPort)
}

// Envelope is the small self-describing record every RPC carries so the
// receiving peer can register the sender in its own routing table. The
// optional IP field exists for wire compatibility but MUST be ignored by the
// receiver in favor of the observed UDP source address (§4.G); trusting a
// self-reported address would let a peer register spoofed contacts.
type Envelope struct {
	ID      NodeID
	UDPPort uint16
	IP      net.IP // advisory only, never trusted
}

// SelfEnvelope returns the envelope a node attaches to its own requests and
// replies.
func (n *Node) SelfEnvelope() Envelope {
	return Envelope{ID: n.ID, UDPPort: n.UDPPort, IP: n.IP}
}

// contactFromEnvelope builds a Node from an RPC sender envelope, overriding
// any IP the envelope claims with the address the packet actually arrived
// from. This is the anti-spoofing rule from §4.G and §9.
func contactFromEnvelope(e Envelope, observed *net.UDPAddr) *Node {
	return NewNode(e.ID, observed.IP, uint16(observed.Port), e.UDPPort)
}
