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

	"github.com/kadnet/dht/rlp"
)

// packetType tags the RLP-encoded payload that follows it in a datagram.
type packetType byte

const (
	pingPacket packetType = iota + 1
	pongPacket
	findNodePacket
	nodesPacket
	storePacket
	storeReplyPacket
	findValuePacket
	valuePacket
)

// maxNeighbors bounds how many wire contacts fit in a single UDP datagram
// before the dispatcher must chunk a NODES reply across several packets.
const maxNeighbors = 12

// wireEnvelope is the on-wire form of Envelope (§6): a sender's claimed
// identity and UDP port. Its IP field is advisory only; contactFromEnvelope
// overrides it with the packet's observed source address.
type wireEnvelope struct {
	ID      NodeID
	UDPPort uint16
	IP      []byte
}

func toWireEnvelope(e Envelope) wireEnvelope {
	return wireEnvelope{ID: e.ID, UDPPort: e.UDPPort, IP: []byte(e.IP)}
}

func (w wireEnvelope) envelope() Envelope {
	return Envelope{ID: w.ID, UDPPort: w.UDPPort, IP: net.IP(w.IP)}
}

// wireNode is a contact as it appears inside a NODES reply: an envelope plus
// the host the responder observed it at.
type wireNode struct {
	ID      NodeID
	IP      []byte
	UDPPort uint16
	TCPPort uint16
}

func toWireNode(n *Node) wireNode {
	return wireNode{ID: n.ID, IP: []byte(n.IP), UDPPort: n.UDPPort, TCPPort: n.TCPPort}
}

func (w wireNode) node() *Node {
	return NewNode(w.ID, net.IP(w.IP), w.UDPPort, w.TCPPort)
}

type pingPayload struct {
	Sender wireEnvelope
}

type pongPayload struct {
	Sender wireEnvelope
}

type findNodePayload struct {
	Target NodeID
	Sender wireEnvelope
}

type nodesPayload struct {
	Chunk  uint16
	Chunks uint16
	Nodes  []wireNode
	Sender wireEnvelope
}

type storePayload struct {
	Key    NodeID
	Value  []byte
	Sender wireEnvelope
}

type storeReplyPayload struct {
	Sender wireEnvelope
}

type findValuePayload struct {
	Key    NodeID
	Sender wireEnvelope
}

// valuePayload answers a FIND_VALUE. Exactly one of Value or Nodes is
// meaningful; Found discriminates the union described in §6.
type valuePayload struct {
	Found  bool
	Value  []byte
	Nodes  []wireNode
	Sender wireEnvelope
}

// encodePacket prefixes the RLP encoding of payload with its packetType tag.
func encodePacket(typ packetType, payload interface{}) ([]byte, error) {
	body, err := rlp.EncodeToBytes(payload)
	if err != nil {
		return nil, fmt.Errorf("discover: encode %v: %w", typ, err)
	}
	buf := make([]byte, len(body)+1)
	buf[0] = byte(typ)
	copy(buf[1:], body)
	return buf, nil
}

// decodePacket splits a received datagram into its type tag and decodes the
// remainder into out, which must be a pointer to the matching payload type.
func decodePacket(data []byte, out interface{}) (packetType, error) {
	if len(data) < 1 {
		return 0, fmt.Errorf("discover: empty packet")
	}
	typ := packetType(data[0])
	if err := rlp.DecodeBytes(data[1:], out); err != nil {
		return typ, fmt.Errorf("discover: decode %v: %w", typ, err)
	}
	return typ, nil
}

func (t packetType) String() string {
	switch t {
	case pingPacket:
		return "PING"
	case pongPacket:
		return "PONG"
	case findNodePacket:
		return "FIND_NODE"
	case nodesPacket:
		return "NODES"
	case storePacket:
		return "STORE"
	case storeReplyPacket:
		return "STORE_REPLY"
	case findValuePacket:
		return "FIND_VALUE"
	case valuePacket:
		return "VALUE"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}
