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

import "github.com/kadnet/dht/metrics"

// ping sends a PING to n and waits for its PONG. On success it returns the
// contact built from the remote's sender envelope and the dialed address;
// inserting it into the routing table is left to the caller. When n.ID is
// nonzero, ping compares the reply id against it and returns
// ErrIdentityMismatch if they differ.
func (t *Transport) ping(n *Node) (*Node, error) {
	metrics.RPCSent("PING")
	req := &pingPayload{Sender: toWireEnvelope(t.self.SelfEnvelope())}
	if err := t.send(n.addr(), pingPacket, req); err != nil {
		metrics.RPCFailed("PING")
		return nil, err
	}
	resp, err := t.await(n.addr(), pongPacket)
	if err != nil {
		metrics.RPCFailed("PING")
		return nil, err
	}
	pong := resp.(*pongPayload)
	contact := contactFromEnvelope(pong.Sender.envelope(), n.addr())
	// A zero n.ID means the caller dialed an address without knowing who
	// would answer (a bootstrap seed or AddContact target); any reply is
	// accepted. Otherwise this is an identity-check probe against an
	// already-known contact (the stale-eviction protocol, §4.G) and the
	// reply must match.
	if !n.ID.IsZero() && contact.ID != n.ID {
		return nil, ErrIdentityMismatch
	}
	metrics.RPCSucceeded("PING")
	return contact, nil
}

// findNode asks n for the contacts closest to target. The caller is
// responsible for inserting both the responder and the returned contacts
// into the routing table.
func (t *Transport) findNode(n *Node, target NodeID) ([]*Node, *Node, error) {
	metrics.RPCSent("FIND_NODE")
	req := &findNodePayload{Target: target, Sender: toWireEnvelope(t.self.SelfEnvelope())}
	if err := t.send(n.addr(), findNodePacket, req); err != nil {
		metrics.RPCFailed("FIND_NODE")
		return nil, nil, err
	}
	resp, err := t.await(n.addr(), nodesPacket)
	if err != nil {
		metrics.RPCFailed("FIND_NODE")
		return nil, nil, err
	}
	reply := resp.(*nodesPayload)
	nodes := make([]*Node, 0, len(reply.Nodes))
	for _, wn := range reply.Nodes {
		nodes = append(nodes, wn.node())
	}
	contact := contactFromEnvelope(reply.Sender.envelope(), n.addr())
	metrics.RPCSucceeded("FIND_NODE")
	return nodes, contact, nil
}

// store asks n to persist (key, value). The spec defines no ack aggregation;
// the reply only confirms the remote processed the request (§4.H STORE
// pipeline).
func (t *Transport) store(n *Node, key NodeID, value []byte) (*Node, error) {
	metrics.RPCSent("STORE")
	req := &storePayload{Key: key, Value: value, Sender: toWireEnvelope(t.self.SelfEnvelope())}
	if err := t.send(n.addr(), storePacket, req); err != nil {
		metrics.RPCFailed("STORE")
		return nil, err
	}
	resp, err := t.await(n.addr(), storeReplyPacket)
	if err != nil {
		metrics.RPCFailed("STORE")
		return nil, err
	}
	reply := resp.(*storeReplyPayload)
	metrics.RPCSucceeded("STORE")
	return contactFromEnvelope(reply.Sender.envelope(), n.addr()), nil
}

// findValue asks n for key, receiving either the value itself or n's
// K-closest contacts to key (§4.F, §6). Exactly one of the two return slices
// is populated.
func (t *Transport) findValue(n *Node, key NodeID) (value []byte, nodes []*Node, contact *Node, err error) {
	metrics.RPCSent("FIND_VALUE")
	req := &findValuePayload{Key: key, Sender: toWireEnvelope(t.self.SelfEnvelope())}
	if err := t.send(n.addr(), findValuePacket, req); err != nil {
		metrics.RPCFailed("FIND_VALUE")
		return nil, nil, nil, err
	}
	resp, err := t.await(n.addr(), valuePacket)
	if err != nil {
		metrics.RPCFailed("FIND_VALUE")
		return nil, nil, nil, err
	}
	reply := resp.(*valuePayload)
	contact = contactFromEnvelope(reply.Sender.envelope(), n.addr())
	metrics.RPCSucceeded("FIND_VALUE")
	if reply.Found {
		return reply.Value, nil, contact, nil
	}
	out := make([]*Node, 0, len(reply.Nodes))
	for _, wn := range reply.Nodes {
		out = append(out, wn.node())
	}
	return nil, out, contact, nil
}
