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
	"sync"
	"time"

	"github.com/kadnet/dht/logger"
	"github.com/kadnet/dht/logger/glog"
)

// respTimeout is the per-call deadline imposed on every outbound RPC (§4.F,
// §5); the source this package is modeled on has none, which the
// specification calls out as a required hardening.
const respTimeout = 5 * time.Second

// ErrTimeout is returned by the client stub when a reply does not arrive
// within respTimeout. The spec treats it identically to a transport error:
// both are peer-failure signals that feed the stale-eviction protocol and
// never abort a lookup (§7).
var ErrTimeout = errors.New("discover: RPC timed out")

// ErrIdentityMismatch is returned when a PING reply carries an id different
// from the contact that was probed (§7); the caller must discard the reply
// without mutating the table.
var ErrIdentityMismatch = errors.New("discover: reply id does not match probed contact")

// Conn is the minimal socket surface the transport needs, kept narrow so
// tests can substitute an in-memory pair instead of a real UDP socket.
type Conn interface {
	ReadFromUDP(b []byte) (n int, addr *net.UDPAddr, err error)
	WriteToUDP(b []byte, addr *net.UDPAddr) (int, error)
	Close() error
	LocalAddr() net.Addr
}

// pendingCall is a single outstanding expectation: "the next packet of type
// ptype from addr resolves this call."
type pendingCall struct {
	addr   string
	ptype  packetType
	deliver chan interface{}
}

// Transport owns the UDP socket and multiplexes datagrams between the RPC
// client stub (outbound calls awaiting a reply) and the server dispatcher
// (inbound requests). It is the concrete realization of components F and G.
type Transport struct {
	conn  Conn
	self  *Node
	table *Table
	store ValueStore

	mu      sync.Mutex
	pending map[string][]*pendingCall // keyed by remote addr string

	closing chan struct{}
	closeOnce sync.Once
}

// ListenUDP opens a UDP socket at addr and starts the transport's read loop.
// self describes the local node as it will be advertised to peers.
func ListenUDP(self *Node, addr string, table *Table, store ValueStore) (*Transport, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	t := newTransport(conn, self, table, store)
	go t.readLoop()
	return t, nil
}

func newTransport(conn Conn, self *Node, table *Table, store ValueStore) *Transport {
	mlogOnce.Do(initMLogging)
	return &Transport{
		conn:    conn,
		self:    self,
		table:   table,
		store:   store,
		pending: make(map[string][]*pendingCall),
		closing: make(chan struct{}),
	}
}

// Close shuts down the socket and wakes every goroutine blocked in readLoop.
func (t *Transport) Close() {
	t.closeOnce.Do(func() {
		close(t.closing)
		t.conn.Close()
	})
}

// LocalAddr reports the socket's bound address.
func (t *Transport) LocalAddr() net.Addr { return t.conn.LocalAddr() }

func (t *Transport) readLoop() {
	buf := make([]byte, 2048)
	for {
		n, from, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-t.closing:
				return
			default:
				glog.V(logger.Debug).Infof("discover: read error: %v", err)
				continue
			}
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		go t.handlePacket(data, from)
	}
}

func (t *Transport) handlePacket(data []byte, from *net.UDPAddr) {
	if len(data) < 1 {
		return
	}
	typ := packetType(data[0])
	switch typ {
	case pongPacket, nodesPacket, storeReplyPacket, valuePacket:
		t.deliverReply(typ, data, from)
	case pingPacket, findNodePacket, storePacket, findValuePacket:
		t.serve(typ, data, from)
	default:
		glog.V(logger.Debug).Infof("discover: dropping unknown packet type %d from %v", typ, from)
	}
}

// deliverReply decodes a reply packet and hands it to whichever pendingCall
// registered for (from, typ), if any. Unmatched replies (arrived too late,
// or unsolicited) are dropped.
func (t *Transport) deliverReply(typ packetType, data []byte, from *net.UDPAddr) {
	var payload interface{}
	var err error
	switch typ {
	case pongPacket:
		p := new(pongPayload)
		_, err = decodePacket(data, p)
		payload = p
	case nodesPacket:
		p := new(nodesPayload)
		_, err = decodePacket(data, p)
		payload = p
	case storeReplyPacket:
		p := new(storeReplyPayload)
		_, err = decodePacket(data, p)
		payload = p
	case valuePacket:
		p := new(valuePayload)
		_, err = decodePacket(data, p)
		payload = p
	}
	if err != nil {
		glog.V(logger.Debug).Infof("discover: malformed %v from %v: %v", typ, from, err)
		return
	}

	key := from.String()
	t.mu.Lock()
	calls := t.pending[key]
	var matched *pendingCall
	var rest []*pendingCall
	for _, c := range calls {
		if matched == nil && c.ptype == typ {
			matched = c
			continue
		}
		rest = append(rest, c)
	}
	if len(rest) == 0 {
		delete(t.pending, key)
	} else {
		t.pending[key] = rest
	}
	t.mu.Unlock()

	if matched != nil {
		matched.deliver <- payload
	}
}

// await registers a pending call for the next packet of ptype from addr and
// blocks until it arrives or respTimeout elapses.
func (t *Transport) await(addr *net.UDPAddr, ptype packetType) (interface{}, error) {
	call := &pendingCall{addr: addr.String(), ptype: ptype, deliver: make(chan interface{}, 1)}
	key := addr.String()
	t.mu.Lock()
	t.pending[key] = append(t.pending[key], call)
	t.mu.Unlock()

	timer := time.NewTimer(respTimeout)
	defer timer.Stop()
	select {
	case resp := <-call.deliver:
		return resp, nil
	case <-timer.C:
		t.removePending(key, call)
		return nil, ErrTimeout
	case <-t.closing:
		t.removePending(key, call)
		return nil, fmt.Errorf("discover: transport closed")
	}
}

func (t *Transport) removePending(key string, call *pendingCall) {
	t.mu.Lock()
	defer t.mu.Unlock()
	calls := t.pending[key]
	for i, c := range calls {
		if c == call {
			t.pending[key] = append(calls[:i], calls[i+1:]...)
			break
		}
	}
	if len(t.pending[key]) == 0 {
		delete(t.pending, key)
	}
}

func (t *Transport) send(addr *net.UDPAddr, typ packetType, payload interface{}) error {
	data, err := encodePacket(typ, payload)
	if err != nil {
		return err
	}
	_, err = t.conn.WriteToUDP(data, addr)
	return err
}
