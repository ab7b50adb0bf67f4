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
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/kadnet/dht/common"
)

// ParseNode parses a contact in "id@host:port" form, where id is the
// hex-encoded 160-bit identifier without the usual "0x" prefix. Unlike
// go-ethereum's enode URLs, there is no public key to recover the ID from,
// so static node lists must spell it out explicitly.
func ParseNode(s string) (*Node, error) {
	at := strings.Index(s, "@")
	if at < 0 {
		return nil, fmt.Errorf("discover: missing id@ prefix in %q", s)
	}
	idHex, hostport := s[:at], s[at+1:]
	idBytes, err := hex.DecodeString(idHex)
	if err != nil || len(idBytes) != common.HashLength {
		return nil, fmt.Errorf("discover: invalid identifier in %q", s)
	}
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return nil, fmt.Errorf("discover: invalid host:port in %q: %v", s, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("discover: invalid port in %q: %v", s, err)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		addrs, err := net.LookupIP(host)
		if err != nil || len(addrs) == 0 {
			return nil, fmt.Errorf("discover: cannot resolve host %q: %v", host, err)
		}
		ip = addrs[0]
	}
	id := common.BytesToHash(idBytes)
	return NewNode(id, ip, uint16(port), uint16(port)), nil
}

// URLString renders n back into the "id@host:port" form ParseNode accepts.
func (n *Node) URLString() string {
	return fmt.Sprintf("%x@%s:%d", n.ID[:], n.IP, n.UDPPort)
}
