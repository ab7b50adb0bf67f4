// Copyright 2014 The go-ethereum Authors
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

// Package node assembles a runnable DHT participant out of a Config: it
// resolves the node's identifier, opens its value store, and brings up the
// discover.LocalNode that answers PING/FIND_NODE/STORE/FIND_VALUE.
package node

import (
	"fmt"

	"github.com/kadnet/dht/logger"
	"github.com/kadnet/dht/logger/glog"
	"github.com/kadnet/dht/p2p/discover"
)

// Node is a fully assembled DHT participant bound to a Config.
type Node struct {
	config *Config
	local  *discover.LocalNode
	store  discover.ValueStore
}

// New assembles a Node from conf: it ensures the data directory exists,
// resolves (and persists, if new) the node's identifier, opens the value
// store, and starts listening on conf.ListenAddr. The returned Node has not
// yet bootstrapped into any network; call Start for that.
func New(conf *Config) (*Node, error) {
	if conf == nil {
		conf = &Config{}
	}
	if err := ensureDataDir(conf); err != nil {
		return nil, fmt.Errorf("node: failed to create data directory: %v", err)
	}

	id := conf.NodeID()

	var store discover.ValueStore
	if path := conf.valueStorePath(); path != "" {
		s, err := discover.OpenValueStore(path)
		if err != nil {
			return nil, fmt.Errorf("node: failed to open value store: %v", err)
		}
		store = s
	} else {
		store = discover.NewMemoryValueStore()
	}

	local, err := discover.Listen(id, conf.ListenAddr, store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("node: failed to listen on %s: %v", conf.ListenAddr, err)
	}

	return &Node{config: conf, local: local, store: store}, nil
}

// Start bootstraps the node into the network using the configured static
// nodes and any BootstrapNodes set directly on the Config.
func (n *Node) Start() {
	seeds := append([]*discover.Node{}, n.config.BootstrapNodes...)
	seeds = append(seeds, n.config.StaticNodes()...)
	if len(seeds) == 0 {
		glog.V(logger.Warn).Infof("node: starting with no bootstrap contacts")
		return
	}
	n.local.Bootstrap(seeds)
}

// Stop shuts down the node's transport, maintenance loop, and value store.
func (n *Node) Stop() {
	n.local.Close()
	n.store.Close()
}

// DataDir returns the directory the node persists its identifier and value
// store under, or the empty string for an ephemeral, in-memory node.
func (n *Node) DataDir() string {
	return n.config.DataDir
}

// Self returns the node's identifier.
func (n *Node) Self() discover.NodeID {
	return n.local.Self()
}

// LocalNode exposes the underlying discover.LocalNode for the §6 local API
// (AddContact, FindNode, ValueForKey, StoreValueForKey).
func (n *Node) LocalNode() *discover.LocalNode {
	return n.local
}
