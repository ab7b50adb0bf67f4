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

package node

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/kadnet/dht/common"
	"github.com/kadnet/dht/crypto"
	"github.com/kadnet/dht/logger"
	"github.com/kadnet/dht/logger/glog"
	"github.com/kadnet/dht/p2p/discover"
	"github.com/spf13/afero"
)

var (
	datadirNodeID      = "nodeid"            // Path within the datadir to the node's identifier
	datadirStaticNodes = "static-nodes.json" // Path within the datadir to the bootstrap node list
	datadirValueStore  = "values.db"         // Path within the datadir to the boltdb value store
)

// fs wraps afero.Fs, used as a type of its own so that we can take its
// address and set a zero-value default.
type fs struct {
	afero.Fs
}

// Config collects the handful of values needed to stand up a DHT node: where
// it persists state, which address it listens on, and who its bootstrap
// contacts are. Everything else registered services might need is out of
// scope for this module.
type Config struct {
	// DataDir is the filesystem folder the node uses for its identifier and
	// its value store. Empty means fully ephemeral: a fresh random id and an
	// in-memory value store.
	DataDir string

	// fs is an abstracted file system, swappable for an in-memory one in
	// tests so they don't depend on laggy real disk I/O.
	fs *fs

	// ID is the node's identifier. If unset, it is loaded from the data
	// directory, generating and persisting a fresh one if none exists.
	ID discover.NodeID

	// ListenAddr is the UDP address the node listens for RPCs on.
	ListenAddr string

	// BootstrapNodes seed the routing table at startup (§4.I).
	BootstrapNodes []*discover.Node
}

// NodeID retrieves the currently configured identifier, checking first any
// manually set ID, falling back to the one found in the data directory. If
// no ID can be found, a new one is generated and persisted.
func (c *Config) NodeID() discover.NodeID {
	if !c.ID.IsZero() {
		return c.ID
	}
	if c.fs == nil {
		c.fs = &fs{afero.NewOsFs()}
	}
	if c.DataDir == "" {
		return crypto.MustNewRandomHash()
	}

	idfile := filepath.Join(c.DataDir, datadirNodeID)
	if blob, err := afero.ReadFile(c.fs, idfile); err == nil && len(blob) == common.HashLength {
		return common.BytesToHash(blob)
	}

	id := crypto.MustNewRandomHash()
	if err := afero.WriteFile(c.fs, idfile, id.Bytes(), 0600); err != nil {
		glog.V(logger.Error).Infof("failed to persist node id: %v", err)
	}
	return id
}

// StaticNodes returns the bootstrap contacts configured as static nodes in
// the data directory. Contacts set directly on BootstrapNodes are not
// included.
func (c *Config) StaticNodes() []*discover.Node {
	if c.DataDir == "" {
		return nil
	}
	if c.fs == nil {
		c.fs = &fs{afero.NewOsFs()}
	}
	path := filepath.Join(c.DataDir, datadirStaticNodes)
	if _, err := c.fs.Stat(path); err != nil {
		return nil
	}
	blob, err := afero.ReadFile(c.fs, path)
	if err != nil {
		glog.V(logger.Error).Infof("failed to access static nodes: %v", err)
		return nil
	}
	var urls []string
	if err := json.Unmarshal(blob, &urls); err != nil {
		glog.V(logger.Error).Infof("failed to load static nodes: %v", err)
		return nil
	}
	var nodes []*discover.Node
	for _, u := range urls {
		if u == "" {
			continue
		}
		n, err := discover.ParseNode(u)
		if err != nil {
			glog.V(logger.Error).Infof("static node %q: %v", u, err)
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// valueStorePath resolves the boltdb file backing the node's value store, or
// the empty string when the node is ephemeral.
func (c *Config) valueStorePath() string {
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, datadirValueStore)
}

func ensureDataDir(c *Config) error {
	if c.DataDir == "" {
		return nil
	}
	if c.fs == nil {
		c.fs = &fs{afero.NewOsFs()}
	}
	return c.fs.MkdirAll(c.DataDir, os.ModePerm)
}
