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

package node

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestDatadirCreation(t *testing.T) {
	// boltdb needs a real filesystem underneath it, so this test (unlike
	// the others below) exercises the default OS-backed fs rather than an
	// in-memory one.
	dir := filepath.Join(t.TempDir(), "node-a")
	conf := &Config{DataDir: dir, ListenAddr: "127.0.0.1:0"}

	n, err := New(conf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer n.Stop()

	if _, err := afero.NewOsFs().Stat(dir); err != nil {
		t.Fatalf("data directory was not created: %v", err)
	}
	if n.DataDir() != dir {
		t.Fatalf("DataDir() = %q, want %q", n.DataDir(), dir)
	}
}

func TestEphemeralNodeHasNoDataDir(t *testing.T) {
	n, err := New(&Config{ListenAddr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer n.Stop()
	if n.DataDir() != "" {
		t.Fatalf("expected ephemeral node to report no data directory, got %q", n.DataDir())
	}
	if n.Self().IsZero() {
		t.Fatal("expected ephemeral node to still mint a random identifier")
	}
}

func TestNodeIDPersistency(t *testing.T) {
	dir := "test-datadir"
	conf := &Config{DataDir: dir, fs: &fs{afero.NewMemMapFs()}}

	first := conf.NodeID()
	if first.IsZero() {
		t.Fatal("NodeID returned the zero identifier")
	}

	// A fresh Config pointed at the same (in-memory) filesystem and
	// directory must recover the same identifier rather than minting a
	// new one.
	reopened := &Config{DataDir: dir, fs: conf.fs}
	second := reopened.NodeID()
	if first != second {
		t.Fatalf("identifier not persisted: got %x, want %x", second, first)
	}
}

func TestStaticNodesParsing(t *testing.T) {
	dir := "test-datadir"
	conf := &Config{DataDir: dir, fs: &fs{afero.NewMemMapFs()}}
	if err := conf.fs.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	urls := []string{
		"0102030405060708090a0b0c0d0e0f1011121314@127.0.0.1:30303",
		"",
	}
	blob, err := json.Marshal(urls)
	if err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(conf.fs, filepath.Join(dir, datadirStaticNodes), blob, 0644); err != nil {
		t.Fatal(err)
	}

	nodes := conf.StaticNodes()
	if len(nodes) != 1 {
		t.Fatalf("expected 1 static node, got %d", len(nodes))
	}
	if nodes[0].UDPPort != 30303 {
		t.Fatalf("unexpected port: %d", nodes[0].UDPPort)
	}
}
