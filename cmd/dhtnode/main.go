// Copyright 2015 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

// dhtnode runs a standalone participant in the overlay network: it listens
// for PING/FIND_NODE/STORE/FIND_VALUE, answers them out of its routing table
// and value store, and optionally bootstraps into an existing network.
package main

import (
	"fmt"
	"os"

	"github.com/kadnet/dht/common"
	"github.com/kadnet/dht/logger"
	"github.com/kadnet/dht/logger/glog"
	"github.com/kadnet/dht/node"
	"github.com/kadnet/dht/p2p/discover"
	"gopkg.in/urfave/cli.v1"
)

// Version is the application revision identifier. It can be set with the
// linker as in: go build -ldflags "-X main.Version="`git describe --tags`
var Version = "unknown"

var (
	listenAddrFlag = cli.StringFlag{
		Name:  "addr",
		Value: ":30301",
		Usage: "listen address",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "data directory for the node identifier and value store (empty: ephemeral, in-memory node)",
	}
	bootnodesFlag = cli.StringFlag{
		Name:  "bootnodes",
		Usage: "comma-separated id@host:port contacts to bootstrap from",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: int(logger.Warn),
		Usage: "log verbosity (0-6)",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "dhtnode"
	app.Usage = "run a standalone Kademlia overlay participant"
	app.Version = Version
	app.Flags = []cli.Flag{listenAddrFlag, dataDirFlag, bootnodesFlag, verbosityFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	glog.SetToStderr(true)
	glog.SetV(ctx.Int(verbosityFlag.Name))
	common.SetClientVersion(Version)

	conf := &node.Config{
		DataDir:    ctx.String(dataDirFlag.Name),
		ListenAddr: ctx.String(listenAddrFlag.Name),
	}
	if raw := ctx.String(bootnodesFlag.Name); raw != "" {
		for _, s := range splitComma(raw) {
			n, err := discover.ParseNode(s)
			if err != nil {
				return fmt.Errorf("invalid bootnode %q: %v", s, err)
			}
			conf.BootstrapNodes = append(conf.BootstrapNodes, n)
		}
	}

	n, err := node.New(conf)
	if err != nil {
		return err
	}
	glog.V(logger.Info).Infof("dhtnode: listening on %v, id %s", n.LocalNode().LocalAddr(), n.Self().Hex())
	n.Start()

	select {}
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
