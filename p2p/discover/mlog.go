// Copyright 2017 The go-ethereum Authors
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


// This file 'mlog' is home to the 'discover' package implementation of mlog.
// All available mlog lines should be established here as variables and documented.
// For each instance of an mlog call, the respective MLogT variable SetDetailValues()
// method should be called with per-use instance details.

package discover

import (
	"sync"

	"github.com/kadnet/dht/logger"
)

var mlog *logger.Logger
var mlogOnce sync.Once

// initMLogging registers a logger for the discover package.
// It should only be called once, via mlogOnce.Do(initMLogging).
func initMLogging() {
	mlog = logger.NewLogger("discover")
	mlog.Infoln("[mlog] ON")
}

// Collect and document available mlog lines.

// mlogPingHandleFrom is called once for each PING request received FROM a node.
var mlogPingHandleFrom = logger.MLogT{
	Receiver: "PING",
	Verb:     "HANDLE",
	Subject:  "FROM",
	Details: []logger.MLogDetailT{
		{"FROM", "UDP_ADDRESS", "STRING"},
		{"FROM", "ID", "STRING"},
		{"PING", "EXPIRED", "BOOL"},
	},
}

// mlogPongSendTo is called once for each PONG sent in reply to a PING.
var mlogPongSendTo = logger.MLogT{
	Receiver: "PONG",
	Verb:     "SEND",
	Subject:  "TO",
	Details: []logger.MLogDetailT{
		{"TO", "UDP_ADDRESS", "STRING"},
		{"TO", "ID", "STRING"},
	},
}

// mlogFindNodeHandleFrom is called once for each FIND_NODE request received FROM a node.
var mlogFindNodeHandleFrom = logger.MLogT{
	Receiver: "FIND_NODE",
	Verb:     "HANDLE",
	Subject:  "FROM",
	Details: []logger.MLogDetailT{
		{"FROM", "UDP_ADDRESS", "STRING"},
		{"FROM", "ID", "STRING"},
		{"FIND_NODE", "EXPIRED", "BOOL"},
	},
}

// mlogFindNodeSendNodes is called once for each NODES reply sent to a FIND_NODE request.
var mlogFindNodeSendNodes = logger.MLogT{
	Receiver: "FIND_NODE",
	Verb:     "SEND",
	Subject:  "NODES",
	Details: []logger.MLogDetailT{
		{"FIND_NODE", "UDP_ADDRESS", "STRING"},
		{"FIND_NODE", "ID", "STRING"},
		{"NODES", "CHUNK", "INT"},
		{"NODES", "CHUNKS", "INT"},
		{"NODES", "NODES_LEN", "INT"},
	},
}

// mlogStoreHandleFrom is called once for each STORE request received FROM a node.
var mlogStoreHandleFrom = logger.MLogT{
	Receiver: "STORE",
	Verb:     "HANDLE",
	Subject:  "FROM",
	Details: []logger.MLogDetailT{
		{"FROM", "UDP_ADDRESS", "STRING"},
		{"FROM", "ID", "STRING"},
		{"STORE", "KEY", "STRING"},
		{"STORE", "VALUE_LEN", "INT"},
	},
}

// mlogFindValueHandleFrom is called once for each FIND_VALUE request received FROM a node.
var mlogFindValueHandleFrom = logger.MLogT{
	Receiver: "FIND_VALUE",
	Verb:     "HANDLE",
	Subject:  "FROM",
	Details: []logger.MLogDetailT{
		{"FROM", "UDP_ADDRESS", "STRING"},
		{"FROM", "ID", "STRING"},
		{"FIND_VALUE", "KEY", "STRING"},
		{"FIND_VALUE", "HIT", "BOOL"},
	},
}

// mlogLookupFinish is called once each time the iterative lookup engine
// terminates, summarizing its outcome for operational visibility (§4.H).
var mlogLookupFinish = logger.MLogT{
	Receiver: "LOOKUP",
	Verb:     "FINISH",
	Subject:  "TARGET",
	Details: []logger.MLogDetailT{
		{"TARGET", "ID", "STRING"},
		{"LOOKUP", "ROUNDS", "INT"},
		{"LOOKUP", "RESULT_LEN", "INT"},
		{"LOOKUP", "VALUE_FOUND", "BOOL"},
	},
}
