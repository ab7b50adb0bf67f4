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

// Package metrics centralizes the registration of the DHT node's runtime
// counters: RPC traffic, lookup outcomes, routing-table shape, and the
// host's own memory/disk footprint.
package metrics

import (
	"bufio"
	"encoding/json"
	"os"
	"runtime"
	"time"

	"github.com/kadnet/dht/logger/glog"
	"github.com/rcrowley/go-metrics"
)

// reg is the destination every meter in this package registers into.
var reg = metrics.NewRegistry()

// Per-RPC-type counters, one triple (sent/succeeded/failed) per wire
// operation (§4.F). Failed absorbs both Timeout and TransportError, which
// the spec treats as indistinguishable for table purposes (§7).
var rpcMeters = map[string]struct {
	sent, ok, failed metrics.Meter
}{
	"PING":        newRPCTriple("ping"),
	"FIND_NODE":   newRPCTriple("find_node"),
	"STORE":       newRPCTriple("store"),
	"FIND_VALUE":  newRPCTriple("find_value"),
}

func newRPCTriple(name string) struct{ sent, ok, failed metrics.Meter } {
	return struct{ sent, ok, failed metrics.Meter }{
		sent:   metrics.NewRegisteredMeter("rpc/"+name+"/sent", reg),
		ok:     metrics.NewRegisteredMeter("rpc/"+name+"/ok", reg),
		failed: metrics.NewRegisteredMeter("rpc/"+name+"/failed", reg),
	}
}

// RPCSent records that a request of the given type was dispatched.
func RPCSent(op string) {
	if m, ok := rpcMeters[op]; ok {
		m.sent.Mark(1)
	}
}

// RPCSucceeded records that a request of the given type received a valid reply.
func RPCSucceeded(op string) {
	if m, ok := rpcMeters[op]; ok {
		m.ok.Mark(1)
	}
}

// RPCFailed records a timeout or transport error for the given RPC type.
func RPCFailed(op string) {
	if m, ok := rpcMeters[op]; ok {
		m.failed.Mark(1)
	}
}

var (
	// LookupStarted/LookupFinished bracket the iterative lookup engine (§4.H).
	LookupStarted      = metrics.NewRegisteredMeter("lookup/started", reg)
	LookupFinished     = metrics.NewRegisteredMeter("lookup/finished", reg)
	LookupRounds       = metrics.NewRegisteredTimer("lookup/rounds", reg)
	LookupValueHits    = metrics.NewRegisteredMeter("lookup/value/hit", reg)
	LookupValueMisses  = metrics.NewRegisteredMeter("lookup/value/miss", reg)

	// StoreAccepted/StoreDuplicate track the value store's first-writer-wins
	// admission policy (§3, §9).
	storeAccepted  = metrics.NewRegisteredMeter("store/accepted", reg)
	storeDuplicate = metrics.NewRegisteredMeter("store/duplicate", reg)

	// BucketSplits and StaleEvictions track routing-table churn (§4.D, §4.G).
	BucketSplits   = metrics.NewRegisteredMeter("table/bucket/split", reg)
	StaleEvictions = metrics.NewRegisteredMeter("table/stale_eviction", reg)
	TableSize      = metrics.GetOrRegisterGauge("table/size", reg)
)

// StoreAccepted marks a STORE that was admitted to the local value store.
func StoreAccepted() { storeAccepted.Mark(1) }

// StoreDuplicate marks a STORE rejected because the key already existed.
func StoreDuplicate() { storeDuplicate.Mark(1) }

var (
	MemAllocs = metrics.GetOrRegisterGauge("memory/allocs", reg)
	MemFrees  = metrics.GetOrRegisterGauge("memory/frees", reg)
	MemInuse  = metrics.GetOrRegisterGauge("memory/inuse", reg)
	MemPauses = metrics.GetOrRegisterGauge("memory/pauses", reg)

	DiskReads      = metrics.GetOrRegisterGauge("disk/readcount", reg)
	DiskReadBytes  = metrics.GetOrRegisterGauge("disk/readdata", reg)
	DiskWrites     = metrics.GetOrRegisterGauge("disk/writecount", reg)
	DiskWriteBytes = metrics.GetOrRegisterGauge("disk/writedata", reg)
)

// diskStats is the per-process disk I/O statistics.
type diskStats struct {
	ReadCount  int64
	ReadBytes  int64
	WriteCount int64
	WriteBytes int64
}

// Collect periodically samples process and table metrics, writing the full
// registry as JSON to file. It is meant to run for the node's lifetime.
func Collect(file string) {
	f, err := os.OpenFile(file, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		glog.Fatal(err)
	}
	defer f.Close()

	encoder := json.NewEncoder(bufio.NewWriter(f))

	for range time.Tick(3 * time.Second) {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		MemAllocs.Update(int64(mem.Mallocs))
		MemFrees.Update(int64(mem.Frees))
		MemInuse.Update(int64(mem.Alloc))
		MemPauses.Update(int64(mem.PauseTotalNs))

		var disk diskStats
		readDiskStats(&disk)
		DiskReads.Update(disk.ReadCount)
		DiskReadBytes.Update(disk.ReadBytes)
		DiskWrites.Update(disk.WriteCount)
		DiskWriteBytes.Update(disk.WriteBytes)

		if err := encoder.Encode(reg); err != nil {
			glog.Errorf("metrics: log to %q: %s", file, err)
		}
	}
}
