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

package logger

import (
	"io/ioutil"
	"os"
	"strings"
	"testing"
	"time"
)

func exampleMLogT() MLogT {
	return MLogT{
		Description: `Struct for testing mlog structs.`,
		Receiver:    "TESTER",
		Verb:        "TESTING",
		Subject:     "MLOG",
		Details: []MLogDetailT{
			{"FROM", "UDP_ADDRESS", "STRING"},
			{"FROM", "ID", "STRING"},
			{"NEIGHBORS", "BYTES_TRANSFERRED", "INT"},
		},
	}
}

func TestMLogRegisterAvailable(t *testing.T) {
	mlogRegLock.Lock()
	MLogRegistryAvailable = make(map[mlogComponent][]MLogT)
	mlogRegLock.Unlock()

	lines := []MLogT{exampleMLogT()}
	c := MLogRegisterAvailable("example1", lines)
	if c != "example1" {
		t.Errorf("expected component name 'example1', got '%s'", c)
	}

	mlogRegLock.RLock()
	got := MLogRegistryAvailable["example1"]
	mlogRegLock.RUnlock()
	if len(got) != 1 {
		t.Fatalf("expected 1 registered line, got %d", len(got))
	}

	// Re-registering the same name replaces, rather than appends to, the
	// previous line set.
	MLogRegisterAvailable("example1", []MLogT{exampleMLogT(), exampleMLogT()})
	mlogRegLock.RLock()
	got = MLogRegistryAvailable["example1"]
	mlogRegLock.RUnlock()
	if len(got) != 2 {
		t.Errorf("expected 2 registered lines after re-registration, got %d", len(got))
	}
}

func TestMLogRegisterComponentsFromContext(t *testing.T) {
	mlogRegLock.Lock()
	MLogRegistryAvailable = make(map[mlogComponent][]MLogT)
	MLogRegistryActive = make(map[mlogComponent]*Logger)
	mlogRegLock.Unlock()

	MLogRegisterAvailable("example1", []MLogT{exampleMLogT()})
	MLogRegisterAvailable("example2", []MLogT{exampleMLogT()})

	if err := MLogRegisterComponentsFromContext("example1,example2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mlogRegLock.RLock()
	n := len(MLogRegistryActive)
	mlogRegLock.RUnlock()
	if n != 2 {
		t.Errorf("expected 2 active components, got %d", n)
	}

	if err := MLogRegisterComponentsFromContext("example1,missing"); err == nil {
		t.Error("expected error for unavailable component, got nil")
	}
}

func TestMLogComponentSendOnlyWhenActive(t *testing.T) {
	mlogRegLock.Lock()
	MLogRegistryActive = make(map[mlogComponent]*Logger)
	mlogRegLock.Unlock()

	c := mlogComponent("inactive-example")
	// Sending to a component with no active logger must not panic.
	c.Send("should be dropped silently")

	MLogRegisterActive(c)
	c.Send("hello")
}

func TestMLogTSetDetailValues(t *testing.T) {
	m := exampleMLogT()
	m = m.SetDetailValues("sampleAddress", "sampleId", 123)

	if m.Details[0].Value != "sampleAddress" {
		t.Errorf("expected 'sampleAddress', got '%v'", m.Details[0].Value)
	}
	if m.Details[1].Value != "sampleId" {
		t.Errorf("expected 'sampleId', got '%v'", m.Details[1].Value)
	}
	if m.Details[2].Value != 123 {
		t.Errorf("expected 123, got '%v'", m.Details[2].Value)
	}
}

func TestMLogTString(t *testing.T) {
	m := exampleMLogT().SetDetailValues("10.0.0.1:30301", "abc123", 42)
	s := m.String()

	for _, want := range []string{"TESTER", "TESTING", "MLOG"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected String() output to contain %q, got %q", want, s)
		}
	}

	documented := m.String(true)
	if !strings.Contains(documented, m.Description) {
		t.Errorf("expected documentation mode to include the description, got %q", documented)
	}
}

func TestMLogDetailTString(t *testing.T) {
	d := MLogDetailT{Owner: "FROM", Key: "UDP_ADDRESS", Value: "10.0.0.1:30301"}
	if got := d.String(); got != "[10.0.0.1:30301]" {
		t.Errorf("expected raw format '[10.0.0.1:30301]', got '%s'", got)
	}
	if got := d.String(true); got != "$FROM:UDP_ADDRESS:10.0.0.1:30301" {
		t.Errorf("expected documentation format, got '%s'", got)
	}
}

func TestCreateMLogFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "mlog_test")
	if err != nil {
		t.Fatalf("cannot create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	SetMLogDir(dir)
	defer SetMLogDir("")

	f, filename, err := CreateMLogFile(time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()

	if !strings.HasPrefix(filename, dir) {
		t.Errorf("expected file created in %s, got %s", dir, filename)
	}
}
