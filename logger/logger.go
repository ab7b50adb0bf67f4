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
	"fmt"
	"os"
	"sync"
	"time"
)

// Logger writes mlog lines for one registered component to its session mlog
// file, falling back to stderr if the file could not be created (e.g. no
// mlog directory has been configured via SetMLogDir).
type Logger struct {
	component string
	mu        sync.Mutex
	file      *os.File
}

// NewLogger returns a Logger for component, opening a fresh session mlog
// file for it.
func NewLogger(component string) *Logger {
	l := &Logger{component: component}
	if f, _, err := CreateMLogFile(time.Now()); err == nil {
		l.file = f
	}
	return l
}

// Sendf writes a formatted mlog line. calldepth is accepted for interface
// parity with the standard log package but is not otherwise used here.
func (l *Logger) Sendf(calldepth int, format string, v ...interface{}) {
	l.write(fmt.Sprintf(format, v...))
}

// Infoln writes its arguments as a single mlog line.
func (l *Logger) Infoln(v ...interface{}) {
	l.write(fmt.Sprintln(v...))
}

func (l *Logger) write(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	dst := l.file
	if dst == nil {
		dst = os.Stderr
	}
	fmt.Fprintf(dst, "%s %s %s", time.Now().Format("2006-01-02T15:04:05.000"), l.component, msg)
}
