// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"io"
	"time"
)

// Fake is an in-memory transport.Port used by protocol and device tests.
// Reads are served from Script (queued response frames); writes are
// recorded into Written for assertions.
type Fake struct {
	Script  [][]byte
	Written [][]byte

	readBuf []byte
	closed  bool
}

// NewFake returns a Fake preloaded with the given response frames, served
// in order to successive Read calls.
func NewFake(script ...[]byte) *Fake {
	return &Fake{Script: script}
}

func (f *Fake) Open(name string) error { return nil }

func (f *Fake) Configure(cfg Config) error { return nil }

func (f *Fake) SetTimeout(d time.Duration) error { return nil }

func (f *Fake) Read(p []byte) (int, error) {
	if len(f.readBuf) == 0 {
		if len(f.Script) == 0 {
			return 0, io.EOF
		}
		f.readBuf = f.Script[0]
		f.Script = f.Script[1:]
	}
	n := copy(p, f.readBuf)
	f.readBuf = f.readBuf[n:]
	return n, nil
}

func (f *Fake) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	f.Written = append(f.Written, cp)
	return len(p), nil
}

func (f *Fake) Flush(dir FlushDirection) error { return nil }

func (f *Fake) Sleep(d time.Duration) {}

func (f *Fake) Close() error {
	f.closed = true
	return nil
}
