// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transport defines the serial port abstraction consumed by the
// device protocol layer, plus a real-hardware adapter over
// go.bug.st/serial in the serialadapter subpackage. Tests use an
// in-memory fake (see Fake in this package) instead of real hardware.
package transport

import "time"

// FlowControl selects hardware/software flow control for Configure.
type FlowControl int

const (
	FlowNone FlowControl = iota
	FlowHardware
	FlowSoftware
)

// Parity selects the parity bit mode for Configure.
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

// FlushDirection selects which buffers Flush discards.
type FlushDirection int

const (
	FlushInput FlushDirection = iota
	FlushOutput
	FlushBoth
)

// Config bundles the serial line parameters passed to Configure.
type Config struct {
	Baud     int
	DataBits int
	Parity   Parity
	StopBits int
	Flow     FlowControl
}

// Port is the serial port abstraction the device protocol layer is built
// against. All methods return a non-nil error on failure; a
// short Read/Write (fewer bytes than requested) is reported as io.ErrShortBuffer-class
// behavior via the returned count and a nil error, matching the
// "byte counts short of request imply IO" contract enforced by the
// caller, not the Port implementation itself.
type Port interface {
	Open(name string) error
	Configure(cfg Config) error
	SetTimeout(d time.Duration) error
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Flush(dir FlushDirection) error
	Sleep(d time.Duration)
	Close() error
}
