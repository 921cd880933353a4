// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package serialadapter implements transport.Port over a real serial
// line using go.bug.st/serial, grounded on other_examples/dividat-driver's
// use of the same library for talking to a hardware device.
package serialadapter

import (
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"

	"github.com/divecomputer/godc/transport"
)

// Adapter implements transport.Port over go.bug.st/serial.
type Adapter struct {
	port serial.Port
}

// New returns an unopened Adapter.
func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Open(name string) error {
	p, err := serial.Open(name, &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return errors.Wrapf(err, "opening serial port %s", name)
	}
	a.port = p
	return nil
}

func (a *Adapter) Configure(cfg transport.Config) error {
	mode := &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: cfg.DataBits,
	}
	switch cfg.Parity {
	case transport.ParityOdd:
		mode.Parity = serial.OddParity
	case transport.ParityEven:
		mode.Parity = serial.EvenParity
	default:
		mode.Parity = serial.NoParity
	}
	switch cfg.StopBits {
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		mode.StopBits = serial.OneStopBit
	}
	if err := a.port.SetMode(mode); err != nil {
		return errors.Wrap(err, "configuring serial port")
	}
	return nil
}

func (a *Adapter) SetTimeout(d time.Duration) error {
	return errors.Wrap(a.port.SetReadTimeout(d), "setting serial read timeout")
}

func (a *Adapter) Read(p []byte) (int, error) {
	n, err := a.port.Read(p)
	if err != nil {
		return n, errors.Wrap(err, "reading from serial port")
	}
	return n, nil
}

func (a *Adapter) Write(p []byte) (int, error) {
	n, err := a.port.Write(p)
	if err != nil {
		return n, errors.Wrap(err, "writing to serial port")
	}
	return n, nil
}

func (a *Adapter) Flush(dir transport.FlushDirection) error {
	switch dir {
	case transport.FlushInput:
		return errors.Wrap(a.port.ResetInputBuffer(), "flushing serial input")
	case transport.FlushOutput:
		return errors.Wrap(a.port.ResetOutputBuffer(), "flushing serial output")
	default:
		if err := a.port.ResetInputBuffer(); err != nil {
			return errors.Wrap(err, "flushing serial input")
		}
		return errors.Wrap(a.port.ResetOutputBuffer(), "flushing serial output")
	}
}

func (a *Adapter) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (a *Adapter) Close() error {
	return errors.Wrap(a.port.Close(), "closing serial port")
}
