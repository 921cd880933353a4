// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package divesystemidive implements godc.Device for the DiveSystem
// iDive family. The protocol is a single framed request/response
// command set over a plain serial line: START/length/payload/CRC-CCITT
// request, command-echo/payload/ACK-or-NAK response, with BUSY NAKs
// retried locally.
package divesystemidive

import (
	"fmt"
	"time"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/bin"
	"github.com/divecomputer/godc/protocol"
	"github.com/divecomputer/godc/transport"
)

const (
	maxRetries = 9
	maxPacket  = 0xFF

	start = 0x55
	ack   = 0x06
	nak   = 0x15
	busy  = 0x60

	cmdID     = 0x10
	cmdRange  = 0x98
	cmdHeader = 0xA0
	cmdSample = 0xA8

	szID     = 0x0A
	szRange  = 0x04
	szHeader = 0x32
	szSample = 0x2A

	nsteps = 1000
)

func step(i, n int) int { return nsteps * i / n }

type device struct {
	ctx         godc.Context
	portName    string
	port        transport.Port
	fingerprint [4]byte
	events      godc.EventBus
}

// New constructs an unopened DiveSystem iDive device bound to portName,
// using port as the underlying serial transport (a real
// transport/serialadapter.Adapter in production, transport.Fake in
// tests).
func New(ctx godc.Context, portName string, port transport.Port) godc.Device {
	return &device{ctx: ctx, portName: portName, port: port}
}

func (d *device) Events() *godc.EventBus { return &d.events }

func (d *device) Open() godc.Status {
	if err := d.port.Open(d.portName); err != nil {
		return godc.StatusIO
	}
	cfg := transport.Config{Baud: 115200, DataBits: 8, Parity: transport.ParityNone, StopBits: 1, Flow: transport.FlowNone}
	if err := d.port.Configure(cfg); err != nil {
		return godc.StatusIO
	}
	if err := d.port.SetTimeout(1000 * time.Millisecond); err != nil {
		return godc.StatusIO
	}
	d.port.Sleep(300 * time.Millisecond)
	if err := d.port.Flush(transport.FlushBoth); err != nil {
		return godc.StatusIO
	}
	return godc.StatusSuccess
}

func (d *device) Close() godc.Status {
	if err := d.port.Close(); err != nil {
		return godc.StatusIO
	}
	return godc.StatusSuccess
}

func (d *device) SetFingerprint(fp []byte) godc.Status {
	if len(fp) != 0 && len(fp) != len(d.fingerprint) {
		return godc.StatusInvalidArgs
	}
	if len(fp) == 0 {
		d.fingerprint = [4]byte{}
	} else {
		copy(d.fingerprint[:], fp)
	}
	return godc.StatusSuccess
}

func (d *device) send(command []byte) error {
	if len(command) < 1 || len(command) > maxPacket {
		return godc.StatusInvalidArgs
	}
	packet := make([]byte, len(command)+4)
	packet[0] = start
	packet[1] = byte(len(command))
	copy(packet[2:], command)
	crc := bin.CRCCCITT(packet[:len(command)+2])
	packet[len(command)+2] = byte(crc >> 8)
	packet[len(command)+3] = byte(crc)

	n, err := d.port.Write(packet)
	if err != nil || n != len(packet) {
		return godc.StatusIO
	}
	return nil
}

func (d *device) receive() ([]byte, error) {
	var b [1]byte
	for {
		n, err := d.port.Read(b[:])
		if err != nil || n != 1 {
			return nil, godc.StatusTimeout
		}
		if b[0] == start {
			break
		}
	}

	n, err := d.port.Read(b[:])
	if err != nil || n != 1 {
		return nil, godc.StatusTimeout
	}
	length := int(b[0])
	if length < 2 || length > maxPacket {
		return nil, godc.StatusProtocol
	}

	rest := make([]byte, length+2)
	n, err = d.port.Read(rest)
	if err != nil || n != length+2 {
		return nil, godc.StatusTimeout
	}

	crc := bin.U16BE(rest, length)
	ccrc := bin.CRCCCITT(append([]byte{start, byte(length)}, rest[:length]...))
	if crc != ccrc {
		return nil, godc.StatusProtocol
	}

	return rest[:length], nil
}

func (d *device) transfer(command []byte, asize int) ([]byte, error) {
	isTransient := func(err error) bool {
		st, ok := err.(godc.Status)
		return ok && st.IsTransient()
	}
	return protocol.Do(maxRetries+1, 100*time.Millisecond, isTransient, func(attempt int) ([]byte, error) {
		if d.ctx.Cancelled() {
			return nil, godc.StatusCancelled
		}
		if err := d.send(command); err != nil {
			return nil, err
		}
		packet, err := d.receive()
		if err != nil {
			return nil, err
		}
		if packet[0] != command[0] {
			return nil, godc.StatusProtocol
		}
		if packet[len(packet)-1] == ack {
			if asize != len(packet)-2 {
				return nil, godc.StatusProtocol
			}
			return packet[1 : len(packet)-1], nil
		}
		if packet[len(packet)-1] != nak {
			return nil, godc.StatusProtocol
		}
		if len(packet) != 3 {
			return nil, godc.StatusProtocol
		}
		if packet[1] != busy {
			return nil, godc.StatusProtocol
		}
		// BUSY is transient; Do's sleepBetween provides the single
		// 100ms wait before the retry.
		return nil, godc.StatusProtocol
	})
}

func (d *device) Foreach(cb godc.DiveCallback) godc.Status {
	d.events.Emit(godc.Event{Kind: godc.EventProgress, Current: 0, Maximum: 0})

	id, err := d.transfer([]byte{cmdID, 0xED}, szID)
	if err != nil {
		return err.(godc.Status)
	}

	model := int(bin.U16LE(id, 0))
	serial := bin.U32LE(id, 6)
	d.events.Emit(godc.Event{Kind: godc.EventDevInfo, Model: fmt.Sprintf("%d", model), Serial: fmt.Sprintf("%d", serial)})
	d.events.Emit(godc.Event{Kind: godc.EventVendor, Vendor: id})

	rng, err := d.transfer([]byte{cmdRange, 0x8D}, szRange)
	if err != nil {
		return err.(godc.Status)
	}
	first := int(bin.U16LE(rng, 0))
	last := int(bin.U16LE(rng, 2))
	if first > last {
		return godc.StatusDataFormat
	}
	ndives := last - first + 1

	d.events.Emit(godc.Event{Kind: godc.EventProgress, Current: 0, Maximum: ndives * nsteps})

	for i := 0; i < ndives; i++ {
		number := last - i
		header, err := d.transfer([]byte{cmdHeader, byte(number), byte(number >> 8)}, szHeader)
		if err != nil {
			return err.(godc.Status)
		}

		if bin.Equal(header[7:7+4], d.fingerprint[:]) {
			break
		}

		nsamples := int(bin.U16LE(header, 1))
		d.events.Emit(godc.Event{Kind: godc.EventProgress, Current: i*nsteps + step(1, nsamples+1), Maximum: ndives * nsteps})

		buffer := make([]byte, 0, szHeader+szSample*nsamples)
		buffer = append(buffer, header...)

		for j := 0; j < nsamples; j++ {
			idx := j + 1
			sampleData, err := d.transfer([]byte{cmdSample, byte(idx), byte(idx >> 8)}, szSample)
			if err != nil {
				return err.(godc.Status)
			}
			d.events.Emit(godc.Event{Kind: godc.EventProgress, Current: i*nsteps + step(j+2, nsamples+1), Maximum: ndives * nsteps})
			buffer = append(buffer, sampleData...)
		}

		if cb != nil && !cb(buffer, buffer[7:7+4]) {
			return godc.StatusSuccess
		}
	}

	return godc.StatusSuccess
}
