// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package suuntocommon2 implements godc.Device for the Suunto "Common2"
// transport shared by the Vyper2/D9/Vyper Air/HelO2/Cobra2/Zoop family.
// Unlike DiveSystem, Suunto Common2 is a random-access memory protocol:
// dives are not fetched one at a time but recovered by walking a ring
// buffer whose begin/end/count/last pointers live in a fixed memory
// header.
package suuntocommon2

import (
	"bytes"
	"fmt"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/bin"
	"github.com/divecomputer/godc/protocol"
)

const (
	maxRetries = 2
	szPacket   = 0x78
	szVersion  = 0x04
	szMinimum  = 8

	cmdVersion = 0x0F
	cmdReset   = 0x20
	cmdRead    = 0x05
	cmdWrite   = 0x06
)

// Layout describes the fixed memory offsets of one Common2-family model.
// Every field is a byte address in the device's linear address space.
type Layout struct {
	MemSize        int
	RBProfileBegin int
	RBProfileEnd   int
	Serial         int
	Fingerprint    int // offset of the fingerprint within a dive's data, after its 4-byte prev/next pointer pair
}

// Packet is the vendor-specific request/response exchange a Common2
// model performs over its own framing (some models wrap the common
// packet in a further transport, e.g. Bluetooth); the device layer only
// needs this one method to implement read/write/version/reset.
type Packet func(command []byte, answer []byte) error

type device struct {
	ctx         godc.Context
	layout      Layout
	packet      Packet
	version     [szVersion]byte
	fingerprint [4]byte
	events      godc.EventBus
}

// New constructs a Suunto Common2 device for the given memory layout,
// communicating through packet (a model-specific vtable entry). The
// serial line a concrete model wraps to implement Packet is left to
// that model's own package; this device never talks to a serial port
// directly.
func New(ctx godc.Context, layout Layout, packet Packet) godc.Device {
	return &device{ctx: ctx, layout: layout, packet: packet}
}

func (d *device) Events() *godc.EventBus { return &d.events }

func (d *device) Open() godc.Status {
	return godc.StatusSuccess
}

func (d *device) Close() godc.Status {
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

func (d *device) transfer(command, answer []byte) error {
	isTransient := func(err error) bool {
		st, ok := err.(godc.Status)
		return ok && st.IsTransient()
	}
	_, err := protocol.Do(maxRetries+1, 0, isTransient, func(attempt int) (struct{}, error) {
		if d.ctx.Cancelled() {
			return struct{}{}, godc.StatusCancelled
		}
		return struct{}{}, d.packet(command, answer)
	})
	return err
}

func (d *device) fetchVersion() error {
	answer := make([]byte, szVersion+4)
	command := []byte{cmdVersion, 0x00, 0x00, cmdVersion}
	if err := d.transfer(command, answer); err != nil {
		return err
	}
	copy(d.version[:], answer[3:3+szVersion])
	return nil
}

// Read fetches size bytes starting at address, packetized at szPacket,
// with an XOR8 checksum on every command frame.
func (d *device) Read(address, size int) ([]byte, error) {
	out := make([]byte, 0, size)
	for len(out) < size {
		n := size - len(out)
		if n > szPacket {
			n = szPacket
		}
		command := []byte{cmdRead, 0x00, 0x03, byte(address >> 8), byte(address), byte(n), 0}
		command[6] = bin.XOR8(command[:6], 0x00)
		answer := make([]byte, n+7)
		if err := d.transfer(command, answer); err != nil {
			return nil, err
		}
		out = append(out, answer[6:6+n]...)
		address += n
	}
	return out, nil
}

// Write sends len(data) bytes from data to address, packetized at szPacket.
func (d *device) Write(address int, data []byte) error {
	nbytes := 0
	for nbytes < len(data) {
		n := len(data) - nbytes
		if n > szPacket {
			n = szPacket
		}
		command := make([]byte, n+7)
		command[0], command[1], command[2] = cmdWrite, 0x00, byte(n+3)
		command[3], command[4], command[5] = byte(address>>8), byte(address), byte(n)
		copy(command[6:], data[nbytes:nbytes+n])
		command[n+6] = bin.XOR8(command[:n+6], 0x00)
		answer := make([]byte, 7)
		if err := d.transfer(command, answer); err != nil {
			return err
		}
		nbytes += n
		address += n
	}
	return nil
}

func (d *device) resetMaxDepth() error {
	answer := make([]byte, 4)
	command := []byte{cmdReset, 0x00, 0x00, cmdReset}
	return d.transfer(command, answer)
}

// ringbufferDistance is the forward distance from a to b within
// [begin,end), treating a==b as a full buffer when full is true and
// empty otherwise.
func ringbufferDistance(a, b, begin, end int, full bool) int {
	size := end - begin
	if a == b {
		if full {
			return size
		}
		return 0
	}
	if a < b {
		return b - a
	}
	return size - (a - b)
}

func (d *device) Foreach(cb godc.DiveCallback) godc.Status {
	layout := d.layout

	if err := d.fetchVersion(); err != nil {
		return err.(godc.Status)
	}

	progressMax := layout.RBProfileEnd - layout.RBProfileBegin + 8 + szMinimum
	d.events.Emit(godc.Event{Kind: godc.EventProgress, Current: 0, Maximum: progressMax})

	serial, err := d.Read(layout.Serial, szMinimum)
	if err != nil {
		return err.(godc.Status)
	}
	progressCur := len(serial)

	var serialNumber uint64
	for i := 0; i < 4; i++ {
		serialNumber = serialNumber*100 + uint64(serial[i])
	}
	firmware := uint32(d.version[1])<<16 | uint32(d.version[2])<<8 | uint32(d.version[3])
	d.events.Emit(godc.Event{Kind: godc.EventDevInfo, Model: fmt.Sprintf("%d", d.version[0]), Firmware: fmt.Sprintf("%06x", firmware), Serial: fmt.Sprintf("%d", serialNumber)})
	d.events.Emit(godc.Event{Kind: godc.EventVendor, Vendor: d.version[:]})
	d.events.Emit(godc.Event{Kind: godc.EventProgress, Current: progressCur, Maximum: progressMax})

	header, err := d.Read(0x0190, 8)
	if err != nil {
		return err.(godc.Status)
	}
	last := int(bin.U16LE(header, 0))
	count := int(bin.U16LE(header, 2))
	end := int(bin.U16LE(header, 4))
	begin := int(bin.U16LE(header, 6))
	if last < layout.RBProfileBegin || last >= layout.RBProfileEnd ||
		end < layout.RBProfileBegin || end >= layout.RBProfileEnd ||
		begin < layout.RBProfileBegin || begin >= layout.RBProfileEnd {
		return godc.StatusDataFormat
	}

	remaining := ringbufferDistance(begin, end, layout.RBProfileBegin, layout.RBProfileEnd, count != 0)
	progressMax -= (layout.RBProfileEnd - layout.RBProfileBegin) - remaining
	progressCur += len(header)
	d.events.Emit(godc.Event{Kind: godc.EventProgress, Current: progressCur, Maximum: progressMax})

	status := godc.StatusSuccess
	current := last
	previous := end

	for remaining > 0 {
		size := ringbufferDistance(current, previous, layout.RBProfileBegin, layout.RBProfileEnd, true)
		if size < 4 || size > remaining {
			return godc.StatusDataFormat
		}

		dive, err := d.readRingRegion(current, previous)
		if err != nil {
			return err.(godc.Status)
		}
		progressCur += size
		d.events.Emit(godc.Event{Kind: godc.EventProgress, Current: progressCur, Maximum: progressMax})

		remaining -= size

		prev := int(bin.U16LE(dive, 0))
		next := int(bin.U16LE(dive, 2))
		if prev < layout.RBProfileBegin || prev >= layout.RBProfileEnd ||
			next < layout.RBProfileBegin || next >= layout.RBProfileEnd {
			return godc.StatusDataFormat
		}
		if next != previous && next != current {
			return godc.StatusDataFormat
		}

		if next != current {
			fpOffset := layout.Fingerprint + 4
			if bytes.Equal(dive[fpOffset:fpOffset+4], d.fingerprint[:]) {
				return godc.StatusSuccess
			}
			if cb != nil && !cb(dive[4:], dive[fpOffset:fpOffset+4]) {
				return godc.StatusSuccess
			}
		} else {
			d.ctx.Log().Warnf("skipping discontinuous dive at %#04x (next %#04x)", current, next)
			status = godc.StatusDataFormat
		}

		previous = current
		current = prev
	}

	return status
}

// readRingRegion reads the bytes of one dive's [2-byte prev][2-byte
// next][data...] block, spanning [current, previous) in ring-buffer
// address space and split at the wrap point when current > previous.
func (d *device) readRingRegion(current, previous int) ([]byte, error) {
	layout := d.layout
	if current <= previous {
		return d.Read(current, previous-current)
	}
	head, err := d.Read(current, layout.RBProfileEnd-current)
	if err != nil {
		return nil, err
	}
	tail, err := d.Read(layout.RBProfileBegin, previous-layout.RBProfileBegin)
	if err != nil {
		return nil, err
	}
	return append(head, tail...), nil
}
