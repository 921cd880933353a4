// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package suuntocommon2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divecomputer/godc"
)

func TestRingbufferDistance(t *testing.T) {
	begin, end := 0x100, 0x200
	assert.Equal(t, end-begin, ringbufferDistance(0x150, 0x150, begin, end, true))
	assert.Equal(t, 0, ringbufferDistance(0x150, 0x150, begin, end, false))
	assert.Equal(t, 0x20, ringbufferDistance(0x130, 0x150, begin, end, true))
	// wrapped: distance from 0x1F0 to 0x110 crossing end->begin
	assert.Equal(t, (end-0x1F0)+(0x110-begin), ringbufferDistance(0x1F0, 0x110, begin, end, true))
}

// memModel is an in-memory backing store for a fabricated Common2
// device, used to drive Foreach through a Packet closure without any
// real transport.
type memModel struct {
	mem     []byte
	base    int
	version [4]byte
}

func newMemModel(base, size int) *memModel {
	return &memModel{mem: make([]byte, size), base: base, version: [4]byte{1, 0, 0, 1}}
}

func (m *memModel) set16le(addr int, v uint16) {
	m.mem[addr-m.base] = byte(v)
	m.mem[addr-m.base+1] = byte(v >> 8)
}

func (m *memModel) packet(command, answer []byte) error {
	switch command[0] {
	case cmdVersion:
		copy(answer, []byte{cmdVersion, 0, 0})
		copy(answer[3:], m.version[:])
		return nil
	case cmdRead:
		address := int(command[3])<<8 | int(command[4])
		n := int(command[5])
		copy(answer[6:6+n], m.mem[address-m.base:address-m.base+n])
		return nil
	default:
		return godc.StatusUnsupported
	}
}

// TestForeachSingleCompleteDive builds one ring-buffer dive record
// (prev,next pointers + 4 bytes of payload) and verifies it reaches the
// callback with a fingerprint that does not match the never-set default.
func TestForeachSingleCompleteDive(t *testing.T) {
	layout := Layout{
		MemSize:        0x1000,
		RBProfileBegin: 0x000,
		RBProfileEnd:   0x100,
		Serial:         0x900,
		Fingerprint:    0,
	}

	model := newMemModel(0, 0x1000)
	// header at 0x190: last, count, end, begin
	model.set16le(0x190, 0x010) // last
	model.set16le(0x192, 1)     // count != 0 => full
	model.set16le(0x194, 0x020) // end
	model.set16le(0x196, 0x010) // begin == last, a single dive spanning [0x10,0x20)

	// serial bytes at 0x900
	copy(model.mem[0x900:0x900+8], []byte{1, 2, 3, 4, 0, 0, 0, 0})

	// dive record: prev(2 bytes LE)=0x010 (in range; the walk stops
	// after this dive because its 0x10 bytes use up the whole
	// begin..end distance), next(2 bytes LE)=0x020 (equals previous,
	// satisfying the continuity check), then a fingerprint field
	// distinct from the zero default.
	model.set16le(0x10, 0x010)
	model.set16le(0x12, 0x020)
	copy(model.mem[0x14:0x18], []byte{0xAA, 0xBB, 0xCC, 0xDD})

	dev := New(godc.NewContext(nil, nil), layout, model.packet)
	var got [][]byte
	status := dev.Foreach(func(data, fingerprint []byte) bool {
		got = append(got, fingerprint)
		return true
	})
	require.Equal(t, godc.StatusSuccess, status)
	require.Len(t, got, 1)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC, 0xDD}, got[0])
}
