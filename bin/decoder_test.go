// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoderSequentialReads(t *testing.T) {
	d := NewDecoder([]byte{0x01, 0x34, 0x12, 0x12, 0x34, 0x78, 0x56, 0x34, 0x12, 'h', 'i', 0x00})
	assert.Equal(t, uint8(0x01), d.U8())
	assert.Equal(t, uint16(0x1234), d.U16LE())
	assert.Equal(t, uint16(0x1234), d.U16BE())
	assert.Equal(t, uint32(0x12345678), d.U32LE())
	assert.Equal(t, "hi", d.CString())
	assert.Equal(t, 0, d.Len())
	assert.NoError(t, d.Err)
}

func TestDecoderShortBufferSetsErr(t *testing.T) {
	d := NewDecoder([]byte{0x01})
	assert.Equal(t, uint16(0), d.U16LE())
	require.Error(t, d.Err)
	assert.Equal(t, ErrShortBuffer, d.Err)
	// Further reads keep returning zero without panicking.
	assert.Equal(t, uint32(0), d.U32LE())
}

func TestDecoderSkipAndRemaining(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3, 4})
	d.Skip(2)
	assert.Equal(t, []byte{3, 4}, d.Remaining())
	assert.Equal(t, []byte{3, 4}, d.Bytes(2))
}

func TestFreeFunctions(t *testing.T) {
	b := []byte{0x00, 0x34, 0x12, 0x78, 0x56, 0x34, 0x12}
	assert.Equal(t, uint16(0x1234), U16LE(b, 1))
	assert.Equal(t, uint16(0x3412), U16BE(b, 1))
	assert.Equal(t, uint32(0x12345678), U32LE(b, 3))
	assert.Equal(t, uint32(0x78563412), U32BE(b, 3))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.True(t, Equal([]byte{1, 2}, []byte{1, 2}))
	assert.False(t, Equal([]byte{1, 2}, []byte{1, 3}))
	assert.False(t, Equal([]byte{1, 2}, []byte{1, 2, 3}))
}
