// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRCCCITT(t *testing.T) {
	// The standard CRC-CCITT (0xFFFF) check value.
	assert.Equal(t, uint16(0x29B1), CRCCCITT([]byte("123456789")))
	assert.Equal(t, uint16(0xFFFF), CRCCCITT(nil))
}

func TestXOR8(t *testing.T) {
	assert.Equal(t, byte(0x00), XOR8(nil, 0x00))
	assert.Equal(t, byte(0x05^0x00^0x03), XOR8([]byte{0x05, 0x00, 0x03}, 0x00))
	// XOR-ing a buffer with its own checksum yields zero, which is what
	// the Suunto packet verification relies on.
	cmd := []byte{0x05, 0x00, 0x03, 0x01, 0x90, 0x78}
	sum := XOR8(cmd, 0x00)
	assert.Equal(t, byte(0), XOR8(append(cmd, sum), 0x00))
}

func TestAdd8Wraps(t *testing.T) {
	assert.Equal(t, byte(0x01), Add8([]byte{0xFF, 0x02}, 0x00))
	assert.Equal(t, byte(0x12), Add8([]byte{0x10}, 0x02))
}

func TestAdd4Wraps(t *testing.T) {
	assert.Equal(t, byte(0x0F), Add4([]byte{0x0F}, 0x00))
	assert.Equal(t, byte(0x00), Add4([]byte{0x0F, 0x01}, 0x00))
	// High nibbles don't contribute.
	assert.Equal(t, byte(0x02), Add4([]byte{0xF1, 0xF1}, 0x00))
}

func TestAdd16(t *testing.T) {
	assert.Equal(t, uint16(0x01FE), Add16([]byte{0xFF, 0xFF}, 0x00))
}
