// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBCDRoundTrip(t *testing.T) {
	for x := 0; x <= 99; x++ {
		assert.Equal(t, x, BCD2Dec(Dec2BCD(x)))
	}
}

func TestIsValidBCD(t *testing.T) {
	assert.True(t, IsValidBCD(0x00))
	assert.True(t, IsValidBCD(0x59))
	assert.True(t, IsValidBCD(0x99))
	assert.False(t, IsValidBCD(0x9A))
	assert.False(t, IsValidBCD(0xA9))
	assert.False(t, IsValidBCD(0xFF))
}
