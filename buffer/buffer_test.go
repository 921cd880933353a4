// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroValueUsable(t *testing.T) {
	var b Buffer
	assert.Equal(t, 0, b.Size())
	b.Append([]byte{1, 2, 3})
	assert.Equal(t, 3, b.Size())
	assert.Equal(t, []byte{1, 2, 3}, b.Data())
}

func TestClearKeepsCapacity(t *testing.T) {
	b := New(16)
	b.Append([]byte{1, 2, 3})
	b.Clear()
	assert.Equal(t, 0, b.Size())
	b.AppendByte(9)
	assert.Equal(t, []byte{9}, b.Data())
}

func TestReserveThenAppend(t *testing.T) {
	var b Buffer
	b.Reserve(64)
	b.Append(make([]byte, 64))
	assert.Equal(t, 64, b.Size())
}

func TestFreeReleasesAndStaysUsable(t *testing.T) {
	b := New(8)
	b.Append([]byte{1})
	b.Free()
	assert.Equal(t, 0, b.Size())
	b.Append([]byte{2})
	assert.Equal(t, []byte{2}, b.Data())
}
