// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package buffer implements the growable byte container used as the
// sole mutable carrier for an assembled dive record while the device
// protocol layer is reading it off the wire.
package buffer

// Buffer is a growable byte container. The zero value is an empty,
// usable Buffer.
type Buffer struct {
	data []byte
}

// New returns an empty Buffer with capacity reserved for at least size
// bytes.
func New(size int) *Buffer {
	return &Buffer{data: make([]byte, 0, size)}
}

// Reserve ensures the buffer has capacity for at least n more bytes
// without reallocating.
func (b *Buffer) Reserve(n int) {
	if cap(b.data)-len(b.data) >= n {
		return
	}
	grown := make([]byte, len(b.data), len(b.data)+n)
	copy(grown, b.data)
	b.data = grown
}

// Clear empties the buffer without releasing its backing array.
func (b *Buffer) Clear() {
	b.data = b.data[:0]
}

// Append copies p onto the end of the buffer, growing it as needed.
func (b *Buffer) Append(p []byte) {
	b.Reserve(len(p))
	b.data = append(b.data, p...)
}

// AppendByte appends a single byte.
func (b *Buffer) AppendByte(c byte) {
	b.data = append(b.data, c)
}

// Data returns the buffer's current contents. The returned slice aliases
// the buffer's backing array and is invalidated by the next mutating
// call.
func (b *Buffer) Data() []byte {
	return b.data
}

// Size returns the number of bytes currently held.
func (b *Buffer) Size() int {
	return len(b.data)
}

// Free releases the backing array. The Buffer is empty and usable
// afterwards, exactly as after Clear, but also drops the reserved
// capacity. The name keeps the container's wire-protocol vocabulary
// (new/reserve/clear/append/data/size/free), not because Go needs an
// explicit free.
func (b *Buffer) Free() {
	b.data = nil
}
