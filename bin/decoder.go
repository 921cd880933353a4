// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bin collects the little/big-endian integer decoders, BCD
// conversion, equality scans and checksum routines shared by every
// parser and protocol family. The Decoder type is a slice that eats
// itself from the front as each accessor is called, so callers read a
// record field-by-field without tracking an offset by hand.
package bin

// Decoder reads fixed-width fields from the front of a byte slice,
// advancing past each one as it is consumed. It never panics on short
// input: out-of-range reads return zero and set Err,
// which callers should check once after decoding a record (every parser
// family already guards minimum record size up front, so Err firing
// indicates a genuinely malformed blob).
type Decoder struct {
	buf []byte
	Err error
}

// NewDecoder wraps b. The returned Decoder aliases b; it does not copy.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// Len returns the number of unread bytes.
func (d *Decoder) Len() int { return len(d.buf) }

// Remaining returns the unread tail, without consuming it.
func (d *Decoder) Remaining() []byte { return d.buf }

func (d *Decoder) take(n int) []byte {
	if d.Err != nil || n > len(d.buf) {
		if d.Err == nil {
			d.Err = ErrShortBuffer
		}
		return make([]byte, n)
	}
	x := d.buf[:n]
	d.buf = d.buf[n:]
	return x
}

// Skip advances past n bytes.
func (d *Decoder) Skip(n int) { d.take(n) }

// U8 reads one byte.
func (d *Decoder) U8() uint8 { return d.take(1)[0] }

// I8 reads one signed byte.
func (d *Decoder) I8() int8 { return int8(d.U8()) }

// U16LE reads a little-endian uint16.
func (d *Decoder) U16LE() uint16 {
	b := d.take(2)
	return uint16(b[0]) | uint16(b[1])<<8
}

// U16BE reads a big-endian uint16.
func (d *Decoder) U16BE() uint16 {
	b := d.take(2)
	return uint16(b[1]) | uint16(b[0])<<8
}

// I16LE reads a little-endian int16.
func (d *Decoder) I16LE() int16 { return int16(d.U16LE()) }

// I16BE reads a big-endian int16.
func (d *Decoder) I16BE() int16 { return int16(d.U16BE()) }

// U32LE reads a little-endian uint32.
func (d *Decoder) U32LE() uint32 {
	b := d.take(4)
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// U32BE reads a big-endian uint32.
func (d *Decoder) U32BE() uint32 {
	b := d.take(4)
	return uint32(b[3]) | uint32(b[2])<<8 | uint32(b[1])<<16 | uint32(b[0])<<24
}

// I32LE reads a little-endian int32.
func (d *Decoder) I32LE() int32 { return int32(d.U32LE()) }

// Bytes reads n raw bytes.
func (d *Decoder) Bytes(n int) []byte {
	x := d.take(n)
	out := make([]byte, n)
	copy(out, x)
	return out
}

// CString reads a NUL-terminated string, consuming the terminator. If no
// NUL is found before the end of the buffer, the remainder is returned
// and Err is left untouched (callers that expect always-terminated
// strings should check the returned length against what they expected).
func (d *Decoder) CString() string {
	for i, c := range d.buf {
		if c == 0 {
			s := string(d.buf[:i])
			d.buf = d.buf[i+1:]
			return s
		}
	}
	s := string(d.buf)
	d.buf = nil
	return s
}

type shortBufferError struct{}

func (shortBufferError) Error() string { return "bin: short buffer" }

// ErrShortBuffer is set on Decoder.Err the first time a read runs past
// the end of the wrapped slice.
var ErrShortBuffer error = shortBufferError{}

// --- free functions for single-shot offset reads, used where a parser
// only needs a couple of fields out of a record rather than a full
// sequential decode. ---

// U16LE reads a little-endian uint16 at offset off.
func U16LE(b []byte, off int) uint16 {
	return uint16(b[off]) | uint16(b[off+1])<<8
}

// U16BE reads a big-endian uint16 at offset off.
func U16BE(b []byte, off int) uint16 {
	return uint16(b[off+1]) | uint16(b[off])<<8
}

// U32LE reads a little-endian uint32 at offset off.
func U32LE(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}

// U32BE reads a big-endian uint32 at offset off.
func U32BE(b []byte, off int) uint32 {
	return uint32(b[off+3]) | uint32(b[off+2])<<8 | uint32(b[off+1])<<16 | uint32(b[off])<<24
}

// Equal reports whether a and b have the same length and contents. It
// replaces the memcmp-against-a-fixed-marker idiom used throughout the
// original parsers (footer/header sentinel scans).
func Equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
