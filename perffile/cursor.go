// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perffile

import "encoding/binary"

// A cursor advances a read position over a borrowed, host-endian byte
// region. The variable-layout reads in this package — record bodies,
// their sample_id trailers, and the event-desc section — go through a
// cursor rather than reinterpreting memory directly. The fixed-size
// structures (fileHeader, fileSection, the fileAttr table and its id
// lists, and each recordHeader) are read with binary.Read instead
// (see reader.go and records.go).
//
// A read past the end of buf is a structural error: it panics with a
// *ParseError, which is recovered at the outermost parsing entry
// point. This corresponds to the raw pointer arithmetic of
// TakeU32/TakeU64 in the original C++ importer, which had no bounds
// checking at all.
//
// This keeps bufDecoder's "advance a []byte slice, return the value"
// shape but adds bounds checking on every primitive read.
type cursor struct {
	buf []byte
	off int64 // absolute file offset of buf[0], for error reporting
}

func newCursor(buf []byte, off int64) cursor {
	return cursor{buf, off}
}

func (c *cursor) require(n int) {
	if n > len(c.buf) {
		assertf(false, c.off, "read of %d bytes past end of %d-byte region", n, len(c.buf))
	}
}

func (c *cursor) skip(n int) {
	c.require(n)
	c.buf = c.buf[n:]
	c.off += int64(n)
}

func (c *cursor) bytes(n int) []byte {
	c.require(n)
	x := c.buf[:n]
	c.buf = c.buf[n:]
	c.off += int64(n)
	return x
}

func (c *cursor) u16() uint16 {
	return binary.LittleEndian.Uint16(c.bytes(2))
}

func (c *cursor) u32() uint32 {
	return binary.LittleEndian.Uint32(c.bytes(4))
}

func (c *cursor) i32() int32 {
	return int32(c.u32())
}

func (c *cursor) u64() uint64 {
	return binary.LittleEndian.Uint64(c.bytes(8))
}

func (c *cursor) u64s(n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = c.u64()
	}
	return out
}

// cstring reads a NUL-terminated string.
func (c *cursor) cstring() string {
	for i, b := range c.buf {
		if b == 0 {
			s := string(c.buf[:i])
			c.skip(i + 1)
			return s
		}
	}
	assertf(false, c.off, "unterminated string in %d-byte region", len(c.buf))
	return ""
}

// lenString reads a u32 length prefix followed by that many bytes,
// taken verbatim as the string: unlike cstring, it does not look for
// or trim a NUL terminator, since the event-desc name field (the only
// caller) is not guaranteed to carry one.
func (c *cursor) lenString() string {
	n := int(c.u32())
	return string(c.bytes(n))
}

// remainingBytes returns the unconsumed tail of the cursor without
// advancing it.
func (c *cursor) remainingBytes() []byte {
	return c.buf
}

func (c *cursor) empty() bool {
	return len(c.buf) == 0
}
