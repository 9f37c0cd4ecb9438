// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/mosaic/internal/base"
	"github.com/cockroachdb/redact"
)

// Tag identifies the codec that encoded a block.
type Tag uint8

const (
	TagRaw Tag = iota
	TagDelta
	TagDictionary
	TagFrame
	numTags
	// TagEOL marks the terminal block of a compressed column.
	TagEOL Tag = 0xFF
)

var tagNames = [numTags]string{
	TagRaw:        "raw",
	TagDelta:      "delta",
	TagDictionary: "dictionary",
	TagFrame:      "frame",
}

// String implements fmt.Stringer.
func (t Tag) String() string {
	switch {
	case t < numTags:
		return tagNames[t]
	case t == TagEOL:
		return "eol"
	default:
		return "unknown"
	}
}

// SafeFormat implements redact.SafeFormatter.
func (t Tag) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(t.String()))
}

// ParseTag parses the name of a codec as returned by Tag.String.
func ParseTag(s string) (Tag, error) {
	for t := Tag(0); t < numTags; t++ {
		if tagNames[t] == s {
			return t, nil
		}
	}
	return 0, errors.Newf("mosaic: unknown codec %q", redact.SafeString(s))
}

// A block is laid out as:
//
//	+----------------+------------------+------------------------+
//	| tag (uint32le) | count (uint32le) | codec-specific payload |
//	+----------------+------------------+------------------------+
//
// The payload is aligned by its codec so that the next block header starts
// on a multiple of the element width. The terminal block carries TagEOL and a
// count of zero.
const blockHeaderSize = 8

func putBlockHeader(buf []byte, tag Tag, count int) {
	binary.LittleEndian.PutUint32(buf, uint32(tag))
	binary.LittleEndian.PutUint32(buf[4:], uint32(count))
}

func readBlockHeader(buf []byte) (Tag, int) {
	return Tag(binary.LittleEndian.Uint32(buf)), int(binary.LittleEndian.Uint32(buf[4:]))
}

// readBlockHeaderChecked is readBlockHeader for untrusted input.
func readBlockHeaderChecked(buf []byte, off int) (Tag, int, error) {
	if off < 0 || off+blockHeaderSize > len(buf) {
		return 0, 0, base.CorruptionErrorf("mosaic: block header at offset %d exceeds %d-byte buffer", off, len(buf))
	}
	tag, count := readBlockHeader(buf[off:])
	if tag >= numTags && tag != TagEOL {
		return 0, 0, base.CorruptionErrorf("mosaic: unknown block tag %d at offset %d", tag, off)
	}
	return tag, count, nil
}

// align returns the next value greater than or equal to offset that's divisible
// by val.
func align(offset, val int) int {
	return (offset + val - 1) / val * val
}

// put stores the low width bytes of x at the start of buf, little-endian.
func (s storage) put(buf []byte, x uint64) {
	switch s.width {
	case 1:
		buf[0] = byte(x)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(x))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(x))
	default:
		binary.LittleEndian.PutUint64(buf, x)
	}
}

// get loads a width-byte little-endian value from the start of buf.
func (s storage) get(buf []byte) uint64 {
	switch s.width {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf))
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf))
	default:
		return binary.LittleEndian.Uint64(buf)
	}
}

// encodeValue returns the bit pattern of v, zero-extended to 64 bits.
func encodeValue[T Value](s storage, v T) uint64 {
	if s.float {
		if s.width == 4 {
			return uint64(math.Float32bits(float32(v)))
		}
		return math.Float64bits(float64(v))
	}
	if s.width == 8 {
		return uint64(v)
	}
	return uint64(v) & (uint64(1)<<(8*s.width) - 1)
}

// decodeValue is the inverse of encodeValue.
func decodeValue[T Value](s storage, x uint64) T {
	switch {
	case s.float && s.width == 4:
		return T(math.Float32frombits(uint32(x)))
	case s.float:
		return T(math.Float64frombits(x))
	case s.unsigned:
		return T(x)
	default:
		shift := 64 - 8*s.width
		return T(int64(x<<shift) >> shift)
	}
}
