// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/mosaic/internal/base"
	"github.com/cockroachdb/mosaic/internal/bitflip"
	"github.com/cockroachdb/mosaic/internal/bitvector"
)

// Header holds the per-column state shared by every block of a compressed
// column: the column's shape, the side tables of the dictionary and frame
// codecs, and the checksum computed while compressing.
//
// A Header is built once before the first block is written and is read-only
// afterwards, so concurrent scans of one compressed column may share it.
type Header[T Value] struct {
	Type    Type
	Width   int
	Count   int
	Seqbase OID
	// Dict holds the dictionary codec's value table.
	Dict SideTable[T]
	// Frame holds the frame codec's offset table.
	Frame SideTable[T]
	// Checksum is computed over every value in the order compressed.
	Checksum uint64

	frozen bool
}

func (h *Header[T]) storage() storage { return h.Type.storage(h.Width) }

// freeze marks the side tables as complete.
func (h *Header[T]) freeze() { h.frozen = true }

// String returns a debug representation of the header.
func (h *Header[T]) String() string {
	return fmt.Sprintf("%s(%d) count=%d seqbase=%d\ndict: %s\nframe: %s\nchecksum: %016x",
		h.Type, h.Width, h.Count, h.Seqbase, h.Dict.String(), h.Frame.String(), h.Checksum)
}

const (
	headerMagic   = 0x6d6f7361 // "mosa"
	headerVersion = 1
)

// The header encoding is:
//
//	magic     uint32
//	version   uint8
//	type      uint8
//	width     uint8
//	count     uint64
//	seqbase   uint64
//	dict      table
//	frame     table
//	checksum  uint64
//	trailer   uint64 (xxhash64 of the preceding bytes)
//
// where a table is:
//
//	n         uint16
//	bits      uint8
//	mask      uint64
//	values    n * width bytes
//	freqs     n * uint64
//
// All integers are little-endian.

// Encode appends the encoded header to buf and returns the result.
func (h *Header[T]) Encode(buf []byte) []byte {
	start := len(buf)
	s := h.storage()
	buf = binary.LittleEndian.AppendUint32(buf, headerMagic)
	buf = append(buf, headerVersion, byte(h.Type), byte(h.Width))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(h.Count))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(h.Seqbase))
	buf = encodeTable(buf, s, &h.Dict)
	buf = encodeTable(buf, s, &h.Frame)
	buf = binary.LittleEndian.AppendUint64(buf, h.Checksum)
	return binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(buf[start:]))
}

func encodeTable[T Value](buf []byte, s storage, st *SideTable[T]) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(st.Values)))
	buf = append(buf, st.Bits)
	buf = binary.LittleEndian.AppendUint64(buf, st.Mask)
	var tmp [8]byte
	for _, v := range st.Values {
		s.put(tmp[:], encodeValue(s, v))
		buf = append(buf, tmp[:s.width]...)
	}
	for _, f := range st.Freq {
		buf = binary.LittleEndian.AppendUint64(buf, f)
	}
	return buf
}

// DecodeHeader decodes a header encoded by Header.Encode. It returns the
// header and the number of bytes consumed. Malformed input yields an error
// marked ErrCorruption; a well-formed header for a type that T cannot
// represent yields an error marked ErrUnsupportedType.
func DecodeHeader[T Value](buf []byte) (*Header[T], int, error) {
	d := headerDecoder{buf: buf}
	if magic := d.uint32(); d.err == nil && magic != headerMagic {
		return nil, 0, base.CorruptionErrorf("mosaic: bad header magic %#x", magic)
	}
	if v := d.byte(); d.err == nil && v != headerVersion {
		return nil, 0, base.CorruptionErrorf("mosaic: unsupported header version %d", v)
	}
	h := &Header[T]{Type: Type(d.byte()), Width: int(d.byte())}
	if d.err != nil {
		return nil, 0, d.err
	}
	if err := checkType[T](h.Type, h.Width); err != nil {
		return nil, 0, err
	}
	h.Count = int(d.uint64())
	h.Seqbase = OID(d.uint64())
	s := h.storage()
	decodeTableInto(&d, s, &h.Dict)
	decodeTableInto(&d, s, &h.Frame)
	h.Checksum = d.uint64()
	n := d.off
	trailer := d.uint64()
	if d.err != nil {
		return nil, 0, d.err
	}
	if sum := xxhash.Sum64(buf[:n]); sum != trailer {
		scratch := append([]byte(nil), buf[:n]...)
		if found, i, bit := bitflip.CheckSliceForBitFlip(scratch, xxhash.Sum64, trailer); found {
			return nil, 0, base.CorruptionErrorf(
				"mosaic: header checksum mismatch: computed %016x, stored %016x; bit %d of byte %d is flipped",
				sum, trailer, bit, i)
		}
		return nil, 0, base.CorruptionErrorf("mosaic: header checksum mismatch: computed %016x, stored %016x", sum, trailer)
	}
	h.freeze()
	return h, d.off, nil
}

// headerDecoder reads fixed-width little-endian fields, recording the first
// error encountered.
type headerDecoder struct {
	buf []byte
	off int
	err error
}

func (d *headerDecoder) next(n int) []byte {
	if d.err != nil {
		return nil
	}
	if d.off+n > len(d.buf) {
		d.err = base.CorruptionErrorf("mosaic: header truncated at offset %d", d.off)
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

func (d *headerDecoder) byte() byte {
	if b := d.next(1); b != nil {
		return b[0]
	}
	return 0
}

func (d *headerDecoder) uint16() uint16 {
	if b := d.next(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (d *headerDecoder) uint32() uint32 {
	if b := d.next(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (d *headerDecoder) uint64() uint64 {
	if b := d.next(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func decodeTableInto[T Value](d *headerDecoder, s storage, st *SideTable[T]) {
	n := int(d.uint16())
	st.Bits = d.byte()
	st.Mask = d.uint64()
	if d.err != nil {
		return
	}
	if n > MaxTableSize || st.Bits != bitvector.WidthFor(n) || st.Mask != bitvector.Mask(st.Bits) {
		d.err = base.CorruptionErrorf("mosaic: invalid side table: %d entries, %d bits, mask %#x", n, st.Bits, st.Mask)
		return
	}
	st.Values = make([]T, n)
	for i := range st.Values {
		b := d.next(s.width)
		if b == nil {
			return
		}
		st.Values[i] = decodeValue[T](s, s.get(b))
		if i > 0 && !(st.Values[i-1] < st.Values[i]) {
			d.err = base.CorruptionErrorf("mosaic: side table not strictly ascending at entry %d", i)
			return
		}
	}
	st.Freq = make([]uint64, n)
	for i := range st.Freq {
		st.Freq[i] = d.uint64()
	}
}
