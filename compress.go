// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/mosaic/internal/base"
	"github.com/cockroachdb/mosaic/internal/bitvector"
	"github.com/cockroachdb/mosaic/internal/invariants"
)

// Compressed is a compressed column: its header and the sequence of blocks
// ending with the terminal block.
type Compressed[T Value] struct {
	Header *Header[T]
	Data   []byte
}

// Len returns the number of elements in the column.
func (c *Compressed[T]) Len() int { return c.Header.Count }

// Size returns the size of the encoded blocks in bytes.
func (c *Compressed[T]) Size() int { return len(c.Data) }

// Compress compresses col. The driver walks the column from its first element,
// asks every enabled and applicable codec to estimate the run it could encode
// from the current position, and writes the run with the highest compression
// factor. Ties favour the codec that wrote the previous block. Raw always
// accepts a single element, so compression fails only if the destination
// capacity is exhausted.
func Compress[T Value](col Column[T], opts *Options) (*Compressed[T], error) {
	opts = opts.EnsureDefaults()
	n := col.Len()
	h := &Header[T]{
		Type:    col.Type(),
		Width:   col.Width(),
		Count:   n,
		Seqbase: col.Seqbase,
		Dict:    emptySideTable[T](),
		Frame:   emptySideTable[T](),
	}
	capacity := opts.capacityFor(n, h.Width)
	if capacity < blockHeaderSize {
		return nil, errors.Wrapf(base.ErrCapacityExceeded, "mosaic: capacity of %d bytes", capacity)
	}
	t := newCompressTask(h, col, opts, capacity)
	codecs := newCodecSet(h)
	cands := codecs.candidates(h, opts)
	for _, c := range cands {
		c.BuildSideTable(t)
	}
	h.freeze()

	raw := codecs.get(TagRaw)
	var prev Codec[T]
	for t.start < n {
		var best Codec[T]
		var bestFactor float64
		for _, c := range cands {
			if f := c.Estimate(t); f > bestFactor {
				best, bestFactor = c, f
			}
		}
		if prev != nil && bestFactor > 0 && t.estimates[prev.Tag()].factor == bestFactor {
			best = prev
		}
		if best == nil {
			return nil, errors.Wrapf(base.ErrCapacityExceeded,
				"mosaic: element %d of %d does not fit in %d bytes", t.start, n, capacity)
		}
		if best.Tag() != TagRaw && t.rawOpen {
			raw.Advance(t)
		}
		best.Compress(t)
		if best.Tag() != TagRaw {
			best.Advance(t)
		}
		prev = best
	}
	if t.rawOpen {
		raw.Advance(t)
	}
	putBlockHeader(t.buf[t.blk:], TagEOL, 0)
	h.Checksum = t.checksum.sum()

	c := &Compressed[T]{Header: h, Data: t.buf[:t.blk+blockHeaderSize:t.blk+blockHeaderSize]}
	if invariants.Sometimes(25) {
		if err := c.Validate(); err != nil {
			panic(errors.AssertionFailedf("mosaic: compressed column fails validation: %v", err))
		}
	}
	if opts.Metrics != nil {
		opts.Metrics.record(c.Layout())
	}
	return c, nil
}

// Encode appends the encoded header followed by the blocks to buf.
func (c *Compressed[T]) Encode(buf []byte) []byte {
	buf = c.Header.Encode(buf)
	return append(buf, c.Data...)
}

// Decode decodes a compressed column encoded by Compressed.Encode and verifies
// the integrity of its block sequence. The returned column aliases buf.
func Decode[T Value](buf []byte) (*Compressed[T], error) {
	h, n, err := DecodeHeader[T](buf)
	if err != nil {
		return nil, err
	}
	c := &Compressed[T]{Header: h, Data: buf[n:]}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate walks the block sequence and verifies that every block lies within
// the data, that table indices lie within their tables, and that the block
// counts sum to the column length.
func (c *Compressed[T]) Validate() error {
	codecs := newCodecSet(c.Header)
	off, total := 0, 0
	for {
		tag, count, err := readBlockHeaderChecked(c.Data, off)
		if err != nil {
			return err
		}
		if tag == TagEOL {
			if total != c.Header.Count {
				return base.CorruptionErrorf("mosaic: blocks hold %d elements, header declares %d", total, c.Header.Count)
			}
			if off+blockHeaderSize != len(c.Data) {
				return base.CorruptionErrorf("mosaic: %d trailing bytes after terminal block",
					invariants.SafeSub(len(c.Data), off+blockHeaderSize))
			}
			return nil
		}
		if count == 0 {
			return base.CorruptionErrorf("mosaic: empty %s block at offset %d", tag, off)
		}
		size := codecs.get(tag).BlockSize(count)
		if off+size > len(c.Data) {
			return base.CorruptionErrorf("mosaic: %s block at offset %d overruns data", tag, off)
		}
		if err := c.validateIndices(tag, off, count); err != nil {
			return err
		}
		off += size
		total += count
	}
}

func (c *Compressed[T]) validateIndices(tag Tag, off, count int) error {
	var table *SideTable[T]
	payload := c.Data[off+blockHeaderSize:]
	switch tag {
	case TagDictionary:
		table = &c.Header.Dict
	case TagFrame:
		table = &c.Header.Frame
		payload = payload[frameBaseSize:]
	default:
		return nil
	}
	it := bitvector.Make(payload, table.Bits).Iter()
	for i := 0; i < count; i++ {
		if j := it.Next(); j >= uint64(table.Len()) {
			return base.CorruptionErrorf("mosaic: %s block at offset %d: index %d exceeds table of %d entries",
				tag, off, j, table.Len())
		}
	}
	return nil
}
