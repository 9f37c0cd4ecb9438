// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/mosaic/internal/bitvector"
	"github.com/cockroachdb/mosaic/internal/invariants"
)

// frameCodec is a frame-of-reference encoding. Each block stores its first
// element as the base value, followed by bit-packed indices into a
// column-wide table of offsets from the base. A run ends at the first element
// whose offset from the base is absent from the table, or for which base plus
// offset does not reproduce the element exactly.
//
// The payload is an 8-byte slot holding the base value followed by a
// bit-vector of count indices, padded to a whole number of 64-bit words.
type frameCodec[T Value] struct {
	s     storage
	table *SideTable[T]
}

var _ Codec[int32] = (*frameCodec[int32])(nil)

const frameBaseSize = 8

func (c *frameCodec[T]) Tag() Tag { return TagFrame }

func (c *frameCodec[T]) Applicable(typ Type, _ int) bool {
	switch typ {
	case TypeBit, TypeString:
		return false
	default:
		return typ < numTypes
	}
}

// BuildSideTable collects the offsets of a sequential prefix of the task's
// window, of up to Options.SampleSize elements, from the window's first value.
func (c *frameCodec[T]) BuildSideTable(t *Task[T]) {
	if invariants.Enabled && t.hdr.frozen {
		panic(errors.AssertionFailedf("frame side table built after freeze"))
	}
	n := min(t.stop-t.start, t.opts.SampleSize)
	var b tableBuilder[T]
	b.init(min(n, 4*MaxTableSize))
	if n > 0 {
		base := t.src.At(t.start)
		for i := 0; i < n; i++ {
			b.add(t.src.At(t.start+i) - base)
		}
	}
	*c.table = b.finish()
}

func (c *frameCodec[T]) BlockSize(count int) int {
	return blockHeaderSize + frameBaseSize + bitvector.Size(count, c.table.Bits)
}

// offset returns the table index encoding v relative to base. Decoding must
// reproduce v bit for bit, which floating point rounding and signed zeros can
// prevent.
func (c *frameCodec[T]) offset(base, v T) (int, bool) {
	j, ok := c.table.Lookup(v - base)
	return j, ok && encodeValue(c.s, base+c.table.Values[j]) == encodeValue(c.s, v)
}

func (c *frameCodec[T]) Estimate(t *Task[T]) float64 {
	n := t.maxRun()
	i := 0
	if n > 0 {
		base := t.src.At(t.start)
		for ; i < n; i++ {
			if _, ok := c.offset(base, t.src.At(t.start+i)); !ok || !t.fits(c.BlockSize(i+1)) {
				break
			}
		}
	}
	return t.record(TagFrame, i, c.BlockSize(i))
}

func (c *frameCodec[T]) Compress(t *Task[T]) {
	count := t.estimates[TagFrame].limit - t.start
	if invariants.Enabled && count <= 0 {
		panic(errors.AssertionFailedf("frame compress of %d elements", count))
	}
	putBlockHeader(t.buf[t.blk:], TagFrame, count)
	p := t.payload()
	base := t.src.At(t.start)
	full := storage{width: frameBaseSize}
	full.put(p, encodeValue(c.s, base))
	bv := bitvector.Make(p[frameBaseSize:frameBaseSize+bitvector.Size(count, c.table.Bits)], c.table.Bits)
	for i := 0; i < count; i++ {
		v := t.src.At(t.start + i)
		j, ok := c.offset(base, v)
		if invariants.Enabled && !ok {
			panic(errors.AssertionFailedf("offset of element %d missing from frame table", t.start+i))
		}
		bv.Set(i, uint64(j))
		t.checksum.add(encodeValue(c.s, v))
	}
}

func (c *frameCodec[T]) Advance(t *Task[T]) {
	t.advance(c.BlockSize(t.count()))
}

func (c *frameCodec[T]) Skip(t *Task[T]) {
	c.Advance(t)
	t.settle()
}

// base returns the base value of the current block.
func (c *frameCodec[T]) base(t *Task[T]) T {
	full := storage{width: frameBaseSize}
	return decodeValue[T](c.s, full.get(t.payload()))
}

type frameDecoder[T Value] struct {
	base    T
	offsets []T
	it      bitvector.Iter
}

func (d *frameDecoder[T]) next() T {
	return d.base + d.offsets[d.it.Next()]
}

func (c *frameCodec[T]) decoder(t *Task[T]) *frameDecoder[T] {
	return &frameDecoder[T]{
		base:    c.base(t),
		offsets: c.table.Values,
		it:      bitvector.Make(t.payload()[frameBaseSize:], c.table.Bits).Iter(),
	}
}

func (c *frameCodec[T]) Decompress(t *Task[T]) {
	scanDecompress[T](t, t.count(), c.decoder(t))
	c.Skip(t)
}

// Select evaluates the predicate once per table entry, relative to the
// block's base, and then tests each element's index against the matching
// entries.
func (c *frameCodec[T]) Select(t *Task[T], p Predicate[T]) {
	count := t.count()
	if p.matchesNothing() || t.skipBlock(count) {
		c.Skip(t)
		return
	}
	base := c.base(t)
	var match [MaxTableSize]bool
	for j, off := range c.table.Values {
		match[j] = p.Match(base + off)
	}
	it := bitvector.Make(t.payload()[frameBaseSize:], c.table.Bits).Iter()
	o := t.first()
	for i := 0; i < count; i++ {
		if match[it.Next()] && t.admit(o+OID(i)) {
			t.oids.Append(o + OID(i))
		}
	}
	c.Skip(t)
}

func (c *frameCodec[T]) ThetaSelect(t *Task[T], x T, op Op) {
	c.Select(t, ThetaPredicate(x, op))
}

func (c *frameCodec[T]) Projection(t *Task[T]) {
	scanProjection[T](t, t.count(), c.decoder(t))
	c.Skip(t)
}

func (c *frameCodec[T]) Join(t *Task[T], right Column[T]) error {
	err := scanJoin[T](t, t.count(), c.decoder(t), right)
	c.Skip(t)
	return err
}
