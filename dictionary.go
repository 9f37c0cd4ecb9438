// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/mosaic/internal/bitvector"
	"github.com/cockroachdb/mosaic/internal/invariants"
)

// dictCodec encodes elements as bit-packed indices into a column-wide table
// of up to MaxTableSize values. The table is built from a random sample of the
// column, so a run ends at the first element absent from the table.
//
// The payload is a bit-vector of count indices, each table.Bits wide, padded
// to a whole number of 64-bit words.
type dictCodec[T Value] struct {
	s     storage
	table *SideTable[T]
}

var _ Codec[int32] = (*dictCodec[int32])(nil)

func (c *dictCodec[T]) Tag() Tag { return TagDictionary }

func (c *dictCodec[T]) Applicable(typ Type, width int) bool {
	switch typ {
	case TypeBit:
		return false
	case TypeString:
		return width == 1 || width == 2 || width == 4 || width == 8
	default:
		return typ < numTypes
	}
}

// BuildSideTable samples up to Options.SampleSize elements of the task's
// window and keeps the most frequent values.
func (c *dictCodec[T]) BuildSideTable(t *Task[T]) {
	if invariants.Enabled && t.hdr.frozen {
		panic(errors.AssertionFailedf("dictionary side table built after freeze"))
	}
	n := t.stop - t.start
	idx := sampleIndexes(n, t.opts.SampleSize, t.opts.SampleSeed)
	var b tableBuilder[T]
	b.init(min(len(idx), 4*MaxTableSize))
	for _, i := range idx {
		b.add(t.src.At(t.start + i))
	}
	*c.table = b.finish()
}

// lookup returns the table index of v. Floating point zeros of opposite sign
// compare equal but are distinct values.
func (c *dictCodec[T]) lookup(v T) (int, bool) {
	j, ok := c.table.Lookup(v)
	return j, ok && (!c.s.float || encodeValue(c.s, c.table.Values[j]) == encodeValue(c.s, v))
}

func (c *dictCodec[T]) BlockSize(count int) int {
	return blockHeaderSize + bitvector.Size(count, c.table.Bits)
}

func (c *dictCodec[T]) Estimate(t *Task[T]) float64 {
	n := t.maxRun()
	i := 0
	for ; i < n; i++ {
		if _, ok := c.lookup(t.src.At(t.start + i)); !ok || !t.fits(c.BlockSize(i+1)) {
			break
		}
	}
	return t.record(TagDictionary, i, c.BlockSize(i))
}

func (c *dictCodec[T]) Compress(t *Task[T]) {
	count := t.estimates[TagDictionary].limit - t.start
	if invariants.Enabled && count <= 0 {
		panic(errors.AssertionFailedf("dictionary compress of %d elements", count))
	}
	putBlockHeader(t.buf[t.blk:], TagDictionary, count)
	bv := bitvector.Make(t.payload()[:bitvector.Size(count, c.table.Bits)], c.table.Bits)
	for i := 0; i < count; i++ {
		v := t.src.At(t.start + i)
		j, ok := c.lookup(v)
		if invariants.Enabled && !ok {
			panic(errors.AssertionFailedf("value %v of element %d missing from dictionary", v, t.start+i))
		}
		bv.Set(i, uint64(j))
		t.checksum.add(encodeValue(c.s, v))
	}
}

func (c *dictCodec[T]) Advance(t *Task[T]) {
	t.advance(c.BlockSize(t.count()))
}

func (c *dictCodec[T]) Skip(t *Task[T]) {
	c.Advance(t)
	t.settle()
}

type dictDecoder[T Value] struct {
	values []T
	it     bitvector.Iter
}

func (d *dictDecoder[T]) next() T {
	return d.values[d.it.Next()]
}

func (c *dictCodec[T]) decoder(t *Task[T]) *dictDecoder[T] {
	return &dictDecoder[T]{
		values: c.table.Values,
		it:     bitvector.Make(t.payload(), c.table.Bits).Iter(),
	}
}

func (c *dictCodec[T]) Decompress(t *Task[T]) {
	scanDecompress[T](t, t.count(), c.decoder(t))
	c.Skip(t)
}

// Select evaluates the predicate once per table entry and then tests each
// element's index against the matching entries.
func (c *dictCodec[T]) Select(t *Task[T], p Predicate[T]) {
	count := t.count()
	if p.matchesNothing() || t.skipBlock(count) {
		c.Skip(t)
		return
	}
	var match [MaxTableSize]bool
	for j, v := range c.table.Values {
		match[j] = p.Match(v)
	}
	it := bitvector.Make(t.payload(), c.table.Bits).Iter()
	o := t.first()
	for i := 0; i < count; i++ {
		j := it.Next()
		if match[j] && t.admit(o+OID(i)) {
			t.oids.Append(o + OID(i))
		}
	}
	c.Skip(t)
}

func (c *dictCodec[T]) ThetaSelect(t *Task[T], x T, op Op) {
	c.Select(t, ThetaPredicate(x, op))
}

func (c *dictCodec[T]) Projection(t *Task[T]) {
	scanProjection[T](t, t.count(), c.decoder(t))
	c.Skip(t)
}

func (c *dictCodec[T]) Join(t *Task[T], right Column[T]) error {
	err := scanJoin[T](t, t.count(), c.decoder(t), right)
	c.Skip(t)
	return err
}
