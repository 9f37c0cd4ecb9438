// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/mosaic/internal/invariants"
)

// deltaCodec stores the first element of a block at full width followed by
// one byte per subsequent element holding the difference from its
// predecessor. Signed types accept differences in [-127, 127]; unsigned types
// (oids and string offsets) accept differences in [0, 255].
//
// Differences are computed in the arithmetic of the element type, wrapping on
// overflow, so decoding by wrapping addition reproduces every value exactly.
type deltaCodec[T Value] struct {
	s storage
}

var _ Codec[int32] = (*deltaCodec[int32])(nil)

func (c *deltaCodec[T]) Tag() Tag { return TagDelta }

func (c *deltaCodec[T]) Applicable(typ Type, width int) bool {
	switch {
	case typ.IsTemporal():
		return true
	case typ == TypeInt16, typ == TypeInt32, typ == TypeInt64, typ == TypeOID:
		return true
	case typ == TypeString:
		return width >= 2
	default:
		return false
	}
}

func (c *deltaCodec[T]) BuildSideTable(*Task[T]) {}

func (c *deltaCodec[T]) BlockSize(count int) int {
	return blockHeaderSize + align(c.s.width+count-1, c.s.width)
}

// delta returns the byte encoding of the difference between v and prev, and
// whether that difference is in range.
func (c *deltaCodec[T]) delta(prev, v T) (byte, bool) {
	d := v - prev
	if c.s.unsigned {
		x := uint64(d)
		return byte(x), x <= 255
	}
	x := int64(d)
	return byte(int8(x)), x >= -127 && x <= 127
}

func (c *deltaCodec[T]) undelta(prev T, b byte) T {
	if c.s.unsigned {
		return prev + T(b)
	}
	return prev + T(int8(b))
}

func (c *deltaCodec[T]) Estimate(t *Task[T]) float64 {
	n := t.maxRun()
	i := 0
	if n > 0 && t.fits(c.BlockSize(1)) {
		i = 1
		prev := t.src.At(t.start)
		for ; i < n; i++ {
			v := t.src.At(t.start + i)
			if _, ok := c.delta(prev, v); !ok || !t.fits(c.BlockSize(i+1)) {
				break
			}
			prev = v
		}
	}
	return t.record(TagDelta, i, c.BlockSize(i))
}

func (c *deltaCodec[T]) Compress(t *Task[T]) {
	count := t.estimates[TagDelta].limit - t.start
	if invariants.Enabled && count <= 0 {
		panic(errors.AssertionFailedf("delta compress of %d elements", count))
	}
	putBlockHeader(t.buf[t.blk:], TagDelta, count)
	p := t.payload()
	prev := t.src.At(t.start)
	x := encodeValue(c.s, prev)
	c.s.put(p, x)
	t.checksum.add(x)
	p = p[c.s.width:]
	for i := 1; i < count; i++ {
		v := t.src.At(t.start + i)
		b, ok := c.delta(prev, v)
		if invariants.Enabled && !ok {
			panic(errors.AssertionFailedf("delta out of range at element %d", t.start+i))
		}
		p[i-1] = b
		t.checksum.add(encodeValue(c.s, v))
		prev = v
	}
}

func (c *deltaCodec[T]) Advance(t *Task[T]) {
	t.advance(c.BlockSize(t.count()))
}

func (c *deltaCodec[T]) Skip(t *Task[T]) {
	c.Advance(t)
	t.settle()
}

type deltaDecoder[T Value] struct {
	c     *deltaCodec[T]
	prev  T
	diffs []byte
	i     int
}

func (d *deltaDecoder[T]) next() T {
	if d.i > 0 {
		d.prev = d.c.undelta(d.prev, d.diffs[d.i-1])
	}
	d.i++
	return d.prev
}

func (c *deltaCodec[T]) decoder(t *Task[T]) *deltaDecoder[T] {
	p := t.payload()
	return &deltaDecoder[T]{
		c:     c,
		prev:  decodeValue[T](c.s, c.s.get(p)),
		diffs: p[c.s.width:],
	}
}

func (c *deltaCodec[T]) Decompress(t *Task[T]) {
	scanDecompress[T](t, t.count(), c.decoder(t))
	c.Skip(t)
}

func (c *deltaCodec[T]) Select(t *Task[T], p Predicate[T]) {
	scanSelect[T](t, t.count(), c.decoder(t), p)
	c.Skip(t)
}

func (c *deltaCodec[T]) ThetaSelect(t *Task[T], x T, op Op) {
	c.Select(t, ThetaPredicate(x, op))
}

func (c *deltaCodec[T]) Projection(t *Task[T]) {
	scanProjection[T](t, t.count(), c.decoder(t))
	c.Skip(t)
}

func (c *deltaCodec[T]) Join(t *Task[T], right Column[T]) error {
	err := scanJoin[T](t, t.count(), c.decoder(t), right)
	c.Skip(t)
	return err
}
