// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

// rawCodec stores elements verbatim. It applies to every column and is the
// fallback when no other codec saves space.
//
// Raw compression proceeds one element at a time: each call to Compress
// appends a single element to the open raw block, opening a new one if the
// previous block was written by another codec.
type rawCodec[T Value] struct {
	s storage
}

var _ Codec[int32] = (*rawCodec[int32])(nil)

func (c *rawCodec[T]) Tag() Tag { return TagRaw }

func (c *rawCodec[T]) Applicable(Type, int) bool { return true }

func (c *rawCodec[T]) BuildSideTable(*Task[T]) {}

func (c *rawCodec[T]) BlockSize(count int) int {
	return blockHeaderSize + count*c.s.width
}

func (c *rawCodec[T]) Estimate(t *Task[T]) float64 {
	size := c.s.width
	if !t.rawOpen || t.count() == t.opts.MaxChunkLen {
		size += blockHeaderSize
	}
	if t.start >= t.stop || !t.fits(size) {
		t.estimates[TagRaw] = estimate{}
		return 0
	}
	t.estimates[TagRaw] = estimate{factor: 1, limit: t.start + 1}
	return 1
}

func (c *rawCodec[T]) Compress(t *Task[T]) {
	if t.rawOpen && t.count() == t.opts.MaxChunkLen {
		c.Advance(t)
	}
	if !t.rawOpen {
		putBlockHeader(t.buf[t.blk:], TagRaw, 0)
		t.rawOpen = true
	}
	n := t.count()
	x := encodeValue(c.s, t.src.At(t.start))
	c.s.put(t.payload()[n*c.s.width:], x)
	t.checksum.add(x)
	putBlockHeader(t.buf[t.blk:], TagRaw, n+1)
	t.start++
}

// Advance moves past the current block. During compression it closes the open
// raw block, whose elements have already been consumed from the source.
func (c *rawCodec[T]) Advance(t *Task[T]) {
	size := c.BlockSize(t.count())
	if t.rawOpen {
		t.blk += size
		t.rawOpen = false
		return
	}
	t.advance(size)
}

func (c *rawCodec[T]) Skip(t *Task[T]) {
	c.Advance(t)
	t.settle()
}

type rawDecoder[T Value] struct {
	s    storage
	data []byte
}

func (d *rawDecoder[T]) next() T {
	v := decodeValue[T](d.s, d.s.get(d.data))
	d.data = d.data[d.s.width:]
	return v
}

func (c *rawCodec[T]) decoder(t *Task[T]) *rawDecoder[T] {
	return &rawDecoder[T]{s: c.s, data: t.payload()}
}

func (c *rawCodec[T]) Decompress(t *Task[T]) {
	scanDecompress[T](t, t.count(), c.decoder(t))
	c.Skip(t)
}

func (c *rawCodec[T]) Select(t *Task[T], p Predicate[T]) {
	scanSelect[T](t, t.count(), c.decoder(t), p)
	c.Skip(t)
}

func (c *rawCodec[T]) ThetaSelect(t *Task[T], x T, op Op) {
	c.Select(t, ThetaPredicate(x, op))
}

func (c *rawCodec[T]) Projection(t *Task[T]) {
	scanProjection[T](t, t.count(), c.decoder(t))
	c.Skip(t)
}

func (c *rawCodec[T]) Join(t *Task[T], right Column[T]) error {
	err := scanJoin[T](t, t.count(), c.decoder(t), right)
	c.Skip(t)
	return err
}
