// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import "github.com/cockroachdb/errors"

// Codec is the contract every compression technique implements. A codec
// encodes runs of consecutive column elements into blocks and evaluates query
// operators directly against its blocks.
//
// Every query operator (Decompress, Select, ThetaSelect, Projection and Join)
// consumes the block at the task's cursor and leaves the task positioned at
// the following block, or with a nil cursor once the terminal block is
// reached.
//
// Only this package can construct a Task, so codecs are driven solely by the
// column-level entry points such as Compress and Select.
type Codec[T Value] interface {
	// Tag returns the tag written in the header of the codec's blocks.
	Tag() Tag
	// Applicable returns true if the codec can encode columns of the provided
	// type and element width.
	Applicable(typ Type, width int) bool
	// BuildSideTable constructs the codec's side table from the task's window
	// over the source column. It is called once per column before the first
	// block is compressed.
	BuildSideTable(t *Task[T])
	// Estimate returns the compression factor of the longest run the codec can
	// encode from the task's start, or zero if the codec cannot save space or
	// the block would not fit in the destination. The run's extent is recorded
	// in the task for a subsequent call to Compress.
	Estimate(t *Task[T]) float64
	// Compress writes the run found by the preceding Estimate.
	Compress(t *Task[T])
	// Decompress appends the values of the current block to the task's value
	// writer.
	Decompress(t *Task[T])
	// Advance moves the task past the current block.
	Advance(t *Task[T])
	// Skip moves the task past the current block, nulling the cursor if the
	// next block is the terminal one.
	Skip(t *Task[T])
	// Select appends the row identifiers of the current block's elements that
	// satisfy p to the task's oid writer.
	Select(t *Task[T], p Predicate[T])
	// ThetaSelect appends the row identifiers of the current block's elements
	// v for which "v op x" holds.
	ThetaSelect(t *Task[T], x T, op Op)
	// Projection appends the values of the current block's candidate elements
	// to the task's value writer.
	Projection(t *Task[T])
	// Join appends a pair for every element of the current block equal to an
	// element of right. A failure of the pair writer aborts the join.
	Join(t *Task[T], right Column[T]) error
	// BlockSize returns the encoded size of a block of count elements.
	BlockSize(count int) int
}

// codecSet holds one instance of every codec for a column.
type codecSet[T Value] [numTags]Codec[T]

func newCodecSet[T Value](h *Header[T]) *codecSet[T] {
	s := h.storage()
	return &codecSet[T]{
		TagRaw:        &rawCodec[T]{s: s},
		TagDelta:      &deltaCodec[T]{s: s},
		TagDictionary: &dictCodec[T]{s: s, table: &h.Dict},
		TagFrame:      &frameCodec[T]{s: s, table: &h.Frame},
	}
}

// get returns the codec for the provided tag.
func (cs *codecSet[T]) get(tag Tag) Codec[T] {
	if tag >= numTags {
		panic(errors.AssertionFailedf("no codec for tag %s", tag))
	}
	return cs[tag]
}

// candidates returns the codecs enabled by opts that are applicable to h's
// column, in tag order.
func (cs *codecSet[T]) candidates(h *Header[T], opts *Options) []Codec[T] {
	var res []Codec[T]
	for _, c := range cs {
		if opts.enabled(c.Tag()) && c.Applicable(h.Type, h.Width) {
			res = append(res, c)
		}
	}
	return res
}

// A decoder yields the values of a block in order.
type decoder[T Value] interface {
	next() T
}

// scanDecompress appends all count values of the current block to the value
// writer.
func scanDecompress[T Value](t *Task[T], count int, d decoder[T]) {
	for i := 0; i < count; i++ {
		v := d.next()
		t.checksum.add(encodeValue(t.s, v))
		t.values.Append(v)
	}
}

func scanSelect[T Value](t *Task[T], count int, d decoder[T], p Predicate[T]) {
	if p.matchesNothing() || t.skipBlock(count) {
		return
	}
	o := t.first()
	for i := 0; i < count; i++ {
		v := d.next()
		if t.admit(o+OID(i)) && p.Match(v) {
			t.oids.Append(o + OID(i))
		}
	}
}

func scanProjection[T Value](t *Task[T], count int, d decoder[T]) {
	if t.skipBlock(count) {
		return
	}
	o := t.first()
	for i := 0; i < count; i++ {
		v := d.next()
		if t.admit(o + OID(i)) {
			t.values.Append(v)
		}
	}
}

func scanJoin[T Value](t *Task[T], count int, d decoder[T], right Column[T]) error {
	if t.skipBlock(count) {
		return nil
	}
	o := t.first()
	rv := right.Values()
	for i := 0; i < count; i++ {
		v := d.next()
		if !t.admit(o + OID(i)) {
			continue
		}
		for j := range rv {
			if rv[j] == v {
				if err := t.pairs.Append(o+OID(i), right.OID(j)); err != nil {
					return errors.Wrapf(err, "mosaic: joining row %d", o+OID(i))
				}
			}
		}
	}
	return nil
}
