// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/mosaic/internal/invariants"
)

// estimate is the outcome of a codec's Estimate: the compression factor of
// the longest run the codec can encode from the task's start, and the index
// one past the end of that run.
type estimate struct {
	factor float64
	limit  int
}

// Task holds the mutable state of one pass over a column: a compression pass
// over an uncompressed column, or a decompression or query pass over a
// compressed one. A Task is owned by a single goroutine.
//
// The task is positioned at a block. During compression the block is the next
// one to be written, or the open raw block receiving elements. During a query
// the block is the next one to be read, and the cursor is nil once the
// terminal block is reached.
type Task[T Value] struct {
	hdr  *Header[T]
	opts *Options
	s    storage

	// src is the column being compressed.
	src Column[T]
	// buf holds the blocks: the destination of a compression pass or the
	// source of a query.
	buf []byte
	// blk is the offset of the current block within buf, or -1 once a query
	// has passed the last block.
	blk int
	// rawOpen is set while the current block is a raw block accepting
	// elements.
	rawOpen bool

	// start is the index of the first element of the current block. stop
	// bounds the window over the source column.
	start, stop int

	estimates [numTags]estimate

	// cands, if hasCands is set, restricts queries to the listed row
	// identifiers. candIdx is the position of the first candidate not yet
	// passed.
	cands    []OID
	candIdx  int
	hasCands bool

	oids   *OIDWriter
	values *ValueWriter[T]
	pairs  PairWriter

	checksum checksum
}

// newCompressTask returns a task positioned at the start of an empty
// destination buffer of the provided capacity.
func newCompressTask[T Value](h *Header[T], src Column[T], opts *Options, capacity int) *Task[T] {
	t := &Task[T]{
		hdr:  h,
		opts: opts,
		s:    h.storage(),
		src:  src,
		buf:  make([]byte, capacity),
		stop: src.Len(),
	}
	t.checksum.init()
	return t
}

// newQueryTask returns a task positioned at the first block of c.
func newQueryTask[T Value](c *Compressed[T]) *Task[T] {
	t := &Task[T]{
		hdr:  c.Header,
		s:    c.Header.storage(),
		buf:  c.Data,
		stop: c.Header.Count,
	}
	t.checksum.init()
	t.settle()
	return t
}

// SetCandidates restricts subsequent query operators to the provided
// ascending list of row identifiers. A nil list removes the restriction; an
// empty, non-nil list admits nothing.
func (t *Task[T]) SetCandidates(cands []OID) {
	t.cands, t.candIdx, t.hasCands = cands, 0, cands != nil
}

// Start returns the index of the first element of the current block.
func (t *Task[T]) Start() int { return t.start }

// Done returns true once a query task has passed the terminal block.
func (t *Task[T]) Done() bool { return t.blk < 0 }

// tag returns the tag of the current block.
func (t *Task[T]) tag() Tag {
	tag, _ := readBlockHeader(t.buf[t.blk:])
	return tag
}

// count returns the number of elements in the current block.
func (t *Task[T]) count() int {
	_, n := readBlockHeader(t.buf[t.blk:])
	return n
}

// payload returns the bytes following the current block's header.
func (t *Task[T]) payload() []byte {
	return t.buf[t.blk+blockHeaderSize:]
}

// first returns the row identifier of the first element of the current block.
func (t *Task[T]) first() OID {
	return t.hdr.Seqbase + OID(t.start)
}

// advance moves the task past the current block, whose encoded size is size.
func (t *Task[T]) advance(size int) {
	n := t.count()
	if invariants.Enabled && n == 0 {
		panic(errors.AssertionFailedf("advancing past empty %s block at offset %d", t.tag(), t.blk))
	}
	t.blk += size
	t.start += n
}

// settle nulls the block cursor if it rests on the terminal block.
func (t *Task[T]) settle() {
	if t.blk >= 0 && t.tag() == TagEOL {
		t.blk = -1
	}
}

// end returns the offset one past the last byte written by a compression
// pass, including the open raw block if any.
func (t *Task[T]) end() int {
	if t.rawOpen {
		return t.blk + blockHeaderSize + t.count()*t.s.width
	}
	return t.blk
}

// fits returns true if a block of the provided size can be appended while
// leaving room for the terminal block.
func (t *Task[T]) fits(size int) bool {
	return size+blockHeaderSize <= invariants.SafeSub(len(t.buf), t.end())
}

// maxRun returns the number of source elements a codec may consider from the
// task's start.
func (t *Task[T]) maxRun() int {
	return min(t.stop-t.start, t.opts.MaxChunkLen)
}

// record stores the outcome of a codec's Estimate. A run of i elements
// encoded in size bytes has the factor i*width/size; the factor is zero when
// encoding does not save space.
func (t *Task[T]) record(tag Tag, i, size int) float64 {
	raw := i * t.s.width
	e := estimate{limit: t.start + i}
	if i > 0 && size < raw {
		e.factor = float64(raw) / float64(size)
	}
	t.estimates[tag] = e
	return e.factor
}

// skipBlock returns true if the candidate list rules out every element of a
// block of count elements starting at the task's start.
func (t *Task[T]) skipBlock(count int) bool {
	if !t.hasCands {
		return false
	}
	first := t.first()
	for t.candIdx < len(t.cands) && t.cands[t.candIdx] < first {
		t.candIdx++
	}
	return t.candIdx >= len(t.cands) || t.cands[t.candIdx] >= first+OID(count)
}

// admit returns true if the element with row identifier o passes the
// candidate list. Calls must be made in ascending order of o.
func (t *Task[T]) admit(o OID) bool {
	if !t.hasCands {
		return true
	}
	for t.candIdx < len(t.cands) && t.cands[t.candIdx] < o {
		t.candIdx++
	}
	return t.candIdx < len(t.cands) && t.cands[t.candIdx] == o
}

// checksum is a running hash over a sequence of values.
type checksum struct {
	d   *xxhash.Digest
	buf [8]byte
}

func (c *checksum) init() {
	c.d = xxhash.New()
}

func (c *checksum) add(x uint64) {
	binary.LittleEndian.PutUint64(c.buf[:], x)
	_, _ = c.d.Write(c.buf[:])
}

func (c *checksum) sum() uint64 {
	return c.d.Sum64()
}
