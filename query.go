// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

// The query operators walk the block sequence of a compressed column,
// dispatching each block to the operator of the codec that wrote it. The
// operators trust the block sequence; use Validate or Decode to verify
// untrusted data first.
//
// Operators that accept a candidate list restrict their output to the listed
// row identifiers, which must be in ascending order. A nil list admits every
// row; an empty list admits none.

// Verification compares the checksum recorded during compression with the
// checksum of the values produced by decompression.
type Verification struct {
	Expected uint64
	Computed uint64
}

// OK returns true if the checksums match.
func (v Verification) OK() bool { return v.Expected == v.Computed }

// Decompress materializes the column. A checksum mismatch is reported to the
// logger and in the returned Verification; the values are returned regardless.
func (c *Compressed[T]) Decompress(logger Logger) (Column[T], Verification) {
	t := newQueryTask(c)
	t.values = &ValueWriter[T]{values: make([]T, 0, c.Header.Count)}
	codecs := newCodecSet(c.Header)
	for !t.Done() {
		codecs.get(t.tag()).Decompress(t)
	}
	v := Verification{Expected: c.Header.Checksum, Computed: t.checksum.sum()}
	if !v.OK() && logger != nil {
		logger.Errorf("mosaic: checksum mismatch decompressing %s(%d) column of %d elements: expected %016x, computed %016x",
			c.Header.Type, c.Header.Width, c.Header.Count, v.Expected, v.Computed)
	}
	return Column[T]{typ: c.Header.Type, values: t.values.Values(), Seqbase: c.Header.Seqbase}, v
}

// Select returns the row identifiers of the elements satisfying p.
func (c *Compressed[T]) Select(p Predicate[T], cands []OID) []OID {
	t := newQueryTask(c)
	t.SetCandidates(cands)
	t.oids = &OIDWriter{}
	codecs := newCodecSet(c.Header)
	for !t.Done() {
		codecs.get(t.tag()).Select(t, p)
	}
	return t.oids.OIDs()
}

// ThetaSelect returns the row identifiers of the elements v for which
// "v op x" holds.
func (c *Compressed[T]) ThetaSelect(x T, op Op, cands []OID) []OID {
	t := newQueryTask(c)
	t.SetCandidates(cands)
	t.oids = &OIDWriter{}
	codecs := newCodecSet(c.Header)
	for !t.Done() {
		codecs.get(t.tag()).ThetaSelect(t, x, op)
	}
	return t.oids.OIDs()
}

// Projection returns the values of the candidate rows in row order.
func (c *Compressed[T]) Projection(cands []OID) []T {
	t := newQueryTask(c)
	t.SetCandidates(cands)
	t.values = &ValueWriter[T]{}
	codecs := newCodecSet(c.Header)
	for !t.Done() {
		codecs.get(t.tag()).Projection(t)
	}
	return t.values.Values()
}

// Join appends to out a pair (l, r) for every candidate row l of the
// compressed column and row r of right holding equal values. Pairs are
// produced in ascending order of l, then r. The join stops at the first error
// returned by out.
func (c *Compressed[T]) Join(right Column[T], out PairWriter, cands []OID) error {
	t := newQueryTask(c)
	t.SetCandidates(cands)
	t.pairs = out
	codecs := newCodecSet(c.Header)
	for !t.Done() {
		if err := codecs.get(t.tag()).Join(t, right); err != nil {
			return err
		}
	}
	return nil
}
