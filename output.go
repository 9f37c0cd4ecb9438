// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/mosaic/internal/base"
)

// OIDWriter accumulates the row identifiers produced by a selection, in
// ascending order.
type OIDWriter struct {
	oids []OID
}

// Append adds o to the output.
func (w *OIDWriter) Append(o OID) {
	w.oids = append(w.oids, o)
}

// OIDs returns the accumulated row identifiers.
func (w *OIDWriter) OIDs() []OID { return w.oids }

// Len returns the number of accumulated row identifiers.
func (w *OIDWriter) Len() int { return len(w.oids) }

// Reset discards the accumulated row identifiers, retaining the allocation.
func (w *OIDWriter) Reset() { w.oids = w.oids[:0] }

// ValueWriter accumulates the values produced by a projection or
// decompression, in row order.
type ValueWriter[T Value] struct {
	values []T
}

// Append adds v to the output.
func (w *ValueWriter[T]) Append(v T) {
	w.values = append(w.values, v)
}

// Values returns the accumulated values.
func (w *ValueWriter[T]) Values() []T { return w.values }

// Len returns the number of accumulated values.
func (w *ValueWriter[T]) Len() int { return len(w.values) }

// Reset discards the accumulated values, retaining the allocation.
func (w *ValueWriter[T]) Reset() { w.values = w.values[:0] }

// PairWriter receives the matches produced by a join.
type PairWriter interface {
	// Append records that the left row l matched the right row r. A non-nil
	// error aborts the join.
	Append(l, r OID) error
}

// Pairs is a PairWriter that accumulates matches into two parallel slices.
type Pairs struct {
	Left  []OID
	Right []OID
	// Limit, if positive, bounds the number of pairs. Appending beyond the
	// limit fails with an error marked ErrOutputExhausted.
	Limit int
}

var _ PairWriter = (*Pairs)(nil)

// Append implements PairWriter.
func (p *Pairs) Append(l, r OID) error {
	if p.Limit > 0 && len(p.Left) >= p.Limit {
		return errors.Mark(errors.Newf("mosaic: join output limit of %d pairs reached", p.Limit), base.ErrOutputExhausted)
	}
	p.Left = append(p.Left, l)
	p.Right = append(p.Right, r)
	return nil
}

// Len returns the number of accumulated pairs.
func (p *Pairs) Len() int { return len(p.Left) }
