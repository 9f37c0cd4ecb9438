// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Column is an immutable, densely row-identified sequence of fixed-width
// values. The i-th value has the row identifier Seqbase+i.
type Column[T Value] struct {
	typ     Type
	values  []T
	Seqbase OID
}

// MakeColumn returns a column of the provided type over values. The Go type T
// must match the storage representation of typ; string columns use the
// unsigned integer type of their heap offset width.
func MakeColumn[T Value](typ Type, seqbase OID, values []T) (Column[T], error) {
	if err := checkType[T](typ, widthOf[T]()); err != nil {
		return Column[T]{}, err
	}
	return Column[T]{typ: typ, values: values, Seqbase: seqbase}, nil
}

// Type returns the logical type of the column.
func (c Column[T]) Type() Type { return c.typ }

// Width returns the width of each element in bytes.
func (c Column[T]) Width() int { return widthOf[T]() }

// Len returns the number of elements in the column.
func (c Column[T]) Len() int { return len(c.values) }

// At returns the i-th value.
func (c Column[T]) At(i int) T { return c.values[i] }

// OID returns the row identifier of the i-th value.
func (c Column[T]) OID(i int) OID { return c.Seqbase + OID(i) }

// Values returns the underlying values. The slice must not be modified.
func (c Column[T]) Values() []T { return c.values }

// Fingerprint returns a hash of the column's type and contents.
func (c Column[T]) Fingerprint() uint64 {
	s := c.typ.storage(c.Width())
	d := xxhash.New()
	var buf [8]byte
	buf[0] = byte(c.typ)
	buf[1] = byte(s.width)
	_, _ = d.Write(buf[:2])
	for _, v := range c.values {
		s.put(buf[:], encodeValue(s, v))
		_, _ = d.Write(buf[:s.width])
	}
	return d.Sum64()
}

// String implements fmt.Stringer.
func (c Column[T]) String() string {
	return fmt.Sprintf("%s(%d)[%d]@%d", c.typ, c.Width(), len(c.values), c.Seqbase)
}
