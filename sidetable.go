// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/mosaic/internal/bitvector"
	"github.com/cockroachdb/swiss"
)

// MaxTableSize bounds the number of entries in a side table. Indices into a
// table fit in a byte.
const MaxTableSize = 256

// SideTable is a bounded, sorted table of distinct values shared by all
// blocks of one codec within a column. The dictionary codec stores column
// values; the frame codec stores offsets from a block's base value.
type SideTable[T Value] struct {
	// Values holds the table entries in ascending order.
	Values []T
	// Freq[i] is the number of sampled elements equal to Values[i].
	Freq []uint64
	// Bits is the width of an encoded table index.
	Bits uint8
	// Mask selects the low Bits bits of a word.
	Mask uint64
}

// Len returns the number of entries in the table.
func (st *SideTable[T]) Len() int { return len(st.Values) }

// Lookup returns the index of v within the table.
func (st *SideTable[T]) Lookup(v T) (int, bool) {
	return slices.BinarySearch(st.Values, v)
}

// String returns a debug representation of the table.
func (st *SideTable[T]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "bits=%d [", st.Bits)
	for i, v := range st.Values {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%v", v)
	}
	sb.WriteByte(']')
	return sb.String()
}

// emptySideTable returns a table with no entries.
func emptySideTable[T Value]() SideTable[T] {
	bits := bitvector.WidthFor(0)
	return SideTable[T]{Values: []T{}, Freq: []uint64{}, Bits: bits, Mask: bitvector.Mask(bits)}
}

type tableEntry[T Value] struct {
	value T
	freq  uint64
}

// tableBuilder accumulates value frequencies. NaNs are never admitted to a
// table since they compare unequal to everything, including themselves.
type tableBuilder[T Value] struct {
	counts swiss.Map[T, uint64]
}

func (b *tableBuilder[T]) init(n int) {
	b.counts.Init(n)
}

func (b *tableBuilder[T]) add(v T) {
	if isNaN(v) {
		return
	}
	// Signed zeros share one entry.
	if v == 0 {
		v = 0
	}
	c, _ := b.counts.Get(v)
	b.counts.Put(v, c+1)
}

// finish keeps the MaxTableSize most frequent values, breaking ties by
// smaller value, and returns them sorted in ascending order.
func (b *tableBuilder[T]) finish() SideTable[T] {
	entries := make([]tableEntry[T], 0, b.counts.Len())
	b.counts.All(func(v T, freq uint64) bool {
		entries = append(entries, tableEntry[T]{value: v, freq: freq})
		return true
	})
	b.counts.Close()
	slices.SortFunc(entries, func(a, b tableEntry[T]) int {
		if c := cmp.Compare(b.freq, a.freq); c != 0 {
			return c
		}
		return cmp.Compare(a.value, b.value)
	})
	if len(entries) > MaxTableSize {
		entries = entries[:MaxTableSize]
	}
	slices.SortFunc(entries, func(a, b tableEntry[T]) int {
		return cmp.Compare(a.value, b.value)
	})
	st := SideTable[T]{
		Values: make([]T, len(entries)),
		Freq:   make([]uint64, len(entries)),
	}
	for i := range entries {
		st.Values[i] = entries[i].value
		st.Freq[i] = entries[i].freq
	}
	st.Bits = bitvector.WidthFor(len(entries))
	st.Mask = bitvector.Mask(st.Bits)
	return st
}
