// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTable[T Value](values ...T) SideTable[T] {
	var b tableBuilder[T]
	b.init(len(values))
	for _, v := range values {
		b.add(v)
	}
	return b.finish()
}

func TestSideTableThreeDistinct(t *testing.T) {
	st := buildTable[int32](5, 7, 5, 9, 7, 5)
	require.Equal(t, []int32{5, 7, 9}, st.Values)
	require.Equal(t, []uint64{3, 2, 1}, st.Freq)
	require.Equal(t, uint8(2), st.Bits)
	require.Equal(t, uint64(3), st.Mask)

	j, ok := st.Lookup(7)
	require.True(t, ok)
	require.Equal(t, 1, j)
	_, ok = st.Lookup(6)
	require.False(t, ok)
	require.Equal(t, "bits=2 [5 7 9]", st.String())
}

func TestSideTableSmall(t *testing.T) {
	st := buildTable[int64]()
	require.Equal(t, 0, st.Len())
	require.Equal(t, uint8(1), st.Bits)

	st = buildTable[int64](4, 4)
	require.Equal(t, []int64{4}, st.Values)
	require.Equal(t, uint8(1), st.Bits)
}

func TestSideTableBounded(t *testing.T) {
	// 300 distinct values; value v occurs v%7+1 times.
	var values []int32
	for v := int32(0); v < 300; v++ {
		for i := int32(0); i <= v%7; i++ {
			values = append(values, v)
		}
	}
	st := buildTable(values...)
	require.Equal(t, MaxTableSize, st.Len())
	require.Equal(t, uint8(8), st.Bits)
	require.True(t, slices.IsSorted(st.Values))

	// The retained entries are the most frequent. Only part of the boundary
	// frequency class fits.
	var minKept uint64 = math.MaxUint64
	for _, f := range st.Freq {
		minKept = min(minKept, f)
	}
	for v := int32(0); v < 300; v++ {
		freq := uint64(v%7 + 1)
		_, ok := st.Lookup(v)
		if freq > minKept {
			require.True(t, ok, "value %d with frequency %d dropped", v, freq)
		}
		if freq < minKept {
			require.False(t, ok, "value %d with frequency %d kept", v, freq)
		}
	}
	require.Equal(t, uint64(2), minKept)
	// Ties within the boundary class favour smaller values.
	_, ok := st.Lookup(1)
	require.True(t, ok)
	_, ok = st.Lookup(295)
	require.False(t, ok)
}

func TestSideTableSkipsNaN(t *testing.T) {
	st := buildTable(1.5, math.NaN(), 1.5, math.NaN())
	require.Equal(t, []float64{1.5}, st.Values)
	_, ok := st.Lookup(math.NaN())
	require.False(t, ok)
}

func TestSampleIndexes(t *testing.T) {
	require.Equal(t, []int{0, 1, 2}, sampleIndexes(3, 10, 1))

	a := sampleIndexes(100000, 4096, DefaultSampleSeed)
	b := sampleIndexes(100000, 4096, DefaultSampleSeed)
	require.Equal(t, a, b)
	require.Len(t, a, 4096)
	for i := 1; i < len(a); i++ {
		require.Less(t, a[i-1], a[i])
	}
	require.GreaterOrEqual(t, a[0], 0)
	require.Less(t, a[len(a)-1], 100000)
}
