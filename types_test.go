// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestCheckType(t *testing.T) {
	require.NoError(t, checkType[int8](TypeBit, 1))
	require.NoError(t, checkType[int32](TypeDate, 4))
	require.NoError(t, checkType[int64](TypeTimestamp, 8))
	require.NoError(t, checkType[uint64](TypeOID, 8))
	require.NoError(t, checkType[float32](TypeFloat32, 4))
	require.NoError(t, checkType[uint16](TypeString, 2))

	for _, err := range []error{
		checkType[uint32](TypeInt32, 4),
		checkType[int32](TypeFloat32, 4),
		checkType[int64](TypeOID, 8),
		checkType[int16](TypeString, 2),
		checkType[uint8](TypeString, 3),
		checkType[int32](TypeInt64, 4),
	} {
		require.True(t, errors.Is(err, ErrUnsupportedType), "%+v", err)
	}

	_, err := MakeColumn(TypeInt16, 0, []int32{1})
	require.True(t, errors.Is(err, ErrUnsupportedType), "%+v", err)
}

func TestTypeNames(t *testing.T) {
	for typ := Type(0); typ < numTypes; typ++ {
		parsed, err := ParseType(typ.String())
		require.NoError(t, err)
		require.Equal(t, typ, parsed)
	}
	_, err := ParseType("decimal")
	require.True(t, errors.Is(err, ErrUnsupportedType), "%+v", err)

	for tag := Tag(0); tag < numTags; tag++ {
		parsed, err := ParseTag(tag.String())
		require.NoError(t, err)
		require.Equal(t, tag, parsed)
	}
	require.Equal(t, "eol", TagEOL.String())

	require.True(t, TypeDaytime.IsTemporal())
	require.False(t, TypeInt64.IsTemporal())
}

func TestDomainBounds(t *testing.T) {
	require.Equal(t, int8(math.MinInt8), minValue[int8]())
	require.Equal(t, int8(math.MaxInt8), maxValue[int8]())
	require.Equal(t, int32(math.MinInt32), minValue[int32]())
	require.Equal(t, int64(math.MaxInt64), maxValue[int64]())
	require.Equal(t, uint16(0), minValue[uint16]())
	require.Equal(t, uint16(math.MaxUint16), maxValue[uint16]())
	require.Equal(t, uint64(math.MaxUint64), maxValue[uint64]())
	require.True(t, math.IsInf(float64(minValue[float32]()), -1))
	require.True(t, math.IsInf(maxValue[float64](), 1))
}

func TestSuccessorPredecessor(t *testing.T) {
	v, ok := successor[int32](7)
	require.True(t, ok)
	require.Equal(t, int32(8), v)
	_, ok = successor[int32](math.MaxInt32)
	require.False(t, ok)
	_, ok = predecessor[uint8](0)
	require.False(t, ok)

	f, ok := successor[float64](1)
	require.True(t, ok)
	require.Equal(t, math.Nextafter(1, 2), f)
	g, ok := predecessor[float32](1)
	require.True(t, ok)
	require.Equal(t, math.Nextafter32(1, 0), g)
	_, ok = successor(math.NaN())
	require.False(t, ok)
}

func TestEncodeValue(t *testing.T) {
	check := func(t *testing.T, typ Type, v any) {
		t.Helper()
		switch v := v.(type) {
		case int8:
			s := typ.storage(1)
			require.Equal(t, v, decodeValue[int8](s, encodeValue(s, v)))
		case int16:
			s := typ.storage(2)
			require.Equal(t, v, decodeValue[int16](s, encodeValue(s, v)))
		case int64:
			s := typ.storage(8)
			require.Equal(t, v, decodeValue[int64](s, encodeValue(s, v)))
		case uint32:
			s := typ.storage(4)
			require.Equal(t, v, decodeValue[uint32](s, encodeValue(s, v)))
		case float32:
			s := typ.storage(4)
			require.Equal(t, math.Float32bits(v), math.Float32bits(decodeValue[float32](s, encodeValue(s, v))))
		case float64:
			s := typ.storage(8)
			require.Equal(t, math.Float64bits(v), math.Float64bits(decodeValue[float64](s, encodeValue(s, v))))
		}
	}
	check(t, TypeInt8, int8(-128))
	check(t, TypeInt16, int16(-2))
	check(t, TypeInt64, int64(math.MinInt64))
	check(t, TypeString, uint32(math.MaxUint32))
	check(t, TypeFloat32, float32(-1.5))
	check(t, TypeFloat64, math.Copysign(0, -1))

	s := TypeInt16.storage(2)
	require.Equal(t, uint64(0xfffe), encodeValue(s, int16(-2)))
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue[int16]("-300")
	require.NoError(t, err)
	require.Equal(t, int16(-300), v)

	u, err := ParseValue[uint8]("0xff")
	require.NoError(t, err)
	require.Equal(t, uint8(255), u)

	f, err := ParseValue[float64](" 2.5 ")
	require.NoError(t, err)
	require.Equal(t, 2.5, f)

	_, err = ParseValue[int8]("128")
	require.Error(t, err)

	col, err := ParseColumn[int32](TypeDate, 10, []string{"1", "2"})
	require.NoError(t, err)
	require.Equal(t, []int32{1, 2}, col.Values())
	require.Equal(t, OID(11), col.OID(1))
}
