// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColumnFingerprint(t *testing.T) {
	a := mustColumn[int32](t, TypeInt32, 1, 2, 3)
	require.Equal(t, a.Fingerprint(), mustColumn[int32](t, TypeInt32, 1, 2, 3).Fingerprint())
	require.NotEqual(t, a.Fingerprint(), mustColumn[int32](t, TypeInt32, 1, 2, 4).Fingerprint())
	require.NotEqual(t, a.Fingerprint(), mustColumn[int32](t, TypeInt32, 1, 2).Fingerprint())

	// The logical type is part of the fingerprint; the seqbase is not.
	d, err := MakeColumn(TypeDate, 0, []int32{1, 2, 3})
	require.NoError(t, err)
	require.NotEqual(t, a.Fingerprint(), d.Fingerprint())
	b, err := MakeColumn(TypeInt32, 100, []int32{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	// Floats are hashed by their bit patterns.
	pos := mustColumn[float64](t, TypeFloat64, 0)
	neg := mustColumn[float64](t, TypeFloat64, math.Copysign(0, -1))
	require.NotEqual(t, pos.Fingerprint(), neg.Fingerprint())

	c := mustCompress(t, a, nil)
	got, v := c.Decompress(nil)
	require.True(t, v.OK())
	require.Equal(t, a.Fingerprint(), got.Fingerprint())
}
