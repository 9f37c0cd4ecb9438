// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package bitflip

import (
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/require"
)

func TestCheckSliceForBitFlip(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	sum := xxhash.Sum64(data)

	found, _, _ := CheckSliceForBitFlip(data, xxhash.Sum64, sum+1)
	require.False(t, found)

	for _, tc := range []struct{ index, bit int }{{0, 0}, {7, 3}, {42, 7}} {
		corrupt := append([]byte(nil), data...)
		corrupt[tc.index] ^= 1 << tc.bit
		found, index, bit := CheckSliceForBitFlip(corrupt, xxhash.Sum64, sum)
		require.True(t, found)
		require.Equal(t, tc.index, index)
		require.Equal(t, tc.bit, bit)
		corrupt[tc.index] ^= 1 << tc.bit
		require.Equal(t, data, corrupt)
	}
}
