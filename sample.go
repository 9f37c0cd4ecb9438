// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"slices"

	"github.com/cockroachdb/swiss"
	"golang.org/x/exp/rand"
)

// sampleIndexes returns k distinct indexes drawn uniformly from [0, n) in
// ascending order. If k >= n every index is returned. The same seed always
// yields the same sample.
func sampleIndexes(n, k int, seed uint64) []int {
	if k >= n {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	// Floyd's algorithm: one random draw per sampled index.
	rng := rand.New(rand.NewSource(seed))
	var chosen swiss.Map[int, struct{}]
	chosen.Init(k)
	defer chosen.Close()
	idx := make([]int, 0, k)
	for j := n - k; j < n; j++ {
		i := rng.Intn(j + 1)
		if _, ok := chosen.Get(i); ok {
			i = j
		}
		chosen.Put(i, struct{}{})
		idx = append(idx, i)
	}
	slices.Sort(idx)
	return idx
}
