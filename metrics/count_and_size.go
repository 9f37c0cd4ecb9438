// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package metrics holds aggregate counters reported by compression passes.
package metrics

import (
	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/redact"
)

// CountAndSize tracks the number and total encoded size of a set of blocks,
// such as the blocks written by one codec.
type CountAndSize struct {
	// Count is the number of blocks.
	Count uint64

	// Bytes is the total size of all blocks.
	Bytes uint64
}

// Inc adds a single block of the given size.
func (cs *CountAndSize) Inc(size uint64) {
	cs.Count++
	cs.Bytes += size
}

// Accumulate adds the counts and sizes of other.
func (cs *CountAndSize) Accumulate(other CountAndSize) {
	cs.Count += other.Count
	cs.Bytes += other.Bytes
}

// IsZero returns true if no blocks were counted.
func (cs CountAndSize) IsZero() bool {
	return cs.Count == 0 && cs.Bytes == 0
}

// MeanBytes returns the mean block size, or zero if no blocks were counted.
func (cs CountAndSize) MeanBytes() uint64 {
	if cs.Count == 0 {
		return 0
	}
	return cs.Bytes / cs.Count
}

func (cs CountAndSize) String() string {
	return redact.StringWithoutMarkers(cs)
}

// SafeFormat implements redact.SafeFormatter.
func (cs CountAndSize) SafeFormat(w redact.SafePrinter, verb rune) {
	w.Printf("%s (%s)", crhumanize.Count(cs.Count, crhumanize.Compact), crhumanize.Bytes(cs.Bytes, crhumanize.Compact, crhumanize.OmitI))
}
