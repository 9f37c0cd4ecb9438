// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import "github.com/cockroachdb/mosaic/internal/base"

var (
	// ErrCorruption is a marker to indicate that encoded data isn't in the
	// expected format.
	ErrCorruption = base.ErrCorruption
	// ErrCapacityExceeded is returned when the destination buffer cannot hold
	// even a raw encoding of the remaining elements.
	ErrCapacityExceeded = base.ErrCapacityExceeded
	// ErrOutputExhausted is returned when an output writer cannot accept
	// another element.
	ErrOutputExhausted = base.ErrOutputExhausted
	// ErrUnsupportedType is returned when a column type cannot be represented
	// by the requested Go type or width.
	ErrUnsupportedType = base.ErrUnsupportedType
)

// IsCorruptionError returns true if the given error indicates corruption.
func IsCorruptionError(err error) bool {
	return base.IsCorruptionError(err)
}
