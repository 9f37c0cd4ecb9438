// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "github.com/cockroachdb/errors"

// ErrCorruption is a marker to indicate that encoded mosaic data isn't in the
// expected format.
var ErrCorruption = errors.New("mosaic: corruption")

// ErrCapacityExceeded is a marker indicating that the destination buffer of a
// compression pass cannot hold another block.
var ErrCapacityExceeded = errors.New("mosaic: destination capacity exceeded")

// ErrOutputExhausted is a marker indicating that an output writer could not
// grow to accept another element.
var ErrOutputExhausted = errors.New("mosaic: output exhausted")

// ErrUnsupportedType is a marker indicating that a column type or width
// cannot be represented.
var ErrUnsupportedType = errors.New("mosaic: unsupported type")

// CorruptionErrorf formats according to a format specifier and returns the
// string as an error value that is marked as a corruption error.
func CorruptionErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrCorruption)
}

// IsCorruptionError returns true if the given error indicates corruption.
func IsCorruptionError(err error) bool {
	return errors.Is(err, ErrCorruption)
}
