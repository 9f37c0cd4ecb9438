// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package bitflip diagnoses checksum mismatches caused by a single flipped
// bit.
package bitflip

// iterationLimit bounds the number of bytes inspected.
const iterationLimit = 40 << 10

// CheckSliceForBitFlip flips each bit of data in turn to see if the result
// matches the expected checksum. It returns the index of the byte and the bit
// if successful. data is left unmodified.
func CheckSliceForBitFlip(
	data []byte, computeChecksum func([]byte) uint64, expectedChecksum uint64,
) (found bool, indexFound int, bitFound int) {
	for i := 0; i < min(len(data), iterationLimit); i++ {
		if foundFlip, bit := checkByteForFlip(data, i, computeChecksum, expectedChecksum); foundFlip {
			return true, i, bit
		}
	}
	return false, 0, 0
}

func checkByteForFlip(
	data []byte, i int, computeChecksum func([]byte) uint64, expectedChecksum uint64,
) (found bool, bit int) {
	for bit := 0; bit < 8; bit++ {
		data[i] ^= 1 << bit
		computed := computeChecksum(data)
		data[i] ^= 1 << bit
		if computed == expectedChecksum {
			return true, bit
		}
	}
	return false, 0
}
