// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package bitvector implements packed arrays of fixed bit-width unsigned
// integers.
//
// Values are packed least-significant bit first into little-endian 64-bit
// words. A value may straddle two adjacent words. The encoded size is always a
// multiple of 8 bytes so that every word read stays within the buffer.
package bitvector

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/mosaic/internal/invariants"
)

// MaxBits is the widest value a Vector can hold.
const MaxBits = 32

// Size returns the number of bytes required to encode n values of the provided
// bit width. The result is rounded up to a whole number of 64-bit words.
func Size(n int, bits uint8) int {
	return ((n*int(bits) + 63) >> 6) << 3
}

// WidthFor returns the number of bits required to address n distinct entries.
// A width is never smaller than 1, even for tables of zero or one entry.
func WidthFor(n int) uint8 {
	w := uint8(1)
	for j := 2; j < n; j *= 2 {
		w++
	}
	return w
}

// Mask returns the mask selecting the low bits of a word.
func Mask(bits uint8) uint64 {
	return (uint64(1) << bits) - 1
}

// Vector is a read-write view over an encoded bit-vector.
type Vector struct {
	data []byte
	bits uint
	mask uint64
}

// Make returns a Vector over data. The data slice must be at least Size(n,
// bits) bytes for any index n that is subsequently accessed.
func Make(data []byte, bits uint8) Vector {
	if bits == 0 || bits > MaxBits {
		panic(errors.AssertionFailedf("bit width %d out of range [1, %d]", bits, MaxBits))
	}
	return Vector{data: data, bits: uint(bits), mask: Mask(bits)}
}

// Get returns the i-th value.
func (v Vector) Get(i int) uint64 {
	bit := uint(i) * v.bits
	word, shift := bit>>6, bit&63
	invariants.CheckBounds(int(word<<3), len(v.data))
	x := binary.LittleEndian.Uint64(v.data[word<<3:]) >> shift
	if shift+v.bits > 64 {
		x |= binary.LittleEndian.Uint64(v.data[(word+1)<<3:]) << (64 - shift)
	}
	return x & v.mask
}

// Set sets the i-th value to x. Bits of x above the vector's width are
// discarded.
func (v Vector) Set(i int, x uint64) {
	x &= v.mask
	bit := uint(i) * v.bits
	word, shift := bit>>6, bit&63
	lo := v.data[word<<3:]
	w := binary.LittleEndian.Uint64(lo)
	w = (w &^ (v.mask << shift)) | x<<shift
	binary.LittleEndian.PutUint64(lo, w)
	if shift+v.bits > 64 {
		hi := v.data[(word+1)<<3:]
		w = binary.LittleEndian.Uint64(hi)
		w = (w &^ (v.mask >> (64 - shift))) | x>>(64-shift)
		binary.LittleEndian.PutUint64(hi, w)
	}
}

// Iter returns an iterator positioned before the first value.
func (v Vector) Iter() Iter {
	return Iter{v: v}
}

// Iter decodes consecutive values of a Vector.
type Iter struct {
	v Vector
	i int
}

// Next returns the next value.
func (it *Iter) Next() uint64 {
	x := it.v.Get(it.i)
	it.i++
	return x
}

// Index returns the index of the value the next call to Next will return.
func (it *Iter) Index() int { return it.i }

// String returns the first n values of the vector, for debugging.
func (v Vector) String(n int) string {
	buf := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = fmt.Appendf(buf, "%d", v.Get(i))
	}
	return string(buf)
}
