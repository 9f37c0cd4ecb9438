// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"math"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/mosaic/internal/base"
	"github.com/cockroachdb/redact"
	"golang.org/x/exp/constraints"
)

// OID is a row identifier: the address of one element within a column's
// domain.
type OID uint64

// Value is a constraint that permits the fixed-width primitive types a column
// can store.
type Value interface {
	constraints.Integer | constraints.Float
}

// Type identifies the logical type of a column. Several logical types share
// a storage representation; for example Date is stored as an int32.
type Type uint8

const (
	TypeBit Type = iota
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeOID
	TypeFloat32
	TypeFloat64
	TypeDate
	TypeDaytime
	TypeTimestamp
	// TypeString columns are represented by the fixed-width offsets into their
	// string heap. The offset width is 1, 2, 4 or 8 bytes.
	TypeString
	numTypes
)

var typeNames = [numTypes]string{
	TypeBit:       "bit",
	TypeInt8:      "int8",
	TypeInt16:     "int16",
	TypeInt32:     "int32",
	TypeInt64:     "int64",
	TypeOID:       "oid",
	TypeFloat32:   "float32",
	TypeFloat64:   "float64",
	TypeDate:      "date",
	TypeDaytime:   "daytime",
	TypeTimestamp: "timestamp",
	TypeString:    "string",
}

// String implements fmt.Stringer.
func (t Type) String() string {
	if t < numTypes {
		return typeNames[t]
	}
	return "unknown"
}

// SafeFormat implements redact.SafeFormatter.
func (t Type) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(t.String()))
}

// ParseType parses the name of a type as returned by Type.String.
func ParseType(s string) (Type, error) {
	for t := Type(0); t < numTypes; t++ {
		if typeNames[t] == s {
			return t, nil
		}
	}
	return 0, errors.Mark(errors.Newf("mosaic: unknown type %q", s), base.ErrUnsupportedType)
}

// storage describes how values of a type are laid out.
type storage struct {
	width    int
	float    bool
	unsigned bool
}

// Width returns the storage width of the type in bytes. TypeString has no
// fixed width; its width is a property of the column.
func (t Type) Width() int {
	switch t {
	case TypeBit, TypeInt8:
		return 1
	case TypeInt16:
		return 2
	case TypeInt32, TypeFloat32, TypeDate:
		return 4
	case TypeInt64, TypeOID, TypeFloat64, TypeDaytime, TypeTimestamp:
		return 8
	default:
		return 0
	}
}

func (t Type) storage(width int) storage {
	switch t {
	case TypeFloat32, TypeFloat64:
		return storage{width: t.Width(), float: true}
	case TypeOID:
		return storage{width: 8, unsigned: true}
	case TypeString:
		return storage{width: width, unsigned: true}
	default:
		return storage{width: t.Width()}
	}
}

// IsTemporal returns true for the date and time types.
func (t Type) IsTemporal() bool {
	return t == TypeDate || t == TypeDaytime || t == TypeTimestamp
}

// validWidth returns true if a column of the type may be stored with the
// provided element width.
func (t Type) validWidth(width int) bool {
	if t == TypeString {
		return width == 1 || width == 2 || width == 4 || width == 8
	}
	return t < numTypes && width == t.Width()
}

// widthOf returns the size of T in bytes.
func widthOf[T Value]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

// isFloat returns true if T is a floating point type.
func isFloat[T Value]() bool {
	half := 0.5
	return T(half) != 0
}

// isUnsigned returns true if T is an unsigned integer type.
func isUnsigned[T Value]() bool {
	var zero T
	return zero-1 > zero
}

// storageOf describes the Go type T.
func storageOf[T Value]() storage {
	return storage{width: widthOf[T](), float: isFloat[T](), unsigned: isUnsigned[T]()}
}

// checkType returns an error if values of Go type T cannot represent columns
// of the provided type and width.
func checkType[T Value](typ Type, width int) error {
	if !typ.validWidth(width) {
		return errors.Mark(errors.Newf("mosaic: invalid width %d for type %s", width, typ), base.ErrUnsupportedType)
	}
	want := typ.storage(width)
	if got := storageOf[T](); got != want {
		return errors.Mark(errors.Newf("mosaic: %T cannot represent %s(%d)", *new(T), typ, width), base.ErrUnsupportedType)
	}
	return nil
}

// minValue and maxValue return the bounds of the domain of T. For floating
// point types they return the infinities.
func minValue[T Value]() T {
	s := storageOf[T]()
	switch {
	case s.float:
		inf := math.Inf(-1)
		return T(inf)
	case s.unsigned:
		return 0
	default:
		return T(int64(math.MinInt64) >> (64 - 8*s.width))
	}
}

func maxValue[T Value]() T {
	s := storageOf[T]()
	switch {
	case s.float:
		inf := math.Inf(1)
		return T(inf)
	case s.unsigned:
		return T(uint64(math.MaxUint64) >> (64 - 8*s.width))
	default:
		return T(int64(math.MaxInt64) >> (64 - 8*s.width))
	}
}

// isNaN returns true if v is a floating point NaN.
func isNaN[T Value](v T) bool {
	return v != v
}

// successor returns the smallest value of T strictly greater than v. ok is
// false if no such value exists.
func successor[T Value](v T) (_ T, ok bool) {
	if isNaN(v) || v == maxValue[T]() {
		return v, false
	}
	if !isFloat[T]() {
		return v + 1, true
	}
	if widthOf[T]() == 4 {
		return T(math.Nextafter32(float32(v), float32(math.Inf(1)))), true
	}
	return T(math.Nextafter(float64(v), math.Inf(1))), true
}

// predecessor returns the largest value of T strictly less than v. ok is false
// if no such value exists.
func predecessor[T Value](v T) (_ T, ok bool) {
	if isNaN(v) || v == minValue[T]() {
		return v, false
	}
	if !isFloat[T]() {
		return v - 1, true
	}
	if widthOf[T]() == 4 {
		return T(math.Nextafter32(float32(v), float32(math.Inf(-1)))), true
	}
	return T(math.Nextafter(float64(v), math.Inf(-1))), true
}
