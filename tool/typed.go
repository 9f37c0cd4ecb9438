// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/mosaic"
)

// column is a compressed column of any element type.
type column interface {
	len() int
	layout() mosaic.Layout
	dump() string
	encode() []byte
	// verify decompresses the column, returning the checksum verification and
	// the fingerprint of the decompressed values.
	verify(logger mosaic.Logger) (mosaic.Verification, uint64)
	query(w io.Writer, q query, project bool) error
}

// query is a selection whose bounds have not yet been parsed into the
// column's element type.
type query struct {
	theta bool
	op    mosaic.Op
	value string

	low, high                   string
	lowInclusive, highInclusive bool
	anti                        bool
}

// elemKind identifies the Go type representing the elements of a column.
type elemKind int8

const (
	kindInt8 elemKind = iota
	kindInt16
	kindInt32
	kindInt64
	kindUint8
	kindUint16
	kindUint32
	kindUint64
	kindFloat32
	kindFloat64
)

func kindOf(typ mosaic.Type, width int) (elemKind, error) {
	switch typ {
	case mosaic.TypeFloat32:
		return kindFloat32, nil
	case mosaic.TypeFloat64:
		return kindFloat64, nil
	case mosaic.TypeOID:
		return kindUint64, nil
	case mosaic.TypeString:
		switch width {
		case 1:
			return kindUint8, nil
		case 2:
			return kindUint16, nil
		case 4:
			return kindUint32, nil
		case 8:
			return kindUint64, nil
		}
	default:
		switch typ.Width() {
		case 1:
			return kindInt8, nil
		case 2:
			return kindInt16, nil
		case 4:
			return kindInt32, nil
		case 8:
			return kindInt64, nil
		}
	}
	return 0, errors.Mark(errors.Newf("mosaic: unsupported column %s(%d)", typ, width), mosaic.ErrUnsupportedType)
}

// compressColumn parses and compresses a column of the provided type.
func compressColumn(
	typ mosaic.Type, width int, seqbase mosaic.OID, fields []string, opts *mosaic.Options,
) (column, error) {
	k, err := kindOf(typ, width)
	if err != nil {
		return nil, err
	}
	switch k {
	case kindInt8:
		return compressTyped[int8](typ, seqbase, fields, opts)
	case kindInt16:
		return compressTyped[int16](typ, seqbase, fields, opts)
	case kindInt32:
		return compressTyped[int32](typ, seqbase, fields, opts)
	case kindInt64:
		return compressTyped[int64](typ, seqbase, fields, opts)
	case kindUint8:
		return compressTyped[uint8](typ, seqbase, fields, opts)
	case kindUint16:
		return compressTyped[uint16](typ, seqbase, fields, opts)
	case kindUint32:
		return compressTyped[uint32](typ, seqbase, fields, opts)
	case kindUint64:
		return compressTyped[uint64](typ, seqbase, fields, opts)
	case kindFloat32:
		return compressTyped[float32](typ, seqbase, fields, opts)
	default:
		return compressTyped[float64](typ, seqbase, fields, opts)
	}
}

// decodeColumn decodes an encoded column of the provided type.
func decodeColumn(typ mosaic.Type, width int, data []byte) (column, error) {
	k, err := kindOf(typ, width)
	if err != nil {
		return nil, err
	}
	switch k {
	case kindInt8:
		return decodeTyped[int8](data)
	case kindInt16:
		return decodeTyped[int16](data)
	case kindInt32:
		return decodeTyped[int32](data)
	case kindInt64:
		return decodeTyped[int64](data)
	case kindUint8:
		return decodeTyped[uint8](data)
	case kindUint16:
		return decodeTyped[uint16](data)
	case kindUint32:
		return decodeTyped[uint32](data)
	case kindUint64:
		return decodeTyped[uint64](data)
	case kindFloat32:
		return decodeTyped[float32](data)
	default:
		return decodeTyped[float64](data)
	}
}

type typedColumn[T mosaic.Value] struct {
	c *mosaic.Compressed[T]
}

func compressTyped[T mosaic.Value](
	typ mosaic.Type, seqbase mosaic.OID, fields []string, opts *mosaic.Options,
) (column, error) {
	col, err := mosaic.ParseColumn[T](typ, seqbase, fields)
	if err != nil {
		return nil, err
	}
	c, err := mosaic.Compress(col, opts)
	if err != nil {
		return nil, err
	}
	return typedColumn[T]{c: c}, nil
}

func decodeTyped[T mosaic.Value](data []byte) (column, error) {
	c, err := mosaic.Decode[T](data)
	if err != nil {
		return nil, err
	}
	return typedColumn[T]{c: c}, nil
}

func (tc typedColumn[T]) len() int              { return tc.c.Len() }
func (tc typedColumn[T]) layout() mosaic.Layout { return tc.c.Layout() }
func (tc typedColumn[T]) dump() string          { return tc.c.Dump() }
func (tc typedColumn[T]) encode() []byte        { return tc.c.Encode(nil) }

func (tc typedColumn[T]) verify(logger mosaic.Logger) (mosaic.Verification, uint64) {
	col, v := tc.c.Decompress(logger)
	return v, col.Fingerprint()
}

func (tc typedColumn[T]) query(w io.Writer, q query, project bool) error {
	var oids []mosaic.OID
	if q.theta {
		x, err := mosaic.ParseValue[T](q.value)
		if err != nil {
			return err
		}
		oids = tc.c.ThetaSelect(x, q.op, nil)
	} else {
		p := mosaic.Predicate[T]{
			LowInclusive:  q.lowInclusive,
			HighInclusive: q.highInclusive,
			Anti:          q.anti,
		}
		var err error
		if q.low != "" {
			if p.Low, err = mosaic.ParseValue[T](q.low); err != nil {
				return err
			}
			p.HasLow = true
		}
		if q.high != "" {
			if p.High, err = mosaic.ParseValue[T](q.high); err != nil {
				return err
			}
			p.HasHigh = true
		}
		oids = tc.c.Select(p, nil)
	}
	if project {
		if oids == nil {
			oids = []mosaic.OID{}
		}
		for _, v := range tc.c.Projection(oids) {
			fmt.Fprintln(w, v)
		}
		return nil
	}
	for _, o := range oids {
		fmt.Fprintln(w, o)
	}
	return nil
}
