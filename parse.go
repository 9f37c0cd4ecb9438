// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ParseValue parses the textual representation of a value of type T. Integers
// may carry a base prefix such as 0x.
func ParseValue[T Value](s string) (T, error) {
	st := storageOf[T]()
	s = strings.TrimSpace(s)
	switch {
	case st.float:
		f, err := strconv.ParseFloat(s, 8*st.width)
		if err != nil {
			return 0, errors.Wrapf(err, "mosaic: parsing %q", s)
		}
		return T(f), nil
	case st.unsigned:
		u, err := strconv.ParseUint(s, 0, 8*st.width)
		if err != nil {
			return 0, errors.Wrapf(err, "mosaic: parsing %q", s)
		}
		return T(u), nil
	default:
		i, err := strconv.ParseInt(s, 0, 8*st.width)
		if err != nil {
			return 0, errors.Wrapf(err, "mosaic: parsing %q", s)
		}
		return T(i), nil
	}
}

// ParseColumn parses one value per element of fields into a column of the
// provided type.
func ParseColumn[T Value](typ Type, seqbase OID, fields []string) (Column[T], error) {
	values := make([]T, len(fields))
	for i, f := range fields {
		v, err := ParseValue[T](f)
		if err != nil {
			return Column[T]{}, errors.Wrapf(err, "element %d", i)
		}
		values[i] = v
	}
	return MakeColumn(typ, seqbase, values)
}
