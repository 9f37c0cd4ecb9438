// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package binfmt formats encoded blocks as annotated hex dumps: one line per
// field, each prefixed with its byte range and followed by a comment aligned
// to the right of the widest line.
package binfmt

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// bytesPerLine bounds the number of bytes formatted on a single line.
const bytesPerLine = 20

// Formatter accumulates the lines of a dump of a byte slice, consuming the
// slice from the front.
type Formatter struct {
	data      []byte
	off       int
	offsetFmt string
	// lines holds (binary data, comment) pairs. Comment-only lines have empty
	// binary data.
	lines [][2]string
}

// New returns a Formatter positioned at the start of data.
func New(data []byte) *Formatter {
	digits := 1
	if len(data) > 1 {
		digits = int(math.Log10(float64(len(data)-1))) + 1
	}
	w := strconv.Itoa(digits)
	return &Formatter{data: data, offsetFmt: "%0" + w + "d-%0" + w + "d: "}
}

// Offset returns the offset of the next unformatted byte.
func (f *Formatter) Offset() int {
	return f.off
}

// Remaining returns the number of unformatted bytes.
func (f *Formatter) Remaining() int {
	return len(f.data) - f.off
}

// Comment appends a line that consumes no data.
func (f *Formatter) Comment(format string, args ...interface{}) {
	f.lines = append(f.lines, [2]string{"", fmt.Sprintf(format, args...)})
}

// Uint formats the next w bytes as a little-endian unsigned integer. The
// comment is prefixed with the decoded value.
func (f *Formatter) Uint(w int, format string, args ...interface{}) int {
	var v uint64
	switch w {
	case 1:
		v = uint64(f.data[f.off])
	case 2:
		v = uint64(binary.LittleEndian.Uint16(f.data[f.off:]))
	case 4:
		v = uint64(binary.LittleEndian.Uint32(f.data[f.off:]))
	case 8:
		v = binary.LittleEndian.Uint64(f.data[f.off:])
	default:
		panic(fmt.Sprintf("binfmt: unsupported integer width %d", w))
	}
	return f.HexBytesln(w, "%d: %s", v, fmt.Sprintf(format, args...))
}

// HexBytesln formats the next n bytes in hexadecimal, splitting them over as
// many lines as needed. The comment is attached to the first line.
func (f *Formatter) HexBytesln(n int, format string, args ...interface{}) int {
	comment := strings.TrimSpace(fmt.Sprintf(format, args...))
	consumed := n
	for n > 0 {
		k := min(n, bytesPerLine)
		line := fmt.Sprintf(f.offsetFmt, f.off, f.off+k) + fmt.Sprintf("x %x", f.data[f.off:f.off+k])
		f.lines = append(f.lines, [2]string{line, comment})
		comment = "(continued...)"
		f.off += k
		n -= k
	}
	return consumed
}

// String returns the formatted lines.
func (f *Formatter) String() string {
	width := 0
	for _, l := range f.lines {
		width = max(width, len(l[0]))
	}
	var sb strings.Builder
	for _, l := range f.lines {
		switch {
		case l[0] == "":
			sb.WriteString("# ")
			sb.WriteString(l[1])
		case l[1] == "":
			sb.WriteString(l[0])
		default:
			sb.WriteString(l[0])
			sb.WriteString(strings.Repeat(" ", width-len(l[0])))
			sb.WriteString(" # ")
			sb.WriteString(l[1])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
