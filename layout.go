// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"fmt"
	"io"
	"strconv"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/mosaic/internal/binfmt"
	"github.com/cockroachdb/mosaic/internal/bitvector"
	"github.com/cockroachdb/mosaic/internal/invariants"
	"github.com/cockroachdb/mosaic/metrics"
	"github.com/cockroachdb/redact"
	"github.com/olekukonko/tablewriter"
)

// BlockLayout describes one block of a compressed column.
type BlockLayout struct {
	Offset int
	Tag    Tag
	Count  int
	// InputBytes is the size of the block's elements stored raw.
	InputBytes int
	// OutputBytes is the encoded size of the block.
	OutputBytes int
	// Properties holds codec-specific details, such as a frame's base value.
	Properties string
}

// TableEntryLayout describes one entry of a side table.
type TableEntryLayout struct {
	Codec Tag
	Index int
	Value string
	Freq  uint64
}

// Layout describes the blocks and side tables of a compressed column.
type Layout struct {
	Type   Type
	Width  int
	Blocks []BlockLayout
	Tables []TableEntryLayout
	// Size is the total size of the encoded blocks, including the terminal
	// block.
	Size int
}

// Layout returns a description of the compressed column.
func (c *Compressed[T]) Layout() Layout {
	h := c.Header
	l := Layout{Type: h.Type, Width: h.Width, Size: len(c.Data)}
	codecs := newCodecSet(h)
	t := newQueryTask(c)
	for !t.Done() {
		tag, count := t.tag(), t.count()
		codec := codecs.get(tag)
		b := BlockLayout{
			Offset:      t.blk,
			Tag:         tag,
			Count:       count,
			InputBytes:  count * h.Width,
			OutputBytes: codec.BlockSize(count),
		}
		switch codec := codec.(type) {
		case *deltaCodec[T]:
			b.Properties = fmt.Sprintf("first=%v", codec.decoder(t).prev)
		case *dictCodec[T]:
			b.Properties = fmt.Sprintf("bits=%d", h.Dict.Bits)
		case *frameCodec[T]:
			b.Properties = fmt.Sprintf("base=%v bits=%d", codec.base(t), h.Frame.Bits)
		}
		l.Blocks = append(l.Blocks, b)
		codec.Skip(t)
	}
	for _, st := range []struct {
		tag   Tag
		table *SideTable[T]
	}{{TagDictionary, &h.Dict}, {TagFrame, &h.Frame}} {
		for i, v := range st.table.Values {
			l.Tables = append(l.Tables, TableEntryLayout{
				Codec: st.tag,
				Index: i,
				Value: fmt.Sprint(v),
				Freq:  st.table.Freq[i],
			})
		}
	}
	return l
}

// Render writes the block layout as a table.
func (l Layout) Render(w io.Writer) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Offset", "Codec", "Count", "Input", "Output", "Properties"})
	for _, b := range l.Blocks {
		tbl.Append([]string{
			strconv.Itoa(b.Offset),
			b.Tag.String(),
			strconv.Itoa(b.Count),
			strconv.Itoa(b.InputBytes),
			strconv.Itoa(b.OutputBytes),
			b.Properties,
		})
	}
	tbl.Render()
}

// RenderTables writes the side-table entries as a table.
func (l Layout) RenderTables(w io.Writer) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Codec", "Index", "Value", "Frequency"})
	for _, e := range l.Tables {
		tbl.Append([]string{
			e.Codec.String(),
			strconv.Itoa(e.Index),
			e.Value,
			strconv.FormatUint(e.Freq, 10),
		})
	}
	tbl.Render()
}

// Stats summarizes the layout of a compressed column.
type Stats struct {
	Type  Type
	Width int
	// Elements is the number of elements in the column.
	Elements int
	// InputBytes is the size of the column stored raw.
	InputBytes int64
	// OutputBytes is the size of the encoded blocks.
	OutputBytes int64
	// Blocks holds the number and encoded size of the blocks written by each
	// codec.
	Blocks [numTags]metrics.CountAndSize
	// ElementsByCodec holds the number of elements encoded by each codec.
	ElementsByCodec [numTags]int
	// ChunkLen is the distribution of the number of elements per block.
	ChunkLen *hdrhistogram.Histogram
}

// Stats returns summary statistics of the layout.
func (l Layout) Stats() Stats {
	s := Stats{
		Type:        l.Type,
		Width:       l.Width,
		OutputBytes: int64(l.Size),
		ChunkLen:    hdrhistogram.New(1, 1<<32, 2),
	}
	for _, b := range l.Blocks {
		s.Elements += b.Count
		s.InputBytes += int64(b.InputBytes)
		s.Blocks[b.Tag].Inc(uint64(b.OutputBytes))
		s.ElementsByCodec[b.Tag] += b.Count
		_ = s.ChunkLen.RecordValue(int64(b.Count))
	}
	return s
}

// TotalBlocks returns the number and encoded size of the blocks written by
// all codecs.
func (s *Stats) TotalBlocks() metrics.CountAndSize {
	var total metrics.CountAndSize
	for tag := range s.Blocks {
		total.Accumulate(s.Blocks[tag])
	}
	return total
}

// Ratio returns the compression ratio: the raw size of the column divided by
// its compressed size.
func (s *Stats) Ratio() float64 {
	if s.OutputBytes == 0 {
		return 0
	}
	return float64(s.InputBytes) / float64(s.OutputBytes)
}

// String implements fmt.Stringer.
func (s *Stats) String() string {
	return redact.StringWithoutMarkers(s)
}

// SafeFormat implements redact.SafeFormatter.
func (s *Stats) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%s(%d): %d elements, %s -> %s, ratio %.2f\n",
		s.Type, redact.Safe(s.Width), redact.Safe(s.Elements),
		crhumanize.Bytes(s.InputBytes, crhumanize.Compact, crhumanize.OmitI),
		crhumanize.Bytes(s.OutputBytes, crhumanize.Compact, crhumanize.OmitI), redact.Safe(s.Ratio()))
	for tag := Tag(0); tag < numTags; tag++ {
		if s.Blocks[tag].IsZero() {
			continue
		}
		w.Printf("  %s: %s blocks, %d elements, mean block %s\n", tag, s.Blocks[tag], redact.Safe(s.ElementsByCodec[tag]),
			crhumanize.Bytes(s.Blocks[tag].MeanBytes(), crhumanize.Compact, crhumanize.OmitI))
	}
	if s.ChunkLen.TotalCount() > 0 {
		w.Printf("  chunk length: mean %.1f p50 %d p99 %d max %d\n",
			redact.Safe(s.ChunkLen.Mean()), redact.Safe(s.ChunkLen.ValueAtPercentile(50)),
			redact.Safe(s.ChunkLen.ValueAtPercentile(99)), redact.Safe(s.ChunkLen.Max()))
	}
}

// Dump returns an annotated hex dump of the encoded blocks.
func (c *Compressed[T]) Dump() string {
	h := c.Header
	s := h.storage()
	f := binfmt.New(c.Data)
	codecs := newCodecSet(h)
	t := newQueryTask(c)
	for !t.Done() {
		tag, count := t.tag(), t.count()
		codec := codecs.get(tag)
		f.Comment("%s block: %d elements", tag, count)
		f.Uint(4, "tag")
		f.Uint(4, "count")
		end := t.blk + codec.BlockSize(count)
		switch tag {
		case TagRaw:
			d := codecs[TagRaw].(*rawCodec[T]).decoder(t)
			for i := 0; i < count; i++ {
				f.HexBytesln(s.width, "[%d] %v", i, d.next())
			}
		case TagDelta:
			d := codecs[TagDelta].(*deltaCodec[T]).decoder(t)
			f.HexBytesln(s.width, "first %v", d.next())
			f.HexBytesln(count-1, "deltas")
		case TagDictionary:
			bv := bitvector.Make(t.payload(), h.Dict.Bits)
			f.HexBytesln(bitvector.Size(count, h.Dict.Bits), "indices %s", bv.String(count))
		case TagFrame:
			f.HexBytesln(frameBaseSize, "base %v", codecs[TagFrame].(*frameCodec[T]).base(t))
			bv := bitvector.Make(t.payload()[frameBaseSize:], h.Frame.Bits)
			f.HexBytesln(bitvector.Size(count, h.Frame.Bits), "offset indices %s", bv.String(count))
		}
		f.HexBytesln(invariants.SafeSub(end, f.Offset()), "padding")
		codec.Skip(t)
	}
	f.Comment("eol block")
	f.Uint(4, "tag")
	f.Uint(4, "count")
	if n := f.Remaining(); n > 0 {
		f.HexBytesln(n, "trailing bytes")
	}
	return f.String()
}
