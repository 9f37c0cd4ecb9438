// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"strings"
	"testing"

	"github.com/cockroachdb/mosaic/metrics"
	"github.com/stretchr/testify/require"
)

func TestLayoutStats(t *testing.T) {
	col := mustColumn(t, TypeInt64, []int64{10, 11, 12, 13, 1000}...)
	c := mustCompress(t, col, &Options{Codecs: []Tag{TagDelta}})
	l := c.Layout()
	require.Equal(t, TypeInt64, l.Type)
	require.Equal(t, 8, l.Width)
	require.Equal(t, 48, l.Size)
	require.Equal(t, []BlockLayout{
		{Offset: 0, Tag: TagDelta, Count: 4, InputBytes: 32, OutputBytes: 24, Properties: "first=10"},
		{Offset: 24, Tag: TagRaw, Count: 1, InputBytes: 8, OutputBytes: 16},
	}, l.Blocks)
	require.Empty(t, l.Tables)

	s := l.Stats()
	require.Equal(t, 5, s.Elements)
	require.Equal(t, int64(40), s.InputBytes)
	require.Equal(t, int64(48), s.OutputBytes)
	require.Equal(t, metrics.CountAndSize{Count: 1, Bytes: 24}, s.Blocks[TagDelta])
	require.Equal(t, metrics.CountAndSize{Count: 1, Bytes: 16}, s.Blocks[TagRaw])
	require.True(t, s.Blocks[TagDictionary].IsZero())
	require.Equal(t, metrics.CountAndSize{Count: 2, Bytes: 40}, s.TotalBlocks())
	require.Equal(t, 4, s.ElementsByCodec[TagDelta])
	require.Equal(t, 1, s.ElementsByCodec[TagRaw])
	require.Equal(t, int64(2), s.ChunkLen.TotalCount())
	require.Equal(t, 2.5, s.ChunkLen.Mean())
	require.Equal(t, int64(4), s.ChunkLen.Max())
	require.InDelta(t, 40.0/48.0, s.Ratio(), 1e-9)

	str := s.String()
	require.True(t, strings.HasPrefix(str, "int64(8): 5 elements"), str)
	require.Contains(t, str, "delta:")
	require.Contains(t, str, "raw:")
	require.NotContains(t, str, "frame:")
	require.Contains(t, str, "chunk length: mean 2.5")
}

func TestLayoutRender(t *testing.T) {
	col := mustColumn(t, TypeInt32, []int32{5, 7, 9, 5, 7, 9, 5, 7, 9, 9, 9, 9, 1 << 20}...)
	c := mustCompress(t, col, &Options{Codecs: []Tag{TagDictionary}})
	l := c.Layout()
	require.Equal(t, []TableEntryLayout{
		{Codec: TagDictionary, Index: 0, Value: "5", Freq: 3},
		{Codec: TagDictionary, Index: 1, Value: "7", Freq: 3},
		{Codec: TagDictionary, Index: 2, Value: "9", Freq: 6},
		{Codec: TagDictionary, Index: 3, Value: "1048576", Freq: 1},
	}, l.Tables)

	var buf strings.Builder
	l.Render(&buf)
	out := buf.String()
	require.Contains(t, out, "dictionary")
	require.Contains(t, out, "bits=2")

	buf.Reset()
	l.RenderTables(&buf)
	out = buf.String()
	require.Contains(t, out, "1048576")
	require.Equal(t, 4, strings.Count(out, "dictionary"))
}

func TestStatsEmpty(t *testing.T) {
	col := mustColumn[int16](t, TypeInt16)
	c := mustCompress(t, col, nil)
	s := c.Layout().Stats()
	require.Zero(t, s.Elements)
	require.Equal(t, int64(blockHeaderSize), s.OutputBytes)
	require.Zero(t, s.Ratio())
	require.NotContains(t, s.String(), "chunk length")
}

func TestDumpTrailingBytes(t *testing.T) {
	col := mustColumn(t, TypeInt64, []int64{10, 11, 12, 13, 1000}...)
	c := mustCompress(t, col, &Options{Codecs: []Tag{TagDelta}})
	require.NotContains(t, c.Dump(), "trailing bytes")

	padded := &Compressed[int64]{Header: c.Header, Data: append(append([]byte(nil), c.Data...), 0xab, 0xcd)}
	require.Error(t, padded.Validate())
	out := padded.Dump()
	require.Contains(t, out, "48-50: x abcd")
	require.Contains(t, out, "# trailing bytes")
}
