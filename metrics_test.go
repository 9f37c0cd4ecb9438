// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestMetrics(t *testing.T) {
	m := NewMetrics("mosaic")
	opts := &Options{Codecs: []Tag{TagDelta}, Metrics: m}
	col := mustColumn(t, TypeInt64, []int64{10, 11, 12, 13, 1000}...)
	mustCompress(t, col, opts)
	mustCompress(t, col, opts)

	require.Equal(t, 2.0, counterValue(t, m.Columns))
	require.Equal(t, 2.0, counterValue(t, m.Blocks.WithLabelValues("delta")))
	require.Equal(t, 2.0, counterValue(t, m.Blocks.WithLabelValues("raw")))
	require.Equal(t, 8.0, counterValue(t, m.Elements.WithLabelValues("delta")))
	require.Equal(t, 2.0, counterValue(t, m.Elements.WithLabelValues("raw")))
	require.Equal(t, 48.0, counterValue(t, m.Bytes.WithLabelValues("delta")))
	require.Equal(t, 32.0, counterValue(t, m.Bytes.WithLabelValues("raw")))

	var h dto.Metric
	require.NoError(t, m.ChunkLen.Write(&h))
	require.Equal(t, uint64(4), h.GetHistogram().GetSampleCount())
	require.Equal(t, 10.0, h.GetHistogram().GetSampleSum())
}

func TestMetricsRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("mosaic")
	require.NoError(t, reg.Register(m))

	col := mustColumn(t, TypeInt32, []int32{1, 1, 2, 2, 3, 3}...)
	mustCompress(t, col, &Options{Metrics: m})

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["mosaic_columns_total"])
	require.True(t, names["mosaic_blocks_total"])
	require.True(t, names["mosaic_chunk_length"])
}
