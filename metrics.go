// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import "github.com/prometheus/client_golang/prometheus"

// Metrics accumulates statistics about the blocks written by compression
// passes. A single Metrics may be shared by concurrent passes and registered
// with a prometheus.Registerer.
type Metrics struct {
	// Blocks counts the blocks written, labelled by codec.
	Blocks *prometheus.CounterVec
	// Elements counts the elements encoded, labelled by codec.
	Elements *prometheus.CounterVec
	// Bytes counts the encoded bytes written, labelled by codec.
	Bytes *prometheus.CounterVec
	// ChunkLen is the distribution of the number of elements per block.
	ChunkLen prometheus.Histogram
	// Columns counts the columns compressed.
	Columns prometheus.Counter
}

var _ prometheus.Collector = (*Metrics)(nil)

// NewMetrics returns a Metrics whose metric names carry the provided prefix.
func NewMetrics(prefix string) *Metrics {
	return &Metrics{
		Blocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_blocks_total",
			Help: "Number of blocks written by each codec.",
		}, []string{"codec"}),
		Elements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_elements_total",
			Help: "Number of elements encoded by each codec.",
		}, []string{"codec"}),
		Bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_bytes_total",
			Help: "Number of encoded bytes written by each codec.",
		}, []string{"codec"}),
		ChunkLen: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    prefix + "_chunk_length",
			Help:    "Number of elements per block.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		}),
		Columns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_columns_total",
			Help: "Number of columns compressed.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.Blocks.Describe(ch)
	m.Elements.Describe(ch)
	m.Bytes.Describe(ch)
	m.ChunkLen.Describe(ch)
	m.Columns.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.Blocks.Collect(ch)
	m.Elements.Collect(ch)
	m.Bytes.Collect(ch)
	m.ChunkLen.Collect(ch)
	m.Columns.Collect(ch)
}

func (m *Metrics) record(l Layout) {
	m.Columns.Inc()
	for _, b := range l.Blocks {
		codec := b.Tag.String()
		m.Blocks.WithLabelValues(codec).Inc()
		m.Elements.WithLabelValues(codec).Add(float64(b.Count))
		m.Bytes.WithLabelValues(codec).Add(float64(b.OutputBytes))
		m.ChunkLen.Observe(float64(b.Count))
	}
}
