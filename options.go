// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import "github.com/cockroachdb/mosaic/internal/base"

// Logger defines an interface for writing log messages.
type Logger = base.Logger

// DefaultLogger logs to the Go stdlib logs.
type DefaultLogger = base.DefaultLogger

const (
	// DefaultMaxChunkLen is the default bound on the number of elements in a
	// single block.
	DefaultMaxChunkLen = 1 << 16
	// DefaultSampleSize is the default number of elements sampled when
	// building a side table.
	DefaultSampleSize = 16 * MaxTableSize
	// DefaultSampleSeed seeds the side-table sampler.
	DefaultSampleSeed = 19850716
)

// Options holds the parameters of a compression pass. The zero value is
// usable; EnsureDefaults fills in unset fields.
type Options struct {
	// MaxChunkLen bounds the number of elements in a block.
	MaxChunkLen int

	// SampleSize bounds the number of elements inspected when building the
	// dictionary and frame side tables.
	SampleSize int

	// SampleSeed seeds the random sample. A fixed seed makes the side tables,
	// and therefore the compressed output, a function of the column alone.
	SampleSeed uint64

	// Capacity is the size of the destination buffer in bytes. When zero, a
	// bound large enough for the column to be stored raw is used.
	Capacity int

	// Codecs is the set of codecs the driver may choose from. Raw is always
	// enabled. When empty, all codecs are enabled.
	Codecs []Tag

	// Logger is used for diagnostics, such as checksum mismatches after
	// decompression.
	Logger Logger

	// Metrics, if non-nil, accumulates statistics about the blocks written.
	Metrics *Metrics
}

// EnsureDefaults ensures that the default values for all options are set if a
// valid value was not already specified. Returns the new options.
func (o *Options) EnsureDefaults() *Options {
	if o == nil {
		o = &Options{}
	}
	if o.MaxChunkLen <= 0 {
		o.MaxChunkLen = DefaultMaxChunkLen
	}
	if o.SampleSize <= 0 {
		o.SampleSize = DefaultSampleSize
	}
	if o.SampleSeed == 0 {
		o.SampleSeed = DefaultSampleSeed
	}
	if len(o.Codecs) == 0 {
		o.Codecs = []Tag{TagRaw, TagDelta, TagDictionary, TagFrame}
	}
	if o.Logger == nil {
		o.Logger = DefaultLogger{}
	}
	return o
}

// enabled returns true if the codec with the provided tag may be used.
func (o *Options) enabled(tag Tag) bool {
	if tag == TagRaw {
		return true
	}
	for _, t := range o.Codecs {
		if t == tag {
			return true
		}
	}
	return false
}

// capacityFor returns the destination capacity for a column of n elements of
// the provided width.
func (o *Options) capacityFor(n, width int) int {
	if o.Capacity > 0 {
		return o.Capacity
	}
	return n*width + blockHeaderSize*(n+2)
}
