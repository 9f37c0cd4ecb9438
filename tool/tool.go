// Copyright 2019 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package tool implements the mosaic command line tools: compressing columns,
// inspecting their layout and running queries against them.
package tool

import (
	"github.com/cockroachdb/mosaic"
	"github.com/spf13/cobra"
)

// T is the container for all of the column tools.
type T struct {
	Commands []*cobra.Command
	column   *columnT
	opts     mosaic.Options
}

// Option is a function that configures the tools.
type Option func(*T)

// Logger sets the logger used for progress and diagnostics.
func Logger(logger mosaic.Logger) Option {
	return func(t *T) {
		t.opts.Logger = logger
	}
}

// Metrics sets the metrics updated by every compression pass.
func Metrics(m *mosaic.Metrics) Option {
	return func(t *T) {
		t.opts.Metrics = m
	}
}

// New creates a new set of column tools.
func New(opts ...Option) *T {
	t := &T{}
	for _, opt := range opts {
		opt(t)
	}
	t.opts.EnsureDefaults()

	t.column = newColumn(&t.opts)
	t.Commands = []*cobra.Command{
		t.column.Compress,
		t.column.Layout,
		t.column.Select,
		t.column.Dump,
	}
	return t
}
