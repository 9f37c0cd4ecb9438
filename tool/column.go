// Copyright 2019 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/crlib/crstrings"
	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/mosaic"
	"github.com/cockroachdb/mosaic/metrics"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// encodedExt is the file extension of encoded compressed columns. Files with
// any other extension hold one textual value per line or per whitespace
// separated field.
const encodedExt = ".mosaic"

// columnT implements the column tools, including both configuration state and
// the commands themselves.
type columnT struct {
	Compress *cobra.Command
	Layout   *cobra.Command
	Select   *cobra.Command
	Dump     *cobra.Command

	opts *mosaic.Options

	// Flags.
	typ         string
	width       int
	seqbase     uint64
	codecs      []string
	maxChunkLen int
	sampleSize  int
	concurrency int
	outputDir   string
	verify      bool
	verbose     bool
	tables      bool
	plot        bool
	low         string
	high        string
	lowExcl     bool
	highExcl    bool
	anti        bool
	op          string
	value       string
	project     bool
}

func newColumn(opts *mosaic.Options) *columnT {
	c := &columnT{opts: opts}

	c.Compress = &cobra.Command{
		Use:   "compress <files>",
		Short: "compress columns",
		Long: `
Compress each of the provided columns and print compression statistics.
Columns are compressed concurrently.
`,
		Args: cobra.MinimumNArgs(1),
		Run:  c.runCompress,
	}
	c.Layout = &cobra.Command{
		Use:   "layout <file>",
		Short: "print the block layout of a compressed column",
		Long: `
Print the blocks chosen for a column along with their codec, element count,
raw and encoded sizes. With --tables the side-table entries are printed too,
and with --plot a graph of the compression ratio of each block.
`,
		Args: cobra.ExactArgs(1),
		Run:  c.runLayout,
	}
	c.Select = &cobra.Command{
		Use:   "select <file>",
		Short: "select rows from a compressed column",
		Long: `
Print the row identifiers of the elements of a compressed column matching
either a range predicate (--low, --high) or a comparison (--op, --value).
`,
		Args: cobra.ExactArgs(1),
		Run:  c.runSelect,
	}
	c.Dump = &cobra.Command{
		Use:   "dump <file>",
		Short: "print an annotated hex dump of a compressed column",
		Args:  cobra.ExactArgs(1),
		Run:   c.runDump,
	}

	for _, cmd := range []*cobra.Command{c.Compress, c.Layout, c.Select, c.Dump} {
		cmd.Flags().StringVarP(
			&c.typ, "type", "t", "int64", "column type")
		cmd.Flags().IntVar(
			&c.width, "width", 0, "offset width of string columns")
		cmd.Flags().Uint64Var(
			&c.seqbase, "seqbase", 0, "row identifier of the first element")
		cmd.Flags().StringSliceVar(
			&c.codecs, "codecs", nil, "codecs to choose from (default all)")
		cmd.Flags().IntVar(
			&c.maxChunkLen, "max-chunk-len", 0, "maximum number of elements per block")
		cmd.Flags().IntVar(
			&c.sampleSize, "sample-size", 0, "number of elements sampled to build side tables")
	}
	c.Compress.Flags().IntVarP(
		&c.concurrency, "concurrency", "c", runtime.GOMAXPROCS(0), "number of columns compressed concurrently")
	c.Compress.Flags().StringVarP(
		&c.outputDir, "output-dir", "o", "", "directory to write encoded columns to")
	c.Compress.Flags().BoolVar(
		&c.verify, "verify", false, "decompress each column, verify its checksum and print its fingerprint")
	c.Compress.Flags().BoolVarP(
		&c.verbose, "verbose", "v", false, "log progress")
	c.Layout.Flags().BoolVar(
		&c.tables, "tables", false, "print side-table entries")
	c.Layout.Flags().BoolVar(
		&c.plot, "plot", false, "plot the compression ratio of each block")
	c.Select.Flags().StringVar(
		&c.low, "low", "", "lower bound (default unbounded)")
	c.Select.Flags().StringVar(
		&c.high, "high", "", "upper bound (default unbounded)")
	c.Select.Flags().BoolVar(
		&c.lowExcl, "low-exclusive", false, "exclude the lower bound")
	c.Select.Flags().BoolVar(
		&c.highExcl, "high-exclusive", false, "exclude the upper bound")
	c.Select.Flags().BoolVar(
		&c.anti, "anti", false, "select the elements outside the range")
	c.Select.Flags().StringVar(
		&c.op, "op", "", "comparison operator: <, <=, >, >=, =, ==, <>, !=")
	c.Select.Flags().StringVar(
		&c.value, "value", "", "value compared against by --op")
	c.Select.Flags().BoolVar(
		&c.project, "project", false, "print the selected values instead of row identifiers")
	return c
}

// options returns the compression options selected by the flags.
func (c *columnT) options() (*mosaic.Options, error) {
	opts := *c.opts
	if len(c.codecs) > 0 {
		opts.Codecs = opts.Codecs[:0:0]
		for _, name := range c.codecs {
			tag, err := mosaic.ParseTag(strings.TrimSpace(name))
			if err != nil {
				return nil, err
			}
			opts.Codecs = append(opts.Codecs, tag)
		}
	}
	if c.maxChunkLen > 0 {
		opts.MaxChunkLen = c.maxChunkLen
	}
	if c.sampleSize > 0 {
		opts.SampleSize = c.sampleSize
	}
	return &opts, nil
}

// open returns the compressed column stored in path: encoded columns are
// decoded, textual columns are parsed and compressed.
func (c *columnT) open(path string) (column, error) {
	typ, err := mosaic.ParseType(c.typ)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == encodedExt {
		return decodeColumn(typ, c.width, data)
	}
	opts, err := c.options()
	if err != nil {
		return nil, err
	}
	var fields []string
	for _, line := range crstrings.Lines(string(data)) {
		if strings.HasPrefix(line, "#") {
			continue
		}
		fields = append(fields, strings.Fields(line)...)
	}
	return compressColumn(typ, c.width, mosaic.OID(c.seqbase), fields, opts)
}

type compressResult struct {
	col         column
	elapsed     string
	verify      mosaic.Verification
	fingerprint uint64
}

func (c *columnT) runCompress(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	results := make([]compressResult, len(args))
	var g errgroup.Group
	g.SetLimit(max(c.concurrency, 1))
	for i, arg := range args {
		g.Go(func() error {
			start := crtime.NowMono()
			col, err := c.open(arg)
			if err != nil {
				return errors.Wrapf(err, "%s", arg)
			}
			results[i] = compressResult{col: col, elapsed: start.Elapsed().String()}
			if c.verify {
				results[i].verify, results[i].fingerprint = col.verify(c.opts.Logger)
			}
			if c.verbose {
				c.opts.Logger.Infof("%s: compressed %d elements in %s", arg, col.len(), results[i].elapsed)
			}
			if c.outputDir != "" {
				name := strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg)) + encodedExt
				if err := os.WriteFile(filepath.Join(c.outputDir, name), col.encode(), 0644); err != nil {
					return errors.Wrapf(err, "%s", arg)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	var total metrics.CountAndSize
	for i, arg := range args {
		r := results[i]
		s := r.col.layout().Stats()
		total.Accumulate(s.TotalBlocks())
		fmt.Fprintf(stdout, "%s\n%s", arg, s.String())
		if c.verify {
			if r.verify.OK() {
				fmt.Fprintf(stdout, "  checksum: ok\n")
			} else {
				fmt.Fprintf(stdout, "  checksum: mismatch (expected %016x, computed %016x)\n",
					r.verify.Expected, r.verify.Computed)
			}
			fmt.Fprintf(stdout, "  fingerprint: %016x\n", r.fingerprint)
		}
	}
	if len(args) > 1 {
		fmt.Fprintf(stdout, "total: %s blocks\n", total)
	}
}

func (c *columnT) runLayout(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	col, err := c.open(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	l := col.layout()
	l.Render(stdout)
	if c.tables && len(l.Tables) > 0 {
		l.RenderTables(stdout)
	}
	if c.plot && len(l.Blocks) > 1 {
		ratios := make([]float64, len(l.Blocks))
		for i, b := range l.Blocks {
			ratios[i] = float64(b.InputBytes) / float64(b.OutputBytes)
		}
		fmt.Fprintln(stdout, asciigraph.Plot(ratios,
			asciigraph.Height(10), asciigraph.Caption("compression ratio by block")))
	}
}

func (c *columnT) runSelect(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	col, err := c.open(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	var q query
	if c.op != "" {
		op, err := mosaic.ParseOp(c.op)
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
			return
		}
		q = query{op: op, theta: true, value: c.value}
	} else {
		q = query{
			low:           c.low,
			high:          c.high,
			lowInclusive:  !c.lowExcl,
			highInclusive: !c.highExcl,
			anti:          c.anti,
		}
	}
	if err := col.query(stdout, q, c.project); err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
	}
}

func (c *columnT) runDump(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.OutOrStderr()
	col, err := c.open(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	io.WriteString(stdout, col.dump())
}
