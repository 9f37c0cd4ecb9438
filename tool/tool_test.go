// Copyright 2019 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/mosaic"
	"github.com/cockroachdb/mosaic/internal/base"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func runTool(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.AddCommand(New(Logger(base.NoopLogger{})).Commands...)
	c.SetArgs(args)
	c.SetOut(&buf)
	c.SetErr(&buf)
	require.NoError(t, c.Execute())
	return buf.String()
}

func TestTool(t *testing.T) {
	datadriven.RunTest(t, "testdata/tool", func(t *testing.T, td *datadriven.TestData) string {
		args := []string{td.Cmd}
		for _, arg := range td.CmdArgs {
			if len(arg.Vals) == 0 {
				args = append(args, "--"+arg.Key)
				continue
			}
			args = append(args, "--"+arg.Key+"="+strings.Join(arg.Vals, ","))
		}
		args = append(args, strings.Fields(td.Input)...)
		return runTool(t, args...)
	})
}

func TestCompress(t *testing.T) {
	out := runTool(t, "compress", "--verify", "--codecs=delta",
		"testdata/delta.txt", "testdata/frame.txt")
	require.Contains(t, out, "testdata/delta.txt\nint64(8): 5 elements")
	require.Contains(t, out, "testdata/frame.txt\nint64(8): 5 elements")
	require.Equal(t, 2, strings.Count(out, "checksum: ok"))
	require.Contains(t, out, "delta:")
	require.Contains(t, out, "total: ")
	require.Equal(t, 2, strings.Count(out, "fingerprint: "))
}

func TestCompressEncoded(t *testing.T) {
	dir := t.TempDir()
	runTool(t, "compress", "--output-dir", dir, "--codecs=frame", "--sample-size=4", "testdata/frame.txt")
	encoded := filepath.Join(dir, "frame.mosaic")

	fromText := runTool(t, "dump", "--codecs=frame", "--sample-size=4", "testdata/frame.txt")
	require.Equal(t, fromText, runTool(t, "dump", encoded))
	require.Contains(t, fromText, "# frame block: 4 elements")
	require.Equal(t, "101\n103\n", runTool(t, "select", "--op==", "--value=1001", "--seqbase=100", "testdata/frame.txt"))
	require.Equal(t, "1\n3\n", runTool(t, "select", "--op==", "--value=1001", encoded))

	// The encoded column decompresses to the same values as the text.
	fingerprint := func(out string) string {
		i := strings.Index(out, "fingerprint: ")
		require.GreaterOrEqual(t, i, 0, out)
		return strings.Fields(out[i:])[1]
	}
	require.Equal(t,
		fingerprint(runTool(t, "compress", "--verify", "testdata/frame.txt")),
		fingerprint(runTool(t, "compress", "--verify", encoded)))

	out := runTool(t, "dump", "--type=int32", encoded)
	require.Contains(t, out, "int32 cannot represent int64(8)")
}

func TestLayout(t *testing.T) {
	out := runTool(t, "layout", "--tables", "--codecs=dictionary", "testdata/frame.txt")
	require.Contains(t, out, "dictionary")
	require.Contains(t, out, "bits=2")
	require.Contains(t, out, "5000")

	out = runTool(t, "layout", "--plot", "--codecs=delta", "testdata/delta.txt")
	require.Contains(t, out, "delta")
	require.Contains(t, out, "compression ratio by block")
}

func TestMetricsOption(t *testing.T) {
	m := mosaic.NewMetrics("mosaic_tool")
	c := &cobra.Command{}
	c.AddCommand(New(Metrics(m), Logger(base.NoopLogger{})).Commands...)
	c.SetArgs([]string{"compress", "testdata/delta.txt", "testdata/frame.txt"})
	var buf bytes.Buffer
	c.SetOut(&buf)
	require.NoError(t, c.Execute())
	require.NotContains(t, buf.String(), "Error")
}
