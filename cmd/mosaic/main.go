// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"log"
	"os"

	"github.com/cockroachdb/mosaic"
	"github.com/cockroachdb/mosaic/tool"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mosaic [command] (flags)",
	Short: "column compression introspection tool",
	Long:  ``,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	t := tool.New(tool.Logger(mosaic.DefaultLogger{}))
	rootCmd.AddCommand(t.Commands...)

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
