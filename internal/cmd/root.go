// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cmd wires the perfannotate command tree together: the
// "report" subcommand that runs the full import-and-correlate
// pipeline, and the "dump" subcommand used to debug raw record
// decoding.
//
// The command tree and the zerolog logger threaded through via
// options.CommonOptions follow the same cobra root/subcommand shape
// used elsewhere in this style of single-binary CLI tool.
package cmd

import (
	log "github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/samkeen/perfannotate/internal/cmd/dump"
	"github.com/samkeen/perfannotate/internal/cmd/options"
	"github.com/samkeen/perfannotate/internal/cmd/report"
)

// NewRootCmd builds the perfannotate command tree.
func NewRootCmd(logger *log.Logger) *cobra.Command {
	opts := &options.CommonOptions{Logger: logger}

	cmd := &cobra.Command{
		Use:               "perfannotate",
		Short:             "perfannotate annotates a perf.data profile by function and line",
		DisableAutoGenTag: true,
	}
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "sets log level to debug")
	cmd.AddCommand(report.NewCommand(opts))
	cmd.AddCommand(dump.NewCommand(opts))

	return cmd
}
