// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/samkeen/perfannotate"
	"github.com/samkeen/perfannotate/internal/cmd/options"
)

type cmdOptions struct {
	nm, objdump, cacheRoot string
	*options.CommonOptions
}

// NewCommand builds the "report" subcommand: the full import and
// correlate pipeline, printing the resulting report as JSON.
func NewCommand(opts *options.CommonOptions) *cobra.Command {
	o := &cmdOptions{nm: "nm", objdump: "objdump", CommonOptions: opts}

	cmd := &cobra.Command{
		Use:   "report <perf.data>",
		Short: "import a perf.data profile and print its annotated report",
		Args:  cobra.ExactArgs(1),
		RunE:  o.run,
	}
	cmd.Flags().StringVar(&o.nm, "nm", o.nm, "nm binary to read symbol tables with")
	cmd.Flags().StringVar(&o.objdump, "objdump", o.objdump, "objdump binary to disassemble with")
	cmd.Flags().StringVar(&o.cacheRoot, "cache-root", "", "prefix applied to every mapped filename")

	return cmd
}

func (o *cmdOptions) run(_ *cobra.Command, args []string) error {
	if o.Debug {
		*o.Logger = o.Logger.Level(log.DebugLevel)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rep, err := perfannotate.Import(ctx, args[0],
		perfannotate.WithNM(o.nm),
		perfannotate.WithObjdump(o.objdump),
		perfannotate.WithCacheRoot(o.cacheRoot),
		perfannotate.WithLogger(o.Logger),
	)
	if err != nil {
		return errors.Wrapf(err, "importing %s", args[0])
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return errors.Wrap(err, "encoding report")
	}
	fmt.Fprintln(os.Stderr)
	return nil
}
