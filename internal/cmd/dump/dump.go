// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dump

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
	log "github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/samkeen/perfannotate/internal/cmd/options"
	"github.com/samkeen/perfannotate/perffile"
)

type cmdOptions struct {
	*options.CommonOptions
}

// NewCommand builds the "dump" subcommand: it prints every decoded
// record in a perf.data profile, one block per record, for debugging the
// decoder itself rather than producing an annotated report.
func NewCommand(opts *options.CommonOptions) *cobra.Command {
	o := &cmdOptions{CommonOptions: opts}

	return &cobra.Command{
		Use:   "dump <perf.data>",
		Short: "print the raw decoded records of a perf.data profile",
		Args:  cobra.ExactArgs(1),
		RunE:  o.run,
	}
}

func (o *cmdOptions) run(_ *cobra.Command, args []string) error {
	if o.Debug {
		*o.Logger = o.Logger.Level(log.DebugLevel)
	}

	f, err := perffile.Open(args[0])
	if err != nil {
		return errors.Wrapf(err, "opening %s", args[0])
	}
	defer f.Close()
	f.SetLogger(o.Logger)

	rs := f.Records()
	for rs.Next() {
		printRecord(rs.Record)
	}
	if err := rs.Err(); err != nil {
		return errors.Wrap(err, "reading records")
	}
	return nil
}

func printRecord(r perffile.Record) {
	v := reflect.ValueOf(r)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()

	fmt.Printf("%s{\n", t.Name())
	for i := 0; i < t.NumField(); i++ {
		fmt.Printf("\t%-10s %+v\n", t.Field(i).Name+":", v.Field(i).Interface())
	}
	fmt.Printf("}\n")
}
