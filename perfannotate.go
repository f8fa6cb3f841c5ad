// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perfannotate imports a perf.data profile and produces a
// per-function, per-line annotated breakdown of where its samples
// landed.
//
// Import wires together perffile (decoding the profile), perfmap
// (resolving samples against the mappings active when they were
// taken), symtab (reading symbol tables and disassembly from the
// profiled binaries), and report (the final correlation and noise
// filtering).
package perfannotate // import "github.com/samkeen/perfannotate"

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/rs/zerolog"

	"github.com/samkeen/perfannotate/perffile"
	"github.com/samkeen/perfannotate/perfmap"
	"github.com/samkeen/perfannotate/report"
	"github.com/samkeen/perfannotate/symtab"
)

// Option configures Import.
type Option func(*options)

type options struct {
	nm, objdump, cacheRoot string
	runner                 symtab.Runner
	logger                 *log.Logger
}

// WithNM sets the nm binary Import uses to read symbol tables.
// Defaults to "nm".
func WithNM(path string) Option {
	return func(o *options) { o.nm = path }
}

// WithObjdump sets the objdump binary Import uses for disassembly.
// Defaults to "objdump".
func WithObjdump(path string) Option {
	return func(o *options) { o.objdump = path }
}

// WithCacheRoot prefixes every mapped filename with root before it is
// passed to nm or objdump, for profiles whose binaries were copied
// into a local cache under a different root than where they were
// profiled.
func WithCacheRoot(root string) Option {
	return func(o *options) { o.cacheRoot = root }
}

// withRunner overrides the symtab.Runner Import uses to invoke nm and
// objdump. Exported only to tests, through perfannotate_test.go being
// in this package.
func withRunner(r symtab.Runner) Option {
	return func(o *options) { o.runner = r }
}

// WithLogger sets the logger Import reports semantic skips and
// noise-floor filtering decisions to, at debug level. Defaults to a
// no-op logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Import decodes the perf.data file at path, resolves its samples
// against the memory maps active when they were recorded, and
// correlates the result against each mapped binary's symbols and
// disassembly.
//
// The caller may abandon Import by canceling ctx; every subprocess
// Import starts for symbol or disassembly reading is canceled along
// with it.
func Import(ctx context.Context, path string, opts ...Option) (*report.Report, error) {
	nop := log.Nop()
	o := &options{nm: "nm", objdump: "objdump", runner: symtab.ShellRunner{}, logger: &nop}
	for _, opt := range opts {
		opt(o)
	}

	f, err := perffile.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	f.SetLogger(o.logger)

	reg := perfmap.NewRegistry()
	agg := perfmap.NewAggregator()

	rs := f.Records()
	for rs.Next() {
		switch r := rs.Record.(type) {
		case *perffile.RecordMmap:
			reg.Add(r.Time, perfmap.Map{
				Start:    r.Addr,
				End:      r.Addr + r.Len,
				Adjust:   loadBias(r.Addr, r.PgOff, o.cacheRoot, r.Filename),
				Filename: r.Filename,
			})
		case *perffile.RecordMmap2:
			reg.Add(r.Time, perfmap.Map{
				Start:    r.Addr,
				End:      r.Addr + r.Len,
				Adjust:   loadBias(r.Addr, r.PgOff, o.cacheRoot, r.Filename),
				Filename: r.Filename,
			})
		case *perffile.RecordSample:
			id, _, ok := reg.Resolve(r.Time, r.IP)
			if !ok {
				o.logger.Debug().Uint64("time", r.Time).Uint64("ip", r.IP).
					Msg("skipping sample: no mapping covers this time and address")
				continue
			}
			agg.Add(id, r.IP, r.Event.Name, r.Period)
		}
	}
	if err := rs.Err(); err != nil {
		return nil, errors.Wrap(err, "reading records")
	}

	rep, err := report.Build(ctx, agg, reg, report.Options{
		NM:        o.nm,
		Objdump:   o.objdump,
		CacheRoot: o.cacheRoot,
		Runner:    o.runner,
		Logger:    o.logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "building report")
	}
	return rep, nil
}

// loadBias computes the adjustment between a mapping's runtime
// address and its on-disk symbol addresses: zero for a non-PIE
// executable (file addresses are already absolute), or start-pgoff
// for a shared object loaded at a position-independent base. The ELF
// probe reads cacheRoot+filename, the same path symtab resolves
// symbols and disassembly against, not the bare recorded filename.
func loadBias(start, pgoff uint64, cacheRoot, filename string) uint64 {
	if filename == "" || !perffile.IsSharedObject(cacheRoot+filename) {
		return 0
	}
	return start - pgoff
}
