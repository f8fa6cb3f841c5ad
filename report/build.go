// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"context"
	"sort"

	log "github.com/rs/zerolog"

	"github.com/samkeen/perfannotate/perfmap"
	"github.com/samkeen/perfannotate/symtab"
)

// mapNoiseFloor and symbolNoiseFloor are the two correlation
// thresholds from the original importer's emitMaps: a mapping is
// considered at all only once its count for some event exceeds 1% of
// that event's total across the whole profile, and within a kept
// mapping only symbols accounting for more than 0.5% of some event's
// profile-wide total are emitted.
const (
	mapNoiseFloor    = 0.01
	symbolNoiseFloor = 0.005
)

// Options configures how Build locates the nm and objdump binaries
// and the binaries a profile's mappings point at.
type Options struct {
	NM        string
	Objdump   string
	CacheRoot string
	Runner    symtab.Runner
	Logger    *log.Logger
}

// Build correlates an aggregator's sample counts against the symbol
// tables and disassembly of the mappings in reg, producing the final
// annotated report.
//
// This is grounded on the original importer's
// emitTopLevelCounters/emitMaps/emitSymbol sequence (cPerf.cpp),
// reading symbols and disassembly through symtab instead of the
// original's inline NmOutput/ObjdumpOutput subprocess readers.
func Build(ctx context.Context, agg *perfmap.Aggregator, reg *perfmap.Registry, opts Options) (*Report, error) {
	if opts.Logger == nil {
		nop := log.Nop()
		opts.Logger = &nop
	}

	rep := &Report{
		Counters:  copyCounters(agg.TotalEvents),
		Functions: make(map[string]*Function),
	}

	for id, byPC := range agg.Events {
		if len(byPC) == 0 {
			continue
		}
		m := reg.Map(id)
		if event, ratio, ok := crossesNoiseFloor(agg.TotalEventsPerMap[id], agg.TotalEvents, mapNoiseFloor); !ok {
			opts.Logger.Debug().Int("map_id", int(id)).Str("filename", m.Filename).
				Str("event", event).Float64("ratio", ratio).Msg("dropping map below noise floor")
			continue
		}

		syms, err := symtab.ReadSymbols(ctx, opts.Runner, opts.NM, opts.CacheRoot, m.Filename)
		if err != nil {
			return nil, err
		}
		if len(syms) == 0 {
			continue
		}

		symTotals := correlate(byPC, syms, m.Adjust)

		for _, sym := range syms {
			totals := symTotals[sym.Start]
			event, ratio, ok := crossesNoiseFloor(totals, agg.TotalEvents, symbolNoiseFloor)
			if !ok {
				opts.Logger.Debug().Str("symbol", sym.Name).Str("event", event).
					Float64("ratio", ratio).Msg("dropping symbol below noise floor")
				continue
			}
			fn, err := buildFunction(ctx, opts, m, sym, byPC, totals)
			if err != nil {
				return nil, err
			}
			rep.Functions[sym.Name] = fn
		}
	}

	return rep, nil
}

// crossesNoiseFloor reports whether any event in counts accounts for
// more than floor of its own total across the whole profile. It also
// returns the event and ratio that came closest to crossing it, for
// callers to log when the answer is false.
func crossesNoiseFloor(counts map[string]uint64, totals map[string]uint64, floor float64) (bestEvent string, bestRatio float64, crossed bool) {
	for event, n := range counts {
		total := totals[event]
		if total == 0 {
			continue
		}
		ratio := float64(n) / float64(total)
		if ratio > floor {
			return event, ratio, true
		}
		if ratio > bestRatio {
			bestEvent, bestRatio = event, ratio
		}
	}
	return bestEvent, bestRatio, false
}

// correlate walks a mapping's sampled program counters and symbols in
// lockstep, both sorted ascending, accumulating each symbol's event
// totals. Samples are keyed by runtime address; symbols are file
// addresses, so adjust converts between the two the same way the
// original importer's "Event->first - Adjust" does.
func correlate(byPC map[uint64]map[string]uint64, syms []symtab.Symbol, adjust uint64) map[uint64]map[string]uint64 {
	pcs := make([]uint64, 0, len(byPC))
	for pc := range byPC {
		pcs = append(pcs, pc)
	}
	sort.Slice(pcs, func(i, j int) bool { return pcs[i] < pcs[j] })

	out := make(map[uint64]map[string]uint64)
	si, ei := 0, 0
	for ei < len(pcs) && si < len(syms) {
		filePC := pcs[ei] - adjust
		if filePC < syms[si].Start {
			ei++
			continue
		}
		if filePC >= syms[si].End {
			si++
			continue
		}
		totals, ok := out[syms[si].Start]
		if !ok {
			totals = make(map[string]uint64)
			out[syms[si].Start] = totals
		}
		for event, n := range byPC[pcs[ei]] {
			totals[event] += n
		}
		ei++
	}
	return out
}

// buildFunction disassembles sym's instruction range and attaches
// each sample that lands exactly on an instruction's address, the way
// emitSymbol does in the original importer.
func buildFunction(ctx context.Context, opts Options, m perfmap.Map, sym symtab.Symbol, byPC map[uint64]map[string]uint64, totals map[string]uint64) (*Function, error) {
	var pcs []uint64
	for pc := range byPC {
		filePC := pc - m.Adjust
		if filePC >= sym.Start && filePC < sym.End {
			pcs = append(pcs, pc)
		}
	}
	sort.Slice(pcs, func(i, j int) bool { return pcs[i] < pcs[j] })

	stream, err := symtab.Disassemble(ctx, opts.Runner, opts.Objdump, opts.CacheRoot, m.Filename, sym.Start, sym.End)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var lines []Line
	ei := 0
	for stream.Next() && stream.Addr < sym.End {
		var counters map[string]uint64
		if ei < len(pcs) && pcs[ei]-m.Adjust == stream.Addr {
			counters = byPC[pcs[ei]]
			ei++
		}
		lines = append(lines, Line{Counters: counters, PC: stream.Addr, Text: stream.Text})
	}

	return &Function{Counters: copyCounters(totals), Lines: lines}, nil
}

func copyCounters(m map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
