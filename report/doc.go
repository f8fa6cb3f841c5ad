// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report builds the final per-function, per-line annotated
// breakdown of a profile from an aggregated perfmap.Aggregator and
// the symbol tables and disassembly of its mappings.
//
// Build is grounded on the original importer's emitMaps/emitSymbol
// pair: a mapping is considered at all only if some event crossed the
// 1% noise floor within it, and within a kept mapping only symbols
// that account for more than 0.5% of some event's total are emitted.
package report // import "github.com/samkeen/perfannotate/report"
