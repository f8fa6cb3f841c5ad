// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perfmap tracks the time-ordered memory mappings recorded in
// a profile and aggregates per-event sample counts against them.
//
// Mappings arrive and are looked up by (time, address) rather than by
// process: this importer treats the mapping table as a single global
// registry, not a per-PID one, matching the sampling tool it is
// grounded on rather than perf's own per-process session model.
package perfmap // import "github.com/samkeen/perfannotate/perfmap"
