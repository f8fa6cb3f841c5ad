// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import "encoding/json"

// Line is one disassembled instruction, with the per-event sample
// counts attributed to it, if any.
//
// Line marshals as a 3-element JSON array [counters, pc, text]
// instead of a JSON object, matching the original importer's
// Py_BuildValue("[NKs]", ...) line tuple.
type Line struct {
	Counters map[string]uint64
	PC       uint64
	Text     string
}

func (l Line) MarshalJSON() ([]byte, error) {
	counters := l.Counters
	if counters == nil {
		counters = map[string]uint64{}
	}
	return json.Marshal([]interface{}{counters, l.PC, l.Text})
}

// Function is one emitted symbol's event totals and disassembled,
// per-line breakdown.
type Function struct {
	Counters map[string]uint64 `json:"counters"`
	Lines    []Line            `json:"data"`
}

// Report is the complete annotated profile: top-level event totals
// plus the functions that survived the noise-floor filters in Build.
type Report struct {
	Counters  map[string]uint64    `json:"counters"`
	Functions map[string]*Function `json:"functions"`
}
