// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfmap

// Aggregator accumulates per-event sample counts by the mapping and
// program counter they were attributed to.
//
// Events, TotalEvents, and TotalEventsPerMap are kept in lockstep:
// for every mapping id and event name, TotalEventsPerMap[id][event]
// equals the sum of Events[id][pc][event] over all pc, and
// TotalEvents[event] equals the sum of TotalEventsPerMap[*][event].
// Add is the only way to mutate an Aggregator, so this conservation
// invariant holds by construction.
type Aggregator struct {
	Events            map[MapID]map[uint64]map[string]uint64
	TotalEvents       map[string]uint64
	TotalEventsPerMap map[MapID]map[string]uint64
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		Events:            make(map[MapID]map[uint64]map[string]uint64),
		TotalEvents:       make(map[string]uint64),
		TotalEventsPerMap: make(map[MapID]map[string]uint64),
	}
}

// Add records one sample of event at pc within mapping id.
func (a *Aggregator) Add(id MapID, pc uint64, event string, count uint64) {
	byPC, ok := a.Events[id]
	if !ok {
		byPC = make(map[uint64]map[string]uint64)
		a.Events[id] = byPC
	}
	byEvent, ok := byPC[pc]
	if !ok {
		byEvent = make(map[string]uint64)
		byPC[pc] = byEvent
	}
	byEvent[event] += count

	perMap, ok := a.TotalEventsPerMap[id]
	if !ok {
		perMap = make(map[string]uint64)
		a.TotalEventsPerMap[id] = perMap
	}
	perMap[event] += count

	a.TotalEvents[event] += count
}
