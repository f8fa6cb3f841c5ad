// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfmap

import "sort"

// MapID identifies one mapping added to a Registry. Ids are assigned
// from zero in the order mappings are added, so the zero value names
// the first mapping added.
type MapID int

// Map is one executable memory mapping: the region [Start, End) of a
// file, with Adjust holding the load-bias correction (start minus
// on-disk offset for a shared object, zero otherwise) that
// report.Build subtracts from sampled addresses before matching them
// against the binary's symbols and disassembly.
type Map struct {
	Start, End uint64
	Adjust     uint64
	Filename   string
}

func (m Map) contains(pc uint64) bool { return m.Start <= pc && pc < m.End }

// entry is one mapping's start address within a single timestamp's
// bucket, kept sorted by start for binary search.
type entry struct {
	start uint64
	id    MapID
}

// Registry is the time-ordered map table a profile's MMAP/MMAP2
// records are accumulated into, and that SAMPLE records are resolved
// against by (time, pc).
//
// Uses a sorted-binary-search lookup per timestamp bucket, extended
// from a single flat range table to the two-level time-then-address
// structure the original importer's CurrentMaps needs: a mapping
// recorded at time t stays active for every sample at time >= t until
// a newer, overlapping mapping supersedes it, so resolution has to
// walk timestamp buckets from newest to oldest, not just search one
// flat table.
type Registry struct {
	maps    []Map
	order   []uint64           // timestamps with at least one mapping, ascending
	buckets map[uint64][]entry // per-timestamp mappings, sorted by start
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{buckets: make(map[uint64][]entry)}
}

// Add records m as active from time onward and returns its MapID.
func (r *Registry) Add(time uint64, m Map) MapID {
	id := MapID(len(r.maps))
	r.maps = append(r.maps, m)

	b, ok := r.buckets[time]
	if !ok {
		i := sort.Search(len(r.order), func(i int) bool { return r.order[i] >= time })
		r.order = append(r.order, 0)
		copy(r.order[i+1:], r.order[i:])
		r.order[i] = time
	}
	b = append(b, entry{m.Start, id})
	sort.Slice(b, func(i, j int) bool { return b[i].start < b[j].start })
	r.buckets[time] = b
	return id
}

// Map returns the mapping added under id.
func (r *Registry) Map(id MapID) Map { return r.maps[id] }

// Resolve finds the mapping active at time that contains pc, scanning
// timestamps from newest to oldest: the newest bucket at or before
// time may not be the one whose mapping actually covers pc, so a miss
// there falls through to progressively older buckets rather than
// giving up.
func (r *Registry) Resolve(time, pc uint64) (MapID, Map, bool) {
	// i is the first timestamp strictly after time; candidates are
	// r.order[:i], walked newest first.
	i := sort.Search(len(r.order), func(i int) bool { return r.order[i] > time })
	for j := i - 1; j >= 0; j-- {
		b := r.buckets[r.order[j]]
		k := sort.Search(len(b), func(k int) bool { return b[k].start > pc })
		if k == 0 {
			continue
		}
		id := b[k-1].id
		m := r.maps[id]
		if m.contains(pc) {
			return id, m, true
		}
	}
	return 0, Map{}, false
}
