// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perffile

// rawEventAttr is the on-disk perf_event_attr structure (ABI v7, from
// include/uapi/linux/perf_event.h). Its size must match the
// AttrSize perf actually wrote, which is why every ABI field is kept
// even though this importer only reads Type, Size, Config, and
// SampleFormat out of it — trimming the struct would make
// binary.Size disagree with the file's own AttrSize field and fail
// the check in New.
//
// Kept as a single flat struct rather than split by ABI revision,
// since this importer has no use for field-by-field documentation of
// each revision's additions.
type rawEventAttr struct {
	Type                    EventType
	Size                    uint32
	Config                  uint64
	SamplePeriodOrFreq      uint64
	SampleFormat            SampleFormat
	ReadFormat              uint64
	Flags                   uint64
	WakeupEventsOrWatermark uint32
	BPType                  uint32
	BPAddrOrConfig1         uint64
	BPLenOrConfig2          uint64
	BranchSampleType        uint64
	SampleRegsUser          uint64
	SampleStackUser         uint32
	ClockID                 int32
	SampleRegsIntr          uint64
	AuxWatermark            uint32
	SampleMaxStack          uint16
	Pad1                    uint16
	AuxSampleSize           uint32
	Pad2                    uint32
	SigData                 uint64
}

// fileAttr is perf_file_attr from tools/perf/util/header.c: one
// event's rawEventAttr plus the section listing the sample ids that
// refer to it.
type fileAttr struct {
	Attr rawEventAttr
	IDs  fileSection // array of uint64, one per core/thread
}

// sampleIDOffset returns the byte offset of the ID field within an
// on-disk SAMPLE record with this sample format, or -1 if there is
// none. See __perf_evsel__calc_id_pos in tools/perf/util/evsel.c.
func (s SampleFormat) sampleIDOffset() int {
	if s&SampleFormatIdentifier != 0 {
		return 0
	}
	if s&SampleFormatID == 0 {
		return -1
	}
	off := 0
	if s&SampleFormatIP != 0 {
		off += 8
	}
	if s&SampleFormatTID != 0 {
		off += 8
	}
	if s&SampleFormatTime != 0 {
		off += 8
	}
	if s&SampleFormatAddr != 0 {
		off += 8
	}
	return off
}

// trailerBytes returns the length of the sample_id trailer appended
// to non-SAMPLE records under this sample format.
func (s SampleFormat) trailerBytes() int {
	s &= SampleFormatTID | SampleFormatTime | SampleFormatID | SampleFormatStreamID | SampleFormatCPU | SampleFormatIdentifier
	n := 0
	for s != 0 {
		n += int(s & 1)
		s >>= 1
	}
	return 8 * n
}
