// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perffile

import "io"

// fileHeader is perf_file_header from tools/perf/util/header.h. It is
// fixed-size and aligned, so like the package's other fixed-size
// structures it is decoded with binary.Read directly rather than
// through a cursor (see reader.go).
type fileHeader struct {
	Magic    [8]byte
	Size     uint64
	AttrSize uint64
	Attrs    fileSection
	Data     fileSection
	_        fileSection // event_types; unused in v2
	Flags    uint64
	_        [3]uint64 // flags1[1:]; no feature bit past 63 is defined
}

const headerEventDesc = 12 // HEADER_EVENT_DESC bit in fileHeader.Flags

func (h *fileHeader) hasEventDesc() bool {
	return h.Flags&(1<<headerEventDesc) != 0
}

// fileSection is perf_file_section: an (offset, size) locator into
// the file.
type fileSection struct {
	Offset, Size uint64
}

func (s fileSection) sectionReader(r io.ReaderAt) *io.SectionReader {
	return io.NewSectionReader(r, int64(s.Offset), int64(s.Size))
}

// An EventType is a general class of performance event: the
// perf_type_id enum from include/uapi/linux/perf_event.h.
type EventType uint32

const (
	EventTypeHardware   EventType = 0
	EventTypeSoftware   EventType = 1
	EventTypeTracepoint EventType = 2
	EventTypeHWCache    EventType = 3
	EventTypeRaw        EventType = 4
	EventTypeBreakpoint EventType = 5
)

// hwEventNames and swEventNames are the fixed name tables used by
// Path B of attribute-table parsing, taken from the original
// importer's hw_event_names/sw_event_names arrays.
var hwEventNames = [...]string{
	"cycles",
	"instructions",
	"cache-references",
	"cache-misses",
	"branch-instructions",
	"branch-misses",
	"bus-cycles",
	"stalled-cycles-frontend",
	"stalled-cycles-backend",
	"ref-cpu-cycles",
}

var swEventNames = [...]string{
	"cpu-clock",
	"task-clock",
	"page-faults",
	"context-switches",
	"cpu-migrations",
	"minor-faults",
	"major-faults",
	"alignment-faults",
	"emulation-faults",
}

func eventName(typ EventType, config uint64) string {
	switch typ {
	case EventTypeHardware:
		if config < uint64(len(hwEventNames)) {
			return hwEventNames[config]
		}
	case EventTypeSoftware:
		if config < uint64(len(swEventNames)) {
			return swEventNames[config]
		}
	}
	return "unknown"
}

// A SampleFormat is a bitmask of the optional fields recorded in each
// SAMPLE record and in the sample_id trailer of other record kinds:
// the perf_event_sample_format enum from
// include/uapi/linux/perf_event.h. Only the bits this importer's
// sample layout actually consumes get an exported constant; the
// unexported gap bits exist so the trailer and sample decoders can
// skip fields they never read without losing the correct byte width.
type SampleFormat uint64

const (
	SampleFormatIP SampleFormat = 1 << iota
	SampleFormatTID
	SampleFormatTime
	SampleFormatAddr
	sampleFormatRead
	sampleFormatCallchain
	SampleFormatID
	SampleFormatCPU
	SampleFormatPeriod
	SampleFormatStreamID
	sampleFormatRaw
	sampleFormatBranchStack
	sampleFormatRegsUser
	sampleFormatStackUser
	sampleFormatWeight
	sampleFormatDataSrc
	SampleFormatIdentifier
)

// EventDescriptor is the (name, layout) pair an event id resolves to.
type EventDescriptor struct {
	Name       string
	SampleType SampleFormat
}

// recordHeader is perf_event_header: the fixed, 8-byte prefix of
// every record in the data section.
type recordHeader struct {
	Type RecordType
	Misc uint16
	Size uint16
}

// A RecordType identifies the kind of a record in the data section.
// This importer only gives distinguished treatment to MMAP, MMAP2,
// and SAMPLE; every other kind is skipped by size.
type RecordType uint32

const (
	RecordTypeMmap   RecordType = 1
	RecordTypeSample RecordType = 9
	RecordTypeMmap2  RecordType = 10
)

func (t RecordType) String() string {
	switch t {
	case RecordTypeMmap:
		return "MMAP"
	case RecordTypeSample:
		return "SAMPLE"
	case RecordTypeMmap2:
		return "MMAP2"
	default:
		return "UNKNOWN"
	}
}

// protExec mirrors PROT_EXEC, tested against perf_event_mmap2.prot to
// filter out non-executable mappings.
const protExec = 1 << 2
