// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perffile

import (
	"encoding/binary"
	"io"
)

// A Record is one decoded entry from the data section: a RecordMmap,
// a RecordMmap2, or a RecordSample. Records.Next skips every other
// kind by size and does not return it.
type Record interface {
	recordType() RecordType
}

// RecordMmap is PERF_RECORD_MMAP: a non-PIE executable mapping. perf
// only ever marks the main executable's text mapping this way, so
// unlike RecordMmap2 it carries no protection bits to filter on.
type RecordMmap struct {
	Time             uint64
	PID, TID         int32
	Addr, Len, PgOff uint64
	Filename         string
}

func (*RecordMmap) recordType() RecordType { return RecordTypeMmap }

// RecordMmap2 is PERF_RECORD_MMAP2: a mapping record carrying
// protection bits. The importer only keeps the ones with PROT_EXEC
// set; see Next below.
type RecordMmap2 struct {
	Time             uint64
	PID, TID         int32
	Addr, Len, PgOff uint64
	Prot, Flags      uint32
	Filename         string
}

func (*RecordMmap2) recordType() RecordType { return RecordTypeMmap2 }

func (r *RecordMmap2) execMapping() bool { return r.Prot&protExec != 0 }

// RecordSample is PERF_RECORD_SAMPLE: a single instruction-pointer
// observation attributed to an event.
type RecordSample struct {
	Time   uint64
	IP     uint64
	PID    int32
	TID    int32
	Event  *EventDescriptor
	Period uint64
}

func (*RecordSample) recordType() RecordType { return RecordTypeSample }

// RecordUnknown stands for any record kind this importer does not give
// distinguished treatment to. Records.Next skips such records by size
// and never returns a RecordUnknown.
type RecordUnknown struct {
	Type RecordType
}

func (r *RecordUnknown) recordType() RecordType { return r.Type }

// Records is an iterator over the records in a perf.data file's data
// section.
//
//	rs := file.Records()
//	for rs.Next() {
//	    switch r := rs.Record.(type) {
//	    case *perffile.RecordSample:
//	        ...
//	    }
//	}
//	if err := rs.Err(); err != nil { ... }
//
// Trimmed to the three record kinds this importer distinguishes, with
// bounds checking threaded through cursor instead of an unchecked
// byte-slice decoder.
type Records struct {
	f   *File
	sr  *io.SectionReader
	err error

	Record Record

	buf []byte
}

// Err returns the first error encountered by Records, or nil.
func (r *Records) Err() error { return r.err }

// Next advances to the next record. It returns false at end of stream
// or on error; check Err to distinguish the two. Non-fatal per-record
// problems (an unmappable sample id, a non-executable MMAP2) are
// logged at debug level and skipped; Next only stops on structural
// corruption.
func (r *Records) Next() (ok bool) {
	if r.err != nil {
		return false
	}
	defer recoverParseError(&r.err)

	for {
		offset, _ := r.sr.Seek(0, io.SeekCurrent)

		var hdr recordHeader
		if err := binary.Read(r.sr, binary.LittleEndian, &hdr); err != nil {
			if err != io.EOF {
				r.err = err
			}
			return false
		}
		assertf(hdr.Size >= 8, offset, "record size %d smaller than header", hdr.Size)

		rlen := int(hdr.Size) - 8
		if rlen > len(r.buf) {
			r.buf = make([]byte, rlen)
		}
		buf := r.buf[:rlen]
		if _, err := io.ReadFull(r.sr, buf); err != nil {
			r.err = err
			return false
		}
		c := newCursor(buf, offset+8)

		var rec Record
		switch hdr.Type {
		case RecordTypeMmap:
			rec = r.parseMmap(&c)
		case RecordTypeMmap2:
			m2 := r.parseMmap2(&c)
			if !m2.execMapping() {
				r.f.logger.Debug().Uint64("addr", m2.Addr).Uint32("prot", m2.Prot).
					Str("filename", m2.Filename).Msg("skipping non-executable mapping")
				continue
			}
			rec = m2
		case RecordTypeSample:
			s := r.parseSample(&c)
			if s == nil {
				continue // logged in parseSample, which still has the raw id in hand
			}
			rec = s
		default:
			r.f.logger.Debug().Uint32("type", uint32(hdr.Type)).Msg("skipping unrecognized record type")
			continue
		}
		r.Record = rec
		return true
	}
}

// trailerTime decodes the sample_id trailer appended to non-SAMPLE
// records under sample format sf and returns its Time field, if any.
// Field order matches the kernel's perf_sample_id layout, narrowed to
// the one field this importer's map registry needs.
func trailerTime(buf []byte, sf SampleFormat) (t uint64, ok bool) {
	n := sf.trailerBytes()
	if n == 0 || n > len(buf) {
		return 0, false
	}
	c := newCursor(buf[len(buf)-n:], 0)
	if sf&SampleFormatTID != 0 {
		c.skip(8) // pid, tid
	}
	if sf&SampleFormatTime != 0 {
		t, ok = c.u64(), true
	}
	if sf&SampleFormatID != 0 {
		c.skip(8)
	}
	if sf&SampleFormatStreamID != 0 {
		c.skip(8)
	}
	if sf&SampleFormatCPU != 0 {
		c.skip(8) // cpu, res
	}
	if sf&SampleFormatIdentifier != 0 {
		c.skip(8)
	}
	return t, ok
}

// trailerSampleType reports the sample format this file's records
// carry in their sample_id trailer. New already rejected files whose
// descriptors disagree on the sample layout, so f.sampleType applies
// file-wide.
func (f *File) trailerSampleType() SampleFormat {
	return f.sampleType
}

func (r *Records) parseMmap(c *cursor) *RecordMmap {
	o := &RecordMmap{}
	o.PID, o.TID = c.i32(), c.i32()
	o.Addr, o.Len, o.PgOff = c.u64(), c.u64(), c.u64()
	o.Filename = c.cstring()
	if t, ok := trailerTime(c.remainingBytes(), r.f.trailerSampleType()); ok {
		o.Time = t
	}
	return o
}

func (r *Records) parseMmap2(c *cursor) *RecordMmap2 {
	o := &RecordMmap2{}
	o.PID, o.TID = c.i32(), c.i32()
	o.Addr, o.Len, o.PgOff = c.u64(), c.u64(), c.u64()
	c.skip(4 + 4) // major, minor
	c.skip(8 + 8) // ino, ino generation
	o.Prot, o.Flags = c.u32(), c.u32()
	o.Filename = c.cstring()
	if t, ok := trailerTime(c.remainingBytes(), r.f.trailerSampleType()); ok {
		o.Time = t
	}
	return o
}

// parseSample decodes a SAMPLE record's fields in on-disk order. IP
// and Period are required; a sample id that doesn't resolve to a
// known EventDescriptor is a semantic skip (returns nil), not a
// structural error, since a stray id can legitimately appear if an
// event was disabled mid-capture.
func (r *Records) parseSample(c *cursor) *RecordSample {
	o := &RecordSample{}

	// The id field's position within the record is fixed file-wide
	// (New computed f.idOffset from it); peek it before consuming
	// the rest of the record in field order.
	id := r.sampleID(c)
	o.Event = r.f.idToAttr[id]
	if o.Event == nil {
		r.f.logger.Debug().Uint64("id", id).Msg("skipping sample: id does not resolve to a known event")
		return nil
	}

	t := r.f.sampleType
	assertf(t&SampleFormatIP != 0, c.off, "sample format is missing required IP field")
	assertf(t&SampleFormatPeriod != 0, c.off, "sample format is missing required PERIOD field")

	if t&SampleFormatIdentifier != 0 {
		c.u64() // already extracted via sampleID
	}
	o.IP = c.u64()
	if t&SampleFormatTID != 0 {
		o.PID, o.TID = c.i32(), c.i32()
	}
	if t&SampleFormatTime != 0 {
		o.Time = c.u64()
	}
	if t&SampleFormatAddr != 0 {
		c.u64()
	}
	if t&SampleFormatID != 0 {
		c.u64()
	}
	if t&SampleFormatStreamID != 0 {
		c.u64()
	}
	if t&SampleFormatCPU != 0 {
		c.skip(8)
	}
	o.Period = c.u64()

	return o
}

// sampleID extracts the event id field from a SAMPLE record without
// disturbing field decode order for the fields before it: it reads
// from f.idOffset, which New computed as either the IDENTIFIER field
// at offset 0 or the ID field's fixed position after IP/TID/TIME/ADDR.
func (r *Records) sampleID(c *cursor) uint64 {
	if r.f.idOffset == -1 {
		return 0
	}
	raw := c.remainingBytes()
	assertf(r.f.idOffset+8 <= len(raw), c.off, "sample id offset %d past end of %d-byte record", r.f.idOffset, len(raw))
	return binary.LittleEndian.Uint64(raw[r.f.idOffset:])
}
