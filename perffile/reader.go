// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perffile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"reflect"

	log "github.com/rs/zerolog"
)

// A File is an open perf.data file: its header, its negotiated event
// id layout, and the data section it streams records from.
//
// This carries only what this importer actually needs: the event id
// table and the data section reader. Header feature metadata such as
// Hostname, OSRelease, or CPUDesc has no consumer here and was
// dropped rather than carried along unused.
type File struct {
	r      io.ReaderAt
	closer io.Closer
	hdr    fileHeader

	idToAttr   map[uint64]*EventDescriptor
	idOffset   int          // byte offset of the sample id field; -1 if none
	sampleType SampleFormat // shared layout every SAMPLE record is decoded with

	logger *log.Logger
}

// SetLogger installs the logger Records uses to report semantic
// skips (non-executable MMAP2 mappings, sample ids that don't
// resolve to a known event, unrecognized record types) at debug
// level. New installs a no-op logger by default.
func (f *File) SetLogger(logger *log.Logger) {
	f.logger = logger
}

// New reads the header and event attribute table of a perf.data file
// from r. The caller must keep r open as long as it uses the
// returned *File.
func New(r io.ReaderAt) (f *File, err error) {
	defer recoverParseError(&err)

	nop := log.Nop()
	file := &File{r: r, logger: &nop}

	sr := io.NewSectionReader(r, 0, 1024)
	if err := binary.Read(sr, binary.LittleEndian, &file.hdr); err != nil {
		return nil, err
	}
	if string(file.hdr.Magic[:]) != "PERFILE2" {
		return nil, parseErrorf(0, "bad or unsupported file magic %q", file.hdr.Magic[:])
	}
	if file.hdr.Size != uint64(binary.Size(&file.hdr)) {
		return nil, parseErrorf(0, "bad header size %d", file.hdr.Size)
	}
	if file.hdr.AttrSize != uint64(binary.Size(&rawEventAttr{})) {
		return nil, parseErrorf(0, "bad attr size %d", file.hdr.AttrSize)
	}

	var attrs []fileAttr
	if err := readSlice(file.hdr.Attrs.sectionReader(r), &attrs); err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		return nil, parseErrorf(int64(file.hdr.Attrs.Offset), "no event attributes")
	}
	attrSize := uint32(binary.Size(&rawEventAttr{}))
	for _, a := range attrs {
		if a.Attr.Size != attrSize {
			return nil, parseErrorf(int64(file.hdr.Attrs.Offset), "bad attr size %d", a.Attr.Size)
		}
	}

	names, err := file.eventNames(attrs)
	if err != nil {
		return nil, err
	}

	// All descriptors are assumed to share one sample layout; a SAMPLE
	// record is decoded using this single file-wide mask, so a profile
	// whose descriptors disagree is an unsupported configuration,
	// rejected here rather than silently misparsed by later records.
	file.sampleType = attrs[0].Attr.SampleFormat
	for _, a := range attrs[1:] {
		if a.Attr.SampleFormat != file.sampleType {
			return nil, parseErrorf(int64(file.hdr.Attrs.Offset), "mixed sample layouts are unsupported: %#x vs %#x", file.sampleType, a.Attr.SampleFormat)
		}
	}

	file.idToAttr = make(map[uint64]*EventDescriptor)
	idsSeen := 0
	for i, a := range attrs {
		var ids []uint64
		if err := readSlice(a.IDs.sectionReader(r), &ids); err != nil {
			return nil, err
		}
		desc := &EventDescriptor{Name: names[i], SampleType: a.Attr.SampleFormat}
		for _, id := range ids {
			file.idToAttr[id] = desc
			idsSeen++
		}
	}

	if idsSeen == 0 {
		// A single-event profile may omit ids entirely; samples
		// implicitly refer to that one event. Synthesize id 0.
		if len(attrs) > 1 {
			return nil, parseErrorf(int64(file.hdr.Attrs.Offset), "file has multiple events but no sample ids")
		}
		if attrs[0].Attr.SampleFormat&(SampleFormatID|SampleFormatIdentifier) != 0 {
			return nil, parseErrorf(int64(file.hdr.Attrs.Offset), "sample format declares an id field, but no ids were recorded")
		}
		file.idToAttr[0] = &EventDescriptor{Name: names[0], SampleType: attrs[0].Attr.SampleFormat}
		file.idOffset = -1
	} else {
		file.idOffset = -1
		for _, a := range attrs {
			off := a.Attr.SampleFormat.sampleIDOffset()
			if off == -1 {
				return nil, parseErrorf(int64(file.hdr.Attrs.Offset), "event has ids but no id field in its sample format")
			}
			if file.idOffset == -1 {
				file.idOffset = off
			} else if file.idOffset != off {
				return nil, parseErrorf(int64(file.hdr.Attrs.Offset), "events have incompatible sample id offsets %d and %d", file.idOffset, off)
			}
		}
	}

	return file, nil
}

// eventNames resolves a display name for each attr: Path A reads
// HEADER_EVENT_DESC if present, falling back to the flat
// hardware/software name tables of Path B when the feature is absent
// or doesn't cover every attr.
func (f *File) eventNames(attrs []fileAttr) ([]string, error) {
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = eventName(a.Attr.Type, a.Attr.Config)
	}

	if !f.hdr.hasEventDesc() {
		return names, nil
	}
	sec, ok, err := f.eventDescSection()
	if err != nil {
		return nil, err
	}
	if !ok {
		return names, nil
	}

	data := make([]byte, sec.Size)
	if _, err := f.r.ReadAt(data, int64(sec.Offset)); err != nil {
		return nil, err
	}
	c := newCursor(data, int64(sec.Offset))

	nr := c.u32()
	attrSize := c.u32()
	for i := uint32(0); i < nr && !c.empty(); i++ {
		c.skip(int(attrSize)) // the embedded rawEventAttr copy; the attr table already has this
		nids := c.u32()
		name := c.lenString()
		c.u64s(int(nids)) // ids are positional with attrs in both tables; not re-cross-checked here
		if int(i) < len(names) {
			names[i] = name
		}
	}
	return names, nil
}

// eventDescSection locates the HEADER_EVENT_DESC feature section: the
// feature sections trailer is one fileSection per set bit in
// fileHeader.Flags, in bit order, stored immediately after the data
// section.
func (f *File) eventDescSection() (fileSection, bool, error) {
	if !f.hdr.hasEventDesc() {
		return fileSection{}, false, nil
	}
	slot := 0
	for bit := 0; bit < headerEventDesc; bit++ {
		if f.hdr.Flags&(1<<uint(bit)) != 0 {
			slot++
		}
	}
	off := int64(f.hdr.Data.Offset+f.hdr.Data.Size) + int64(slot)*int64(binary.Size(fileSection{}))
	var sec fileSection
	sr := io.NewSectionReader(f.r, off, int64(binary.Size(fileSection{})))
	if err := binary.Read(sr, binary.LittleEndian, &sec); err != nil {
		return fileSection{}, false, err
	}
	return sec, true, nil
}

// Open opens the named perf.data file using os.Open.
//
// The caller must call f.Close() on the returned file when done.
func Open(name string) (*File, error) {
	osf, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	f, err := New(osf)
	if err != nil {
		osf.Close()
		return nil, err
	}
	f.closer = osf
	return f, nil
}

// Close closes the File. If the File was created using New directly
// instead of Open, Close has no effect.
func (f *File) Close() error {
	var err error
	if f.closer != nil {
		err = f.closer.Close()
		f.closer = nil
	}
	return err
}

// Records returns an iterator over the records in the data section.
func (f *File) Records() *Records {
	return &Records{f: f, sr: f.hdr.Data.sectionReader(f.r)}
}

// readSlice reads an entire section into a slice. v must be a pointer
// to a slice; the slice itself may be nil. The section size must be
// an exact multiple of the size of the element type of v.
//
// This reflection-based bulk read works equally well for fileAttr and
// uint64 id arrays as it does for any other fixed-size record table.
func readSlice(sr *io.SectionReader, v interface{}) error {
	vt := reflect.TypeOf(v)
	if vt.Kind() != reflect.Ptr || vt.Elem().Kind() != reflect.Slice {
		panic("v must be a pointer to a slice")
	}
	et := vt.Elem().Elem()
	esize := binary.Size(reflect.Zero(et).Interface())
	if esize <= 0 {
		return fmt.Errorf("element type %v has no fixed size", et)
	}
	nelem := int(sr.Size() / int64(esize))
	if sr.Size()%int64(esize) != 0 {
		return fmt.Errorf("section size %d is not a multiple of element size %d", sr.Size(), esize)
	}

	reflect.ValueOf(v).Elem().Set(reflect.MakeSlice(vt.Elem(), nelem, nelem))
	return binary.Read(sr, binary.LittleEndian, v)
}
