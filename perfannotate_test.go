// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfannotate

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samkeen/perfannotate/symtab"
)

// sampleFormat mirrors the bit layout perffile.SampleFormat uses:
// IP | TID | Time | Period. buildPerfData needs its numeric value to
// lay out records by hand, without reaching into the perffile
// package's unexported constants.
const sampleFormat = 1 /* IP */ | 2 /* TID */ | 4 /* Time */ | 256 /* Period */

// buildPerfData hand-assembles a minimal single-event, single-mapping
// perf.data file: a header, one attribute with no recorded sample
// ids (exercising the fallback synthetic-id-0 path), one MMAP record,
// and one SAMPLE record that falls inside the MMAP's range.
func buildPerfData(t *testing.T) string {
	t.Helper()

	const (
		headerSize = 104
		attrSize   = 128
		fileAttrSz = attrSize + 16 // + IDs fileSection
	)

	var mmapBody bytes.Buffer
	binary.Write(&mmapBody, binary.LittleEndian, int32(1))       // pid
	binary.Write(&mmapBody, binary.LittleEndian, int32(1))       // tid
	binary.Write(&mmapBody, binary.LittleEndian, uint64(0x1000)) // addr
	binary.Write(&mmapBody, binary.LittleEndian, uint64(0x9000)) // len
	binary.Write(&mmapBody, binary.LittleEndian, uint64(0))      // pgoff
	mmapBody.WriteString("a.out\x00")
	binary.Write(&mmapBody, binary.LittleEndian, uint32(1))   // trailer pid
	binary.Write(&mmapBody, binary.LittleEndian, uint32(1))   // trailer tid
	binary.Write(&mmapBody, binary.LittleEndian, uint64(100)) // trailer time

	var sampleBody bytes.Buffer
	binary.Write(&sampleBody, binary.LittleEndian, uint64(0x1500)) // IP
	binary.Write(&sampleBody, binary.LittleEndian, int32(1))       // pid
	binary.Write(&sampleBody, binary.LittleEndian, int32(1))       // tid
	binary.Write(&sampleBody, binary.LittleEndian, uint64(100))    // time
	binary.Write(&sampleBody, binary.LittleEndian, uint64(7))      // period

	var data bytes.Buffer
	writeRecord(&data, 1 /* RecordTypeMmap */, mmapBody.Bytes())
	writeRecord(&data, 9 /* RecordTypeSample */, sampleBody.Bytes())

	attrsOffset := int64(headerSize)
	dataOffset := attrsOffset + fileAttrSz

	var buf bytes.Buffer
	hdr := struct {
		Magic    [8]byte
		Size     uint64
		AttrSize uint64
		Attrs    [2]uint64
		Data     [2]uint64
		Unused   [2]uint64
		Flags    uint64
		Pad      [3]uint64
	}{
		Size:     headerSize,
		AttrSize: attrSize,
		Attrs:    [2]uint64{uint64(attrsOffset), fileAttrSz},
		Data:     [2]uint64{uint64(dataOffset), uint64(data.Len())},
	}
	copy(hdr.Magic[:], "PERFILE2")
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, &hdr))
	require.EqualValues(t, headerSize, buf.Len())

	// rawEventAttr: Type, Size, Config, SamplePeriodOrFreq,
	// SampleFormat, ReadFormat, Flags, WakeupEventsOrWatermark,
	// BPType, BPAddrOrConfig1, BPLenOrConfig2, BranchSampleType,
	// SampleRegsUser, SampleStackUser, ClockID, SampleRegsIntr,
	// AuxWatermark, SampleMaxStack, pad1, AuxSampleSize, pad2, SigData.
	binary.Write(&buf, binary.LittleEndian, uint32(0))        // Type: hardware
	binary.Write(&buf, binary.LittleEndian, uint32(attrSize)) // Size
	binary.Write(&buf, binary.LittleEndian, uint64(0))        // Config: cycles
	binary.Write(&buf, binary.LittleEndian, uint64(0))        // SamplePeriodOrFreq
	binary.Write(&buf, binary.LittleEndian, uint64(sampleFormat))
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // ReadFormat
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // Flags
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // WakeupEventsOrWatermark
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // BPType
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // BPAddrOrConfig1
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // BPLenOrConfig2
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // BranchSampleType
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // SampleRegsUser
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // SampleStackUser
	binary.Write(&buf, binary.LittleEndian, int32(0))  // ClockID
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // SampleRegsIntr
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // AuxWatermark
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // SampleMaxStack
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // pad1
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // AuxSampleSize
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // pad2
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // SigData
	// fileAttr.IDs: empty, so the file falls back to the synthetic id 0.
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // Offset
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // Size

	require.EqualValues(t, dataOffset, buf.Len())
	buf.Write(data.Bytes())

	path := filepath.Join(t.TempDir(), "perf.data")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func writeRecord(w io.Writer, typ uint32, body []byte) {
	binary.Write(w, binary.LittleEndian, typ)                 // Type
	binary.Write(w, binary.LittleEndian, uint16(0))           // Misc
	binary.Write(w, binary.LittleEndian, uint16(8+len(body))) // Size
	w.Write(body)
}

// fakeRunner degrades every tool invocation to empty output: this
// test only exercises the decode/aggregate/resolve path, not symbol
// correlation, so Import should still return a report with no
// functions but correct top-level counters.
type fakeRunner struct{}

func (fakeRunner) Run(ctx context.Context, name string, args ...string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func TestImportEndToEnd(t *testing.T) {
	path := buildPerfData(t)

	rep, err := Import(context.Background(), path, withRunner(fakeRunner{}))
	require.NoError(t, err)
	require.Equal(t, uint64(7), rep.Counters["cycles"])
}

var _ symtab.Runner = fakeRunner{}
