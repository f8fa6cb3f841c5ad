// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perffile

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testHeaderSize  = 104
	testAttrSize    = 128
	testFileAttrLen = testAttrSize + 16 // + IDs fileSection
)

// rawAttrBytes lays out a 128-byte rawEventAttr with the given type,
// config, and sample format; every other field is zero.
func rawAttrBytes(typ, config uint32, sampleFormat SampleFormat) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, typ)
	binary.Write(&buf, binary.LittleEndian, uint32(testAttrSize))
	binary.Write(&buf, binary.LittleEndian, uint64(config))
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // SamplePeriodOrFreq
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
	return buf.Bytes()
}

// testAttr describes one event attribute for buildFile, along with
// the sample ids that resolve to it.
type testAttr struct {
	typ, config  uint32
	sampleFormat SampleFormat
	ids          []uint64
}

// buildFile assembles a minimal perf.data file: a header, the given
// attributes (each followed by its IDs section), and a data section
// holding the given raw records.
func buildFile(t *testing.T, attrs []testAttr, data []byte) []byte {
	t.Helper()

	fileAttrsLen := int64(len(attrs)) * testFileAttrLen
	idsStart := testHeaderSize + fileAttrsLen

	var ids bytes.Buffer
	idOffsets := make([]int64, len(attrs))
	for i, a := range attrs {
		idOffsets[i] = idsStart + int64(ids.Len())
		for _, id := range a.ids {
			binary.Write(&ids, binary.LittleEndian, id)
		}
	}

	dataOffset := idsStart + int64(ids.Len())

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
		Size:     testHeaderSize,
		AttrSize: testAttrSize,
		Attrs:    [2]uint64{testHeaderSize, uint64(fileAttrsLen)},
		Data:     [2]uint64{uint64(dataOffset), uint64(len(data))},
	}
	copy(hdr.Magic[:], "PERFILE2")
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, &hdr))
	require.EqualValues(t, testHeaderSize, buf.Len())

	for i, a := range attrs {
		buf.Write(rawAttrBytes(a.typ, a.config, a.sampleFormat))
		binary.Write(&buf, binary.LittleEndian, uint64(idOffsets[i]))
		binary.Write(&buf, binary.LittleEndian, uint64(len(a.ids)*8))
	}
	require.EqualValues(t, idsStart, buf.Len())

	buf.Write(ids.Bytes())
	require.EqualValues(t, dataOffset, buf.Len())

	buf.Write(data)
	return buf.Bytes()
}

func writeTestRecord(w io.Writer, typ uint32, body []byte) {
	binary.Write(w, binary.LittleEndian, typ)
	binary.Write(w, binary.LittleEndian, uint16(0))
	binary.Write(w, binary.LittleEndian, uint16(8+len(body)))
	w.Write(body)
}
