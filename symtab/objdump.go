// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtab

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// InsnStream walks the disassembled instructions of one symbol's
// address range, produced by Disassemble.
type InsnStream struct {
	sc  *bufio.Scanner
	rc  io.ReadCloser
	end uint64

	Addr uint64
	Text string
}

// Disassemble runs objdump over [start, stop) of the binary at
// cacheRoot+filename and returns a stream of its output lines.
//
// The stop address is padded by 4 bytes in the objdump invocation, as
// in the tool this is grounded on, so the last instruction in range
// isn't cut off by objdump's own exclusive upper bound. A missing
// objdump binary degrades to an immediately-exhausted stream rather
// than an error.
func Disassemble(ctx context.Context, r Runner, objdumpPath, cacheRoot, filename string, start, stop uint64) (*InsnStream, error) {
	rc, err := r.Run(ctx, objdumpPath,
		"-d", "--no-show-raw-insn",
		fmt.Sprintf("--start-address=%#x", start),
		fmt.Sprintf("--stop-address=%#x", stop+4),
		cacheRoot+filename)
	if err != nil {
		return &InsnStream{end: stop, Addr: stop}, nil
	}
	return &InsnStream{sc: bufio.NewScanner(rc), rc: rc, end: stop}, nil
}

// Close releases the underlying subprocess output stream.
func (s *InsnStream) Close() error {
	if s.rc == nil {
		return nil
	}
	return s.rc.Close()
}

// Next advances to the next "addr: text" disassembly line. It returns
// false once objdump's output is exhausted, at which point Addr reads
// as the stream's stop address and Text is empty — the end-of-stream
// sentinel callers compare against when walking instructions in
// lockstep with a sample list.
func (s *InsnStream) Next() bool {
	for s.sc != nil && s.sc.Scan() {
		line := s.sc.Text()
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		addr, err := strconv.ParseUint(strings.TrimSpace(line[:idx]), 16, 64)
		if err != nil {
			continue
		}
		s.Addr = addr
		s.Text = strings.TrimSpace(line[idx+1:])
		return true
	}
	s.Addr, s.Text = s.end, ""
	return false
}
