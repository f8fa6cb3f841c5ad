// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perffile

import "os"

// etDyn is the ELF e_type value for a shared object (position-
// independent executable or .so); see elf.ET_DYN in debug/elf.
const etDyn = 3

// IsSharedObject reports whether the ELF file at path is a shared
// object (a .so or a position-independent executable), as opposed to
// a traditional non-PIE executable. A missing or unreadable file is
// treated as "not a shared object", so a mapping's load bias safely
// defaults to zero, matching the original importer's IsSharedObject
// returning false when fopen fails.
//
// This reads only the fixed 18-byte e_ident/e_type prefix rather than
// parsing the whole ELF file with debug/elf.Open, the same shortcut
// the original C++ importer takes with its PartialElfHeader overlay.
func IsSharedObject(path string) bool {
	return isSharedObject(path)
}

func isSharedObject(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var hdr [18]byte
	if _, err := readFull(f, hdr[:]); err != nil {
		return false
	}

	eType := uint16(hdr[16]) | uint16(hdr[17])<<8
	return eType == etDyn
}

func readFull(f *os.File, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := f.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
