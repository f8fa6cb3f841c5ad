// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perffile is a parser for the "perf.data" binary container
// produced by the Linux perf record tool.
//
// Parsing starts with a call to Open or New, which reads the file
// header and the event attribute table. The record stream is then
// walked with File.Records, which yields MMAP, MMAP2, and SAMPLE
// records; all other record kinds are skipped. perffile assumes
// host-endian (little-endian) perf.data version 2 input and does not
// attempt to recover from structural corruption.
package perffile // import "github.com/samkeen/perfannotate/perffile"
