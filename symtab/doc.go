// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package symtab reads symbol tables and disassembly for mapped
// binaries by shelling out to nm and objdump, the same way the
// profiling tool this package is grounded on does.
//
// Every subprocess call goes through the Runner interface rather than
// os/exec directly, so tests can supply canned output instead of
// depending on a real toolchain being installed.
package symtab // import "github.com/samkeen/perfannotate/symtab"
