// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perffile

import "fmt"

// A ParseError reports a structural failure while decoding a
// perf.data file: bad magic, a size field that doesn't match its
// on-disk structure, a cursor read past the end of its region, or a
// required sample field missing from the negotiated layout. These
// are the "fatal" errors of the error taxonomy: the caller should
// abort the import, not try to recover a partial result.
//
// This mirrors the Assert/assert(expr) macro in the original C++
// importer (cPerf.cpp), which threw std::logic_error carrying the
// failed expression, file, and line. Go has no exceptions, so
// ParseError is returned through the normal error path instead, but
// it still carries the failed expectation and its offset for
// debugging.
type ParseError struct {
	Offset int64
	Reason string
}

func (e *ParseError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("perffile: %s", e.Reason)
	}
	return fmt.Sprintf("perffile: %s (offset %#x)", e.Reason, e.Offset)
}

func parseErrorf(offset int64, format string, args ...interface{}) *ParseError {
	return &ParseError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// assertf panics with a *ParseError if cond is false. It is recovered
// at the outer boundary of every exported parsing entry point (New,
// File.Records' Next) so that a violated low-level invariant turns
// into a plain returned error rather than a crash, while still
// reporting the same "this should never happen" detail the original
// assert(expr) macro gave.
func assertf(cond bool, offset int64, format string, args ...interface{}) {
	if !cond {
		panic(parseErrorf(offset, format, args...))
	}
}

// recoverParseError turns a panicked *ParseError into a returned
// error. Any other panic value is re-raised.
func recoverParseError(errp *error) {
	if r := recover(); r != nil {
		if pe, ok := r.(*ParseError); ok {
			*errp = pe
			return
		}
		panic(r)
	}
}
