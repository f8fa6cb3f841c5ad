// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtab

import (
	"bufio"
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/ianlancetaylor/demangle"
)

// nmTypeLetters is the set of nm type-letter codes this importer
// keeps: text-section symbols, and weak symbols whether or not
// they're tagged as such. Everything else (data, bss, undefined, ...)
// is not an instruction address and is dropped.
const nmTypeLetters = "TtVvWw"

// ReadSymbols reads the defined symbol table of the binary at
// cacheRoot+filename, combining nm's dynamic (-D) and static symbol
// output, demangling C++/Rust names, and removing duplicates.
//
// A missing nm binary or a binary nm can't read degrades to an empty
// result rather than an error: the caller treats a map with no
// symbols the same as a map it chose not to disassemble.
func ReadSymbols(ctx context.Context, r Runner, nmPath, cacheRoot, filename string) ([]Symbol, error) {
	var out []Symbol
	for _, dynamic := range []bool{true, false} {
		syms, err := fetchSymbols(ctx, r, nmPath, cacheRoot, filename, dynamic)
		if err != nil {
			return nil, err
		}
		out = append(out, syms...)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].less(out[j]) })
	out = dedupe(out)
	return out, nil
}

func fetchSymbols(ctx context.Context, r Runner, nmPath, cacheRoot, filename string, dynamic bool) ([]Symbol, error) {
	args := []string{}
	if dynamic {
		args = append(args, "-D")
	}
	args = append(args, "-S", "--defined-only", cacheRoot+filename)

	rc, err := r.Run(ctx, nmPath, args...)
	if err != nil {
		return nil, nil // subprocess-degraded: treat as no symbols
	}
	defer rc.Close()

	var syms []Symbol
	sc := bufio.NewScanner(rc)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			continue
		}
		start, err := strconv.ParseUint(fields[0], 16, 64)
		if err != nil {
			continue
		}
		extent, err := strconv.ParseUint(fields[1], 16, 64)
		if err != nil {
			continue
		}
		if len(fields[2]) != 1 || !strings.ContainsRune(nmTypeLetters, rune(fields[2][0])) {
			continue
		}
		name := demangle.Filter(fields[3])
		syms = append(syms, Symbol{Start: start, End: start + extent, Name: name})
	}
	return syms, nil
}

func dedupe(syms []Symbol) []Symbol {
	out := syms[:0]
	for i, s := range syms {
		if i == 0 || s != syms[i-1] {
			out = append(out, s)
		}
	}
	return out
}
