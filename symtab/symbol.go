// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtab

// Symbol is one defined, text-section symbol read from a binary's
// symbol table.
type Symbol struct {
	Start, End uint64
	Name       string
}

func (s Symbol) less(o Symbol) bool {
	return s.Start < o.Start
}
