// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perffile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeELFPrefix(t *testing.T, eType uint16) string {
	t.Helper()
	hdr := make([]byte, 18)
	copy(hdr, []byte{0x7f, 'E', 'L', 'F'})
	hdr[16] = byte(eType)
	hdr[17] = byte(eType >> 8)

	path := filepath.Join(t.TempDir(), "bin")
	require.NoError(t, os.WriteFile(path, hdr, 0o644))
	return path
}

func TestIsSharedObjectTrueForETDyn(t *testing.T) {
	path := writeELFPrefix(t, 3 /* ET_DYN */)
	assert.True(t, IsSharedObject(path))
}

func TestIsSharedObjectFalseForETExec(t *testing.T) {
	path := writeELFPrefix(t, 2 /* ET_EXEC */)
	assert.False(t, IsSharedObject(path))
}

func TestIsSharedObjectFalseForMissingFile(t *testing.T) {
	assert.False(t, IsSharedObject(filepath.Join(t.TempDir(), "missing")))
}
