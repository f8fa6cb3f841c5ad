// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtab

import (
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Runner invokes an external tool and returns a stream of its
// standard output. It abstracts the nm/objdump subprocess calls this
// package makes, so tests can supply a fake instead of shelling out.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (io.ReadCloser, error)
}

// ShellRunner runs commands through "sh -c", matching ForkAndExec's
// popen(cmd, "r") semantics in the tool this package is grounded on:
// the command and its arguments are joined into one shell string
// rather than exec'd argv-style, and standard error is discarded.
type ShellRunner struct{}

func (ShellRunner) Run(ctx context.Context, name string, args ...string) (io.ReadCloser, error) {
	parts := append([]string{name}, args...)
	cmd := exec.CommandContext(ctx, "sh", "-c", strings.Join(parts, " ")+" 2>/dev/null")
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrapf(err, "piping stdout for %q", name)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "starting %q", name)
	}
	return &waitCloser{out, cmd}, nil
}

// waitCloser closes the pipe and reaps the subprocess. A missing
// binary or a binary that exits non-zero (e.g. nm refusing a
// malformed file) is not reported as an error here: symtab's callers
// treat empty output the same as "this tool told us nothing" rather
// than failing the whole import over one unreadable mapping.
type waitCloser struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (w *waitCloser) Close() error {
	err := w.ReadCloser.Close()
	w.cmd.Wait()
	return err
}
