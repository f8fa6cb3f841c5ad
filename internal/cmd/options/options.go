// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package options holds the flags and logger shared by every
// perfannotate subcommand.
package options

import log "github.com/rs/zerolog"

// CommonOptions is threaded through every subcommand so they share
// one logger and the root command's persistent flags.
type CommonOptions struct {
	Logger *log.Logger
	Debug  bool
}
