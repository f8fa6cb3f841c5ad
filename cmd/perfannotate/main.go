// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command perfannotate reads a perf.data profile and prints its
// per-function, per-line annotated breakdown as JSON.
package main

import (
	"os"

	log "github.com/rs/zerolog"

	"github.com/samkeen/perfannotate/internal/cmd"
)

func main() {
	logger := log.New(os.Stderr).Level(log.InfoLevel).With().Timestamp().Logger()
	if err := cmd.NewRootCmd(&logger).Execute(); err != nil {
		os.Exit(1)
	}
}
