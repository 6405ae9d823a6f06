// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package zaplog builds the logr.Logger used by the docjoin binaries.
package zaplog

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
)

// New returns a logger backed by zap, and a function that flushes it.
// A verbose logger uses zap's development configuration and enables
// V(1) messages; otherwise it logs JSON at info level.
func New(verbose bool) (logr.Logger, func(), error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), func() {}, err
	}
	return zapr.NewLogger(zl), func() { zl.Sync() }, nil
}
