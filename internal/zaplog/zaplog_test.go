// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zaplog

import "testing"

func TestVerbosity(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		log, sync, err := New(verbose)
		if err != nil {
			t.Fatal(err)
		}
		if got := log.V(1).Enabled(); got != verbose {
			t.Errorf("New(%v): V(1).Enabled() = %v, want %v", verbose, got, verbose)
		}
		if !log.Enabled() {
			t.Errorf("New(%v): info logging disabled", verbose)
		}
		sync()
	}
}
