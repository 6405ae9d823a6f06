// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"slices"
	"testing"
)

func TestParseKeys(t *testing.T) {
	check := func(q string, want ...string) {
		t.Helper()
		got, err := ParseKeys(q)
		if err != nil {
			t.Errorf("%s: unexpected error %s", q, err)
		} else if !slices.Equal(got, want) {
			t.Errorf("%s: got %q, want %q", q, got, want)
		}
	}
	checkErr := func(q, error string, pos int) {
		t.Helper()
		_, err := ParseKeys(q)
		if se, _ := err.(*SyntaxError); se == nil || se.Msg != error || se.Off != pos {
			t.Errorf("%s: want error %s at %d; got %s", q, error, pos, err)
		}
	}
	check("")
	check("a", "a")
	check("a,b", "a", "b")
	check("a, b c", "a", "b", "c")
	check(`customer.id "odd key"`, "customer.id", "odd key")
	checkErr(",a", "expected key", 0)
	checkErr("a,,b", "expected key", 2)
	checkErr(`a ""`, "empty key", 2)
	checkErr("a)", "expected key", 1)
}
