// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package texttab

import (
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	check := func(t *testing.T, tab *Table, want string) {
		t.Helper()
		var buf strings.Builder
		if err := tab.Format(&buf); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != want {
			t.Errorf("got:\n%s\nwant:\n%s", got, want)
		}
	}

	t.Run("simple", func(t *testing.T) {
		var tab Table
		tab.Row().Cell("id", Left).Cell("name", Left)
		tab.Row().Cell("1", Right).Cell("ann", Left)
		tab.Row().Cell("100", Right).Cell("bo", Left)
		check(t, &tab, `id  name
  1 ann
100 bo
`)
	})

	t.Run("span", func(t *testing.T) {
		tab := &Table{Sep: " | "}
		tab.Row().Cell("", Left).Span(2, "left side", Center)
		tab.Row().Cell("k", Left).Cell("a", Left).Cell("b", Left)
		tab.Rule('-')
		tab.Row().Cell("1", Left).Cell("x", Left).Cell("y", Left)
		check(t, tab, `  | left side
k | a | b
-------------
1 | x | y
`)
	})

	t.Run("empty", func(t *testing.T) {
		check(t, &Table{}, "")
	})
}
