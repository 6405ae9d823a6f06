// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package docfmt

import (
	"strings"
	"testing"
)

func TestWriter(t *testing.T) {
	const input = `{"b": 1, "a": "x"}
{"z": {"y": 2, "x": 1}, "list": [3, "s"]}
bad line
{}
`
	const want = `{"a":"x","b":1}
{"list":[3,"s"],"z":{"x":1,"y":2}}
{}
`

	out := new(strings.Builder)
	w := NewWriter(out)
	r := NewReader(strings.NewReader(input), "test")
	for r.Scan() {
		if err := w.Write(r.Result()); err != nil {
			t.Fatal(err)
		}
	}
	if out.String() != want {
		t.Fatalf("want:\n%sgot:\n%s", want, out.String())
	}
}
