// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package docfmt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0666); err != nil {
			t.Fatal(err)
		}
		return path
	}
	a := write("a", "{\"v\": \"X\"}\n{\"v\": \"Y\"}\n")
	b := write("b", "{\"v\": \"Z\"}\n")

	check := func(f *Files, want ...string) {
		t.Helper()
		for f.Scan() {
			switch rec := f.Result().(type) {
			default:
				t.Fatalf("unexpected record type %T", rec)
			case *SyntaxError:
				t.Fatalf("unexpected syntax error %s", rec)
			case Document:
				if len(want) == 0 {
					t.Errorf("got document, want end of stream")
					return
				}
				got := fmt.Sprintf("%v %v", rec["file"], rec["v"])
				if got != want[0] {
					t.Errorf("got %q, want %q", got, want[0])
				}
				want = want[1:]
			}
		}
		err := f.Err()
		wantErr := len(want) == 1 && want[0] == "err"
		if wantErr {
			want = want[1:]
		}
		if err == nil && wantErr {
			t.Errorf("got success, want error")
		} else if err != nil && !wantErr {
			t.Errorf("got error %s", err)
		}
		if len(want) != 0 {
			t.Errorf("got end of stream, want %v", want)
		}
	}

	check(
		&Files{Paths: []string{a, b}, LabelField: "file"},
		a+" X", a+" Y", b+" Z",
	)
	check(
		&Files{Paths: []string{a, filepath.Join(dir, "missing")}, LabelField: "file"},
		a+" X", a+" Y", "err",
	)

	// Ambiguous paths.
	check(
		&Files{Paths: []string{a, b, a}, LabelField: "file"},
		a+"#0 X", a+"#0 Y", b+" Z", a+"#1 X", a+"#1 Y",
	)

	// Labels.
	check(
		&Files{Paths: []string{"left=" + a, "right=" + b}, AllowLabels: true, LabelField: "file"},
		"left X", "left Y", "right Z",
	)

	// Without a label field documents are untouched.
	f := &Files{Paths: []string{b}}
	for f.Scan() {
		if doc := f.Result().(Document); len(doc) != 1 || !strings.Contains(fmt.Sprint(doc), "Z") {
			t.Errorf("got %v, want only the original field", doc)
		}
	}
}
