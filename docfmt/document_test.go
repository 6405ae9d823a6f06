// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package docfmt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
)

func TestLookup(t *testing.T) {
	doc := Document{
		"name": "a",
		"addr": Document{"city": "Oslo", "zip": nil},
		"tags": bson.A{"x", bson.M{"k": int32(3)}},
		"ord":  bson.D{{Key: "first", Value: 1}},
	}

	check := func(path string, want any, wantOK bool) {
		t.Helper()
		got, ok := doc.Lookup(path)
		if ok != wantOK {
			t.Errorf("Lookup(%q): ok = %v, want %v", path, ok, wantOK)
			return
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Lookup(%q) (-want +got):\n%s", path, diff)
		}
	}

	check("name", "a", true)
	check("addr.city", "Oslo", true)
	check("addr.zip", nil, true) // present but null
	check("addr.street", nil, false)
	check("tags.0", "x", true)
	check("tags.1.k", int32(3), true)
	check("tags.2", nil, false)
	check("tags.x", nil, false)
	check("ord.first", 1, true)
	check("name.sub", nil, false)
	check("missing", nil, false)
}

func TestSet(t *testing.T) {
	doc := Document{"a": 1}
	doc.Set("b", 2)
	doc.Set("c.d", 3)
	doc.Set("c.e", 4)
	doc.Set("a.x", 5) // replaces the scalar
	want := Document{
		"a": Document{"x": 5},
		"b": 2,
		"c": Document{"d": 3, "e": 4},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("Set (-want +got):\n%s", diff)
	}
}

func TestClone(t *testing.T) {
	orig := Document{
		"n":    1,
		"sub":  Document{"x": "y"},
		"list": bson.A{Document{"z": 1}},
	}
	c := orig.Clone()
	c["sub"].(Document)["x"] = "changed"
	c["list"].(bson.A)[0].(Document)["z"] = 2
	c["n"] = 7

	want := Document{
		"n":    1,
		"sub":  Document{"x": "y"},
		"list": bson.A{Document{"z": 1}},
	}
	if diff := cmp.Diff(want, orig); diff != "" {
		t.Errorf("original modified through clone (-want +got):\n%s", diff)
	}
	if Document(nil).Clone() != nil {
		t.Errorf("Clone of nil Document is not nil")
	}
}

func TestCanonical(t *testing.T) {
	got := Canonical(Document{
		"b": 1,
		"a": map[string]any{"d": 2, "c": 3},
		"e": bson.A{bson.M{"g": 1, "f": 2}},
		"h": bson.D{{Key: "z", Value: 1}, {Key: "y", Value: 2}},
	})
	want := bson.D{
		{Key: "a", Value: bson.D{{Key: "c", Value: 3}, {Key: "d", Value: 2}}},
		{Key: "b", Value: 1},
		{Key: "e", Value: bson.A{bson.D{{Key: "f", Value: 2}, {Key: "g", Value: 1}}}},
		{Key: "h", Value: bson.D{{Key: "z", Value: 1}, {Key: "y", Value: 2}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Canonical (-want +got):\n%s", diff)
	}
}
