// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package docproc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/docjoin/docfmt"
)

func TestIndexTerms(t *testing.T) {
	doc := docfmt.Document{
		"id":     int32(7),
		"f":      7.0,
		"neg":    -0.0,
		"name":   "a",
		"ok":     false,
		"none":   nil,
		"nested": docfmt.Document{"x": int32(1)},
		"tags":   bson.A{"b", "a", "b", int64(2), bson.A{"deep"}},
	}
	want := []Term{
		{"f", "n:7"},
		{"id", "n:7"},
		{"name", "s:a"},
		{"neg", "n:0"},
		{"ok", "b:false"},
		{"tags", "n:2"},
		{"tags", "s:a"},
		{"tags", "s:b"},
	}
	if diff := cmp.Diff(want, IndexTerms(doc)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

// Every document that matches a filter must contain that filter's
// required equalities in its index terms.
func TestRequiredEqualitiesIndexed(t *testing.T) {
	docs := []docfmt.Document{
		{"id": int32(7), "region": "eu"},
		{"id": int64(7), "region": bson.A{"us", "eu"}},
		{"id": 7.0, "region": "eu"},
		{"id": "7", "region": "eu"},
	}
	f, err := NewFilter("id:7 region:eu")
	if err != nil {
		t.Fatal(err)
	}
	req := f.RequiredEqualities()
	if len(req) != 2 {
		t.Fatalf("got equalities %v, want 2", req)
	}
	for i, doc := range docs {
		terms := make(map[Term]bool)
		for _, term := range IndexTerms(doc) {
			terms[term] = true
		}
		indexed := true
		for _, term := range req {
			indexed = indexed && terms[term]
		}
		if f.Match(doc) && !indexed {
			t.Errorf("%v matches but is missing terms %v", doc, req)
		}
		if want := i < 3; f.Match(doc) != want {
			t.Errorf("%v: Match = %v, want %v", doc, !want, want)
		}
	}
}
