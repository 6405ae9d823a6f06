// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package docproc

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/docjoin/docfmt"
)

func TestProjectionBasic(t *testing.T) {
	check := func(key Key, want string) {
		t.Helper()
		got := key.String()
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	}

	p := NewProjection([]string{"id", "customer.region"})
	check(p.Project(docfmt.Document{"id": int32(1), "customer": docfmt.Document{"region": "eu"}}), `{"id":1,"customer.region":"eu"}`)
	check(p.Project(docfmt.Document{"id": int32(1)}), `{"id":1,"customer.region":null}`) // Missing values are null
	check(p.Project(docfmt.Document{}), `{"id":null,"customer.region":null}`)

	p = NewProjection(nil)
	check(p.Project(docfmt.Document{"id": int32(1)}), `{}`)
	check(Key{}, "<zero>")
}

func TestProjectionEquality(t *testing.T) {
	p := NewProjection([]string{"k"})
	proj := func(v any) Key {
		return p.Project(docfmt.Document{"k": v})
	}

	if proj(int32(1)) != proj(int32(1)) {
		t.Errorf("equal values produced different Keys")
	}
	// Values of different types are distinct keys.
	distinct := []any{int32(1), int64(1), 1.0, "1", true, nil, bson.A{int32(1)}, docfmt.Document{"a": int32(1)}}
	seen := make(map[Key]any)
	for _, v := range distinct {
		k := proj(v)
		if prev, ok := seen[k]; ok {
			t.Errorf("%#v and %#v produced the same Key", prev, v)
		}
		seen[k] = v
	}
	if p.Len() != len(distinct) {
		t.Errorf("got %d interned keys, want %d", p.Len(), len(distinct))
	}

	// A missing field is the same as null.
	if p.Project(docfmt.Document{}) != proj(nil) {
		t.Errorf("missing field and null produced different Keys")
	}

	// Nested documents are equal regardless of field order.
	a := docfmt.Document{"x": int32(1), "y": "b"}
	b := bson.D{{Key: "y", Value: "b"}, {Key: "x", Value: int32(1)}}
	if proj(a) != proj(docfmt.Document{"y": "b", "x": int32(1)}) {
		t.Errorf("equal documents produced different Keys")
	}
	// An ordered document keeps its order.
	if proj(a) == proj(b) {
		t.Errorf("differently ordered bson.D produced the same Key")
	}
}

func TestProjectionKey(t *testing.T) {
	p := NewProjection([]string{"a", "b"})
	k := p.Key(1, "x")
	if want := p.Project(docfmt.Document{"a": int32(1), "b": "x"}); k != want {
		t.Errorf("Key(1, \"x\") = %v, want %v", k, want)
	}
	if got := k.Get(0); got != int32(1) {
		t.Errorf("Get(0) = %#v, want int32(1)", got)
	}
	if got := k.Lookup("b"); got != "x" {
		t.Errorf(`Lookup("b") = %#v, want "x"`, got)
	}
	if diff := cmp.Diff([]any{int32(1), "x"}, k.Values()); diff != "" {
		t.Errorf("Values (-want +got):\n%s", diff)
	}
	if got, want := k.StringValues(), `1 "x"`; got != want {
		t.Errorf("StringValues() = %s, want %s", got, want)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("Key with wrong arity did not panic")
			}
		}()
		p.Key(1)
	}()
}

func TestKeyDocument(t *testing.T) {
	p := NewProjection([]string{"customer.id", "customer.tier", "region"})
	k := p.Key(int32(5), "gold", nil)
	want := docfmt.Document{
		"customer": docfmt.Document{"id": int32(5), "tier": "gold"},
		"region":   nil,
	}
	if diff := cmp.Diff(want, k.Document()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestProjectionConcurrent(t *testing.T) {
	p := NewProjection([]string{"k"})
	const n = 8
	keys := make([][]Key, n)
	var wg sync.WaitGroup
	for i := range keys {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				keys[i] = append(keys[i], p.Key(fmt.Sprint(j)))
			}
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		for j := range keys[i] {
			if keys[i][j] != keys[0][j] {
				t.Fatalf("goroutines %d and 0 produced different Keys for %d", i, j)
			}
		}
	}
	if p.Len() != 100 {
		t.Errorf("got %d interned keys, want 100", p.Len())
	}
}

func TestParseProjection(t *testing.T) {
	p, err := ParseProjection("customer.id, region")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"customer.id", "region"}, p.Fields()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if _, err := ParseProjection("a,,b"); err == nil {
		t.Errorf("want error")
	}
}
