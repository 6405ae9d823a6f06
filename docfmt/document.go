// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package docfmt provides the document model shared by the join
// packages, plus a streaming reader and writer for documents stored one
// per line as relaxed MongoDB Extended JSON (a superset of plain JSON).
//
// Documents are untyped field-name-to-value mappings. Values are the
// types produced by the BSON decoder: string, bool, int32, int64,
// float64, nil, nested documents and arrays, and the primitive BSON
// types such as ObjectID and DateTime.
package docfmt

import (
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// A Document is a single untyped document.
type Document map[string]any

func (Document) isRecord() {}

// Lookup returns the value at the dotted path in d and reports whether
// it was present. Path elements traverse nested documents; a numeric
// element indexes into an array.
func (d Document) Lookup(path string) (any, bool) {
	var cur any = d
	for path != "" {
		elem, rest, _ := strings.Cut(path, ".")
		path = rest
		next, ok := child(cur, elem)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func child(v any, elem string) (any, bool) {
	switch v := v.(type) {
	case Document:
		x, ok := v[elem]
		return x, ok
	case map[string]any:
		x, ok := v[elem]
		return x, ok
	case primitive.M:
		x, ok := v[elem]
		return x, ok
	case primitive.D:
		for _, e := range v {
			if e.Key == elem {
				return e.Value, true
			}
		}
	case []any:
		return index(v, elem)
	case primitive.A:
		return index([]any(v), elem)
	}
	return nil, false
}

func index(a []any, elem string) (any, bool) {
	i, err := strconv.Atoi(elem)
	if err != nil || i < 0 || i >= len(a) {
		return nil, false
	}
	return a[i], true
}

// Set stores v at the dotted path in d, creating intermediate
// documents as needed. An intermediate value that is not a document is
// replaced.
func (d Document) Set(path string, v any) {
	cur := d
	for {
		elem, rest, more := strings.Cut(path, ".")
		if !more {
			cur[elem] = v
			return
		}
		next, ok := cur[elem].(Document)
		if !ok {
			next = make(Document)
			cur[elem] = next
		}
		cur, path = next, rest
	}
}

// Keys returns the top-level field names of d in sorted order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of d. Nested documents and arrays are
// copied; scalar values are shared.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue returns a deep copy of v if it is a document or array, and
// v itself otherwise.
func CloneValue(v any) any {
	switch v := v.(type) {
	case Document:
		return v.Clone()
	case map[string]any:
		return Document(v).Clone()
	case primitive.M:
		return Document(v).Clone()
	case primitive.D:
		out := make(primitive.D, len(v))
		for i, e := range v {
			out[i] = primitive.E{Key: e.Key, Value: CloneValue(e.Value)}
		}
		return out
	case []any:
		return cloneArray(v)
	case primitive.A:
		return primitive.A(cloneArray(v))
	}
	return v
}

func cloneArray(a []any) []any {
	out := make([]any, len(a))
	for i, v := range a {
		out[i] = CloneValue(v)
	}
	return out
}

// Canonical returns v with every unordered document (a Go map)
// replaced by a bson.D sorted by field name, recursively. Ordered
// documents keep their field order. The result encodes to the same
// bytes regardless of map iteration order.
func Canonical(v any) any {
	switch v := v.(type) {
	case Document:
		return canonicalMap(v)
	case map[string]any:
		return canonicalMap(v)
	case primitive.M:
		return canonicalMap(v)
	case primitive.D:
		out := make(bson.D, len(v))
		for i, e := range v {
			out[i] = bson.E{Key: e.Key, Value: Canonical(e.Value)}
		}
		return out
	case []any:
		return canonicalArray(v)
	case primitive.A:
		return canonicalArray(v)
	}
	return v
}

func canonicalMap(m map[string]any) bson.D {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(bson.D, len(keys))
	for i, k := range keys {
		out[i] = bson.E{Key: k, Value: Canonical(m[k])}
	}
	return out
}

func canonicalArray(a []any) bson.A {
	out := make(bson.A, len(a))
	for i, v := range a {
		out[i] = Canonical(v)
	}
	return out
}
