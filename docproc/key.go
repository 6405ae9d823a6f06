// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package docproc

import (
	"bytes"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/docjoin/docfmt"
)

// A Key is an immutable tuple of field values whose structure is given
// by a Projection. Two Keys are == if they come from the same
// Projection and have identical values, including identical value
// types.
type Key struct {
	k *keyNode
}

// IsZero reports whether k is a zeroed Key with no projection and no fields.
func (k Key) IsZero() bool {
	return k.k == nil
}

// Projection returns the Projection describing Key k.
func (k Key) Projection() *Projection {
	if k.IsZero() {
		return nil
	}
	return k.k.proj
}

// Len returns the number of values in k. This is always the number
// of fields in k's Projection.
func (k Key) Len() int {
	if k.IsZero() {
		return 0
	}
	return len(k.k.vals)
}

// Get returns the i'th value of k. A field that was missing when k was
// projected has the value nil. The caller must not modify the result.
func (k Key) Get(i int) any {
	if k.IsZero() {
		panic("zero Key has no fields")
	}
	return k.k.vals[i]
}

// Lookup returns the value of the named field of k.
//
// It panics if field is not a field of k's Projection.
func (k Key) Lookup(field string) any {
	if k.IsZero() {
		panic("zero Key has no fields")
	}
	for i, f := range k.k.proj.fields {
		if f == field {
			return k.k.vals[i]
		}
	}
	panic(field + " is not a field of this Key")
}

// Values returns a copy of the values of k in field order.
func (k Key) Values() []any {
	if k.IsZero() {
		return nil
	}
	out := make([]any, len(k.k.vals))
	for i, v := range k.k.vals {
		out[i] = docfmt.CloneValue(v)
	}
	return out
}

// Document returns k as a document mapping each field path to its
// value. Dotted paths produce nested documents.
func (k Key) Document() docfmt.Document {
	doc := make(docfmt.Document)
	if k.IsZero() {
		return doc
	}
	for i, f := range k.k.proj.fields {
		doc.Set(f, docfmt.CloneValue(k.k.vals[i]))
	}
	return doc
}

// String returns Key as a relaxed Extended JSON object of its fields in
// field order, such as {"id":1,"region":"eu"}.
func (k Key) String() string {
	if k.IsZero() {
		return "<zero>"
	}
	d := make(bson.D, len(k.k.vals))
	for i, f := range k.k.proj.fields {
		d[i] = bson.E{Key: f, Value: docfmt.Canonical(k.k.vals[i])}
	}
	b, err := bson.MarshalExtJSON(d, false, false)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return string(b)
}

// StringValues returns Key as a space-separated sequence of values in
// field order.
func (k Key) StringValues() string {
	if k.IsZero() {
		return "<zero>"
	}
	var buf bytes.Buffer
	for i, v := range k.k.vals {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(docfmt.FormatValue(v))
	}
	return buf.String()
}

// commonProjection returns the Projection that all Keys have, or panics if any
// Key has a different Projection. It returns nil if len(keys) == 0.
func commonProjection(keys []Key) *Projection {
	if len(keys) == 0 {
		return nil
	}
	s := keys[0].Projection()
	for _, k := range keys[1:] {
		if k.Projection() != s {
			panic("Keys must all have the same Projection")
		}
	}
	return s
}

// keyNode is the internal heap-allocated object backing a Key.
// This allows Key itself to be a value type whose equality is
// determined by the pointer equality of the underlying keyNode.
type keyNode struct {
	proj *Projection
	vals []any
	// enc is the concatenated, length-prefixed encodings of vals. Two
	// rows are equal if and only if their encodings are equal.
	enc []byte
}
