// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package join

import (
	"golang.org/x/docjoin/docfmt"
	"golang.org/x/docjoin/docproc"
)

// Groups maps Keys to ordered lists of documents. It remembers the
// order in which keys were first added.
//
// Groups never holds a key with no documents.
type Groups struct {
	proj *docproc.Projection
	keys []docproc.Key
	docs map[docproc.Key][]docfmt.Document
}

// NewGroups returns an empty Groups whose Keys come from proj.
func NewGroups(proj *docproc.Projection) *Groups {
	return &Groups{proj: proj, docs: make(map[docproc.Key][]docfmt.Document)}
}

// Projection returns the Projection of g's keys.
func (g *Groups) Projection() *docproc.Projection {
	return g.proj
}

// Add appends docs to the group for key k. Adding to an existing key
// appends after its current documents. Adding no documents has no
// effect.
//
// It panics if k does not come from g's Projection.
func (g *Groups) Add(k docproc.Key, docs ...docfmt.Document) {
	if k.Projection() != g.proj {
		panic("Key and Groups have different Projections")
	}
	if len(docs) == 0 {
		return
	}
	prev, ok := g.docs[k]
	if !ok {
		g.keys = append(g.keys, k)
	}
	g.docs[k] = append(prev, docs...)
}

// Len returns the number of keys in g.
func (g *Groups) Len() int {
	return len(g.keys)
}

// Keys returns the keys of g in the order they were added.
func (g *Groups) Keys() []docproc.Key {
	return append([]docproc.Key(nil), g.keys...)
}

// SortedKeys returns the keys of g in value order. See docproc.Key.Less.
func (g *Groups) SortedKeys() []docproc.Key {
	keys := g.Keys()
	docproc.SortKeys(keys)
	return keys
}

// Get returns the documents of key k, or nil if g does not contain k.
// The caller must not modify the result.
func (g *Groups) Get(k docproc.Key) []docfmt.Document {
	return g.docs[k]
}

// Has reports whether g contains key k.
func (g *Groups) Has(k docproc.Key) bool {
	_, ok := g.docs[k]
	return ok
}

// DocCount returns the total number of documents in g.
func (g *Groups) DocCount() int {
	n := 0
	for _, docs := range g.docs {
		n += len(docs)
	}
	return n
}
