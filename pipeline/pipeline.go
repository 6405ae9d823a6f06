// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline builds the filter and group aggregation that
// turns a document collection into groups of projected documents.
//
// A Pipeline can be submitted to a MongoDB server in driver form
// (Stages), or evaluated in process over a slice of documents (Run)
// for stores that have no native aggregation.
package pipeline

import (
	"strings"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/docjoin/docfmt"
	"golang.org/x/docjoin/docproc"
)

// A Pipeline filters a collection, groups the remaining documents by
// the values of Keys, and collects the Select fields of every
// document in each group.
type Pipeline struct {
	// Filter selects the documents to group. A nil or empty Filter
	// selects every document.
	Filter *docproc.Filter
	// Keys are the field paths that identify a group. If Keys is
	// empty, all documents fall in a single group.
	Keys []string
	// Select are the field paths kept in each collected document.
	Select []string
}

// A Group is one result of a Pipeline: the group identity and the
// projected documents of the group, in the order they were produced.
type Group struct {
	ID   docfmt.Document   `bson:"_id"`
	Docs []docfmt.Document `bson:"docs"`
}

// Build returns the Pipeline that filters by filter, groups by
// joinKeys, and collects selectKeys. Build never fails: nil key lists
// are empty.
func Build(filter *docproc.Filter, joinKeys, selectKeys []string) *Pipeline {
	return &Pipeline{
		Filter: filter,
		Keys:   append([]string(nil), joinKeys...),
		Select: append([]string(nil), selectKeys...),
	}
}

// Stages returns p as MongoDB aggregation stages: an optional $match
// stage followed by a $group stage of the form
//
//	{$group: {_id: {k1: "$k1", ...}, docs: {$push: {s1: "$s1", ...}}}}
//
// Dotted paths become nested documents, since field names in these
// expressions may not contain dots.
func (p *Pipeline) Stages() []bson.D {
	var stages []bson.D
	if !p.Filter.IsEmpty() {
		stages = append(stages, bson.D{{Key: "$match", Value: p.Filter.MatchStage()}})
	}
	group := bson.D{
		{Key: "_id", Value: refDoc(p.Keys)},
		{Key: "docs", Value: bson.D{{Key: "$push", Value: refDoc(p.Select)}}},
	}
	return append(stages, bson.D{{Key: "$group", Value: group}})
}

// paths returns the distinct paths in order of first appearance,
// dropping any path that has another selected path as a prefix. That
// prefix selects the whole subdocument already.
func paths(ps []string) []string {
	ps = lo.Uniq(lo.Compact(ps))
	return lo.Reject(ps, func(p string, _ int) bool {
		return lo.SomeBy(ps, func(q string) bool {
			return strings.HasPrefix(p, q+".")
		})
	})
}

// refDoc returns the expression document that references each of ps.
func refDoc(ps []string) bson.D {
	d := bson.D{}
	for _, p := range paths(ps) {
		d = setRef(d, strings.Split(p, "."), "$"+p)
	}
	return d
}

func setRef(d bson.D, elems []string, ref string) bson.D {
	if len(elems) == 1 {
		return append(d, bson.E{Key: elems[0], Value: ref})
	}
	_, i, ok := lo.FindIndexOf(d, func(e bson.E) bool { return e.Key == elems[0] })
	if !ok {
		return append(d, bson.E{Key: elems[0], Value: setRef(bson.D{}, elems[1:], ref)})
	}
	d[i].Value = setRef(d[i].Value.(bson.D), elems[1:], ref)
	return d
}

// KeyList converts a decoded configuration value into a key list. It
// accepts nil, a []string, or a []any of strings, and reports false
// for anything else. Callers degrade a malformed list to an empty one.
func KeyList(v any) ([]string, bool) {
	switch v := v.(type) {
	case nil:
		return nil, true
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			s, ok := x.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
