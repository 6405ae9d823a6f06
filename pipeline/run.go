// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/docjoin/docfmt"
)

// Run evaluates p over docs in process and returns the groups in order
// of their first document. It gives the same groups a server would
// for the same stages: a field that is missing from a document is
// omitted from its group identity and from its projected document.
//
// Run does not modify docs; the returned documents share nothing with
// them.
func (p *Pipeline) Run(docs []docfmt.Document) []Group {
	keys, sel := paths(p.Keys), paths(p.Select)

	var groups []Group
	index := make(map[string]int)
	for _, doc := range docs {
		if !p.Filter.Match(doc) {
			continue
		}
		id := project(doc, keys)
		enc, err := bson.Marshal(docfmt.Canonical(id))
		if err != nil {
			// Not encodable. Group by Extended JSON instead.
			enc, _ = docfmt.Marshal(id)
		}
		i, ok := index[string(enc)]
		if !ok {
			i = len(groups)
			index[string(enc)] = i
			groups = append(groups, Group{ID: id})
		}
		groups[i].Docs = append(groups[i].Docs, project(doc, sel))
	}
	return groups
}

func project(doc docfmt.Document, paths []string) docfmt.Document {
	out := make(docfmt.Document, len(paths))
	for _, path := range paths {
		if v, ok := doc.Lookup(path); ok {
			out.Set(path, docfmt.CloneValue(v))
		}
	}
	return out
}
