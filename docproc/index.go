// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package docproc

import (
	"math"
	"sort"
	"strconv"

	"golang.org/x/docjoin/docfmt"
)

// A Term is an indexed (field, value) pair of a document.
type Term struct {
	Field string
	// Value is the IndexValue encoding of the field value.
	Value string
}

// IndexValue returns the index encoding of a scalar value and reports
// whether v is indexable. Values that compare equal in a filter have
// the same encoding. In particular, all numeric types encode by their
// float64 value.
func IndexValue(v any) (string, bool) {
	switch valueClass(v) {
	case classNumber:
		f, _ := toFloat(v)
		if math.IsNaN(f) {
			return "", false
		}
		if f == 0 {
			f = 0 // -0
		}
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64), true
	case classString:
		s, _ := asString(v)
		return "s:" + s, true
	case classBool:
		return "b:" + strconv.FormatBool(v.(bool)), true
	}
	return "", false
}

// IndexTerms returns the index terms of doc: one per top-level field
// with an indexable value, plus one per indexable element of each
// top-level array. The result is sorted and contains no duplicates.
func IndexTerms(doc docfmt.Document) []Term {
	var terms []Term
	add := func(field string, v any) {
		if val, ok := IndexValue(v); ok {
			terms = append(terms, Term{field, val})
		}
	}
	for field, v := range doc {
		add(field, v)
		if a, ok := asArray(v); ok {
			for _, elem := range a {
				add(field, elem)
			}
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Field != terms[j].Field {
			return terms[i].Field < terms[j].Field
		}
		return terms[i].Value < terms[j].Value
	})
	out := terms[:0]
	for _, t := range terms {
		if len(out) == 0 || t != out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}
