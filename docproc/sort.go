// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package docproc

import (
	"bytes"
	"sort"
)

// Less reports whether k comes before o in value order. Values compare
// field by field in the MongoDB cross-type order: null, then numbers
// by value, then strings, documents, arrays and the remaining types.
// It panics if k and o have different Projections.
func (k Key) Less(o Key) bool {
	if k.k.proj != o.k.proj {
		panic("cannot compare Keys from different Projections")
	}
	return less(k.k, o.k)
}

func less(a, b *keyNode) bool {
	for i := range a.vals {
		if c := compareValues(a.vals[i], b.vals[i]); c != 0 {
			return c < 0
		}
	}
	// The values are equal according to the comparison function,
	// but the Keys may still differ, for example in the numeric
	// type of a value. Because Keys are only == if their encodings
	// are ==, fall back to a secondary comparison that is only == if
	// the encodings are ==.
	return bytes.Compare(a.enc, b.enc) < 0
}

// SortKeys sorts a slice of Keys using Key.Less.
// All Keys must have the same Projection.
//
// This is equivalent to using Key.Less with the sort package but
// more efficient.
func SortKeys(keys []Key) {
	// Check all the Projections so we don't have to do this on every
	// comparison.
	if len(keys) == 0 {
		return
	}
	commonProjection(keys)

	sort.SliceStable(keys, func(i, j int) bool {
		return less(keys[i].k, keys[j].k)
	})
}
