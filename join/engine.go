// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package join

import (
	"context"

	"golang.org/x/docjoin/docfmt"
)

// ctxCheckInterval is how many keys JoinContext merges between
// checks for cancellation.
const ctxCheckInterval = 1024

// Join computes the join of left and right selected by variant, using
// DefaultMerger. See JoinContext.
func Join(left, right *Groups, variant Variant) *Groups {
	res, err := JoinContext(context.Background(), left, right, variant, nil)
	if err != nil {
		// Only cancellation fails, and Background is never
		// canceled.
		panic(err)
	}
	return res
}

// JoinContext computes the join of left and right selected by variant.
//
// For every selected key, the result holds the merged documents of
// that key. If both sides have documents for the key, these are the
// cross product of the two sides in left-major order, so the key has
// len(left)*len(right) merged documents. If only one side has
// documents, each of them is merged alone. Keys are in the order
// given by variant.
//
// merger disambiguates the fields of the two sides; if it is nil,
// DefaultMerger is used.
//
// JoinContext does not modify left or right, and the result shares no
// documents with them. It returns ctx.Err() if ctx is done before the
// join completes.
//
// It panics if left and right have different Projections.
func JoinContext(ctx context.Context, left, right *Groups, variant Variant, merger Merger) (*Groups, error) {
	if left.proj != right.proj {
		panic("cannot join Groups with different Projections")
	}
	if merger == nil {
		merger = DefaultMerger
	}

	res := NewGroups(left.proj)
	for i, k := range variant.selectKeys(left, right) {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		res.Add(k, merge(left.docs[k], right.docs[k], merger)...)
	}
	return res, nil
}

// merge returns the merged documents of one key.
func merge(ldocs, rdocs []docfmt.Document, m Merger) []docfmt.Document {
	switch {
	case len(ldocs) > 0 && len(rdocs) > 0:
		out := make([]docfmt.Document, 0, len(ldocs)*len(rdocs))
		for _, l := range ldocs {
			for _, r := range rdocs {
				doc := make(docfmt.Document, len(l)+len(r))
				m.Left(l, doc)
				m.Right(r, doc)
				out = append(out, doc)
			}
		}
		return out
	case len(ldocs) > 0:
		out := make([]docfmt.Document, 0, len(ldocs))
		for _, l := range ldocs {
			doc := make(docfmt.Document, len(l))
			m.Left(l, doc)
			out = append(out, doc)
		}
		return out
	case len(rdocs) > 0:
		out := make([]docfmt.Document, 0, len(rdocs))
		for _, r := range rdocs {
			doc := make(docfmt.Document, len(r))
			m.Right(r, doc)
			out = append(out, doc)
		}
		return out
	}
	// Every variant selects only keys present on some side, and
	// Groups never holds a key with no documents.
	panic("join: selected key has no documents on either side")
}
