// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package join computes equi-joins between two document collections.
//
// A join runs in two phases. First, a Fetcher runs the same grouping
// pipeline against a left and a right Source, producing two Groups
// that map each join Key to the projected documents sharing that key.
// Then Join selects keys from the two Groups according to a Variant
// and merges the documents of every selected key by cross product.
//
// Both phases are pure with respect to their inputs: Groups are
// rebuilt on every fetch and are never modified by Join.
package join
