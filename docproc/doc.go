// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package docproc provides tools for filtering documents and grouping
// them by a tuple of field values.
//
// The two central types are Filter and Projection. A Filter selects
// documents using a boolean expression over document fields. A
// Projection extracts a fixed tuple of fields from a document (or from
// a group identity produced by an aggregation) into a Key. Keys with
// equal values, including equal value types, are == and can be used as
// Go map keys, which makes them the unit of grouping and joining.
//
// Filters can be evaluated in process with Filter.Match and translated
// into a MongoDB query document with Filter.MatchStage. See "go doc
// golang.org/x/docjoin/docproc/syntax" for the filter and key-list
// syntax.
package docproc
