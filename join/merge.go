// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package join

import (
	"fmt"
	"strings"

	"golang.org/x/docjoin/docfmt"
)

// A Merger combines a left and a right document into one merged
// document without field name collisions. Left and Right each add the
// fields of one side's document to out. For an outer-join row that
// has only one side, only that side's method is called.
//
// Implementations must not retain or modify doc, and must copy any
// nested values they store in out.
type Merger interface {
	Left(doc, out docfmt.Document)
	Right(doc, out docfmt.Document)
}

// DefaultMerger is the Merger used when none is given.
var DefaultMerger Merger = PrefixMerger{LeftPrefix: "L_", RightPrefix: "R_"}

// PrefixMerger renames every top-level field of each side by
// prefixing it with that side's marker. The prefixes must be
// non-empty and neither may be a prefix of the other; see CheckMerger.
type PrefixMerger struct {
	LeftPrefix, RightPrefix string
}

func (m PrefixMerger) Left(doc, out docfmt.Document) {
	prefix(m.LeftPrefix, doc, out)
}

func (m PrefixMerger) Right(doc, out docfmt.Document) {
	prefix(m.RightPrefix, doc, out)
}

func prefix(p string, doc, out docfmt.Document) {
	for k, v := range doc {
		out[p+k] = docfmt.CloneValue(v)
	}
}

// NestMerger stores each side's document as a subdocument, under
// LeftField and RightField respectively. The fields must be non-empty
// and distinct.
type NestMerger struct {
	LeftField, RightField string
}

func (m NestMerger) Left(doc, out docfmt.Document) {
	out[m.LeftField] = doc.Clone()
}

func (m NestMerger) Right(doc, out docfmt.Document) {
	out[m.RightField] = doc.Clone()
}

// CheckMerger reports an error if m can give a left and a right field
// the same merged name. Mergers other than PrefixMerger and NestMerger
// are not checked.
func CheckMerger(m Merger) error {
	switch m := m.(type) {
	case PrefixMerger:
		l, r := m.LeftPrefix, m.RightPrefix
		switch {
		case l == "" || r == "":
			return fmt.Errorf("merge prefixes %q and %q: prefixes must be non-empty", l, r)
		case strings.HasPrefix(l, r) || strings.HasPrefix(r, l):
			return fmt.Errorf("merge prefixes %q and %q overlap", l, r)
		}
	case NestMerger:
		l, r := m.LeftField, m.RightField
		switch {
		case l == "" || r == "":
			return fmt.Errorf("merge fields %q and %q: fields must be non-empty", l, r)
		case l == r:
			return fmt.Errorf("merge fields %q and %q are the same", l, r)
		}
	}
	return nil
}
