// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package join

import (
	"fmt"
	"strings"

	"golang.org/x/docjoin/docproc"
)

// A Variant selects which keys participate in a join.
type Variant int

const (
	// Inner selects the keys present on both sides, in left order.
	Inner Variant = iota
	// LeftOuter selects every left key, in left order.
	LeftOuter
	// RightOuter selects every right key, in right order.
	RightOuter
	// FullOuter selects every left key in left order, followed by
	// the keys present only on the right, in right order.
	FullOuter
)

var variantNames = []string{
	Inner:      "inner",
	LeftOuter:  "left",
	RightOuter: "right",
	FullOuter:  "full",
}

func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return variantNames[v]
}

var variantAliases = map[string]Variant{
	"inner":       Inner,
	"left":        LeftOuter,
	"left_outer":  LeftOuter,
	"right":       RightOuter,
	"right_outer": RightOuter,
	"full":        FullOuter,
	"full_outer":  FullOuter,
	"outer":       FullOuter,
}

// ParseVariant parses a join variant name. It accepts "inner", "left",
// "right" and "full", the outer joins optionally followed by "_outer",
// and "outer" as a synonym for "full". Case, and the choice between
// "_", "-" and " " as separator, are ignored.
func ParseVariant(s string) (Variant, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.NewReplacer("-", "_", " ", "_").Replace(name)
	if v, ok := variantAliases[name]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unknown join type %q", s)
}

// selectKeys returns the keys of l and r selected by v.
func (v Variant) selectKeys(l, r *Groups) []docproc.Key {
	switch v {
	case Inner:
		var keys []docproc.Key
		for _, k := range l.keys {
			if r.Has(k) {
				keys = append(keys, k)
			}
		}
		return keys
	case LeftOuter:
		return l.Keys()
	case RightOuter:
		return r.Keys()
	case FullOuter:
		keys := l.Keys()
		for _, k := range r.keys {
			if !l.Has(k) {
				keys = append(keys, k)
			}
		}
		return keys
	}
	panic(fmt.Sprintf("unknown join variant %v", v))
}
