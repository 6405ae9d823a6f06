// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// A Filter is a node in the boolean filter. It can either be a
// FilterOp or a FilterMatch.
type Filter interface {
	isFilter()
	String() string
}

// A MatchOp is the comparison performed by a FilterMatch.
type MatchOp int

const (
	MatchEq     MatchOp = iota // key:value
	MatchRegexp                // key:/regexp/
	MatchLt                    // key:<value
	MatchLe                    // key:<=value
	MatchGt                    // key:>value
	MatchGe                    // key:>=value
	MatchExists                // key:*
)

var matchOpPrefix = map[MatchOp]string{
	MatchLt: "<",
	MatchLe: "<=",
	MatchGt: ">",
	MatchGe: ">=",
}

// A FilterMatch is a leaf in a Filter tree that tests a specific key
// of a document.
type FilterMatch struct {
	Key string
	Op  MatchOp

	// Regexp is the regular expression for MatchRegexp.
	Regexp *regexp.Regexp

	// Lit is the literal operand of MatchEq and the ordered
	// comparisons. Quoted reports whether it was written as a
	// double-quoted string, which makes it a string regardless of
	// its contents.
	Lit    string
	Quoted bool

	// Off is the byte offset of the key in the original query,
	// for error reporting.
	Off int
}

func (q *FilterMatch) isFilter() {}
func (q *FilterMatch) String() string {
	key := quoteWord(q.Key)
	switch q.Op {
	case MatchRegexp:
		return key + ":/" + q.Regexp.String() + "/"
	case MatchExists:
		return key + ":*"
	}
	lit := quoteValue(q.Lit)
	if q.Quoted {
		lit = strconv.Quote(q.Lit)
	}
	return key + ":" + matchOpPrefix[q.Op] + lit
}

// A FilterOp is a boolean operator in the Filter tree. OpNot must have
// exactly one child node. OpAnd and OpOr may have zero or more child nodes.
type FilterOp struct {
	Op    Op
	Exprs []Filter
}

func (q *FilterOp) isFilter() {}
func (q *FilterOp) String() string {
	var op string
	switch q.Op {
	case OpNot:
		return fmt.Sprintf("-%s", q.Exprs[0])
	case OpAnd:
		if len(q.Exprs) == 0 {
			return "*"
		}
		op = " AND "
	case OpOr:
		if len(q.Exprs) == 0 {
			return "-*"
		}
		op = " OR "
	}
	var buf strings.Builder
	buf.WriteByte('(')
	for i, e := range q.Exprs {
		if i > 0 {
			buf.WriteString(op)
		}
		buf.WriteString(e.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

// Op specifies a type of boolean operator.
type Op int

const (
	OpAnd Op = 1 + iota
	OpOr
	OpNot
)
