// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package docproc

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/docjoin/docfmt"
	"golang.org/x/docjoin/docproc/internal/parse"
)

// A Filter selects documents.
//
// A nil *Filter matches every document.
type Filter struct {
	query string
	tree  parse.Filter

	// match is the predicate that implements this filter.
	match filterFn
}

type filterFn func(doc docfmt.Document) bool

// NewFilter constructs a document filter from a boolean filter
// expression, such as "region:eu qty:>=5". See "go doc
// golang.org/x/docjoin/docproc/syntax" for a description of filter
// syntax.
//
// To create a filter that matches everything, pass "*" or "" for
// query.
func NewFilter(query string) (*Filter, error) {
	if strings.TrimSpace(query) == "" {
		query = "*"
	}
	q, err := parse.ParseFilter(query)
	if err != nil {
		return nil, err
	}

	// Recursively walk the filter expression, "compiling" it into
	// a filterFn.
	var walk func(q parse.Filter) (filterFn, error)
	walk = func(q parse.Filter) (filterFn, error) {
		var err error
		switch q := q.(type) {
		case *parse.FilterOp:
			subs := make([]filterFn, len(q.Exprs))
			for i, sub := range q.Exprs {
				subs[i], err = walk(sub)
				if err != nil {
					return nil, err
				}
			}
			return filterOp(q.Op, subs), nil

		case *parse.FilterMatch:
			if q.Key == "" || strings.HasPrefix(q.Key, "$") {
				return nil, &parse.SyntaxError{Query: query, Off: q.Off, Msg: "field path must be non-empty and must not start with \"$\""}
			}
			return matchFn(q), nil
		}
		panic(fmt.Sprintf("unknown query node type %T", q))
	}
	f, err := walk(q)
	if err != nil {
		return nil, err
	}
	return &Filter{query, q, f}, nil
}

func filterOp(op parse.Op, subs []filterFn) filterFn {
	switch op {
	case parse.OpNot:
		sub := subs[0]
		return func(doc docfmt.Document) bool {
			return !sub(doc)
		}

	case parse.OpAnd:
		return func(doc docfmt.Document) bool {
			for _, sub := range subs {
				if !sub(doc) {
					// Short-circuit
					return false
				}
			}
			return true
		}

	case parse.OpOr:
		return func(doc docfmt.Document) bool {
			for _, sub := range subs {
				if sub(doc) {
					// Short-circuit
					return true
				}
			}
			return false
		}
	}
	panic(fmt.Sprintf("unknown query op %v", op))
}

func matchFn(q *parse.FilterMatch) filterFn {
	key := q.Key
	if q.Op == parse.MatchExists {
		return func(doc docfmt.Document) bool {
			_, ok := doc.Lookup(key)
			return ok
		}
	}
	if q.Op == parse.MatchRegexp {
		re := q.Regexp
		return func(doc docfmt.Document) bool {
			v, _ := doc.Lookup(key)
			return anyElem(v, func(v any) bool {
				s, ok := asString(v)
				return ok && re.MatchString(s)
			})
		}
	}

	lit := parseLiteral(q.Lit, q.Quoted)
	if lit == nil {
		// null matches null and missing fields, and is unordered
		// with respect to everything else.
		if q.Op == parse.MatchLt || q.Op == parse.MatchGt {
			return func(docfmt.Document) bool { return false }
		}
		return func(doc docfmt.Document) bool {
			v, ok := doc.Lookup(key)
			return !ok || anyElem(v, isNull)
		}
	}
	class := valueClass(lit)
	var test func(c int) bool
	switch q.Op {
	case parse.MatchEq:
		test = func(c int) bool { return c == 0 }
	case parse.MatchLt:
		test = func(c int) bool { return c < 0 }
	case parse.MatchLe:
		test = func(c int) bool { return c <= 0 }
	case parse.MatchGt:
		test = func(c int) bool { return c > 0 }
	case parse.MatchGe:
		test = func(c int) bool { return c >= 0 }
	default:
		panic(fmt.Sprintf("unknown match op %v", q.Op))
	}
	return func(doc docfmt.Document) bool {
		v, ok := doc.Lookup(key)
		if !ok {
			return false
		}
		return anyElem(v, func(v any) bool {
			return valueClass(v) == class && test(compareValues(v, lit))
		})
	}
}

func isNull(v any) bool {
	return valueClass(v) == classNull
}

// anyElem reports whether pred is true of v or, if v is an array, of
// any element of v.
func anyElem(v any, pred func(any) bool) bool {
	if pred(v) {
		return true
	}
	if a, ok := asArray(v); ok {
		for _, elem := range a {
			if pred(elem) {
				return true
			}
		}
	}
	return false
}

// String returns the filter expression f was constructed from.
func (f *Filter) String() string {
	if f == nil {
		return "*"
	}
	return f.query
}

// IsEmpty reports whether f trivially matches every document, either
// because f is nil or because its expression is "*".
func (f *Filter) IsEmpty() bool {
	if f == nil {
		return true
	}
	op, ok := f.tree.(*parse.FilterOp)
	return ok && op.Op == parse.OpAnd && len(op.Exprs) == 0
}

// Match reports whether doc matches f.
func (f *Filter) Match(doc docfmt.Document) bool {
	if f == nil {
		return true
	}
	return f.match(doc)
}

// MatchStage returns the MongoDB query document equivalent to f, for
// use as the body of a $match aggregation stage.
//
// Regular expressions are passed to the server as written. The server
// uses PCRE, which agrees with Go regexp syntax for the common
// subset.
func (f *Filter) MatchStage() bson.D {
	if f.IsEmpty() {
		return bson.D{}
	}
	return matchDoc(f.tree)
}

func matchDoc(q parse.Filter) bson.D {
	switch q := q.(type) {
	case *parse.FilterOp:
		subs := make(bson.A, len(q.Exprs))
		for i, sub := range q.Exprs {
			subs[i] = matchDoc(sub)
		}
		switch q.Op {
		case parse.OpNot:
			return bson.D{{Key: "$nor", Value: subs}}
		case parse.OpAnd:
			switch len(subs) {
			case 0:
				return bson.D{}
			case 1:
				return subs[0].(bson.D)
			}
			return bson.D{{Key: "$and", Value: subs}}
		case parse.OpOr:
			switch len(subs) {
			case 0:
				return bson.D{{Key: "$expr", Value: false}}
			case 1:
				return subs[0].(bson.D)
			}
			return bson.D{{Key: "$or", Value: subs}}
		}
		panic(fmt.Sprintf("unknown query op %v", q.Op))

	case *parse.FilterMatch:
		return bson.D{{Key: q.Key, Value: matchValue(q)}}
	}
	panic(fmt.Sprintf("unknown query node type %T", q))
}

var matchOps = map[parse.MatchOp]string{
	parse.MatchLt: "$lt",
	parse.MatchLe: "$lte",
	parse.MatchGt: "$gt",
	parse.MatchGe: "$gte",
}

func matchValue(q *parse.FilterMatch) any {
	switch q.Op {
	case parse.MatchExists:
		return bson.D{{Key: "$exists", Value: true}}
	case parse.MatchRegexp:
		return primitive.Regex{Pattern: q.Regexp.String()}
	case parse.MatchEq:
		return parseLiteral(q.Lit, q.Quoted)
	}
	return bson.D{{Key: matchOps[q.Op], Value: parseLiteral(q.Lit, q.Quoted)}}
}

// RequiredEqualities returns the top-level field equalities that
// every document matching f must satisfy, as index Terms. These are
// the equality matches on top-level fields that are conjoined at the
// root of the filter. A document that matches f contains every
// returned Term in IndexTerms(doc), so a store may use them to
// preselect candidate documents before applying Match.
func (f *Filter) RequiredEqualities() []Term {
	if f == nil {
		return nil
	}
	var terms []Term
	var walk func(q parse.Filter)
	walk = func(q parse.Filter) {
		switch q := q.(type) {
		case *parse.FilterOp:
			if q.Op == parse.OpAnd {
				for _, sub := range q.Exprs {
					walk(sub)
				}
			}
		case *parse.FilterMatch:
			if q.Op != parse.MatchEq || strings.Contains(q.Key, ".") {
				return
			}
			if val, ok := IndexValue(parseLiteral(q.Lit, q.Quoted)); ok {
				terms = append(terms, Term{q.Key, val})
			}
		}
	}
	walk(f.tree)
	return terms
}
