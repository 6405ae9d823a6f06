// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package syntax documents the syntax used by document filter
expressions and key lists.

# Filters

A filter is a boolean expression over document fields, such as

	region:eu qty:>=5 -status:(cancelled OR returned)

The basic form of a filter is key:value, which matches documents
whose field key has the given value. A key is a document field name,
or a dotted path such as customer.id that selects a field of a nested
document. A numeric path element selects an element of an array.

Values are typed. An unquoted value that parses as an integer is an
integer, one that parses as a decimal number is a floating point
number, true and false are booleans, null is null, and anything else
is a string. A double-quoted value, such as "42", is always a string.
Quoted strings use Go string escape syntax.

Numbers compare by value regardless of their stored type, so qty:5
matches the integer 5 and the floating point number 5.0. Values of
different kinds never compare equal: qty:5 does not match the string
"5". A value matches an array field if it matches any element of the
array. The value null matches a field that is null or missing.

The following forms test a field against a value:

	key:value       field equals value
	key:>value      field is greater than value
	key:>=value     field is greater than or equal to value
	key:<value      field is less than value
	key:<=value     field is less than or equal to value
	key:/regexp/    field is a string matching regexp
	key:*           field is present, with any value
	key:(v1 OR v2)  shorthand for (key:v1 OR key:v2)

Ordered comparisons only match values of the same kind as the
operand: qty:>5 matches numbers greater than 5 and ignores strings.

Regular expressions use Go regexp syntax and match anywhere in the
string; use ^ and $ to anchor them. A regexp is terminated by a "/"
that is followed by a space, an operator, or the end of the filter.

Filters combine with the following operators, in order of
increasing precedence:

	x OR y     either x or y match
	x AND y    both x and y match
	x y        same as x AND y
	-x         x does not match
	(x)        grouping

The filter "*" matches every document, and "-*" matches none.

# Key lists

A key list is a sequence of field paths separated by commas or
spaces, such as

	customer.id, region

Keys that contain spaces or operator characters may be double-quoted.
The order of keys is significant: it determines the position of each
field in a grouping key.
*/
package syntax
