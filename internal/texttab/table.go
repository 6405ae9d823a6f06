// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out text tables.
package texttab

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Table does layout of text-based tables.
//
// Many of its methods return the Table so callers can easily chain
// them to build up a row at once:
//
//	t.Row().Cell("id", texttab.Left).Span(2, "left", texttab.Center)
type Table struct {
	rows [][]cell
	cols int

	// Sep separates adjacent columns. If empty, one space is used.
	Sep string
}

type cell struct {
	span  int
	value string
	align Align
	rule  bool
}

// Align is the horizontal alignment of a cell.
type Align int

const (
	Left Align = iota
	Center
	Right
)

func (a Align) pad(s string, w int) string {
	fill := w - utf8.RuneCountInString(s)
	if fill <= 0 {
		return s
	}
	switch a {
	case Center:
		l := fill / 2
		return strings.Repeat(" ", l) + s + strings.Repeat(" ", fill-l)
	case Right:
		return strings.Repeat(" ", fill) + s
	}
	return s + strings.Repeat(" ", fill)
}

// Row starts a new row in table t.
func (t *Table) Row() *Table {
	t.rows = append(t.rows, nil)
	return t
}

// Cell adds a single-column cell to the current row.
func (t *Table) Cell(value string, a Align) *Table {
	return t.Span(1, value, a)
}

// Span adds a cell covering cols columns to the current row.
func (t *Table) Span(cols int, value string, a Align) *Table {
	return t.add(cell{span: cols, value: value, align: a})
}

// Rule adds a row that draws a horizontal line with ch under every
// column.
func (t *Table) Rule(ch rune) *Table {
	t.Row()
	t.rows[len(t.rows)-1] = []cell{{value: string(ch), rule: true}}
	return t
}

func (t *Table) add(c cell) *Table {
	if len(t.rows) == 0 {
		t.Row()
	}
	r := len(t.rows) - 1
	t.rows[r] = append(t.rows[r], c)
	n := 0
	for _, c := range t.rows[r] {
		n += c.span
	}
	if n > t.cols {
		t.cols = n
	}
	return t
}

// widths returns the width of every column. A spanning cell that is
// wider than its columns widens the last of them.
func (t *Table) widths(sep int) []int {
	ws := make([]int, t.cols)
	for pass := 0; pass < 2; pass++ {
		for _, row := range t.rows {
			col := 0
			for _, c := range row {
				if c.rule {
					continue
				}
				w := utf8.RuneCountInString(c.value)
				switch {
				case pass == 0 && c.span == 1:
					ws[col] = max(ws[col], w)
				case pass == 1 && c.span > 1:
					have := sep * (c.span - 1)
					for _, cw := range ws[col : col+c.span] {
						have += cw
					}
					if w > have {
						ws[col+c.span-1] += w - have
					}
				}
				col += c.span
			}
		}
	}
	return ws
}

// Format lays out table t and writes it to w. Trailing spaces are
// trimmed from every line.
func (t *Table) Format(w io.Writer) error {
	sep := t.Sep
	if sep == "" {
		sep = " "
	}
	sepw := utf8.RuneCountInString(sep)
	ws := t.widths(sepw)
	total := 0
	for i, cw := range ws {
		if i > 0 {
			total += sepw
		}
		total += cw
	}

	var line strings.Builder
	for _, row := range t.rows {
		line.Reset()
		col := 0
		for i, c := range row {
			if c.rule {
				line.WriteString(strings.Repeat(c.value, total))
				break
			}
			if i > 0 {
				line.WriteString(sep)
			}
			cw := sepw * (c.span - 1)
			for _, x := range ws[col : col+c.span] {
				cw += x
			}
			line.WriteString(c.align.pad(c.value, cw))
			col += c.span
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}
