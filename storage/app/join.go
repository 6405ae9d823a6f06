// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"golang.org/x/docjoin/docfmt"
	"golang.org/x/docjoin/docproc"
	"golang.org/x/docjoin/join"
)

// joinRequest is a parsed /join request.
type joinRequest struct {
	left, right join.Collection
	keys        []string
	variant     join.Variant
	format      string
}

func (a *App) parseJoin(r *http.Request) (*joinRequest, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	req := &joinRequest{format: r.Form.Get("format")}
	switch req.format {
	case "":
		req.format = "json"
	case "json", "html":
	default:
		return nil, fmt.Errorf("unknown format %q", req.format)
	}

	var err error
	if req.keys, err = docproc.ParseKeys(r.Form.Get("on")); err != nil {
		return nil, fmt.Errorf("on: %w", err)
	}
	if t := r.Form.Get("type"); t != "" {
		if req.variant, err = join.ParseVariant(t); err != nil {
			return nil, err
		}
	}

	side := func(nameParam, selectParam, filterParam string) (join.Collection, error) {
		c := join.Collection{Name: r.Form.Get(nameParam)}
		if c.Name == "" {
			return c, fmt.Errorf("missing %s parameter", nameParam)
		}
		c.Source = a.source(c.Name)
		if c.Select, err = docproc.ParseKeys(r.Form.Get(selectParam)); err != nil {
			return c, fmt.Errorf("%s: %w", selectParam, err)
		}
		if c.Filter, err = docproc.NewFilter(r.Form.Get(filterParam)); err != nil {
			return c, fmt.Errorf("%s: %w", filterParam, err)
		}
		return c, nil
	}
	if req.left, err = side("left", "lselect", "lq"); err != nil {
		return nil, err
	}
	if req.right, err = side("right", "rselect", "rq"); err != nil {
		return nil, err
	}
	return req, nil
}

// join is the handler for the /join endpoint. It joins two
// collections and serves the result as JSON or as an HTML table.
func (a *App) join(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := a.parseJoin(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f := join.Fetcher{Log: a.Log}
	l, rg, err := f.FetchBoth(ctx, req.keys, req.left, req.right)
	if err == nil {
		var res *join.Groups
		res, err = join.JoinContext(ctx, l, rg, req.variant, nil)
		if err == nil {
			if req.format == "html" {
				err = writeHTML(w, req, res)
			} else {
				err = writeJSON(w, res)
			}
		}
	}
	if err != nil {
		a.Log.Error(err, "join", "left", req.left.Name, "right", req.right.Name)
		code := http.StatusInternalServerError
		var se *join.SourceError
		if errors.As(err, &se) {
			code = http.StatusBadGateway
		}
		http.Error(w, err.Error(), code)
	}
}

// jsonGroup is one key of a join result served as JSON. Documents are
// relaxed Extended JSON.
type jsonGroup struct {
	Key  json.RawMessage   `json:"key"`
	Docs []json.RawMessage `json:"docs"`
}

func writeJSON(w http.ResponseWriter, res *join.Groups) error {
	out := []jsonGroup{}
	for _, k := range res.Keys() {
		key, err := docfmt.Marshal(k.Document())
		if err != nil {
			return err
		}
		g := jsonGroup{Key: key}
		for _, doc := range res.Get(k) {
			b, err := docfmt.Marshal(doc)
			if err != nil {
				return err
			}
			g.Docs = append(g.Docs, b)
		}
		out = append(out, g)
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(out)
}

// resultTable is the data for joinTemplate.
type resultTable struct {
	Left, Right, Variant string
	Keys                 []string
	Columns              []string
	Rows                 []resultRow
}

type resultRow struct {
	Key   []string
	Cells []string
}

// table lays out res with one row per merged document and one column
// per field name appearing in any document.
func table(req *joinRequest, res *join.Groups) *resultTable {
	t := &resultTable{
		Left:    req.left.Name,
		Right:   req.right.Name,
		Variant: req.variant.String(),
		Keys:    res.Projection().Fields(),
	}
	cols := make(map[string]bool)
	for _, k := range res.Keys() {
		for _, doc := range res.Get(k) {
			for f := range doc {
				cols[f] = true
			}
		}
	}
	for c := range cols {
		t.Columns = append(t.Columns, c)
	}
	sort.Strings(t.Columns)

	for _, k := range res.Keys() {
		var key []string
		for i := 0; i < k.Len(); i++ {
			key = append(key, cell(k.Get(i)))
		}
		for _, doc := range res.Get(k) {
			row := resultRow{Key: key}
			for _, c := range t.Columns {
				var s string
				if v, ok := doc[c]; ok {
					s = cell(v)
				}
				row.Cells = append(row.Cells, s)
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// cell formats v for a table cell. Strings are shown unquoted.
func cell(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return docfmt.FormatValue(v)
}

func writeHTML(w http.ResponseWriter, req *joinRequest, res *join.Groups) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return joinTemplate.Execute(w, table(req, res))
}
