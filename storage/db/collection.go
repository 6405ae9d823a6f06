// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang/snappy"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/docjoin/docfmt"
	"golang.org/x/docjoin/pipeline"
)

// Collection is a stored collection. It implements join.Source.
type Collection struct {
	db   *DB
	name string
}

// Collection returns the stored collection called name. The
// collection need not exist yet; a collection with no uploads is
// empty.
func (db *DB) Collection(name string) *Collection {
	return &Collection{db, name}
}

// Name returns the name of c.
func (c *Collection) Name() string {
	return c.name
}

// Aggregate runs p over the committed documents of c, in upload order.
//
// Equality matches on top-level fields that every document matching
// p.Filter must satisfy are evaluated by the database. The rest of the
// pipeline is evaluated in process.
func (c *Collection) Aggregate(ctx context.Context, p *pipeline.Pipeline) ([]pipeline.Group, error) {
	docs, err := c.load(ctx, p)
	if err != nil {
		return nil, err
	}
	return p.Run(docs), nil
}

func (c *Collection) load(ctx context.Context, p *pipeline.Pipeline) ([]docfmt.Document, error) {
	var query strings.Builder
	args := []interface{}{c.name}
	query.WriteString("SELECT d.Content FROM Documents d JOIN Uploads u ON d.UploadID = u.UploadID WHERE u.Collection = ?")
	for _, term := range p.Filter.RequiredEqualities() {
		query.WriteString(" AND EXISTS (SELECT 1 FROM DocumentFields f WHERE f.UploadID = d.UploadID AND f.DocID = d.DocID AND f.Name = ? AND f.Value = ?)")
		args = append(args, term.Field, term.Value)
	}
	query.WriteString(" ORDER BY u.Day, u.Seq, d.DocID")

	rows, err := c.db.sql.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []docfmt.Document
	for rows.Next() {
		var content []byte
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		raw, err := snappy.Decode(nil, content)
		if err != nil {
			return nil, fmt.Errorf("decompressing document: %w", err)
		}
		var doc docfmt.Document
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decoding document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
