// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mongo serves MongoDB collections as join sources and stores
// join results in a MongoDB collection.
package mongo

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/go-logr/logr"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/docjoin/docfmt"
	"golang.org/x/docjoin/join"
	"golang.org/x/docjoin/pipeline"
)

const (
	// DefaultHost and DefaultPort locate a local server.
	DefaultHost = "localhost"
	DefaultPort = 27017
)

// URI returns the connection URI for a server at host and port. An
// empty host means DefaultHost and a zero port means DefaultPort, so
// URI("", 0) is "mongodb://localhost:27017/".
func URI(host string, port int) string {
	if host == "" {
		host = DefaultHost
	}
	if port == 0 {
		port = DefaultPort
	}
	return "mongodb://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/"
}

// A Client is a connection to a MongoDB deployment.
type Client struct {
	c *mongo.Client

	// Log receives a line for every aggregation and bulk insert at
	// verbosity 1. The zero Logger discards.
	Log logr.Logger
}

// Connect connects to the deployment at uri and checks that it
// responds.
func Connect(ctx context.Context, uri string) (*Client, error) {
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", uri, err)
	}
	if err := c.Ping(ctx, readpref.Primary()); err != nil {
		c.Disconnect(context.Background())
		return nil, fmt.Errorf("connecting to %s: %w", uri, err)
	}
	return &Client{c: c}, nil
}

// Close disconnects from the deployment.
func (c *Client) Close(ctx context.Context) error {
	return c.c.Disconnect(ctx)
}

// Collection returns collection coll of database db as a join.Source.
func (c *Client) Collection(db, coll string) *Collection {
	return &Collection{c.c.Database(db).Collection(coll), c.Log}
}

// A Collection is a server-side collection. It implements join.Source
// by running pipelines on the server.
type Collection struct {
	coll *mongo.Collection
	log  logr.Logger
}

// Name returns the full name of c, such as "shop.orders".
func (c *Collection) Name() string {
	return c.coll.Database().Name() + "." + c.coll.Name()
}

// Aggregate runs p on the server. Groups may spill to disk on the
// server, but the results are all materialized in memory.
func (c *Collection) Aggregate(ctx context.Context, p *pipeline.Pipeline) ([]pipeline.Group, error) {
	stages := p.Stages()
	c.log.V(1).Info("aggregate", "collection", c.Name(), "stages", len(stages))
	cur, err := c.coll.Aggregate(ctx, mongo.Pipeline(stages), options.Aggregate().SetAllowDiskUse(true))
	if err != nil {
		return nil, err
	}
	var groups []pipeline.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// KeyField is the field of every stored result document that holds
// the join key.
const KeyField = "_key"

// Sink returns a Sink that inserts into collection coll of database
// db.
func (c *Client) Sink(db, coll string) *Sink {
	return &Sink{coll: c.c.Database(db).Collection(coll), log: c.Log}
}

// A Sink stores join results in a collection.
type Sink struct {
	coll *mongo.Collection
	log  logr.Logger

	// BatchSize is the number of documents per insert. If zero,
	// DefaultBatchSize is used.
	BatchSize int
}

// DefaultBatchSize is the Sink batch size if none is set.
const DefaultBatchSize = 1000

// Write inserts every merged document of res, with its key stored in
// KeyField, and returns the number of documents inserted. Inserts are
// unordered: on error, some documents of the failed batch may have
// been stored.
func (s *Sink) Write(ctx context.Context, res *join.Groups) (int, error) {
	size := s.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	n := 0
	batch := make([]any, 0, size)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		r, err := s.coll.InsertMany(ctx, batch, options.InsertMany().SetOrdered(false))
		if r != nil {
			n += len(r.InsertedIDs)
		}
		s.log.V(1).Info("insert", "collection", s.coll.Name(), "docs", len(batch))
		batch = batch[:0]
		return err
	}
	for _, k := range res.Keys() {
		key := k.Document()
		for _, doc := range res.Get(k) {
			out := make(docfmt.Document, len(doc)+1)
			for f, v := range doc {
				out[f] = v
			}
			if _, ok := out[KeyField]; ok {
				return n, fmt.Errorf("merged document already has field %q", KeyField)
			}
			out[KeyField] = key
			batch = append(batch, docfmt.Canonical(out))
			if len(batch) == size {
				if err := flush(); err != nil {
					return n, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return n, err
	}
	return n, nil
}
