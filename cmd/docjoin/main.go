// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Docjoin joins two document collections on equal key fields.
//
// Usage:
//
//	docjoin [flags] [-job file.yaml]
//
// Each side of the join is a MongoDB collection, a collection stored
// by the join server's SQL database, or a list of document files
// (NDJSON or Parquet). The join is described by a YAML job file,
// command-line flags, or both; flags override the job. For example,
//
//	docjoin -on id -type left -lfiles users.ndjson -rfiles orders.parquet \
//		-lselect name -rselect item,price
//
// prints one merged document per line, with the join key stored in
// the "_key" field. With -format table, docjoin prints a text table
// instead.
//
// A job file looks like:
//
//	left:
//	  collection: users
//	  filter: region:eu
//	  select: [name]
//	right:
//	  collection: orders
//	  select: [item, price]
//	keys: [id]
//	type: full_outer
//	mongo:
//	  uri: mongodb://localhost:27017/
//	  database: shop
//	sink: joined
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/go-logr/logr"
	_ "github.com/go-sql-driver/mysql"
	"golang.org/x/docjoin/docfmt"
	"golang.org/x/docjoin/docproc"
	"golang.org/x/docjoin/internal/texttab"
	"golang.org/x/docjoin/internal/zaplog"
	"golang.org/x/docjoin/join"
	"golang.org/x/docjoin/storage/db"
	_ "golang.org/x/docjoin/storage/db/sqlite3"
	"golang.org/x/docjoin/storage/docfile"
	"golang.org/x/docjoin/storage/mongo"
)

var (
	flagJob     = flag.String("job", "", "read the join description from YAML `file`")
	flagOn      = flag.String("on", "", "comma-separated join key `fields`")
	flagType    = flag.String("type", "", "join `type`: inner, left, right or full")
	flagLeft    = flag.String("left", "", "left `collection`")
	flagRight   = flag.String("right", "", "right `collection`")
	flagLFiles  = flag.String("lfiles", "", "comma-separated left document `files`")
	flagRFiles  = flag.String("rfiles", "", "comma-separated right document `files`")
	flagLQ      = flag.String("lq", "", "left `filter`")
	flagRQ      = flag.String("rq", "", "right `filter`")
	flagLSelect = flag.String("lselect", "", "comma-separated left `fields` to keep")
	flagRSelect = flag.String("rselect", "", "comma-separated right `fields` to keep")
	flagFormat  = flag.String("format", "", "output `format`: ndjson or table (default ndjson)")
	flagStats   = flag.Bool("stats", false, "print join statistics to stderr")
	flagSink    = flag.String("sink", "", "also store the result in MongoDB `collection`")
	flagMongo   = flag.String("mongo", "", "MongoDB server `uri`, such as "+mongo.URI("", 0))
	flagMongoDB = flag.String("mongo_db", "", "MongoDB `database`")
	flagDriver  = flag.String("driver", "", "SQL `driver` of -dsn (default sqlite3)")
	flagDSN     = flag.String("dsn", "", "SQL data source `name` of the join server database")
	flagVerbose = flag.Bool("v", false, "log fetches and debug information")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: docjoin [flags]

docjoin joins two document collections on equal key fields and prints
the merged documents.

`)
	flag.PrintDefaults()
}

func main() {
	log.SetPrefix("docjoin: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() > 0 {
		usage()
		os.Exit(2)
	}

	logger, sync, err := zaplog.New(*flagVerbose)
	if err != nil {
		log.Fatal(err)
	}
	defer sync()

	job := new(Job)
	if *flagJob != "" {
		if job, err = loadJob(*flagJob); err != nil {
			log.Fatal(err)
		}
	}
	if err := applyFlags(job); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, job, logger, os.Stdout, os.Stderr); err != nil {
		logger.Error(err, "join failed")
		sync()
		log.Fatal(err)
	}
}

// applyFlags overrides the fields of job with the flags that were set.
func applyFlags(job *Job) error {
	var err error
	flag.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		v := f.Value.String()
		switch f.Name {
		case "on":
			job.Keys, err = keysFlag(v)
		case "type":
			job.Type = v
		case "left":
			job.Left.Collection = v
		case "right":
			job.Right.Collection = v
		case "lfiles":
			job.Left.Files = splitList(v)
		case "rfiles":
			job.Right.Files = splitList(v)
		case "lq":
			job.Left.Filter = v
		case "rq":
			job.Right.Filter = v
		case "lselect":
			job.Left.Select, err = keysFlag(v)
		case "rselect":
			job.Right.Select, err = keysFlag(v)
		case "format":
			job.Format = v
		case "stats":
			job.Stats = *flagStats
		case "sink":
			job.Sink = v
		case "mongo":
			job.Mongo.URI = v
		case "mongo_db":
			job.Mongo.Database = v
		case "driver":
			job.SQL.Driver = v
		case "dsn":
			job.SQL.DSN = v
		}
		if err != nil {
			err = fmt.Errorf("-%s: %w", f.Name, err)
		}
	})
	return err
}

func keysFlag(v string) (any, error) {
	keys, err := docproc.ParseKeys(v)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// stores holds the connections opened for a job.
type stores struct {
	job   *Job
	log   logr.Logger
	mongo *mongo.Client
	db    *db.DB
}

func (s *stores) close() {
	if s.mongo != nil {
		s.mongo.Close(context.Background())
	}
	if s.db != nil {
		s.db.Close()
	}
}

func (s *stores) mongoClient(ctx context.Context) (*mongo.Client, error) {
	if s.mongo == nil {
		uri := s.job.Mongo.URI
		if uri == "" {
			uri = mongo.URI(s.job.Mongo.Host, s.job.Mongo.Port)
		}
		c, err := mongo.Connect(ctx, uri)
		if err != nil {
			return nil, err
		}
		c.Log = s.log.WithName("mongo")
		s.mongo = c
	}
	return s.mongo, nil
}

func (s *stores) mongoDatabase() string {
	if s.job.Mongo.Database == "" {
		return "test"
	}
	return s.job.Mongo.Database
}

// source opens the source of side c.
func (s *stores) source(ctx context.Context, c *SideConfig) (join.Source, string, error) {
	switch s.job.store(c) {
	case "files":
		return docfile.New(c.Files...), strings.Join(c.Files, ","), nil
	case "mongo":
		client, err := s.mongoClient(ctx)
		if err != nil {
			return nil, "", err
		}
		coll := client.Collection(s.mongoDatabase(), c.Collection)
		return coll, coll.Name(), nil
	}
	if s.db == nil {
		driver := s.job.SQL.Driver
		if driver == "" {
			driver = "sqlite3"
		}
		if s.job.SQL.DSN == "" {
			return nil, "", fmt.Errorf("collection %q: no MongoDB server or SQL database configured", c.Collection)
		}
		d, err := db.OpenSQL(driver, s.job.SQL.DSN)
		if err != nil {
			return nil, "", err
		}
		s.db = d
	}
	return s.db.Collection(c.Collection), c.Collection, nil
}

// run performs job, writing the result to w and statistics to errw.
func run(ctx context.Context, job *Job, log logr.Logger, w, errw io.Writer) error {
	p, err := job.resolve(log)
	if err != nil {
		return err
	}
	st := &stores{job: job, log: log}
	defer st.close()

	left := join.Collection{Filter: p.leftFilter, Select: p.leftSelect}
	right := join.Collection{Filter: p.rightFilter, Select: p.rightSelect}
	if left.Source, left.Name, err = st.source(ctx, &job.Left); err != nil {
		return err
	}
	if right.Source, right.Name, err = st.source(ctx, &job.Right); err != nil {
		return err
	}

	f := join.Fetcher{Log: log}
	l, r, err := f.FetchBoth(ctx, p.keys, left, right)
	if err != nil {
		return err
	}
	res, err := join.JoinContext(ctx, l, r, p.variant, p.merger)
	if err != nil {
		return err
	}

	switch p.format {
	case "table":
		err = writeTable(w, res, p.variant)
	default:
		err = writeDocs(w, res)
	}
	if err != nil {
		return err
	}
	if job.Stats {
		fmt.Fprintln(errw, join.Summarize(l, r, res))
	}

	if job.Sink != "" {
		client, err := st.mongoClient(ctx)
		if err != nil {
			return err
		}
		n, err := client.Sink(st.mongoDatabase(), job.Sink).Write(ctx, res)
		if err != nil {
			return fmt.Errorf("storing result in %s: %w", job.Sink, err)
		}
		log.Info("stored result", "collection", job.Sink, "docs", n)
	}
	return nil
}

// writeDocs writes every merged document of res as a line of relaxed
// Extended JSON, with its key in the "_key" field.
func writeDocs(w io.Writer, res *join.Groups) error {
	out := docfmt.NewWriter(w)
	for _, k := range res.Keys() {
		key := k.Document()
		for _, doc := range res.Get(k) {
			rec := make(docfmt.Document, len(doc)+1)
			for f, v := range doc {
				rec[f] = v
			}
			if _, ok := rec[mongo.KeyField]; ok {
				return fmt.Errorf("merged document already has field %q", mongo.KeyField)
			}
			rec[mongo.KeyField] = key
			if err := out.Write(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeTable writes res as a text table with one row per merged
// document.
func writeTable(w io.Writer, res *join.Groups, v join.Variant) error {
	keys := res.Projection().Fields()
	colSet := make(map[string]bool)
	for _, k := range res.Keys() {
		for _, doc := range res.Get(k) {
			for f := range doc {
				colSet[f] = true
			}
		}
	}
	cols := make([]string, 0, len(colSet))
	for c := range colSet {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	tab := &texttab.Table{Sep: "  "}
	tab.Row()
	if len(keys) > 0 {
		tab.Span(len(keys), "key", texttab.Center)
	}
	if len(cols) > 0 {
		tab.Span(len(cols), v.String()+" join", texttab.Center)
	}
	tab.Row()
	for _, k := range keys {
		tab.Cell(k, texttab.Left)
	}
	for _, c := range cols {
		tab.Cell(c, texttab.Left)
	}
	tab.Rule('-')
	for _, k := range res.Keys() {
		for _, doc := range res.Get(k) {
			tab.Row()
			for i := 0; i < k.Len(); i++ {
				tab.Cell(cell(k.Get(i)), texttab.Left)
			}
			for _, c := range cols {
				s := ""
				if x, ok := doc[c]; ok {
					s = cell(x)
				}
				tab.Cell(s, texttab.Left)
			}
		}
	}
	return tab.Format(w)
}

// cell formats v for a table cell. Strings are shown unquoted.
func cell(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return docfmt.FormatValue(v)
}
