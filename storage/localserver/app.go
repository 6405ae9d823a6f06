// Copyright 2016 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Localserver runs an HTTP server that stores document collections
// and joins them.
//
// Usage:
//
//	localserver [-addr address] [-driver sqlite3|mysql] [-dsn dsn]
//	            [-mongo uri -mongo_db name -mongo_collections a,b] [-v]
//
// Collections are uploaded to the SQL database. Collections named by
// -mongo_collections are served from the MongoDB database instead.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"golang.org/x/docjoin/internal/zaplog"
	"golang.org/x/docjoin/join"
	"golang.org/x/docjoin/storage/app"
	"golang.org/x/docjoin/storage/db"
	_ "golang.org/x/docjoin/storage/db/sqlite3"
	"golang.org/x/docjoin/storage/mongo"
)

var (
	addr    = flag.String("addr", ":8080", "serve HTTP on `address`")
	driver  = flag.String("driver", "sqlite3", "SQL `driver` (sqlite3 or mysql)")
	dsn     = flag.String("dsn", ":memory:", "SQL data source `name`")
	verbose = flag.Bool("v", false, "log fetches and debug information")

	mongoURI   = flag.String("mongo", "", "MongoDB server `uri`, such as "+mongo.URI("", 0))
	mongoDB    = flag.String("mongo_db", "test", "MongoDB `database` of -mongo_collections")
	mongoColls = flag.String("mongo_collections", "", "comma-separated `list` of collections served from MongoDB")
)

func main() {
	flag.Parse()

	logger, sync, err := zaplog.New(*verbose)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer sync()

	db, err := db.OpenSQL(*driver, *dsn)
	if err != nil {
		logger.Error(err, "open database", "driver", *driver)
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	sources := make(map[string]join.Source)
	if *mongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		client, err := mongo.Connect(ctx, *mongoURI)
		cancel()
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close(context.Background())
		client.Log = logger.WithName("mongo")
		for _, name := range strings.Split(*mongoColls, ",") {
			if name = strings.TrimSpace(name); name != "" {
				sources[name] = client.Collection(*mongoDB, name)
			}
		}
	}

	app := &app.App{
		DB:      db,
		Sources: sources,
		Log:     logger.WithName("app"),
	}
	app.RegisterOnMux(http.DefaultServeMux)

	logger.Info("listening", "addr", *addr, "driver", *driver, "mongo_collections", len(sources))
	log.Fatal(http.ListenAndServe(*addr, nil))
}
