// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Docsave uploads document files to a join server.
//
// Usage:
//
//	docsave [-v] [-server url] -c collection file...
//
// Each input file should contain one relaxed Extended JSON document per
// line. Docsave uploads all the files as one upload to the named
// collection and prints the upload ID.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/docjoin/storage"
)

var (
	server     = flag.String("server", "http://localhost:8080", "upload documents to server at `url`")
	collection = flag.String("c", "", "store documents in `collection`")
	verbose    = flag.Bool("v", false, "print verbose log messages")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage of docsave:
	docsave [flags] -c collection file...
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetPrefix("docsave: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		log.Fatal("no files to upload")
	}
	if *collection == "" {
		log.Fatal("missing -c collection")
	}

	start := time.Now()
	c := &storage.Client{BaseURL: *server}
	status, err := c.Upload(context.Background(), *collection, files...)
	if err != nil {
		log.Fatalf("upload failed: %v", err)
	}

	if *verbose {
		s := ""
		if len(files) != 1 {
			s = "s"
		}
		log.Printf("%d file%s, %d documents uploaded in %.2f seconds.", len(files), s, status.Count, time.Since(start).Seconds())
	}
	fmt.Println(status.UploadID)
}
