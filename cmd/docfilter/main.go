// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// docfilter reads documents from input files, filters them, and
// writes the matching documents to stdout. If no inputs are provided,
// it reads from stdin.
//
// Inputs hold one relaxed Extended JSON document per line. The filter
// language is the one accepted by the lq and rq parameters of the join
// server; see package golang.org/x/docjoin/docproc/syntax.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/docjoin/docfmt"
	"golang.org/x/docjoin/docproc"
)

var label = flag.String("label", "", "store each input's label in document `field`")

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: docfilter [flags] query [inputs...]

docfilter reads documents from input files, filters them, and writes
the matching documents to stdout. If no inputs are provided, it reads
from stdin. An input of the form label=path is labeled with label
instead of path.
`)
	flag.PrintDefaults()
}

func main() {
	log.SetPrefix("")
	log.SetFlags(0)

	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	filter, err := docproc.NewFilter(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	writer := docfmt.NewWriter(os.Stdout)
	files := docfmt.Files{Paths: flag.Args()[1:], AllowStdin: true, AllowLabels: true, LabelField: *label}
	for files.Scan() {
		rec := files.Result()
		switch rec := rec.(type) {
		case *docfmt.SyntaxError:
			// Non-fatal parse error. Warn but keep going.
			fmt.Fprintln(os.Stderr, rec)
			continue
		case docfmt.Document:
			if !filter.Match(rec) {
				continue
			}
		}

		err = writer.Write(rec)
		if err != nil {
			log.Fatal("writing output: ", err)
		}
	}
	if err := files.Err(); err != nil {
		log.Fatal(err)
	}
}
