// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package docfile serves document files as a join source.
//
// Files ending in ".parquet" are read as Parquet, with one document
// per row. All other files hold one relaxed Extended JSON document per
// line, as read by docfmt.
package docfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"golang.org/x/docjoin/docfmt"
	"golang.org/x/docjoin/pipeline"
)

// A Source is a collection stored in a list of files.
type Source struct {
	// Paths are the files of the collection, in order. "-" is
	// standard input.
	Paths []string
}

// New returns a Source reading paths.
func New(paths ...string) *Source {
	return &Source{Paths: paths}
}

// Aggregate reads every file and runs p over the documents in
// process. A line that is not a document fails the whole read.
func (s *Source) Aggregate(ctx context.Context, p *pipeline.Pipeline) ([]pipeline.Group, error) {
	docs, err := s.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return p.Run(docs), nil
}

// ReadAll returns every document of s.
func (s *Source) ReadAll(ctx context.Context) ([]docfmt.Document, error) {
	var docs []docfmt.Document
	var text []string
	flush := func() error {
		if len(text) == 0 {
			return nil
		}
		files := docfmt.Files{Paths: text, AllowStdin: true}
		for files.Scan() {
			switch rec := files.Result().(type) {
			case *docfmt.SyntaxError:
				return rec
			case docfmt.Document:
				docs = append(docs, rec)
			}
		}
		text = nil
		return files.Err()
	}
	for _, path := range s.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !isParquet(path) {
			text = append(text, path)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		rows, err := readParquet(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, rows...)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return docs, nil
}

func isParquet(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".parquet")
}

// readParquet reads the rows of a Parquet file as documents.
func readParquet(path string) ([]docfmt.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	r := parquet.NewReader(pf)
	defer r.Close()
	var docs []docfmt.Document
	for {
		row := make(map[string]any)
		if err := r.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%s: row %d: %w", path, len(docs), err)
		}
		docs = append(docs, docfmt.Document(row))
	}
	return docs, nil
}
