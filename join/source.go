// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package join

import (
	"context"

	"golang.org/x/docjoin/docfmt"
	"golang.org/x/docjoin/docproc"
	"golang.org/x/docjoin/pipeline"
)

// A Source is a document collection that can run a grouping pipeline.
//
// Aggregate runs p and returns all of its groups. Each group's Docs
// must contain only the fields selected by p. Aggregate should abort
// and return an error when ctx is done.
type Source interface {
	Aggregate(ctx context.Context, p *pipeline.Pipeline) ([]pipeline.Group, error)
}

// A Collection describes one side of a join.
type Collection struct {
	// Name identifies the collection in logs and errors.
	Name string
	// Source holds the documents.
	Source Source
	// Filter selects the documents to join. nil selects all of
	// them.
	Filter *docproc.Filter
	// Select are the fields kept in each joined document.
	Select []string
}

// MemSource is a Source over an in-memory slice of documents.
type MemSource []docfmt.Document

// Aggregate runs p over s in process.
func (s MemSource) Aggregate(ctx context.Context, p *pipeline.Pipeline) ([]pipeline.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.Run(s), nil
}
