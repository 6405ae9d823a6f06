// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package join

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/docjoin/docproc"
	"golang.org/x/docjoin/pipeline"
	"golang.org/x/sync/errgroup"
)

// A Fetcher runs grouping pipelines against Sources.
type Fetcher struct {
	// Log receives a summary of every fetch at verbosity 1. The zero
	// Logger discards.
	Log logr.Logger
}

// Fetch groups the documents of c by the fields of proj. side
// identifies c in errors and logs.
//
// Fetch materializes every group before returning. Any error from the
// source aborts the fetch and is returned as a *SourceError.
func (f *Fetcher) Fetch(ctx context.Context, proj *docproc.Projection, side Side, c Collection) (*Groups, error) {
	start := time.Now()
	p := pipeline.Build(c.Filter, proj.Fields(), c.Select)
	raw, err := c.Source.Aggregate(ctx, p)
	if err != nil {
		return nil, &SourceError{side, c.Name, err}
	}

	g := NewGroups(proj)
	for _, group := range raw {
		g.Add(proj.Project(group.ID), group.Docs...)
	}
	f.Log.V(1).Info("fetched groups", "side", side, "collection", c.Name,
		"groups", g.Len(), "docs", g.DocCount(), "elapsed", time.Since(start))
	return g, nil
}

// FetchBoth groups left and right by keys, concurrently. The two
// Groups share a fresh Projection of keys, so they can be joined.
//
// If either fetch fails, FetchBoth cancels the other and returns the
// first error.
func (f *Fetcher) FetchBoth(ctx context.Context, keys []string, left, right Collection) (*Groups, *Groups, error) {
	proj := docproc.NewProjection(keys)
	var l, r *Groups
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		l, err = f.Fetch(ctx, proj, Left, left)
		return err
	})
	eg.Go(func() error {
		var err error
		r, err = f.Fetch(ctx, proj, Right, right)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

// Run fetches left and right grouped by keys and joins them with
// DefaultMerger.
func Run(ctx context.Context, left, right Collection, keys []string, variant Variant) (*Groups, error) {
	var f Fetcher
	l, r, err := f.FetchBoth(ctx, keys, left, right)
	if err != nil {
		return nil, err
	}
	return JoinContext(ctx, l, r, variant, nil)
}
