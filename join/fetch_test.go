// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package join

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/docjoin/docproc"
	"golang.org/x/docjoin/pipeline"
)

// errSource fails every aggregation.
type errSource struct{ err error }

func (s errSource) Aggregate(ctx context.Context, p *pipeline.Pipeline) ([]pipeline.Group, error) {
	return nil, s.err
}

// blockSource blocks until its context is done.
type blockSource struct{}

func (blockSource) Aggregate(ctx context.Context, p *pipeline.Pipeline) ([]pipeline.Group, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// rawSource returns fixed groups, as a server would.
type rawSource []pipeline.Group

func (s rawSource) Aggregate(ctx context.Context, p *pipeline.Pipeline) ([]pipeline.Group, error) {
	return s, nil
}

func TestFetch(t *testing.T) {
	f := Fetcher{Log: testr.NewWithOptions(t, testr.Options{Verbosity: 1})}
	proj := docproc.NewProjection([]string{"id", "region"})
	src := rawSource{
		{ID: doc{"id": int32(1), "region": "eu"}, Docs: []doc{{"n": "a"}}},
		// A missing field is null.
		{ID: doc{"id": int32(2)}, Docs: []doc{{"n": "b"}}},
		// Servers may report missing and null as separate
		// groups. They are the same key.
		{ID: doc{"id": int32(2), "region": nil}, Docs: []doc{{"n": "c"}}},
		{ID: doc{"id": int32(3)}, Docs: nil},
	}
	g, err := f.Fetch(context.Background(), proj, Left, Collection{Name: "c", Source: src})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][]doc{
		`{"id":1,"region":"eu"}`: {{"n": "a"}},
		`{"id":2,"region":null}`: {{"n": "b"}, {"n": "c"}},
	}
	if diff := cmp.Diff(want, result(g)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestFetchBoth(t *testing.T) {
	var f Fetcher
	left := Collection{Name: "orders", Source: MemSource{
		{"cust": int32(1), "item": "pen", "region": "eu"},
		{"cust": int32(2), "item": "ink", "region": "us"},
		{"cust": int32(1), "item": "pad", "region": "eu"},
	}, Filter: mustFilter(t, "region:eu"), Select: []string{"item"}}
	right := Collection{Name: "customers", Source: MemSource{
		{"cust": int32(1), "name": "ann"},
		{"cust": int32(2), "name": "bob"},
	}, Select: []string{"name"}}

	l, r, err := f.FetchBoth(context.Background(), []string{"cust"}, left, right)
	if err != nil {
		t.Fatal(err)
	}
	if l.Projection() != r.Projection() {
		t.Fatalf("FetchBoth returned Groups with different Projections")
	}
	got := result(Join(l, r, RightOuter))
	want := map[string][]doc{
		`{"cust":1}`: {{"L_item": "pen", "R_name": "ann"}, {"L_item": "pad", "R_name": "ann"}},
		`{"cust":2}`: {{"R_name": "bob"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestFetchBothError(t *testing.T) {
	var f Fetcher
	boom := errors.New("connection refused")
	left := Collection{Name: "slow", Source: blockSource{}}
	right := Collection{Name: "broken", Source: errSource{boom}}

	_, _, err := f.FetchBoth(context.Background(), []string{"k"}, left, right)
	var se *SourceError
	if !errors.As(err, &se) {
		t.Fatalf("got %v, want *SourceError", err)
	}
	if se.Side != Right || se.Collection != "broken" {
		t.Errorf("got side %s collection %q, want right \"broken\"", se.Side, se.Collection)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error %v does not wrap the source error", err)
	}
	if want := `right collection "broken": connection refused`; err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestRunSourceError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := Collection{Name: "c", Source: MemSource{{"k": int32(1)}}}
	_, err := Run(ctx, c, c, []string{"k"}, Inner)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	var se *SourceError
	if !errors.As(err, &se) {
		t.Errorf("got %T, want *SourceError", err)
	}
}

func mustFilter(t *testing.T, q string) *docproc.Filter {
	t.Helper()
	f, err := docproc.NewFilter(q)
	if err != nil {
		t.Fatal(err)
	}
	return f
}
