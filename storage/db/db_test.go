// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/docjoin/docfmt"
	"golang.org/x/docjoin/docproc"
	"golang.org/x/docjoin/join"
	"golang.org/x/docjoin/pipeline"
	. "golang.org/x/docjoin/storage/db"
	"golang.org/x/docjoin/storage/db/dbtest"
)

// Most of the db package is also tested via the end-to-end-tests in
// storage/app.

// TestUploadIDs verifies that NewUpload generates the correct sequence of upload IDs.
func TestUploadIDs(t *testing.T) {
	ctx := context.Background()

	db, cleanup := dbtest.NewDB(t)
	defer cleanup()

	defer SetNow(time.Time{})

	tests := []struct {
		sec int64
		id  string
	}{
		{0, "19700101.1"},
		{0, "19700101.2"},
		{86400, "19700102.1"},
		{86400, "19700102.2"},
		{86400, "19700102.3"},
		{86400, "19700102.4"},
		{86400, "19700102.5"},
		{86400, "19700102.6"},
		{86400, "19700102.7"},
		{86400, "19700102.8"},
		{86400, "19700102.9"},
		{86400, "19700102.10"},
		{86400, "19700102.11"},
	}
	for _, test := range tests {
		SetNow(time.Unix(test.sec, 0))
		u, err := db.NewUpload(ctx, "c")
		if err != nil {
			t.Fatalf("NewUpload: %v", err)
		}
		if err := u.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}
		if u.ID != test.id {
			t.Fatalf("u.ID = %q, want %q", u.ID, test.id)
		}
	}
}

// TestNewUpload verifies that NewUpload and InsertDocument wrote the correct rows to the database.
func TestNewUpload(t *testing.T) {
	SetNow(time.Unix(0, 0))
	defer SetNow(time.Time{})
	db, cleanup := dbtest.NewDB(t)
	defer cleanup()

	id := dbtest.Upload(t, db, "orders", docfmt.Document{
		"id":     int32(7),
		"region": "eu",
		"tags":   bson.A{"a", "b"},
		"nested": docfmt.Document{"x": int32(1)},
	})
	if id != "19700101.1" {
		t.Errorf("upload ID = %q, want %q", id, "19700101.1")
	}

	rows, err := DBSQL(db).Query("SELECT UploadId, DocId, Name, Value FROM DocumentFields")
	if err != nil {
		t.Fatalf("sql.Query: %v", err)
	}
	defer rows.Close()

	type field struct{ Name, Value string }
	var got []field
	for rows.Next() {
		var uploadid string
		var docid int64
		var f field
		if err := rows.Scan(&uploadid, &docid, &f.Name, &f.Value); err != nil {
			t.Fatalf("rows.Scan: %v", err)
		}
		if uploadid != "19700101.1" {
			t.Errorf("uploadid = %q, want %q", uploadid, "19700101.1")
		}
		if docid != 0 {
			t.Errorf("docid = %d, want 0", docid)
		}
		got = append(got, f)
	}
	if err := rows.Err(); err != nil {
		t.Errorf("rows.Err: %v", err)
	}
	want := []field{{"id", "n:7"}, {"region", "s:eu"}, {"tags", "s:a"}, {"tags", "s:b"}}
	less := func(a, b field) bool { return a.Name+"\x00"+a.Value < b.Name+"\x00"+b.Value }
	if diff := cmp.Diff(want, got, cmpopts.SortSlices(less)); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
}

func TestAbortUpload(t *testing.T) {
	db, cleanup := dbtest.NewDB(t)
	defer cleanup()

	u, err := db.NewUpload(context.Background(), "c")
	if err != nil {
		t.Fatal(err)
	}
	if err := u.InsertDocument(docfmt.Document{"a": int32(1)}); err != nil {
		t.Fatal(err)
	}
	if err := u.Abort(); err != nil {
		t.Fatal(err)
	}
	if n, err := db.CountUploads(); err != nil || n != 0 {
		t.Errorf("CountUploads() = %d, %v; want 0", n, err)
	}
}

func TestNewUploadEmptyName(t *testing.T) {
	db, cleanup := dbtest.NewDB(t)
	defer cleanup()
	if _, err := db.NewUpload(context.Background(), ""); err == nil {
		t.Errorf("NewUpload with empty collection succeeded")
	}
}

func TestCollectionAggregate(t *testing.T) {
	db, cleanup := dbtest.NewDB(t)
	defer cleanup()

	dbtest.Upload(t, db, "orders",
		docfmt.Document{"cust": int32(1), "item": "pen", "region": "eu", "qty": int32(2)},
		docfmt.Document{"cust": int32(2), "item": "ink", "region": "us", "qty": int32(9)},
	)
	dbtest.Upload(t, db, "orders",
		docfmt.Document{"cust": int32(1), "item": "pad", "region": "eu", "qty": int32(5)},
		docfmt.Document{"cust": int32(1), "item": "cap", "region": bson.A{"eu", "us"}, "qty": int32(1)},
	)
	dbtest.Upload(t, db, "other", docfmt.Document{"cust": int32(1), "item": "zzz", "region": "eu"})

	check := func(filter string, want []pipeline.Group) {
		t.Helper()
		f, err := docproc.NewFilter(filter)
		if err != nil {
			t.Fatal(err)
		}
		got, err := db.Collection("orders").Aggregate(context.Background(), pipeline.Build(f, []string{"cust"}, []string{"item"}))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s: (-want +got):\n%s", filter, diff)
		}
	}

	check("*", []pipeline.Group{
		{ID: docfmt.Document{"cust": int32(1)}, Docs: []docfmt.Document{{"item": "pen"}, {"item": "pad"}, {"item": "cap"}}},
		{ID: docfmt.Document{"cust": int32(2)}, Docs: []docfmt.Document{{"item": "ink"}}},
	})
	// Pushed down to SQL.
	check("region:eu", []pipeline.Group{
		{ID: docfmt.Document{"cust": int32(1)}, Docs: []docfmt.Document{{"item": "pen"}, {"item": "pad"}, {"item": "cap"}}},
	})
	check("region:eu qty:>=2", []pipeline.Group{
		{ID: docfmt.Document{"cust": int32(1)}, Docs: []docfmt.Document{{"item": "pen"}, {"item": "pad"}}},
	})
	check("qty:9.0", []pipeline.Group{
		{ID: docfmt.Document{"cust": int32(2)}, Docs: []docfmt.Document{{"item": "ink"}}},
	})
	// Evaluated in process only.
	check("-region:us", []pipeline.Group{
		{ID: docfmt.Document{"cust": int32(1)}, Docs: []docfmt.Document{{"item": "pen"}, {"item": "pad"}}},
	})
	check("region:nowhere", nil)

	if got, err := db.Collection("missing").Aggregate(context.Background(), pipeline.Build(nil, nil, nil)); err != nil || len(got) != 0 {
		t.Errorf("missing collection: got %v, %v; want no groups", got, err)
	}
}

func TestCollectionsAndDelete(t *testing.T) {
	ctx := context.Background()
	db, cleanup := dbtest.NewDB(t)
	defer cleanup()

	dbtest.Upload(t, db, "b", docfmt.Document{"x": int32(1)})
	dbtest.Upload(t, db, "a", docfmt.Document{"x": int32(1)}, docfmt.Document{"x": int32(2)})
	dbtest.Upload(t, db, "a")

	got, err := db.Collections(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []CollectionInfo{{"a", 2, 2}, {"b", 1, 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	n, err := db.DeleteCollection(ctx, "a")
	if err != nil || n != 2 {
		t.Fatalf("DeleteCollection = %d, %v; want 2", n, err)
	}
	var docs int
	if err := DBSQL(db).QueryRow("SELECT COUNT(*) FROM Documents").Scan(&docs); err != nil {
		t.Fatal(err)
	}
	if docs != 1 {
		t.Errorf("%d documents remain, want 1", docs)
	}
	if n, _ := db.CountUploads(); n != 1 {
		t.Errorf("%d uploads remain, want 1", n)
	}
}

// TestJoin runs a join between two stored collections.
func TestJoin(t *testing.T) {
	db, cleanup := dbtest.NewDB(t)
	defer cleanup()

	dbtest.Upload(t, db, "orders",
		docfmt.Document{"cust": int32(1), "item": "pen"},
		docfmt.Document{"cust": int32(3), "item": "ink"},
	)
	dbtest.Upload(t, db, "customers",
		docfmt.Document{"cust": int32(1), "name": "ann"},
		docfmt.Document{"cust": int32(2), "name": "bob"},
	)
	left := join.Collection{Name: "orders", Source: db.Collection("orders"), Select: []string{"item"}}
	right := join.Collection{Name: "customers", Source: db.Collection("customers"), Select: []string{"name"}}
	res, err := join.Run(context.Background(), left, right, []string{"cust"}, join.FullOuter)
	if err != nil {
		t.Fatal(err)
	}
	got := make(map[string][]docfmt.Document)
	for _, k := range res.Keys() {
		got[k.String()] = res.Get(k)
	}
	want := map[string][]docfmt.Document{
		`{"cust":1}`: {{"L_item": "pen", "R_name": "ann"}},
		`{"cust":3}`: {{"L_item": "ink"}},
		`{"cust":2}`: {{"R_name": "bob"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
