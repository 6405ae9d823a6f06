// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/docjoin/docfmt"
	"golang.org/x/docjoin/storage/app"
	"golang.org/x/docjoin/storage/db"
	_ "golang.org/x/docjoin/storage/db/sqlite3"
)

func newServer(t *testing.T) *Client {
	t.Helper()
	d, err := db.OpenSQL("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	mux := http.NewServeMux()
	(&app.App{DB: d}).RegisterOnMux(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return &Client{BaseURL: ts.URL}
}

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0666); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClient(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	users := writeFile(t, "users.ndjson", `{"id": 1, "name": "ann"}
{"id": 2, "name": "bob"}
`)
	orders := writeFile(t, "orders.ndjson", `{"id": 2, "item": "pen"}
{"id": 3, "item": "ink"}
`)
	for _, u := range []struct{ coll, file string }{{"users", users}, {"orders", orders}} {
		status, err := c.Upload(ctx, u.coll, u.file)
		if err != nil {
			t.Fatalf("Upload(%s): %v", u.coll, err)
		}
		if status.Count != 2 {
			t.Errorf("Upload(%s) stored %d documents, want 2", u.coll, status.Count)
		}
	}

	infos, err := c.Collections(ctx)
	if err != nil {
		t.Fatalf("Collections: %v", err)
	}
	wantInfos := []CollectionInfo{
		{Name: "orders", Uploads: 1, Documents: 2},
		{Name: "users", Uploads: 1, Documents: 2},
	}
	if diff := cmp.Diff(wantInfos, infos); diff != "" {
		t.Errorf("Collections mismatch (-want +got):\n%s", diff)
	}

	groups, err := c.Join(ctx, &JoinQuery{
		Left: "users", Right: "orders", On: []string{"id"}, Type: "right",
		LeftSelect: []string{"name"}, RightSelect: []string{"item"},
	})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	want := []JoinGroup{
		{docfmt.Document{"id": int32(2)}, []docfmt.Document{{"L_name": "bob", "R_item": "pen"}}},
		{docfmt.Document{"id": int32(3)}, []docfmt.Document{{"R_item": "ink"}}},
	}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Errorf("Join mismatch (-want +got):\n%s", diff)
	}
}

func TestClientErrors(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	_, err := c.Upload(ctx, "users", filepath.Join(t.TempDir(), "missing.ndjson"))
	var se *Error
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadRequest {
		t.Errorf("Upload of missing file: got %v, want status 400", err)
	}

	_, err = c.Join(ctx, &JoinQuery{Left: "users", On: []string{"id"}})
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadRequest {
		t.Errorf("Join without right: got %v, want status 400", err)
	}
}
