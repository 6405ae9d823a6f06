// Copyright 2016 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/docjoin/storage/db"
	_ "golang.org/x/docjoin/storage/db/sqlite3"
)

func newApp(t *testing.T) (*App, *httptest.Server) {
	t.Helper()
	d, err := db.OpenSQL("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	app := &App{DB: d}
	mux := http.NewServeMux()
	app.RegisterOnMux(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return app, srv
}

// post uploads files to collection and returns the response.
func post(t *testing.T, srv *httptest.Server, collection string, files ...string) (*http.Response, []byte) {
	t.Helper()
	pr, pw := io.Pipe()
	mpw := multipart.NewWriter(pw)
	go func() {
		defer pw.Close()
		defer mpw.Close()
		for i, f := range files {
			w, err := mpw.CreateFormFile("file", fmt.Sprintf("%d.ndjson", i))
			if err != nil {
				t.Errorf("CreateFormFile: %v", err)
				return
			}
			io.WriteString(w, f)
		}
	}()
	resp, err := http.Post(srv.URL+"/upload?collection="+collection, mpw.FormDataContentType(), pr)
	if err != nil {
		t.Fatalf("post /upload: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading /upload response: %v", err)
	}
	return resp, body
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading %s response: %v", url, err)
	}
	return resp, body
}

func TestUpload(t *testing.T) {
	_, srv := newApp(t)

	resp, body := post(t, srv, "users",
		`{"id": 1, "name": "ann"}`+"\n# comment\n"+`{"id": 2, "name": "bob"}`+"\n",
		`{"id": 3, "name": "cy"}`)
	if resp.StatusCode != 200 {
		t.Fatalf("post /upload: %v\n%s", resp.Status, body)
	}
	var status uploadStatus
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatalf("decoding /upload response %q: %v", body, err)
	}
	if status.Count != 3 || status.UploadID == "" {
		t.Errorf("/upload response = %+v, want 3 documents and an upload ID", status)
	}

	resp, body = get(t, srv.URL+"/collections")
	if resp.StatusCode != 200 {
		t.Fatalf("get /collections: %v", resp.Status)
	}
	var infos []db.CollectionInfo
	if err := json.Unmarshal(body, &infos); err != nil {
		t.Fatalf("decoding /collections response %q: %v", body, err)
	}
	want := []db.CollectionInfo{{Name: "users", Uploads: 1, Documents: 3}}
	if diff := cmp.Diff(want, infos); diff != "" {
		t.Errorf("/collections mismatch (-want +got):\n%s", diff)
	}
}

func TestUploadErrors(t *testing.T) {
	app, srv := newApp(t)

	resp, _ := get(t, srv.URL+"/upload?collection=users")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("get /upload: %v, want %d", resp.Status, http.StatusMethodNotAllowed)
	}

	resp, _ = post(t, srv, "", `{"id": 1}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("post /upload without collection: %v, want %d", resp.Status, http.StatusBadRequest)
	}

	resp, body := post(t, srv, "users", `{"id": 1}`+"\n{not json\n")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("post /upload with syntax error: %v, want %d\n%s", resp.Status, http.StatusBadRequest, body)
	}

	// Failed uploads leave nothing behind.
	n, err := app.DB.CountUploads()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("%d uploads after failed uploads, want 0", n)
	}
}
