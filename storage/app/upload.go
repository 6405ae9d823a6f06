// Copyright 2016 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"golang.org/x/docjoin/docfmt"
	"golang.org/x/docjoin/storage/db"
)

// upload is the handler for the /upload endpoint. It processes
// files of documents in a multipart/x-form-data POST request and
// stores them in the collection named by the "collection" parameter.
func (a *App) upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		http.Error(w, "/upload must be called as a POST request", http.StatusMethodNotAllowed)
		return
	}
	collection := r.URL.Query().Get("collection")
	if collection == "" {
		http.Error(w, "missing collection parameter", http.StatusBadRequest)
		return
	}

	// We use r.MultipartReader instead of r.ParseForm to avoid
	// storing uploaded data in memory.
	mr, err := r.MultipartReader()
	if err != nil {
		a.Log.Error(err, "upload")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := a.processUpload(ctx, collection, mr)
	if err != nil {
		a.Log.Error(err, "upload", "collection", collection)
		code := http.StatusInternalServerError
		var se *docfmt.SyntaxError
		if errors.As(err, &se) || errors.Is(err, errBadPart) {
			code = http.StatusBadRequest
		}
		http.Error(w, err.Error(), code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		a.Log.Error(err, "upload")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// uploadStatus is the response to an /upload POST served as JSON.
type uploadStatus struct {
	// UploadID is the upload ID assigned to the upload.
	UploadID string `json:"uploadid"`
	// Count is the number of documents stored.
	Count int `json:"count"`
}

var errBadPart = errors.New("unexpected form field")

// processUpload reads one or more files from a multipart.Reader and
// stores their documents as a single upload. A syntax error in any
// file aborts the whole upload.
func (a *App) processUpload(ctx context.Context, collection string, mr *multipart.Reader) (*uploadStatus, error) {
	u, err := a.DB.NewUpload(ctx, collection)
	if err != nil {
		return nil, err
	}
	defer func() {
		if u != nil {
			u.Abort()
		}
	}()

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		if name := p.FormName(); name != "file" {
			return nil, fmt.Errorf("%w %q", errBadPart, name)
		}

		br := docfmt.NewReader(p, p.FileName())
		for br.Scan() {
			switch rec := br.Result().(type) {
			case *docfmt.SyntaxError:
				return nil, rec
			case docfmt.Document:
				if err := u.InsertDocument(rec); err != nil {
					return nil, err
				}
			}
		}
		if err := br.Err(); err != nil {
			return nil, err
		}
	}

	status := &uploadStatus{UploadID: u.ID, Count: u.Count()}
	err = u.Commit()
	u = nil
	if err != nil {
		return nil, err
	}
	return status, nil
}

// collections is the handler for the /collections endpoint. It lists
// the stored collections as JSON.
func (a *App) collections(w http.ResponseWriter, r *http.Request) {
	infos, err := a.DB.Collections(r.Context())
	if err != nil {
		a.Log.Error(err, "collections")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if infos == nil {
		infos = []db.CollectionInfo{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(infos); err != nil {
		a.Log.Error(err, "collections")
	}
}
