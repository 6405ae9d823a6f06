// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package storage contains a client for the document join server.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/docjoin/docfmt"
)

// A Client issues queries to a join server.
// It is safe to use from multiple goroutines.
type Client struct {
	// BaseURL is the base URL of the server, such as
	// "http://localhost:8080".
	BaseURL string
	// HTTPClient is the HTTP client for sending requests. If nil,
	// http.DefaultClient will be used.
	HTTPClient *http.Client
}

// httpClient returns the http.Client to use for requests.
func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// UploadStatus is the server's response to an upload.
type UploadStatus struct {
	// UploadID is the upload ID assigned to the upload.
	UploadID string `json:"uploadid"`
	// Count is the number of documents stored.
	Count int `json:"count"`
}

// Upload stores the documents in files as one upload to collection.
// The files are streamed to the server; if one cannot be read, the
// server rejects the whole upload.
func (c *Client) Upload(ctx context.Context, collection string, files ...string) (*UploadStatus, error) {
	pr, pw := io.Pipe()
	mpw := multipart.NewWriter(pw)

	go func() {
		defer pw.Close()
		defer mpw.Close()

		for _, name := range files {
			if err := writeOneFile(mpw, name); err != nil {
				// An unexpected field makes the server reject
				// the upload.
				mpw.WriteField("abort", err.Error())
				return
			}
		}
	}()

	u := c.BaseURL + "/upload?" + url.Values{"collection": {collection}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mpw.FormDataContentType())

	status := new(UploadStatus)
	if err := c.do(req, status); err != nil {
		return nil, err
	}
	return status, nil
}

// writeOneFile reads name and writes it to mpw.
func writeOneFile(mpw *multipart.Writer, name string) error {
	w, err := mpw.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return err
	}
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

// CollectionInfo describes a collection stored on the server.
type CollectionInfo struct {
	Name      string `json:"name"`
	Uploads   int    `json:"uploads"`
	Documents int    `json:"documents"`
}

// Collections lists the collections stored on the server.
func (c *Client) Collections(ctx context.Context) ([]CollectionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/collections", nil)
	if err != nil {
		return nil, err
	}
	var infos []CollectionInfo
	if err := c.do(req, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// A JoinQuery describes a join to run on the server.
type JoinQuery struct {
	Left, Right             string
	// On are the join key fields.
	On                      []string
	// Type is the join variant, such as "inner" or "full". Empty
	// means inner.
	Type                    string
	// LeftSelect and RightSelect are the fields kept from each side.
	LeftSelect, RightSelect []string
	// LeftFilter and RightFilter select the documents of each side.
	LeftFilter, RightFilter string
}

func (q *JoinQuery) values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("left", q.Left)
	set("right", q.Right)
	set("on", strings.Join(q.On, ","))
	set("type", q.Type)
	set("lselect", strings.Join(q.LeftSelect, ","))
	set("rselect", strings.Join(q.RightSelect, ","))
	set("lq", q.LeftFilter)
	set("rq", q.RightFilter)
	return v
}

// A JoinGroup is the result of a join for one key.
type JoinGroup struct {
	Key  docfmt.Document
	Docs []docfmt.Document
}

// Join runs q on the server and returns its groups in result order.
func (c *Client) Join(ctx context.Context, q *JoinQuery) ([]JoinGroup, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/join?"+q.values().Encode(), nil)
	if err != nil {
		return nil, err
	}
	var raw []struct {
		Key  json.RawMessage   `json:"key"`
		Docs []json.RawMessage `json:"docs"`
	}
	if err := c.do(req, &raw); err != nil {
		return nil, err
	}
	out := make([]JoinGroup, len(raw))
	for i, g := range raw {
		if err := bson.UnmarshalExtJSON(g.Key, false, &out[i].Key); err != nil {
			return nil, err
		}
		for _, d := range g.Docs {
			var doc docfmt.Document
			if err := bson.UnmarshalExtJSON(d, false, &doc); err != nil {
				return nil, err
			}
			out[i].Docs = append(out[i].Docs, doc)
		}
	}
	return out, nil
}

// An Error is a non-200 response from the server.
type Error struct {
	StatusCode int
	Msg        string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Msg)
}

// do sends req and decodes the JSON response into v.
func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return &Error{resp.StatusCode, strings.TrimSpace(string(body))}
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
