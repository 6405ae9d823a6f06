// Copyright 2016 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package app implements the document join server. Combine an App
// with a database to get an HTTP server that stores collections and
// joins them.
package app

import (
	"net/http"

	"github.com/go-logr/logr"
	"golang.org/x/docjoin/join"
	"golang.org/x/docjoin/storage/db"
)

// App manages the join server logic. Construct an App instance using
// a literal with a DB and call RegisterOnMux to connect it with an
// HTTP server.
type App struct {
	DB *db.DB

	// Sources are named collections served by other stores, such
	// as a MongoDB server. A name in Sources hides a DB collection
	// of the same name.
	Sources map[string]join.Source

	// Log receives request errors. The zero Logger discards.
	Log logr.Logger
}

// RegisterOnMux registers the app's URLs on mux.
func (a *App) RegisterOnMux(mux *http.ServeMux) {
	mux.HandleFunc("/upload", a.upload)
	mux.HandleFunc("/collections", a.collections)
	mux.HandleFunc("/join", a.join)
}

// source returns the collection called name.
func (a *App) source(name string) join.Source {
	if src, ok := a.Sources[name]; ok {
		return src
	}
	return a.DB.Collection(name)
}
