// Copyright 2016 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db stores document collections in a SQL database and serves
// them as join sources.
//
// Documents are added to a named collection in uploads. Each upload is
// written in a single transaction and is visible only after Commit.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/golang/snappy"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/docjoin/docfmt"
	"golang.org/x/docjoin/docproc"
)

// DB is a high-level interface to a database of document collections.
// It's safe for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	lastUpload     *sql.Stmt
	insertUpload   *sql.Stmt
	insertDocument *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to configure its connections.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Uploads (
	UploadID VARCHAR(20) PRIMARY KEY,
	Day VARCHAR(8),
	Seq BIGINT UNSIGNED,
	Collection VARCHAR(255) NOT NULL{{if not .sqlite3}},
	Index (Day, Seq),
	Index (Collection){{end}}
);
CREATE TABLE IF NOT EXISTS Documents (
	UploadID VARCHAR(20),
	DocID BIGINT UNSIGNED,
	Content BLOB,
	PRIMARY KEY (UploadID, DocID),
	FOREIGN KEY (UploadID) REFERENCES Uploads(UploadID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS DocumentFields (
	UploadID VARCHAR(20),
	DocID BIGINT UNSIGNED,
	Name VARCHAR(255),
	Value VARCHAR(8192),
{{if not .sqlite3}}
	Index (Name(100), Value(100)),
{{end}}
	FOREIGN KEY (UploadID, DocID) REFERENCES Documents(UploadID, DocID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS UploadsDaySeq ON Uploads(Day, Seq);
CREATE INDEX IF NOT EXISTS UploadsCollection ON Uploads(Collection);
CREATE INDEX IF NOT EXISTS DocumentFieldsNameValue ON DocumentFields(Name, Value);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.lastUpload, err = db.sql.Prepare("SELECT MAX(Seq) FROM Uploads WHERE Day = ?")
	if err != nil {
		return err
	}
	db.insertUpload, err = db.sql.Prepare("INSERT INTO Uploads(UploadID, Day, Seq, Collection) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertDocument, err = db.sql.Prepare("INSERT INTO Documents(UploadID, DocID, Content) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// now is a hook for testing
var now = time.Now

// An Upload is a set of documents added to a collection together.
type Upload struct {
	// ID is the upload ID, of the form YYYYMMDD.N.
	ID string
	// Collection is the collection receiving the documents.
	Collection string

	// docid is the index of the next document to insert.
	docid int64
	// db is the underlying database that this upload is going to.
	db *DB
	// tx is the transaction used by the upload.
	tx *sql.Tx
}

// NewUpload returns an upload for storing new documents in
// collection. The documents are not visible until Commit is called.
func (db *DB) NewUpload(ctx context.Context, collection string) (*Upload, error) {
	if collection == "" {
		return nil, fmt.Errorf("empty collection name")
	}
	day := now().UTC().Format("20060102")

	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	var last sql.NullInt64
	if err := tx.StmtContext(ctx, db.lastUpload).QueryRowContext(ctx, day).Scan(&last); err != nil {
		return nil, err
	}
	id := fmt.Sprintf("%s.%d", day, last.Int64+1)
	if _, err := tx.StmtContext(ctx, db.insertUpload).ExecContext(ctx, id, day, last.Int64+1, collection); err != nil {
		return nil, err
	}

	u := &Upload{
		ID:         id,
		Collection: collection,
		db:         db,
		tx:         tx,
	}
	tx = nil
	return u, nil
}

// InsertDocument inserts a single document in an existing upload. If
// InsertDocument returns a non-nil error, the Upload has failed and
// u.Abort() must be called.
func (u *Upload) InsertDocument(doc docfmt.Document) error {
	raw, err := bson.Marshal(docfmt.Canonical(doc))
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if _, err := u.tx.Stmt(u.db.insertDocument).Exec(u.ID, u.docid, snappy.Encode(nil, raw)); err != nil {
		return err
	}
	var args []interface{}
	for _, term := range docproc.IndexTerms(doc) {
		args = append(args, u.ID, u.docid, term.Field, term.Value)
	}
	if len(args) > 0 {
		query := "INSERT INTO DocumentFields(UploadID, DocID, Name, Value) VALUES " + strings.Repeat("(?, ?, ?, ?), ", len(args)/4)
		query = strings.TrimSuffix(query, ", ")
		if _, err := u.tx.Exec(query, args...); err != nil {
			return err
		}
	}
	u.docid++
	return nil
}

// Count returns the number of documents inserted so far.
func (u *Upload) Count() int {
	return int(u.docid)
}

// Commit finishes processing the upload.
func (u *Upload) Commit() error {
	return u.tx.Commit()
}

// Abort cleans up resources associated with the upload.
// It does not attempt to clean up partial database state.
func (u *Upload) Abort() error {
	return u.tx.Rollback()
}

// CountUploads returns the number of uploads in the database.
func (db *DB) CountUploads() (int, error) {
	var uploads int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Uploads").Scan(&uploads)
	return uploads, err
}

// CollectionInfo describes a stored collection.
type CollectionInfo struct {
	Name      string `json:"name"`
	Uploads   int    `json:"uploads"`
	Documents int    `json:"documents"`
}

// Collections returns every collection with at least one upload, by name.
func (db *DB) Collections(ctx context.Context) ([]CollectionInfo, error) {
	rows, err := db.sql.QueryContext(ctx, `
SELECT u.Collection, COUNT(DISTINCT u.UploadID), COUNT(d.DocID)
FROM Uploads u LEFT JOIN Documents d ON u.UploadID = d.UploadID
GROUP BY u.Collection ORDER BY u.Collection`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CollectionInfo
	for rows.Next() {
		var c CollectionInfo
		if err := rows.Scan(&c.Name, &c.Uploads, &c.Documents); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCollection deletes every upload of a collection and reports
// how many uploads were deleted.
func (db *DB) DeleteCollection(ctx context.Context, name string) (int, error) {
	res, err := db.sql.ExecContext(ctx, "DELETE FROM Uploads WHERE Collection = ?", name)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.lastUpload, db.insertUpload, db.insertDocument} {
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}
