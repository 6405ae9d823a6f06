// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package docfmt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
)

// A Record is a single record read from a document stream. It is
// either a Document or a *SyntaxError.
type Record interface {
	isRecord()
}

// A Reader reads documents stored one per line.
//
// Its API is modeled on bufio.Scanner. Blank lines and lines starting
// with "#" are skipped. A line that does not parse as a document
// produces a *SyntaxError record and reading continues with the next
// line.
//
// To construct a new Reader, either call NewReader, or call Reset on
// a zeroed Reader.
type Reader struct {
	s   *bufio.Scanner
	err error // current I/O error

	fileName string
	line     int

	// label, if labelField is non-empty, is stored into every
	// document read.
	labelField, label string

	rec Record
}

// A SyntaxError represents a syntax error on a particular line of a
// document file.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (*SyntaxError) isRecord() {}

// Pos returns the file name and line of the error.
func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

var noRecord = &SyntaxError{"", 0, "Reader.Scan has not been called"}

// maxLine is the longest document line accepted by a Reader.
const maxLine = 16 << 20

// NewReader constructs a reader to parse documents from r. fileName is
// used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName, "", "")
	return reader
}

// Reset resets the reader to begin reading from a new input.
//
// If labelField is non-empty, every document read from the input gets
// labelField set to label.
func (r *Reader) Reset(ior io.Reader, fileName string, labelField, label string) {
	r.s = bufio.NewScanner(ior)
	r.s.Buffer(nil, maxLine)
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.fileName = fileName
	r.line = 0
	r.err = nil
	r.labelField, r.label = labelField, label
	r.rec = noRecord
}

// Scan advances the reader to the next record and reports whether a
// record was read. The caller should use the Result method to get the
// record. If Scan reaches EOF or an I/O error occurs, it returns false,
// in which case the caller should use the Err method to check for
// errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for r.s.Scan() {
		r.line++
		line := bytes.TrimSpace(r.s.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		var doc Document
		if err := bson.UnmarshalExtJSON(line, false, &doc); err != nil {
			r.rec = &SyntaxError{r.fileName, r.line, err.Error()}
			return true
		}
		if doc == nil {
			doc = make(Document)
		}
		if r.labelField != "" {
			doc[r.labelField] = r.label
		}
		r.rec = doc
		return true
	}
	r.err = r.s.Err()
	return false
}

// Result returns the record that was just read by Scan. This is
// either a Document or a *SyntaxError.
//
// Each Document is freshly allocated and may be retained by the
// caller.
func (r *Reader) Result() Record {
	return r.rec
}

// Err returns the first non-EOF I/O error that was encountered by the
// Reader.
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads every document from r. It stops at the first syntax
// error.
func ReadAll(r io.Reader, fileName string) ([]Document, error) {
	var docs []Document
	reader := NewReader(r, fileName)
	for reader.Scan() {
		switch rec := reader.Result().(type) {
		case *SyntaxError:
			return nil, rec
		case Document:
			docs = append(docs, rec)
		}
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
