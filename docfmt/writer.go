// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package docfmt

import (
	"bytes"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
)

// A Writer writes documents one per line as relaxed Extended JSON.
//
// Fields are written in sorted order at every level so the output for
// a given document is deterministic.
type Writer struct {
	w   io.Writer
	buf bytes.Buffer
}

// NewWriter returns a writer that writes documents to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes Record rec to w. Syntax errors are ignored.
func (w *Writer) Write(rec Record) error {
	switch rec := rec.(type) {
	case Document:
		if err := w.writeDocument(rec); err != nil {
			return err
		}
	case *SyntaxError:
		// Ignore
		return nil
	default:
		return fmt.Errorf("unknown Record type %T", rec)
	}

	// Flush the buffer out to the io.Writer. Write to the buffer
	// can't fail, so we only have to check if this fails.
	_, err := w.w.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

func (w *Writer) writeDocument(doc Document) error {
	b, err := Marshal(doc)
	if err != nil {
		return err
	}
	w.buf.Write(b)
	w.buf.WriteByte('\n')
	return nil
}

// Marshal returns the relaxed Extended JSON encoding of doc with fields
// in sorted order.
func Marshal(doc Document) ([]byte, error) {
	var v any = bson.D{}
	if doc != nil {
		v = Canonical(doc)
	}
	b, err := bson.MarshalExtJSON(v, false, false)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return b, nil
}

// FormatValue returns the relaxed Extended JSON encoding of a single
// value, such as 42, "eu" or {"a":1}.
func FormatValue(v any) string {
	b, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: Canonical(v)}}, false, false)
	if err != nil {
		return fmt.Sprint(v)
	}
	// Strip {"v": and }.
	return string(b[len(`{"v":`) : len(b)-1])
}
