// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package docproc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/docjoin/docfmt"
	"golang.org/x/docjoin/docproc/internal/parse"
)

// A Projection extracts a fixed tuple of document fields into a Key.
//
// A Projection is safe for concurrent use. Keys projected by
// concurrent callers from equal values are ==.
type Projection struct {
	fields []string

	mu sync.Mutex
	// keys are the interned Keys of this Projection, by hash of
	// their encoding.
	keys map[uint64][]*keyNode
	n    int
}

// NewProjection returns a Projection of the given field paths. The
// order of fields determines the position of each value in a Key.
// An empty field list is valid: every document projects to the same,
// empty Key.
func NewProjection(fields []string) *Projection {
	return &Projection{
		fields: append([]string(nil), fields...),
		keys:   make(map[uint64][]*keyNode),
	}
}

// ParseProjection parses a key list, such as "customer.id, region",
// and returns a Projection of those fields. See "go doc
// golang.org/x/docjoin/docproc/syntax" for a description of key-list
// syntax.
func ParseProjection(q string) (*Projection, error) {
	fields, err := parse.ParseKeys(q)
	if err != nil {
		return nil, err
	}
	return NewProjection(fields), nil
}

// ParseKeys parses a key list into field paths.
func ParseKeys(q string) ([]string, error) {
	return parse.ParseKeys(q)
}

// Fields returns the field paths of p. The caller must not modify the
// result.
func (p *Projection) Fields() []string {
	return p.fields
}

// Len returns the number of distinct Keys projected so far.
func (p *Projection) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

// Project extracts the fields of p from doc and returns them as a Key.
// A field missing from doc has the value nil.
//
// Two Keys produced by Project will be == if and only if their
// projected fields have the same values and types. Notably, this means
// Keys can be used as Go map keys, which is useful for grouping
// documents.
func (p *Projection) Project(doc docfmt.Document) Key {
	row := make([]any, len(p.fields))
	for i, f := range p.fields {
		row[i], _ = doc.Lookup(f)
	}
	return p.intern(row)
}

// Key returns the Key of p with the given values, one per field.
//
// Go int values are interned like the BSON type they encode to: int32
// if they fit, otherwise int64.
//
// It panics if len(vals) is not the number of fields of p.
func (p *Projection) Key(vals ...any) Key {
	if len(vals) != len(p.fields) {
		panic(fmt.Sprintf("Projection has %d fields, got %d values", len(p.fields), len(vals)))
	}
	row := make([]any, len(vals))
	for i, v := range vals {
		if x, ok := v.(int); ok {
			if int64(int32(x)) == int64(x) {
				v = int32(x)
			} else {
				v = int64(x)
			}
		}
		row[i] = docfmt.CloneValue(v)
	}
	return p.intern(row)
}

func (p *Projection) intern(row []any) Key {
	var enc []byte
	for _, v := range row {
		b := encodeValue(v)
		enc = binary.AppendUvarint(enc, uint64(len(b)))
		enc = append(enc, b...)
	}
	hash := xxhash.Sum64(enc)

	p.mu.Lock()
	defer p.mu.Unlock()

	// Check if we already have this key.
	for _, key := range p.keys[hash] {
		if bytes.Equal(key.enc, enc) {
			return Key{key}
		}
	}

	// Save the key.
	key := &keyNode{p, row, enc}
	p.keys[hash] = append(p.keys[hash], key)
	p.n++
	return Key{key}
}
