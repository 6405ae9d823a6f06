// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"golang.org/x/docjoin/docproc"
	"golang.org/x/docjoin/join"
	"golang.org/x/docjoin/pipeline"
	"golang.org/x/docjoin/storage/mongo"
	"sigs.k8s.io/yaml"
)

// A Job describes a join. Jobs are read from YAML files; command-line
// flags override their fields.
type Job struct {
	Left  SideConfig `json:"left"`
	Right SideConfig `json:"right"`

	// Keys is the list of join key fields. It is decoded loosely: a
	// value that is not a list of strings is replaced by an empty
	// list with a warning. The YAML name is "keys", not "on", which
	// YAML 1.1 reads as the boolean true.
	Keys any    `json:"keys"`
	// Type is the join variant, such as "inner" or "full_outer".
	Type string `json:"type"`

	Merge  MergeConfig `json:"merge"`
	Format string      `json:"format"`
	Stats  bool        `json:"stats"`
	// Sink, if set, names a MongoDB collection that receives the
	// merged documents.
	Sink   string      `json:"sink"`

	Mongo MongoConfig `json:"mongo"`
	SQL   SQLConfig   `json:"sql"`
}

// SideConfig describes one side of a join.
type SideConfig struct {
	// Store is "mongo", "sql" or "files". If empty, it is "files"
	// if Files is set, "mongo" if a MongoDB server is configured,
	// and "sql" otherwise.
	Store      string   `json:"store"`
	Collection string   `json:"collection"`
	Files      []string `json:"files"`
	Filter     string   `json:"filter"`
	// Select is decoded loosely, like Job.Keys.
	Select     any      `json:"select"`
}

// MergeConfig selects the join.Merger.
type MergeConfig struct {
	// Nest stores each side under a field instead of prefixing
	// its fields.
	Nest  bool   `json:"nest"`
	// Left and Right are the field prefixes, or the nesting
	// fields if Nest is set.
	Left  string `json:"left"`
	Right string `json:"right"`
}

// MongoConfig locates a MongoDB server. URI takes precedence over Host
// and Port.
type MongoConfig struct {
	URI      string `json:"uri"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
}

// SQLConfig locates a document database created by the join server.
type SQLConfig struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

// loadJob reads a Job from a YAML file. Unknown fields are errors.
func loadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	job := new(Job)
	if err := yaml.UnmarshalStrict(data, job); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return job, nil
}

// keyList decodes a loose key list. A malformed list is logged and
// treated as empty.
func keyList(log logr.Logger, what string, v any) []string {
	keys, ok := pipeline.KeyList(v)
	if !ok {
		log.Info("warning: ignoring malformed key list", "field", what, "value", v)
		return nil
	}
	return keys
}

func (m MergeConfig) merger() join.Merger {
	if m.Nest {
		l, r := m.Left, m.Right
		if l == "" {
			l = "left"
		}
		if r == "" {
			r = "right"
		}
		return join.NestMerger{LeftField: l, RightField: r}
	}
	if m.Left == "" && m.Right == "" {
		return join.DefaultMerger
	}
	return join.PrefixMerger{LeftPrefix: m.Left, RightPrefix: m.Right}
}

// reservesKeyField reports whether m can name a merged field
// mongo.KeyField.
func reservesKeyField(m join.Merger) bool {
	switch m := m.(type) {
	case join.NestMerger:
		return m.LeftField == mongo.KeyField || m.RightField == mongo.KeyField
	case join.PrefixMerger:
		return strings.HasPrefix(mongo.KeyField, m.LeftPrefix) || strings.HasPrefix(mongo.KeyField, m.RightPrefix)
	}
	return false
}

// store returns the store kind of side s.
func (j *Job) store(s *SideConfig) string {
	switch {
	case s.Store != "":
		return s.Store
	case len(s.Files) > 0:
		return "files"
	case j.Mongo.URI != "" || j.Mongo.Host != "":
		return "mongo"
	}
	return "sql"
}

// plan is a Job resolved into join inputs.
type plan struct {
	keys        []string
	variant     join.Variant
	merger      join.Merger
	leftFilter  *docproc.Filter
	rightFilter *docproc.Filter
	leftSelect  []string
	rightSelect []string
	format      string
}

// resolve checks j and decodes its loose fields.
func (j *Job) resolve(log logr.Logger) (*plan, error) {
	p := &plan{
		keys:        keyList(log, "keys", j.Keys),
		leftSelect:  keyList(log, "left.select", j.Left.Select),
		rightSelect: keyList(log, "right.select", j.Right.Select),
		merger:      j.Merge.merger(),
		format:      j.Format,
	}
	if err := join.CheckMerger(p.merger); err != nil {
		return nil, err
	}
	if reservesKeyField(p.merger) {
		return nil, fmt.Errorf("merger may produce field %q, which holds the join key", mongo.KeyField)
	}
	if p.format == "" {
		p.format = "ndjson"
	}
	if p.format != "ndjson" && p.format != "table" {
		return nil, fmt.Errorf("unknown output format %q", p.format)
	}
	var err error
	if j.Type != "" {
		if p.variant, err = join.ParseVariant(j.Type); err != nil {
			return nil, err
		}
	}
	if p.leftFilter, err = docproc.NewFilter(j.Left.Filter); err != nil {
		return nil, fmt.Errorf("left filter: %w", err)
	}
	if p.rightFilter, err = docproc.NewFilter(j.Right.Filter); err != nil {
		return nil, fmt.Errorf("right filter: %w", err)
	}
	for _, s := range []*SideConfig{&j.Left, &j.Right} {
		switch st := j.store(s); st {
		case "files":
			if len(s.Files) == 0 {
				return nil, fmt.Errorf("files store with no files")
			}
		case "mongo", "sql":
			if s.Collection == "" {
				return nil, fmt.Errorf("%s store with no collection", st)
			}
		default:
			return nil, fmt.Errorf("unknown store %q", st)
		}
	}
	return p, nil
}
