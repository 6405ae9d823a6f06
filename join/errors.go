// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package join

import "fmt"

// A Side is one of the two inputs of a join.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// A SourceError reports that fetching one side of a join failed.
type SourceError struct {
	Side       Side
	Collection string
	Err        error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s collection %q: %v", e.Side, e.Collection, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
