// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parse implements parsers for golang.org/x/docjoin/docproc/syntax.
//
// The parsers produce syntax trees only. Typing of literal values and
// evaluation against documents are left to docproc, which also
// translates filters into MongoDB query documents.
package parse
