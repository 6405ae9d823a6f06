// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

// ParseKeys parses a comma- or space-separated list of document field
// paths, such as "customer.id, region". Keys may be double-quoted.
// The empty string is an empty list.
func ParseKeys(q string) ([]string, error) {
	var keys []string
	toks := newTokenizer(q)
	for {
		tok, toks2 := toks.keyOrOp()
		if tok.Kind == 0 {
			break
		} else if tok.Kind == ',' && len(keys) > 0 {
			// Consume optional separating comma.
			toks = toks2
			tok, toks2 = toks.keyOrOp()
		}
		if tok.Kind != 'w' && tok.Kind != 'q' {
			_, toks = toks.error("expected key")
			break
		}
		if tok.Tok == "" {
			_, toks = toks.error("empty key")
			break
		}
		keys = append(keys, tok.Tok)
		toks = toks2
	}
	toks.end()
	if toks.errt.err != nil {
		return nil, toks.errt.err
	}
	return keys, nil
}
