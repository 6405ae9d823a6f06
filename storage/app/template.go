// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import "github.com/google/safehtml/template"

const joinHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Left}} {{.Variant}} join {{.Right}}</title>
<style>
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 2px 6px; font-family: monospace; }
</style>
</head>
<body>
<h1>{{.Left}} {{.Variant}} join {{.Right}}</h1>
<table>
<tr>{{range .Keys}}<th>{{.}}</th>{{end}}{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .Key}}<td>{{.}}</td>{{end}}{{range .Cells}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
</body>
</html>
`

var joinTemplate = template.Must(template.New("join").Parse(joinHTML))
