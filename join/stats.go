// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package join

import (
	"fmt"

	"github.com/aclements/go-moremath/stats"
)

// Stats summarizes a join.
type Stats struct {
	LeftGroups, RightGroups int
	LeftDocs, RightDocs     int

	// Groups is the number of keys in the result. Of these,
	// Matched had documents on both sides.
	Groups, Matched int
	// Rows is the number of merged documents.
	Rows int

	// FanOut is the distribution of merged documents per result key.
	FanOutMean, FanOutMin, FanOutMax, FanOutP90 float64
}

// Summarize computes statistics of result, the join of left and right.
func Summarize(left, right, result *Groups) Stats {
	st := Stats{
		LeftGroups:  left.Len(),
		RightGroups: right.Len(),
		LeftDocs:    left.DocCount(),
		RightDocs:   right.DocCount(),
		Groups:      result.Len(),
	}
	fanOut := make([]float64, 0, result.Len())
	for _, k := range result.keys {
		n := len(result.docs[k])
		st.Rows += n
		if left.Has(k) && right.Has(k) {
			st.Matched++
		}
		fanOut = append(fanOut, float64(n))
	}
	if len(fanOut) > 0 {
		s := stats.Sample{Xs: fanOut}
		st.FanOutMean = s.Mean()
		st.FanOutMin, st.FanOutMax = s.Bounds()
		st.FanOutP90 = s.Quantile(0.9)
	}
	return st
}

func (s Stats) String() string {
	return fmt.Sprintf("left: %d docs in %d groups; right: %d docs in %d groups; result: %d rows in %d groups (%d matched); fan-out mean %.4g min %.4g max %.4g p90 %.4g",
		s.LeftDocs, s.LeftGroups, s.RightDocs, s.RightGroups, s.Rows, s.Groups, s.Matched,
		s.FanOutMean, s.FanOutMin, s.FanOutMax, s.FanOutP90)
}
