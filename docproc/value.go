// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package docproc

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/docjoin/docfmt"
)

// parseLiteral returns the typed value of a filter literal.
func parseLiteral(lit string, quoted bool) any {
	if quoted {
		return lit
	}
	switch lit {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return i
	}
	// ParseFloat also accepts "inf" and "nan", which should stay
	// strings.
	if strings.IndexFunc(lit, isDigit) >= 0 {
		if f, err := strconv.ParseFloat(lit, 64); err == nil && !math.IsInf(f, 0) {
			return f
		}
	}
	return lit
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// Value classes in comparison order. This follows the MongoDB
// cross-type ordering.
const (
	classMinKey = iota
	classNull
	classNumber
	classString
	classObject
	classArray
	classBinary
	classObjectID
	classBool
	classDate
	classTimestamp
	classRegex
	classMaxKey
	classOther
)

func valueClass(v any) int {
	switch v.(type) {
	case primitive.MinKey:
		return classMinKey
	case nil, primitive.Null, primitive.Undefined:
		return classNull
	case int, int32, int64, float32, float64, primitive.Decimal128:
		return classNumber
	case string, primitive.Symbol:
		return classString
	case docfmt.Document, map[string]any, primitive.M, primitive.D:
		return classObject
	case []any, primitive.A:
		return classArray
	case primitive.Binary, []byte:
		return classBinary
	case primitive.ObjectID:
		return classObjectID
	case bool:
		return classBool
	case primitive.DateTime, time.Time:
		return classDate
	case primitive.Timestamp:
		return classTimestamp
	case primitive.Regex:
		return classRegex
	case primitive.MaxKey:
		return classMaxKey
	}
	return classOther
}

// toInt returns v as an int64 if it is an integer type.
func toInt(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

// toFloat returns v as a float64 if it is numeric.
func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return math.NaN(), true
		}
		return f, true
	}
	return 0, false
}

func asString(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case primitive.Symbol:
		return string(v), true
	}
	return "", false
}

func asArray(v any) ([]any, bool) {
	switch v := v.(type) {
	case []any:
		return v, true
	case primitive.A:
		return v, true
	}
	return nil, false
}

func cmpInt[T int | int64 | uint32 | uint8](a, b T) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	// NaN sorts before all other numbers.
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return -1
	case bNaN:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareValues returns <0, 0, or >0 as a sorts before, equal to, or
// after b. Numbers compare by value across numeric types. Values of
// different classes order by class.
func compareValues(a, b any) int {
	ca, cb := valueClass(a), valueClass(b)
	if ca != cb {
		return cmpInt(ca, cb)
	}
	switch ca {
	case classMinKey, classNull, classMaxKey:
		return 0
	case classNumber:
		ia, okA := toInt(a)
		ib, okB := toInt(b)
		if okA && okB {
			return cmpInt(ia, ib)
		}
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		return cmpFloat(fa, fb)
	case classString:
		sa, _ := asString(a)
		sb, _ := asString(b)
		return strings.Compare(sa, sb)
	case classObject:
		da := docfmt.Canonical(a).(bson.D)
		db := docfmt.Canonical(b).(bson.D)
		for i := 0; i < len(da) && i < len(db); i++ {
			if c := strings.Compare(da[i].Key, db[i].Key); c != 0 {
				return c
			}
			if c := compareValues(da[i].Value, db[i].Value); c != 0 {
				return c
			}
		}
		return cmpInt(len(da), len(db))
	case classArray:
		aa, _ := asArray(a)
		ab, _ := asArray(b)
		for i := 0; i < len(aa) && i < len(ab); i++ {
			if c := compareValues(aa[i], ab[i]); c != 0 {
				return c
			}
		}
		return cmpInt(len(aa), len(ab))
	case classBinary:
		ba, sa := binaryOf(a)
		bb, sb := binaryOf(b)
		if c := cmpInt(len(ba), len(bb)); c != 0 {
			return c
		}
		if c := cmpInt(sa, sb); c != 0 {
			return c
		}
		return bytes.Compare(ba, bb)
	case classObjectID:
		oa, ob := a.(primitive.ObjectID), b.(primitive.ObjectID)
		return bytes.Compare(oa[:], ob[:])
	case classBool:
		ba, bb := a.(bool), b.(bool)
		if ba == bb {
			return 0
		} else if !ba {
			return -1
		}
		return 1
	case classDate:
		return cmpInt(dateMillis(a), dateMillis(b))
	case classTimestamp:
		ta, tb := a.(primitive.Timestamp), b.(primitive.Timestamp)
		if c := cmpInt(ta.T, tb.T); c != 0 {
			return c
		}
		return cmpInt(ta.I, tb.I)
	case classRegex:
		ra, rb := a.(primitive.Regex), b.(primitive.Regex)
		if c := strings.Compare(ra.Pattern, rb.Pattern); c != 0 {
			return c
		}
		return strings.Compare(ra.Options, rb.Options)
	}
	return strings.Compare(fmt.Sprintf("%T:%v", a, a), fmt.Sprintf("%T:%v", b, b))
}

func binaryOf(v any) ([]byte, uint8) {
	switch v := v.(type) {
	case primitive.Binary:
		return v.Data, v.Subtype
	case []byte:
		return v, 0
	}
	return nil, 0
}

func dateMillis(v any) int64 {
	switch v := v.(type) {
	case primitive.DateTime:
		return int64(v)
	case time.Time:
		return v.UnixMilli()
	}
	return 0
}

// encodeValue returns a byte string that identifies v including its
// type. Two values have the same encoding if and only if they have
// the same BSON type and the same canonical BSON encoding.
func encodeValue(v any) []byte {
	t, b, err := bson.MarshalValue(docfmt.Canonical(v))
	if err != nil {
		// Not representable in BSON. Fall back to the Go syntax.
		return fmt.Appendf(nil, "\x00%T:%#v", v, v)
	}
	return append([]byte{byte(t)}, b...)
}
