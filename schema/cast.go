// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// NotANumber marks a value that could not be coerced to an integer.
type NotANumber struct{}

// NaN is the single NotANumber value stored by Cast.
var NaN = NotANumber{}

func (NotANumber) String() string {
	return "NaN"
}

// MarshalJSON encodes NaN as null.
func (NotANumber) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func IsNaN(v any) bool {
	_, ok := v.(NotANumber)
	return ok
}

// ParseInt coerces v to an integer the lenient way: leading whitespace and
// an optional sign are skipped, then the longest run of decimal digits is
// read and anything after it is ignored. Integers pass through, floats
// truncate toward zero. The result is an int64, or a *big.Int when the
// value does not fit. Values without leading digits, non-finite floats,
// booleans, nil and sequences yield NaN.
func ParseInt(v any) any {
	switch x := v.(type) {
	case int64:
		return x
	case *big.Int:
		if x == nil {
			return NaN
		}
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint:
		return fromUint64(uint64(x))
	case uint64:
		return fromUint64(x)
	case float32:
		return truncFloat(float64(x))
	case float64:
		return truncFloat(x)
	case json.Number:
		return parseIntString(string(x))
	case string:
		return parseIntString(x)
	case bool, nil, NotANumber:
		return NaN
	case fmt.Stringer:
		return parseIntString(x.String())
	default:
		return NaN
	}
}

func fromUint64(u uint64) any {
	if u > math.MaxInt64 {
		return new(big.Int).SetUint64(u)
	}
	return int64(u)
}

func truncFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NaN
	}
	f = math.Trunc(f)
	if f < math.MinInt64 || f >= math.MaxInt64 {
		i, _ := big.NewFloat(f).Int(nil)
		return i
	}
	return int64(f)
}

func parseIntString(s string) any {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	var sign string
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == 0 {
		return NaN
	}
	i, err := strconv.ParseInt(sign+s[:n], 10, 64)
	if err != nil {
		// digits overflow int64
		b, ok := new(big.Int).SetString(sign+s[:n], 10)
		if !ok {
			return NaN
		}
		return b
	}
	return i
}

// Cast rewrites the values of fields typed int or int[] in place and
// returns rec. Absent fields are skipped, all other types are left as is.
// An int[] field whose value is not a sequence becomes NaN.
func Cast(d *Descriptor, rec Record) Record {
	for _, f := range d.fields {
		v, ok := rec[f.Name]
		if !ok {
			continue
		}
		switch f.Type {
		case TypeInt:
			rec[f.Name] = ParseInt(v)
		case TypeIntArray:
			rec[f.Name] = parseIntSlice(v)
		}
	}
	return rec
}

func parseIntSlice(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ParseInt(e)
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = parseIntString(e)
		}
		return out
	case nil:
		return NaN
	}
	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return NaN
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = ParseInt(rv.Index(i).Interface())
	}
	return out
}
