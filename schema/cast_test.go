// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package schema

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bigInt(s string) *big.Int {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return b
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in  any
		out any
	}{
		{"42", int64(42)},
		{"42abc", int64(42)},
		{"  -7", int64(-7)},
		{"+8", int64(8)},
		{"1e3", int64(1)},
		{"3.9", int64(3)},
		{"0x10", int64(0)},
		{"abc", NaN},
		{"", NaN},
		{"-", NaN},
		{"99999999999999999999", bigInt("99999999999999999999")},
		{" -99999999999999999999x", bigInt("-99999999999999999999")},
		{json.Number("123456789012345678901234567890"), bigInt("123456789012345678901234567890")},
		{bigInt("99999999999999999999"), bigInt("99999999999999999999")},
		{3.9, int64(3)},
		{-3.9, int64(-3)},
		{float32(2.5), int64(2)},
		{math.Inf(1), NaN},
		{math.NaN(), NaN},
		{1e30, bigInt("1000000000000000019884624838656")},
		{int64(5), int64(5)},
		{12, int64(12)},
		{uint8(255), int64(255)},
		{uint64(math.MaxUint64), bigInt("18446744073709551615")},
		{json.Number("12"), int64(12)},
		{json.Number("-1.5"), int64(-1)},
		{true, NaN},
		{nil, NaN},
		{NaN, NaN},
		{[]any{1}, NaN},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, ParseInt(tt.in), "%#v", tt.in)
	}
}

func TestCast(t *testing.T) {
	d := MustParse("int eventId, int[] weights, string comment, uint256 big")
	rec := Record{
		"eventId": "42",
		"weights": []any{"1", "x", 2.5},
		"comment": "007",
		"big":     "123",
	}
	out := Cast(d, rec)
	assert.Equal(t, Record{
		"eventId": int64(42),
		"weights": []any{int64(1), NaN, int64(2)},
		"comment": "007",
		"big":     "123",
	}, rec)
	assert.Equal(t, rec, out)

	// idempotent
	again := Cast(d, Record{"eventId": int64(42), "weights": []any{int64(1), NaN, int64(2)}})
	assert.Equal(t, Record{"eventId": int64(42), "weights": []any{int64(1), NaN, int64(2)}}, again)
}

func TestCastLargeInt(t *testing.T) {
	d := MustParse("int a, int[] b")
	rec := Cast(d, Record{"a": "99999999999999999999", "b": []any{"1", "18446744073709551616"}})
	assert.Equal(t, bigInt("99999999999999999999"), rec["a"])
	assert.Equal(t, []any{int64(1), bigInt("18446744073709551616")}, rec["b"])

	// cast again yields the same values
	again := Cast(d, Record{"a": rec["a"], "b": rec["b"]})
	assert.Equal(t, rec["a"], again["a"])
	assert.Equal(t, rec["b"], again["b"])

	buf, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":99999999999999999999,"b":[1,18446744073709551616]}`, string(buf))
}

func TestCastSkipsAbsent(t *testing.T) {
	rec := Cast(MustParse("int a, int[] b"), Record{"c": "1"})
	assert.Equal(t, Record{"c": "1"}, rec)
}

func TestCastIntArray(t *testing.T) {
	d := MustParse("int[] w")
	assert.Equal(t, []any{int64(3), NaN}, Cast(d, Record{"w": []string{"3", "z"}})["w"])
	assert.Equal(t, []any{int64(4), int64(5)}, Cast(d, Record{"w": []int{4, 5}})["w"])
	assert.Equal(t, []any{}, Cast(d, Record{"w": []any{}})["w"])
	assert.Equal(t, NaN, Cast(d, Record{"w": "1,2"})["w"])
	assert.Equal(t, NaN, Cast(d, Record{"w": nil})["w"])
	assert.Equal(t, NaN, Cast(d, Record{"w": 7})["w"])

	// a sequence in a scalar int field is a mismatch
	assert.Equal(t, NaN, Cast(MustParse("int a"), Record{"a": []any{"7", "8"}})["a"])
}

func TestNaNJSON(t *testing.T) {
	buf, err := json.Marshal(Record{"a": NaN})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":null}`, string(buf))
	assert.True(t, IsNaN(NaN))
	assert.False(t, IsNaN(int64(0)))
	assert.Equal(t, "NaN", NaN.String())
}
