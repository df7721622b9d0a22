// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFromJSON(t *testing.T) {
	rec, err := RecordFromJSON([]byte(`{
		"eventId": 123456789012345678901234567890,
		"weights": ["1", 2, true],
		"comment": "hi",
		"meta": {"a": null}
	}`))
	require.NoError(t, err)
	assert.Equal(t, Record{
		"eventId": json.Number("123456789012345678901234567890"),
		"weights": []any{"1", json.Number("2"), true},
		"comment": "hi",
		"meta":    map[string]any{"a": nil},
	}, rec)
}

func TestRecordFromJSONPath(t *testing.T) {
	buf := []byte(`{"schema":"int a","data":{"a":"5"}}`)
	rec, err := RecordFromJSONPath(buf, "data")
	require.NoError(t, err)
	assert.Equal(t, Record{"a": "5"}, rec)

	_, err = RecordFromJSONPath(buf, "nope")
	assert.ErrorIs(t, err, ErrInvalidRecord)
	_, err = RecordFromJSONPath(buf, "schema")
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestRecordFromJSONRejects(t *testing.T) {
	for _, in := range []string{`[1,2]`, `"x"`, `{"a":`, ``} {
		_, err := RecordFromJSON([]byte(in))
		assert.ErrorIs(t, err, ErrInvalidRecord, in)
	}
}

func TestRecordCastRoundTrip(t *testing.T) {
	rec, err := RecordFromJSON([]byte(`{"eventId":"42","weights":[1,"2"],"comment":"c"}`))
	require.NoError(t, err)
	Cast(MustParse("int eventId, int[] weights, string comment"), rec)
	assert.Equal(t, int64(42), rec["eventId"])
	assert.Equal(t, []any{int64(1), int64(2)}, rec["weights"])
}
