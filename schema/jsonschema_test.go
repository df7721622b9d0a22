// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchema(t *testing.T) {
	buf, err := JSONSchema(MustParse("uint256 eventId, string[] weights, bool ok, address who, bytes32 h, tuple x"))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf, &doc))
	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, false, doc["additionalProperties"])
	assert.Equal(t, []any{"eventId", "weights", "ok", "who", "h", "x"}, doc["required"])

	props := doc["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": []any{"integer", "string"}}, props["eventId"])
	assert.Equal(t, map[string]any{"type": "array", "items": map[string]any{"type": "string"}}, props["weights"])
	assert.Equal(t, map[string]any{"type": "boolean"}, props["ok"])
	assert.Equal(t, map[string]any{"type": "string"}, props["who"])
	assert.Equal(t, map[string]any{"type": "string"}, props["h"])
	assert.Equal(t, map[string]any{}, props["x"])
}

func TestValidateJSON(t *testing.T) {
	d := MustParse(voteSchema)

	for _, ok := range []string{
		`{"eventId":"1","weights":["a","b"],"comment":"c"}`,
		`{"eventId":12,"weights":[],"comment":""}`,
	} {
		assert.NoError(t, ValidateJSON(d, []byte(ok)), ok)
	}

	for _, bad := range []string{
		`{"eventId":"1","weights":["a"]}`,
		`{"eventId":"1","weights":["a"],"comment":"c","extra":1}`,
		`{"eventId":true,"weights":["a"],"comment":"c"}`,
		`{"eventId":"1","weights":"a","comment":"c"}`,
		`{"eventId":"1","weights":[1],"comment":"c"}`,
	} {
		assert.ErrorIs(t, ValidateJSON(d, []byte(bad)), ErrSchemaValidationFailed, bad)
	}
}
