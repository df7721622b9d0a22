// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var ErrInvalidRecord = errors.New("invalid record")

// RecordFromJSON decodes a JSON object into a Record. Numbers keep their
// literal text as json.Number so large integers survive unchanged.
func RecordFromJSON(buf []byte) (Record, error) {
	return RecordFromJSONPath(buf, "")
}

// RecordFromJSONPath decodes the object found at a gjson path inside buf.
// An empty path selects the document root.
func RecordFromJSONPath(buf []byte, path string) (Record, error) {
	if !gjson.ValidBytes(buf) {
		return nil, fmt.Errorf("schema: %w: malformed JSON", ErrInvalidRecord)
	}
	res := gjson.ParseBytes(buf)
	if path != "" {
		res = res.Get(path)
		if !res.Exists() {
			return nil, fmt.Errorf("schema: %w: path %q not found", ErrInvalidRecord, path)
		}
	}
	if !res.IsObject() {
		return nil, fmt.Errorf("schema: %w: want JSON object, got %s", ErrInvalidRecord, res.Type)
	}
	rec := make(Record)
	res.ForEach(func(k, v gjson.Result) bool {
		rec[k.String()] = jsonValue(v)
		return true
	})
	return rec, nil
}

func jsonValue(v gjson.Result) any {
	switch v.Type {
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return json.Number(v.Raw)
	case gjson.String:
		return v.Str
	case gjson.JSON:
		if v.IsArray() {
			arr := v.Array()
			out := make([]any, len(arr))
			for i, e := range arr {
				out[i] = jsonValue(e)
			}
			return out
		}
		obj := make(map[string]any)
		v.ForEach(func(k, e gjson.Result) bool {
			obj[k.String()] = jsonValue(e)
			return true
		})
		return obj
	default:
		return nil
	}
}
