// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"
)

const jsonSchemaDraft = "https://json-schema.org/draft/2019-09/schema"

// JSONSchema renders d as a JSON Schema document describing a valid data
// record: an object with exactly the declared fields, all required.
// Integer types accept numbers and decimal strings, array tags map to
// arrays of the element type and unknown tags accept any value.
func JSONSchema(d *Descriptor) ([]byte, error) {
	props := make(map[string]any, len(d.fields))
	for _, f := range d.fields {
		props[f.Name] = jsonType(f.Type)
	}
	required := d.Keys()
	return json.Marshal(map[string]any{
		"$schema":              jsonSchemaDraft,
		"title":                d.String(),
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	})
}

func jsonType(typ string) map[string]any {
	if i := strings.LastIndexByte(typ, '['); i > 0 && strings.HasSuffix(typ, "]") {
		return map[string]any{
			"type":  "array",
			"items": jsonType(typ[:i]),
		}
	}
	switch {
	case typ == "bool":
		return map[string]any{"type": "boolean"}
	case typ == "string", typ == "address", strings.HasPrefix(typ, "bytes"):
		return map[string]any{"type": "string"}
	case strings.HasPrefix(typ, "int"), strings.HasPrefix(typ, "uint"):
		return map[string]any{"type": []string{"integer", "string"}}
	default:
		return map[string]any{}
	}
}

// ValidateJSON checks a JSON encoded record against the document produced
// by JSONSchema. Failures wrap ErrSchemaValidationFailed.
func ValidateJSON(d *Descriptor, buf []byte) error {
	rs, err := d.compiled()
	if err != nil {
		return err
	}
	errs, err := rs.ValidateBytes(context.Background(), buf)
	if err != nil {
		return fmt.Errorf("schema: reading record failed: %v", err)
	}
	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("schema: %w: %s", ErrSchemaValidationFailed, strings.Join(msgs, "; "))
	}
	return nil
}

func (d *Descriptor) compiled() (*jsonschema.Schema, error) {
	d.once.Do(func() {
		var buf []byte
		buf, d.jsErr = JSONSchema(d)
		if d.jsErr != nil {
			return
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(buf, rs); err != nil {
			d.jsErr = fmt.Errorf("schema: compiling json schema failed: %v", err)
			return
		}
		d.js = rs
	})
	return d.js, d.jsErr
}
