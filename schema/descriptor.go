// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package schema

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"
)

// Type tags with casting rules. All other tags are opaque.
const (
	TypeInt      = "int"
	TypeIntArray = "int[]"
)

// Field is one declared (name, type) pair.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Descriptor is the parsed form of a schema string such as
// "uint256 eventId, string[] weights, string comment". It is immutable
// once parsed and safe to share between goroutines.
type Descriptor struct {
	raw    string
	fields []Field
	index  map[string]int

	// compiled JSON schema, built on first use
	once  sync.Once
	js    *jsonschema.Schema
	jsErr error
}

// Parse splits s on commas and each trimmed segment on whitespace into a
// type tag and a field name. Type tags are not checked. A segment that
// does not hold exactly two tokens fails with ErrMalformedSegment.
//
// When a name repeats, the later type wins and the field keeps the
// position of its first occurrence.
func Parse(s string) (*Descriptor, error) {
	parts := strings.Split(s, ",")
	d := &Descriptor{
		raw:    s,
		fields: make([]Field, 0, len(parts)),
		index:  make(map[string]int, len(parts)),
	}
	for i, part := range parts {
		tokens := strings.Fields(part)
		if len(tokens) != 2 {
			return nil, &SegmentError{Index: i, Segment: strings.TrimSpace(part)}
		}
		typ, name := tokens[0], tokens[1]
		if pos, ok := d.index[name]; ok {
			log.Debugf("schema: field %q redeclared as %s (was %s)", name, typ, d.fields[pos].Type)
			d.fields[pos].Type = typ
			continue
		}
		d.index[name] = len(d.fields)
		d.fields = append(d.fields, Field{Name: name, Type: typ})
	}
	return d, nil
}

// MustParse is like Parse but panics on error. Use for literals only.
func MustParse(s string) *Descriptor {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Raw returns the schema string d was parsed from.
func (d *Descriptor) Raw() string {
	return d.raw
}

func (d *Descriptor) Len() int {
	return len(d.fields)
}

func (d *Descriptor) Fields() []Field {
	f := make([]Field, len(d.fields))
	copy(f, d.fields)
	return f
}

// Keys returns field names in declaration order.
func (d *Descriptor) Keys() []string {
	keys := make([]string, len(d.fields))
	for i, f := range d.fields {
		keys[i] = f.Name
	}
	return keys
}

// Types returns the field name to type tag mapping.
func (d *Descriptor) Types() map[string]string {
	types := make(map[string]string, len(d.fields))
	for _, f := range d.fields {
		types[f.Name] = f.Type
	}
	return types
}

func (d *Descriptor) Type(name string) (string, bool) {
	pos, ok := d.index[name]
	if !ok {
		return "", false
	}
	return d.fields[pos].Type, true
}

func (d *Descriptor) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// String returns the canonical form with single spaces, which differs from
// Raw when the input had irregular whitespace or repeated names.
func (d *Descriptor) String() string {
	parts := make([]string, len(d.fields))
	for i, f := range d.fields {
		parts[i] = f.Type + " " + f.Name
	}
	return strings.Join(parts, ", ")
}

func (d *Descriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Schema string            `json:"schema"`
		Fields []Field           `json:"fields"`
		Keys   []string          `json:"keys"`
		Types  map[string]string `json:"types"`
	}{
		Schema: d.raw,
		Fields: d.fields,
		Keys:   d.Keys(),
		Types:  d.Types(),
	})
}
