// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package schema

import (
	"fmt"
	"sort"
)

// Item is one (name, value, type) triple of an attestation payload.
type Item struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
	Type  string `json:"type"`
}

// Items orders the values of rec by the descriptor's field order. The
// record must hold every declared field and nothing else.
func Items(d *Descriptor, rec Record) ([]Item, error) {
	var unknown []string
	for k := range rec {
		if !d.Has(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("schema: %w %q", ErrUnknownField, unknown[0])
	}
	if err := Validate(d, rec).Err(); err != nil {
		return nil, err
	}
	items := make([]Item, len(d.fields))
	for i, f := range d.fields {
		items[i] = Item{Name: f.Name, Value: rec[f.Name], Type: f.Type}
	}
	return items, nil
}
