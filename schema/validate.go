// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package schema

// Record maps field names to scalar or sequence values.
type Record map[string]any

// ValidationResult is the outcome of Validate. MissingKeys follows the
// descriptor's field order.
type ValidationResult struct {
	Status      bool     `json:"status"`
	MissingKeys []string `json:"missingKeys,omitempty"`
}

// Err returns nil on success or a *ValidationError.
func (r ValidationResult) Err() error {
	if r.Status {
		return nil
	}
	return &ValidationError{MissingKeys: r.MissingKeys}
}

// Validate reports which declared fields are absent from rec. Presence is
// key membership; empty strings and empty sequences count as present.
func Validate(d *Descriptor, rec Record) ValidationResult {
	var missing []string
	for _, f := range d.fields {
		if _, ok := rec[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return ValidationResult{Status: false, MissingKeys: missing}
	}
	return ValidationResult{Status: true}
}
