// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedSegment describes an error where a comma separated part
	// of a schema string is not exactly one type followed by one name.
	ErrMalformedSegment = errors.New("malformed schema segment")

	// ErrSchemaValidationFailed describes an error where a data record
	// misses one or more declared fields.
	ErrSchemaValidationFailed = errors.New("schema validation failed")

	// ErrUnknownField describes an error where a data record carries a
	// field the schema does not declare.
	ErrUnknownField = errors.New("unknown field")
)

// SegmentError reports the position and text of a malformed segment.
type SegmentError struct {
	Index   int
	Segment string
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("schema: %s %d %q: want \"<type> <name>\"", ErrMalformedSegment, e.Index, e.Segment)
}

func (e *SegmentError) Unwrap() error {
	return ErrMalformedSegment
}

// ValidationError lists the fields missing from a record.
type ValidationError struct {
	MissingKeys []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema: %s: missing %s", ErrSchemaValidationFailed, strings.Join(e.MissingKeys, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrSchemaValidationFailed
}
